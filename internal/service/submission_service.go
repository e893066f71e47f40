package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-docflow-api/internal/dto"
	"github.com/noah-isme/edu-docflow-api/internal/models"
	appErrors "github.com/noah-isme/edu-docflow-api/pkg/errors"
)

type submissionStore interface {
	GetAll(ctx context.Context) ([]models.SubmissionDocument, error)
	GetByID(ctx context.Context, id string) (*models.SubmissionDocument, error)
	GetByEducationID(ctx context.Context, educationID string) (*models.SubmissionDocument, error)
	Upsert(ctx context.Context, doc *models.SubmissionDocument) error
	GetOrCreate(ctx context.Context, educationID string) (*models.SubmissionDocument, error)
}

// SubmissionStores maps each simple document type to its backing store.
type SubmissionStores map[models.DocumentType]submissionStore

// SubmitValidator is a per-type pre-submit hook. A non-nil return aborts the
// transition without mutating the stored document.
type SubmitValidator func(doc *models.SubmissionDocument) error

// SubmissionService drives the four simple document types through the
// DRAFT / SUBMITTED / APPROVED / REJECTED lifecycle.
type SubmissionService struct {
	stores     map[models.DocumentType]submissionStore
	validators map[models.DocumentType]SubmitValidator
	validator  *validator.Validate
	logger     *zap.Logger
	notifiers  []documentNotifier
	metrics    transitionRecorder
}

// SubmissionServiceOption configures the service.
type SubmissionServiceOption func(*SubmissionService)

// WithSubmissionNotifier wires a change notification listener. May be
// repeated.
func WithSubmissionNotifier(n documentNotifier) SubmissionServiceOption {
	return func(s *SubmissionService) {
		if n != nil {
			s.notifiers = append(s.notifiers, n)
		}
	}
}

// WithSubmissionMetrics wires transition counters.
func WithSubmissionMetrics(m transitionRecorder) SubmissionServiceOption {
	return func(s *SubmissionService) { s.metrics = m }
}

// WithSubmitValidator overrides the pre-submit hook for one document type.
func WithSubmitValidator(docType models.DocumentType, fn SubmitValidator) SubmissionServiceOption {
	return func(s *SubmissionService) {
		if fn != nil {
			s.validators[docType] = fn
		}
	}
}

// NewSubmissionService constructs the service over per-type stores.
func NewSubmissionService(stores SubmissionStores, validate *validator.Validate, logger *zap.Logger, opts ...SubmissionServiceOption) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &SubmissionService{
		stores:    stores,
		validator: validate,
		logger:    logger,
		validators: map[models.DocumentType]SubmitValidator{
			models.DocTypeActivity:   ValidateActivityLogSubmit,
			models.DocTypeEquipment:  ValidateEquipmentSubmit,
			models.DocTypeLessonPlan: ValidateLessonPlanSubmit,
			models.DocTypeEvidence:   ValidateEvidencePacketSubmit,
		},
	}
	svc.validator.RegisterValidation("document_type", func(fl validator.FieldLevel) bool {
		return models.DocumentType(strings.ToUpper(fl.Field().String())).Simple()
	})
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// List returns every document of one type.
func (s *SubmissionService) List(ctx context.Context, docType models.DocumentType) ([]models.SubmissionDocument, error) {
	store, err := s.store(docType)
	if err != nil {
		return nil, err
	}
	docs, err := store.GetAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}
	return docs, nil
}

// Get returns the education's document of one type, creating the default
// draft on first access.
func (s *SubmissionService) Get(ctx context.Context, docType models.DocumentType, educationID string) (*models.SubmissionDocument, error) {
	return s.load(ctx, docType, educationID)
}

// UpdateContent replaces the document payload honoring the editability
// policy. Return-phase edits go through ConfirmReturn, not here.
func (s *SubmissionService) UpdateContent(ctx context.Context, docType models.DocumentType, educationID string, req dto.UpdateSubmissionRequest, actor models.Actor) (*models.SubmissionDocument, error) {
	if len(req.Payload) == 0 || !json.Valid(req.Payload) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "payload must be valid JSON")
	}
	doc, err := s.load(ctx, docType, educationID)
	if err != nil {
		return nil, err
	}
	scope := models.SubmissionEditScope(actor.Role, doc)
	if scope == models.EditScopeReturnOnly {
		return nil, appErrors.Clone(appErrors.ErrReadOnly, "only the return confirmation may be edited while equipment is borrowed")
	}
	if !scope.Editable() {
		return nil, appErrors.ErrReadOnly
	}
	doc.Payload = append(json.RawMessage(nil), req.Payload...)
	if err := s.mustStore(docType).Upsert(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save document")
	}
	s.notifyUpdated(educationID, docType)
	return doc, nil
}

// Submit moves a draft or rejected document to SUBMITTED after running the
// per-type validation hook. The stored document is untouched on failure.
func (s *SubmissionService) Submit(ctx context.Context, docType models.DocumentType, educationID string, req dto.SubmitSubmissionRequest, actor models.Actor) (*models.SubmissionDocument, error) {
	if err := requireRole(actor, models.RoleTeacher, models.RoleInstructor); err != nil {
		return nil, err
	}
	doc, err := s.load(ctx, docType, educationID)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.SubmissionDraft && doc.Status != models.SubmissionRejected {
		return nil, appErrors.ErrInvalidTransition
	}
	if len(req.Payload) > 0 {
		if !json.Valid(req.Payload) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "payload must be valid JSON")
		}
		doc.Payload = append(json.RawMessage(nil), req.Payload...)
	}
	if hook := s.validators[docType]; hook != nil {
		if err := hook(doc); err != nil {
			return nil, err
		}
	}
	now := time.Now().UTC()
	doc.SubmittedAt = &now
	doc.SubmittedBy = &actor.ID
	doc.RejectReason = nil
	doc.RejectedAt = nil
	doc.RejectedBy = nil
	return s.apply(ctx, doc, models.SubmissionSubmitted, actor, nil)
}

// Approve marks a submitted document approved.
func (s *SubmissionService) Approve(ctx context.Context, docType models.DocumentType, educationID string, actor models.Actor) (*models.SubmissionDocument, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	doc, err := s.load(ctx, docType, educationID)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.SubmissionSubmitted {
		return nil, appErrors.ErrInvalidTransition
	}
	now := time.Now().UTC()
	doc.ApprovedAt = &now
	doc.ApprovedBy = &actor.ID
	return s.apply(ctx, doc, models.SubmissionApproved, actor, nil)
}

// Reject marks a submitted document rejected with a mandatory reason.
func (s *SubmissionService) Reject(ctx context.Context, docType models.DocumentType, educationID, reason string, actor models.Actor) (*models.SubmissionDocument, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reject reason is required")
	}
	doc, err := s.load(ctx, docType, educationID)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.SubmissionSubmitted {
		return nil, appErrors.ErrInvalidTransition
	}
	now := time.Now().UTC()
	doc.RejectReason = &reason
	doc.RejectedAt = &now
	doc.RejectedBy = &actor.ID
	return s.apply(ctx, doc, models.SubmissionRejected, actor, &reason)
}

// ConfirmReturn records the return of borrowed equipment. This is a payload
// edit within the return-phase carve-out, not a workflow transition.
func (s *SubmissionService) ConfirmReturn(ctx context.Context, educationID string, req dto.ConfirmReturnRequest, actor models.Actor) (*models.SubmissionDocument, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid return confirmation")
	}
	doc, err := s.load(ctx, models.DocTypeEquipment, educationID)
	if err != nil {
		return nil, err
	}
	if !models.SubmissionEditScope(actor.Role, doc).Editable() {
		return nil, appErrors.ErrReadOnly
	}
	var payload models.EquipmentConfirmationPayload
	if err := json.Unmarshal(doc.Payload, &payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt equipment payload")
	}
	if payload.RentalState != models.RentalBorrowed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "equipment is not currently borrowed")
	}
	now := time.Now().UTC()
	payload.RentalState = models.RentalReturned
	payload.ReturnConfirmedBy = strings.TrimSpace(req.ConfirmedBy)
	payload.ReturnConfirmedAt = &now
	payload.ReturnCondition = strings.TrimSpace(req.Condition)
	if payload.ReturnDate == nil {
		payload.ReturnDate = &now
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode equipment payload")
	}
	doc.Payload = raw
	if err := s.mustStore(models.DocTypeEquipment).Upsert(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save document")
	}
	s.notifyUpdated(educationID, models.DocTypeEquipment)
	return doc, nil
}

func (s *SubmissionService) store(docType models.DocumentType) (submissionStore, error) {
	store, ok := s.stores[docType]
	if !ok || !docType.Simple() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported document type")
	}
	return store, nil
}

func (s *SubmissionService) mustStore(docType models.DocumentType) submissionStore {
	return s.stores[docType]
}

func (s *SubmissionService) load(ctx context.Context, docType models.DocumentType, educationID string) (*models.SubmissionDocument, error) {
	store, err := s.store(docType)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(educationID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "education id is required")
	}
	doc, err := store.GetOrCreate(ctx, educationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

func (s *SubmissionService) apply(ctx context.Context, doc *models.SubmissionDocument, to models.SubmissionStatus, actor models.Actor, comment *string) (*models.SubmissionDocument, error) {
	from := doc.Status
	doc.AuditTrail = append(doc.AuditTrail, models.AuditEntry{
		ID:        uuid.NewString(),
		ActorRole: actor.Role,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		FromState: string(from),
		ToState:   string(to),
		Timestamp: time.Now().UTC(),
		Comment:   comment,
	})
	doc.Status = to
	if err := s.mustStore(doc.DocType).Upsert(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save document")
	}
	s.logger.Info("submission document transitioned",
		zap.String("education_id", doc.EducationID),
		zap.String("document_type", string(doc.DocType)),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_role", string(actor.Role)))
	if s.metrics != nil {
		s.metrics.RecordTransition(string(doc.DocType), string(to))
	}
	s.notifyUpdated(doc.EducationID, doc.DocType)
	return doc, nil
}

func (s *SubmissionService) notifyUpdated(educationID string, docType models.DocumentType) {
	for _, n := range s.notifiers {
		n.DocumentUpdated(educationID, docType)
	}
}

// ValidateEquipmentSubmit is the default pre-submit hook for equipment
// confirmations: at least one named rental item, a borrower name and both
// borrow and return dates.
func ValidateEquipmentSubmit(doc *models.SubmissionDocument) error {
	var payload models.EquipmentConfirmationPayload
	if err := json.Unmarshal(doc.Payload, &payload); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "equipment payload must be valid JSON")
	}
	named := 0
	for _, item := range payload.Items {
		if strings.TrimSpace(item.Name) != "" {
			named++
		}
	}
	if named == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one named rental item is required")
	}
	if strings.TrimSpace(payload.BorrowerName) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "borrower name is required")
	}
	if payload.BorrowDate == nil || payload.ReturnDate == nil {
		return appErrors.Clone(appErrors.ErrValidation, "borrow and return dates are required")
	}
	return nil
}

// ValidateActivityLogSubmit requires at least one activity entry.
func ValidateActivityLogSubmit(doc *models.SubmissionDocument) error {
	var payload models.ActivityLogPayload
	if err := json.Unmarshal(doc.Payload, &payload); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "activity log payload must be valid JSON")
	}
	if len(payload.Entries) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one activity entry is required")
	}
	return nil
}

// ValidateLessonPlanSubmit requires a title and a body.
func ValidateLessonPlanSubmit(doc *models.SubmissionDocument) error {
	var payload models.LessonPlanPayload
	if err := json.Unmarshal(doc.Payload, &payload); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "lesson plan payload must be valid JSON")
	}
	if strings.TrimSpace(payload.Title) == "" || strings.TrimSpace(payload.Body) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "lesson plan title and body are required")
	}
	return nil
}

// ValidateEvidencePacketSubmit requires at least one evidence item.
func ValidateEvidencePacketSubmit(doc *models.SubmissionDocument) error {
	var payload models.EvidencePacketPayload
	if err := json.Unmarshal(doc.Payload, &payload); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "evidence packet payload must be valid JSON")
	}
	if len(payload.Items) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one evidence item is required")
	}
	return nil
}
