package service

import (
	"context"
	"database/sql"
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

type attendanceStore interface {
	GetAll(ctx context.Context) ([]models.AttendanceSheet, error)
	GetByID(ctx context.Context, id string) (*models.AttendanceSheet, error)
	GetByEducationID(ctx context.Context, educationID string) (*models.AttendanceSheet, error)
	Upsert(ctx context.Context, sheet *models.AttendanceSheet) error
	GetOrCreate(ctx context.Context, educationID string) (*models.AttendanceSheet, error)
}

type documentNotifier interface {
	DocumentUpdated(educationID string, docType models.DocumentType)
}

type transitionRecorder interface {
	RecordTransition(documentType, toStatus string)
}

// AttendanceService drives the attendance sheet through its teacher /
// instructor / admin workflow. Every transition follows the same sequence:
// guard check, mutate the fetched copy, append the audit entry, upsert.
type AttendanceService struct {
	repo      attendanceStore
	validator *validator.Validate
	logger    *zap.Logger
	notifiers []documentNotifier
	metrics   transitionRecorder
	threshold float64
}

// AttendanceServiceOption configures the service.
type AttendanceServiceOption func(*AttendanceService)

// WithAttendanceNotifier wires a change notification listener. May be
// repeated.
func WithAttendanceNotifier(n documentNotifier) AttendanceServiceOption {
	return func(s *AttendanceService) {
		if n != nil {
			s.notifiers = append(s.notifiers, n)
		}
	}
}

// WithAttendanceMetrics wires transition counters.
func WithAttendanceMetrics(m transitionRecorder) AttendanceServiceOption {
	return func(s *AttendanceService) { s.metrics = m }
}

// WithCompletionThreshold overrides the completion-rate threshold.
func WithCompletionThreshold(threshold float64) AttendanceServiceOption {
	return func(s *AttendanceService) {
		if threshold > 0 && threshold <= 1 {
			s.threshold = threshold
		}
	}
}

// NewAttendanceService constructs the service with defaults.
func NewAttendanceService(repo attendanceStore, validate *validator.Validate, logger *zap.Logger, opts ...AttendanceServiceOption) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{
		repo:      repo,
		validator: validate,
		logger:    logger,
		threshold: models.DefaultCompletionThreshold,
	}
	svc.validator.RegisterValidation("signature_method", func(fl validator.FieldLevel) bool {
		return models.SignatureMethod(strings.ToUpper(fl.Field().String())).Valid()
	})
	svc.validator.RegisterValidation("review_action", func(fl validator.FieldLevel) bool {
		action := strings.ToUpper(fl.Field().String())
		return action == dto.ReviewActionApprove || action == dto.ReviewActionReject
	})
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// List returns every sheet.
func (s *AttendanceService) List(ctx context.Context) ([]models.AttendanceSheet, error) {
	sheets, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance sheets")
	}
	return sheets, nil
}

// Get returns the education's sheet, creating the default draft on first
// access.
func (s *AttendanceService) Get(ctx context.Context, educationID string) (*models.AttendanceSheet, error) {
	return s.load(ctx, educationID)
}

// UpdateContent applies content edits honoring the editability policy.
// Content edits are not transitions and append no audit entry.
func (s *AttendanceService) UpdateContent(ctx context.Context, educationID string, req dto.UpdateAttendanceSheetRequest, actor models.Actor) (*models.AttendanceSheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sheet content")
	}
	sheet, err := s.load(ctx, educationID)
	if err != nil {
		return nil, err
	}
	if !models.AttendanceEditScope(actor.Role, sheet.Status).Editable() {
		return nil, appErrors.ErrReadOnly
	}
	if req.TeacherInfo != nil {
		sheet.TeacherInfo = *req.TeacherInfo
	}
	if req.Students != nil {
		sheet.Students = *req.Students
	}
	if req.Sessions != nil {
		sheet.Sessions = *req.Sessions
	}
	if err := s.repo.Upsert(ctx, sheet); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance sheet")
	}
	s.notifyUpdated(sheet.EducationID)
	return sheet, nil
}

// MarkAsReady moves a draft sheet into the instructor's request queue.
// Re-invoking on an already ready sheet is a recognized no-op, tolerating
// duplicate clicks.
func (s *AttendanceService) MarkAsReady(ctx context.Context, educationID string, actor models.Actor) (*models.AttendanceSheet, error) {
	if err := requireRole(actor, models.RoleTeacher); err != nil {
		return nil, err
	}
	sheet, err := s.load(ctx, educationID)
	if err != nil {
		return nil, err
	}
	if sheet.Status == models.AttendanceTeacherReady {
		return sheet, nil
	}
	if sheet.Status != models.AttendanceTeacherDraft {
		return nil, appErrors.ErrInvalidTransition
	}
	info := sheet.TeacherInfo
	if strings.TrimSpace(info.Grade) == "" || strings.TrimSpace(info.ClassName) == "" || strings.TrimSpace(info.TeacherName) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade, class name and teacher name are required before marking ready")
	}
	if len(sheet.Students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one student is required before marking ready")
	}
	return s.apply(ctx, sheet, models.AttendanceTeacherReady, actor, nil)
}

// AddTeacherSignature attaches the school contact's signature and sends the
// sheet back to the program staff for final submission.
func (s *AttendanceService) AddTeacherSignature(ctx context.Context, educationID string, req dto.SignatureRequest, actor models.Actor) (*models.AttendanceSheet, error) {
	if err := requireRole(actor, models.RoleTeacher); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid signature")
	}
	sheet, err := s.load(ctx, educationID)
	if err != nil {
		return nil, err
	}
	if sheet.Status != models.AttendanceReturnedToTeacher {
		return nil, appErrors.ErrInvalidTransition
	}
	signature := &models.Signature{
		Method:       models.SignatureMethod(strings.ToUpper(req.Method)),
		SignedBy:     actor.Name,
		SignedAt:     time.Now().UTC(),
		SignatureRef: strings.TrimSpace(req.SignatureRef),
	}
	if !signature.Present() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "signature reference must not be blank")
	}
	sheet.TeacherSignature = signature
	return s.apply(ctx, sheet, models.AttendanceFinalSentToInstructor, actor, optionalComment(req.Comment))
}

// RequestFromTeacher pulls a ready sheet into instructor custody.
func (s *AttendanceService) RequestFromTeacher(ctx context.Context, educationID string, actor models.Actor) (*models.AttendanceSheet, error) {
	if err := requireRole(actor, models.RoleInstructor); err != nil {
		return nil, err
	}
	sheet, err := s.load(ctx, educationID)
	if err != nil {
		return nil, err
	}
	if sheet.Status != models.AttendanceTeacherReady {
		return nil, appErrors.ErrInvalidTransition
	}
	return s.apply(ctx, sheet, models.AttendanceInstructorRequested, actor, nil)
}

// ReturnToTeacher records the per-session counts and hands the sheet back
// for signing.
func (s *AttendanceService) ReturnToTeacher(ctx context.Context, educationID string, req dto.ReturnSheetRequest, actor models.Actor) (*models.AttendanceSheet, error) {
	if err := requireRole(actor, models.RoleInstructor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "session attendance counts are required")
	}
	sheet, err := s.load(ctx, educationID)
	if err != nil {
		return nil, err
	}
	if sheet.Status != models.AttendanceInstructorRequested {
		return nil, appErrors.ErrInvalidTransition
	}
	sheet.Sessions = req.Sessions
	return s.apply(ctx, sheet, models.AttendanceReturnedToTeacher, actor, nil)
}

// SubmitToAdmin moves a signed sheet into the admin review queue.
func (s *AttendanceService) SubmitToAdmin(ctx context.Context, educationID string, actor models.Actor) (*models.AttendanceSheet, error) {
	if err := requireRole(actor, models.RoleInstructor); err != nil {
		return nil, err
	}
	sheet, err := s.load(ctx, educationID)
	if err != nil {
		return nil, err
	}
	if sheet.Status != models.AttendanceFinalSentToInstructor {
		return nil, appErrors.ErrInvalidTransition
	}
	return s.apply(ctx, sheet, models.AttendanceSubmittedToAdmin, actor, nil)
}

// Review applies the admin decision on a submitted sheet.
func (s *AttendanceService) Review(ctx context.Context, educationID string, req dto.ReviewRequest, actor models.Actor) (*models.AttendanceSheet, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review request")
	}
	sheet, err := s.load(ctx, educationID)
	if err != nil {
		return nil, err
	}
	if sheet.Status != models.AttendanceSubmittedToAdmin {
		return nil, appErrors.ErrInvalidTransition
	}
	action := strings.ToUpper(req.Action)
	reason := strings.TrimSpace(req.Reason)
	now := time.Now().UTC()
	switch action {
	case dto.ReviewActionApprove:
		sheet.AdminReview = &models.AdminReview{Status: models.AdminReviewApproved, ReviewedAt: now}
		return s.apply(ctx, sheet, models.AttendanceApproved, actor, nil)
	case dto.ReviewActionReject:
		if reason == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "reject reason is required")
		}
		sheet.AdminReview = &models.AdminReview{Status: models.AdminReviewRejected, Reason: reason, ReviewedAt: now}
		sheet.RejectReason = &reason
		return s.apply(ctx, sheet, models.AttendanceRejected, actor, optionalComment(reason))
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "action must be APPROVE or REJECT")
	}
}

// CompletionReport computes per-student completion rates for one sheet.
func (s *AttendanceService) CompletionReport(ctx context.Context, educationID string) (*dto.CompletionReport, error) {
	sheet, err := s.load(ctx, educationID)
	if err != nil {
		return nil, err
	}
	report := &dto.CompletionReport{
		EducationID:  educationID,
		SessionCount: len(sheet.Sessions),
		Threshold:    s.threshold,
		Rows:         make([]dto.CompletionReportRow, 0, len(sheet.Students)),
	}
	for _, student := range sheet.Students {
		rate := models.CompletionRate(student, sheet.Sessions)
		report.Rows = append(report.Rows, dto.CompletionReportRow{
			StudentID:      student.ID,
			StudentName:    student.Name,
			CompletionRate: rate,
			Completed:      models.IsCompleted(student, sheet.Sessions, s.threshold),
		})
	}
	return report, nil
}

func (s *AttendanceService) load(ctx context.Context, educationID string) (*models.AttendanceSheet, error) {
	if strings.TrimSpace(educationID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "education id is required")
	}
	sheet, err := s.repo.GetOrCreate(ctx, educationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance sheet")
	}
	return sheet, nil
}

func (s *AttendanceService) apply(ctx context.Context, sheet *models.AttendanceSheet, to models.AttendanceSheetStatus, actor models.Actor, comment *string) (*models.AttendanceSheet, error) {
	from := sheet.Status
	sheet.AuditTrail = append(sheet.AuditTrail, models.AuditEntry{
		ID:        uuid.NewString(),
		ActorRole: actor.Role,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		FromState: string(from),
		ToState:   string(to),
		Timestamp: time.Now().UTC(),
		Comment:   comment,
	})
	sheet.Status = to
	if err := s.repo.Upsert(ctx, sheet); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance sheet")
	}
	s.logger.Info("attendance sheet transitioned",
		zap.String("education_id", sheet.EducationID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_role", string(actor.Role)))
	if s.metrics != nil {
		s.metrics.RecordTransition(string(models.DocTypeAttendance), string(to))
	}
	s.notifyUpdated(sheet.EducationID)
	return sheet, nil
}

func (s *AttendanceService) notifyUpdated(educationID string) {
	for _, n := range s.notifiers {
		n.DocumentUpdated(educationID, models.DocTypeAttendance)
	}
}

func requireRole(actor models.Actor, allowed ...models.UserRole) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	for _, role := range allowed {
		if actor.Role == role {
			return nil
		}
	}
	return appErrors.ErrForbidden
}

func optionalComment(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
