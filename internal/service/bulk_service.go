package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-docflow-api/internal/dto"
	"github.com/noah-isme/edu-docflow-api/internal/models"
	appErrors "github.com/noah-isme/edu-docflow-api/pkg/errors"
)

type attendanceReviewer interface {
	Review(ctx context.Context, educationID string, req dto.ReviewRequest, actor models.Actor) (*models.AttendanceSheet, error)
}

type submissionReviewer interface {
	Approve(ctx context.Context, docType models.DocumentType, educationID string, actor models.Actor) (*models.SubmissionDocument, error)
	Reject(ctx context.Context, docType models.DocumentType, educationID, reason string, actor models.Actor) (*models.SubmissionDocument, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type bulkRecorder interface {
	RecordBulkOutcome(outcome string)
}

// BulkService applies one admin decision across an education's core
// submission group. Best effort and not transactional: each eligible
// document is reviewed independently and failures never roll back sibling
// successes.
type BulkService struct {
	attendance    attendanceStore
	stores        map[models.DocumentType]submissionStore
	attendanceSvc attendanceReviewer
	submissionSvc submissionReviewer
	audit         auditLogger
	validator     *validator.Validate
	logger        *zap.Logger
	metrics       bulkRecorder
}

// BulkServiceOption configures the service.
type BulkServiceOption func(*BulkService)

// WithBulkAudit wires request-level audit logging.
func WithBulkAudit(audit auditLogger) BulkServiceOption {
	return func(s *BulkService) { s.audit = audit }
}

// WithBulkMetrics wires per-document outcome counters.
func WithBulkMetrics(m bulkRecorder) BulkServiceOption {
	return func(s *BulkService) { s.metrics = m }
}

// NewBulkService constructs the orchestrator.
func NewBulkService(attendance attendanceStore, stores SubmissionStores, attendanceSvc attendanceReviewer, submissionSvc submissionReviewer, validate *validator.Validate, logger *zap.Logger, opts ...BulkServiceOption) *BulkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &BulkService{
		attendance:    attendance,
		stores:        stores,
		attendanceSvc: attendanceSvc,
		submissionSvc: submissionSvc,
		validator:     validate,
		logger:        logger,
	}
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

// ReviewMany runs the per-education pass over each requested education.
func (s *BulkService) ReviewMany(ctx context.Context, req dto.BulkReviewRequest, actor models.Actor) (*dto.BulkReviewResult, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk review request")
	}
	result := &dto.BulkReviewResult{Results: make([]dto.BulkEducationResult, 0, len(req.EducationIDs))}
	for _, educationID := range req.EducationIDs {
		eduResult := s.reviewEducation(ctx, educationID, req.Action, req.Reason, actor)
		result.Processed++
		if eduResult.Success {
			result.Succeeded++
		}
		result.Results = append(result.Results, eduResult)
	}
	s.emitAudit(ctx, actor, models.AuditActionBulkReview, strings.Join(req.EducationIDs, ","))
	return result, nil
}

// ApproveOrRejectAllDocuments reviews every eligible document in one
// education's submission group. Documents not in a reviewable state are
// silently skipped. A reject with an empty reason fails the whole call
// before any document is touched.
func (s *BulkService) ApproveOrRejectAllDocuments(ctx context.Context, educationID, action, reason string, actor models.Actor) (*dto.BulkEducationResult, error) {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	result := s.reviewEducation(ctx, educationID, action, reason, actor)
	s.emitAudit(ctx, actor, models.AuditActionBulkReview, educationID)
	return &result, nil
}

// ApproveOrRejectSubmission is the single-document variant.
func (s *BulkService) ApproveOrRejectSubmission(ctx context.Context, educationID string, docType models.DocumentType, action, reason string, actor models.Actor) error {
	if err := requireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	action = strings.ToUpper(strings.TrimSpace(action))
	var err error
	switch {
	case docType == models.DocTypeAttendance:
		_, err = s.attendanceSvc.Review(ctx, educationID, dto.ReviewRequest{Action: action, Reason: reason}, actor)
	case action == dto.ReviewActionApprove:
		_, err = s.submissionSvc.Approve(ctx, docType, educationID, actor)
	case action == dto.ReviewActionReject:
		_, err = s.submissionSvc.Reject(ctx, docType, educationID, reason, actor)
	default:
		return appErrors.Clone(appErrors.ErrValidation, "action must be APPROVE or REJECT")
	}
	if err != nil {
		return err
	}
	s.emitAudit(ctx, actor, models.AuditActionDocumentReview, educationID)
	return nil
}

func (s *BulkService) reviewEducation(ctx context.Context, educationID, action, reason string, actor models.Actor) dto.BulkEducationResult {
	result := dto.BulkEducationResult{EducationID: educationID, Success: true}
	action = strings.ToUpper(strings.TrimSpace(action))
	reason = strings.TrimSpace(reason)

	if action != dto.ReviewActionApprove && action != dto.ReviewActionReject {
		result.Success = false
		result.Errors = append(result.Errors, dto.BulkFailure{
			EducationID: educationID,
			Code:        appErrors.ErrValidation.Code,
			Message:     "action must be APPROVE or REJECT",
		})
		return result
	}
	if action == dto.ReviewActionReject && reason == "" {
		result.Success = false
		result.Errors = append(result.Errors, dto.BulkFailure{
			EducationID: educationID,
			Code:        appErrors.ErrValidation.Code,
			Message:     "reject reason is required",
		})
		return result
	}

	for _, docType := range models.CoreDocumentTypes {
		eligible, err := s.eligible(ctx, docType, educationID)
		if err != nil {
			result.Errors = append(result.Errors, failureFrom(educationID, docType, err))
			continue
		}
		if !eligible {
			result.Skipped++
			continue
		}
		if err := s.reviewOne(ctx, docType, educationID, action, reason, actor); err != nil {
			result.Errors = append(result.Errors, failureFrom(educationID, docType, err))
			s.recordOutcome("failed")
			continue
		}
		result.Reviewed++
		s.recordOutcome("succeeded")
	}

	result.Success = len(result.Errors) == 0
	return result
}

func (s *BulkService) reviewOne(ctx context.Context, docType models.DocumentType, educationID, action, reason string, actor models.Actor) error {
	if docType == models.DocTypeAttendance {
		_, err := s.attendanceSvc.Review(ctx, educationID, dto.ReviewRequest{Action: action, Reason: reason}, actor)
		return err
	}
	if action == dto.ReviewActionApprove {
		_, err := s.submissionSvc.Approve(ctx, docType, educationID, actor)
		return err
	}
	_, err := s.submissionSvc.Reject(ctx, docType, educationID, reason, actor)
	return err
}

// eligible reports whether the education has a present document of this
// type sitting in the admin review queue.
func (s *BulkService) eligible(ctx context.Context, docType models.DocumentType, educationID string) (bool, error) {
	if docType == models.DocTypeAttendance {
		sheet, err := s.attendance.GetByEducationID(ctx, educationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, nil
			}
			return false, err
		}
		return sheet.Status == models.AttendanceSubmittedToAdmin, nil
	}
	store, ok := s.stores[docType]
	if !ok {
		return false, nil
	}
	doc, err := store.GetByEducationID(ctx, educationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return doc.Status == models.SubmissionSubmitted, nil
}

func (s *BulkService) recordOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordBulkOutcome(outcome)
	}
}

func (s *BulkService) emitAudit(ctx context.Context, actor models.Actor, action, resourceID string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actor.ID,
		Action:     action,
		Resource:   "education_documents",
		ResourceID: &resourceID,
		IPAddress:  "system",
		UserAgent:  "bulk-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func failureFrom(educationID string, docType models.DocumentType, err error) dto.BulkFailure {
	appErr := appErrors.FromError(err)
	return dto.BulkFailure{
		EducationID:  educationID,
		DocumentType: string(docType),
		Code:         appErr.Code,
		Message:      appErr.Message,
	}
}
