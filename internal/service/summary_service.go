package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-docflow-api/internal/models"
	appErrors "github.com/noah-isme/edu-docflow-api/pkg/errors"
)

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheRecorder interface {
	RecordCacheLookup(hit bool)
}

// SummaryService builds the admin dashboard rollups across document types.
// It reads through the by-education index only and never materializes
// missing documents.
type SummaryService struct {
	attendance attendanceStore
	stores     map[models.DocumentType]submissionStore
	cache      summaryCache
	cacheTTL   time.Duration
	logger     *zap.Logger
	metrics    cacheRecorder
}

// SummaryServiceOption configures the service.
type SummaryServiceOption func(*SummaryService)

// WithSummaryCache enables read-through caching of rollups.
func WithSummaryCache(cache summaryCache, ttl time.Duration) SummaryServiceOption {
	return func(s *SummaryService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithSummaryMetrics wires cache hit/miss counters.
func WithSummaryMetrics(m cacheRecorder) SummaryServiceOption {
	return func(s *SummaryService) { s.metrics = m }
}

// NewSummaryService constructs the service.
func NewSummaryService(attendance attendanceStore, stores SubmissionStores, logger *zap.Logger, opts ...SummaryServiceOption) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &SummaryService{
		attendance: attendance,
		stores:     stores,
		cacheTTL:   5 * time.Minute,
		logger:     logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// BuildEducationDocSummary computes the rollup across all five document
// types for one education.
func (s *SummaryService) BuildEducationDocSummary(ctx context.Context, educationID string) (*models.EducationDocSummary, error) {
	if strings.TrimSpace(educationID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "education id is required")
	}
	key := fmt.Sprintf("summary:doc:%s", educationID)
	if cached := new(models.EducationDocSummary); s.cacheGet(ctx, key, cached) {
		return cached, nil
	}

	summary := &models.EducationDocSummary{EducationID: educationID}
	var statuses []models.SubmissionStatus
	var lastUpdated time.Time

	sheet, err := s.fetchAttendance(ctx, educationID)
	if err != nil {
		return nil, err
	}
	if sheet != nil {
		status := sheet.Status.WorkflowStatus()
		summary.Attendance = &models.DocumentStatusRef{ID: sheet.ID, Status: status, Count: len(sheet.Students)}
		statuses = append(statuses, status)
		lastUpdated = maxTime(lastUpdated, sheet.UpdatedAt)
	}

	for _, docType := range models.SimpleDocumentTypes {
		doc, err := s.fetchDocument(ctx, docType, educationID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}
		ref := &models.DocumentStatusRef{ID: doc.ID, Status: doc.Status, Count: payloadItemCount(doc)}
		switch docType {
		case models.DocTypeActivity:
			summary.Activity = ref
		case models.DocTypeEquipment:
			summary.Equipment = ref
		case models.DocTypeLessonPlan:
			summary.LessonPlan = ref
		case models.DocTypeEvidence:
			summary.Evidence = ref
		}
		statuses = append(statuses, doc.Status)
		lastUpdated = maxTime(lastUpdated, doc.UpdatedAt)
	}

	summary.OverallStatus = models.RollupStatus(statuses)
	if !lastUpdated.IsZero() {
		summary.LastUpdatedAt = &lastUpdated
	}

	s.cacheSet(ctx, key, summary)
	return summary, nil
}

// BuildEducationSubmissionGroup computes the narrower rollup over the three
// core types backing the bulk admin workflow.
func (s *SummaryService) BuildEducationSubmissionGroup(ctx context.Context, educationID string) (*models.EducationSubmissionGroup, error) {
	if strings.TrimSpace(educationID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "education id is required")
	}
	key := fmt.Sprintf("summary:group:%s", educationID)
	if cached := new(models.EducationSubmissionGroup); s.cacheGet(ctx, key, cached) {
		return cached, nil
	}

	group := &models.EducationSubmissionGroup{EducationID: educationID}
	var statuses []models.SubmissionStatus

	sheet, err := s.fetchAttendance(ctx, educationID)
	if err != nil {
		return nil, err
	}
	if sheet != nil {
		status := sheet.Status.WorkflowStatus()
		group.Attendance = &models.DocumentStatusRef{ID: sheet.ID, Status: status, Count: len(sheet.Students)}
		statuses = append(statuses, status)
	}

	for _, docType := range []models.DocumentType{models.DocTypeActivity, models.DocTypeEquipment} {
		doc, err := s.fetchDocument(ctx, docType, educationID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}
		ref := &models.DocumentStatusRef{ID: doc.ID, Status: doc.Status, Count: payloadItemCount(doc)}
		if docType == models.DocTypeActivity {
			group.Activity = ref
		} else {
			group.Equipment = ref
		}
		statuses = append(statuses, doc.Status)
	}

	group.OverallStatus = models.RollupStatus(statuses)

	s.cacheSet(ctx, key, group)
	return group, nil
}

// DocumentUpdated invalidates cached rollups for the education. It satisfies
// the change notification listener contract the workflow services emit on.
func (s *SummaryService) DocumentUpdated(educationID string, _ models.DocumentType) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("summary:*:%s", educationID)); err != nil {
		s.logger.Warn("failed to invalidate summary cache",
			zap.String("education_id", educationID), zap.Error(err))
	}
}

func (s *SummaryService) fetchAttendance(ctx context.Context, educationID string) (*models.AttendanceSheet, error) {
	sheet, err := s.attendance.GetByEducationID(ctx, educationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance sheet")
	}
	return sheet, nil
}

func (s *SummaryService) fetchDocument(ctx context.Context, docType models.DocumentType, educationID string) (*models.SubmissionDocument, error) {
	store, ok := s.stores[docType]
	if !ok {
		return nil, nil
	}
	doc, err := store.GetByEducationID(ctx, educationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

func (s *SummaryService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	hit := err == nil
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
	if err != nil && !appErrors.HasCode(err, appErrors.ErrCacheMiss.Code) {
		s.logger.Warn("summary cache read failed", zap.String("key", key), zap.Error(err))
	}
	return hit
}

func (s *SummaryService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("summary cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func payloadItemCount(doc *models.SubmissionDocument) int {
	if doc == nil || len(doc.Payload) == 0 {
		return 0
	}
	switch doc.DocType {
	case models.DocTypeActivity:
		var payload models.ActivityLogPayload
		if json.Unmarshal(doc.Payload, &payload) == nil {
			return len(payload.Entries)
		}
	case models.DocTypeEquipment:
		var payload models.EquipmentConfirmationPayload
		if json.Unmarshal(doc.Payload, &payload) == nil {
			return len(payload.Items)
		}
	case models.DocTypeLessonPlan:
		var payload models.LessonPlanPayload
		if json.Unmarshal(doc.Payload, &payload) == nil {
			return len(payload.Sessions)
		}
	case models.DocTypeEvidence:
		var payload models.EvidencePacketPayload
		if json.Unmarshal(doc.Payload, &payload) == nil {
			return len(payload.Items)
		}
	}
	return 0
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
