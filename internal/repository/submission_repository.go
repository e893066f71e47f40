package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-docflow-api/internal/models"
)

const submissionColumns = `id, education_id, doc_type, status, payload, audit_trail, reject_reason,
       submitted_at, submitted_by, approved_at, approved_by, rejected_at, rejected_by,
       created_at, updated_at`

// SubmissionRepository persists one simple submission document type. Each
// instance is scoped to a single doc type so callers get the per-type store
// contract without a table per type.
type SubmissionRepository struct {
	db      *sqlx.DB
	docType models.DocumentType
}

// NewSubmissionRepository constructs a repository scoped to the given type.
func NewSubmissionRepository(db *sqlx.DB, docType models.DocumentType) *SubmissionRepository {
	return &SubmissionRepository{db: db, docType: docType}
}

// DocType exposes the type this store is scoped to.
func (r *SubmissionRepository) DocType() models.DocumentType {
	return r.docType
}

// GetAll returns every document of this type ordered by id.
func (r *SubmissionRepository) GetAll(ctx context.Context) ([]models.SubmissionDocument, error) {
	const query = `SELECT ` + submissionColumns + ` FROM submission_documents WHERE doc_type = $1 ORDER BY id`
	var docs []models.SubmissionDocument
	if err := r.db.SelectContext(ctx, &docs, query, r.docType); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetByID fetches a document by identifier.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.SubmissionDocument, error) {
	const query = `SELECT ` + submissionColumns + ` FROM submission_documents WHERE doc_type = $1 AND id = $2`
	var doc models.SubmissionDocument
	if err := r.db.GetContext(ctx, &doc, query, r.docType, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetByEducationID fetches the education's document of this type.
func (r *SubmissionRepository) GetByEducationID(ctx context.Context, educationID string) (*models.SubmissionDocument, error) {
	const query = `SELECT ` + submissionColumns + ` FROM submission_documents WHERE doc_type = $1 AND education_id = $2`
	var doc models.SubmissionDocument
	if err := r.db.GetContext(ctx, &doc, query, r.docType, educationID); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Upsert inserts or replaces the document by id, refreshing updated_at.
func (r *SubmissionRepository) Upsert(ctx context.Context, doc *models.SubmissionDocument) error {
	now := time.Now().UTC()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.DocType == "" {
		doc.DocType = r.docType
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	const query = `INSERT INTO submission_documents
	(id, education_id, doc_type, status, payload, audit_trail, reject_reason, submitted_at, submitted_by, approved_at, approved_by, rejected_at, rejected_by, created_at, updated_at)
	VALUES (:id, :education_id, :doc_type, :status, :payload, :audit_trail, :reject_reason, :submitted_at, :submitted_by, :approved_at, :approved_by, :rejected_at, :rejected_by, :created_at, :updated_at)
	ON CONFLICT (id) DO UPDATE SET
	  status = EXCLUDED.status,
	  payload = EXCLUDED.payload,
	  audit_trail = EXCLUDED.audit_trail,
	  reject_reason = EXCLUDED.reject_reason,
	  submitted_at = EXCLUDED.submitted_at,
	  submitted_by = EXCLUDED.submitted_by,
	  approved_at = EXCLUDED.approved_at,
	  approved_by = EXCLUDED.approved_by,
	  rejected_at = EXCLUDED.rejected_at,
	  rejected_by = EXCLUDED.rejected_by,
	  updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return err
	}
	return nil
}

// Delete removes a document by id.
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM submission_documents WHERE doc_type = $1 AND id = $2`, r.docType, id)
	return err
}

// GetOrCreate returns the education's document of this type, materializing a
// default DRAFT document when none exists yet.
func (r *SubmissionRepository) GetOrCreate(ctx context.Context, educationID string) (*models.SubmissionDocument, error) {
	now := time.Now().UTC()
	seed := models.SubmissionDocument{
		ID:          uuid.NewString(),
		EducationID: educationID,
		DocType:     r.docType,
		Status:      models.SubmissionDraft,
		Payload:     defaultPayload(r.docType),
		AuditTrail:  models.AuditTrail{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	const query = `INSERT INTO submission_documents
	(id, education_id, doc_type, status, payload, audit_trail, reject_reason, submitted_at, submitted_by, approved_at, approved_by, rejected_at, rejected_by, created_at, updated_at)
	VALUES (:id, :education_id, :doc_type, :status, :payload, :audit_trail, :reject_reason, :submitted_at, :submitted_by, :approved_at, :approved_by, :rejected_at, :rejected_by, :created_at, :updated_at)
	ON CONFLICT (education_id, doc_type) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, &seed); err != nil {
		return nil, err
	}
	return r.GetByEducationID(ctx, educationID)
}

func defaultPayload(docType models.DocumentType) json.RawMessage {
	var payload interface{}
	switch docType {
	case models.DocTypeActivity:
		payload = models.ActivityLogPayload{Entries: []models.ActivityLogEntry{}}
	case models.DocTypeEquipment:
		payload = models.EquipmentConfirmationPayload{Items: []models.RentalItem{}}
	case models.DocTypeLessonPlan:
		payload = models.LessonPlanPayload{}
	case models.DocTypeEvidence:
		payload = models.EvidencePacketPayload{Items: []models.EvidenceItem{}}
	default:
		return json.RawMessage(`{}`)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}
