package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-docflow-api/internal/models"
)

func submissionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "education_id", "doc_type", "status", "payload", "audit_trail", "reject_reason",
		"submitted_at", "submitted_by", "approved_at", "approved_by", "rejected_at", "rejected_by",
		"created_at", "updated_at",
	})
}

func TestSubmissionRepositoryGetByEducationID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db, models.DocTypeActivity)
	rows := submissionRows().AddRow(
		"doc-1", "edu-1", "ACTIVITY_LOG", "SUBMITTED",
		[]byte(`{"entries":[{"date":"2026-03-02T00:00:00Z","content":"orientation"}]}`),
		[]byte(`[]`), nil, time.Now(), "user-1", nil, nil, nil, nil, time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, education_id, doc_type")).
		WithArgs("ACTIVITY_LOG", "edu-1").
		WillReturnRows(rows)

	doc, err := repo.GetByEducationID(context.Background(), "edu-1")
	require.NoError(t, err)
	require.Equal(t, models.DocTypeActivity, doc.DocType)
	require.Equal(t, models.SubmissionSubmitted, doc.Status)

	var payload models.ActivityLogPayload
	require.NoError(t, json.Unmarshal(doc.Payload, &payload))
	require.Len(t, payload.Entries, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryUpsertFillsDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db, models.DocTypeEquipment)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO submission_documents")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	doc := &models.SubmissionDocument{
		EducationID: "edu-1",
		Status:      models.SubmissionDraft,
		Payload:     json.RawMessage(`{"items":[]}`),
	}
	require.NoError(t, repo.Upsert(context.Background(), doc))
	require.NotEmpty(t, doc.ID)
	require.Equal(t, models.DocTypeEquipment, doc.DocType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryGetOrCreateSeedsDraft(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSubmissionRepository(db, models.DocTypeLessonPlan)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO submission_documents")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	rows := submissionRows().AddRow(
		"doc-1", "edu-1", "LESSON_PLAN", "DRAFT", []byte(`{"title":"","body":""}`),
		[]byte(`[]`), nil, nil, nil, nil, nil, nil, nil, time.Now(), time.Now(),
	)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, education_id, doc_type")).
		WithArgs("LESSON_PLAN", "edu-1").
		WillReturnRows(rows)

	doc, err := repo.GetOrCreate(context.Background(), "edu-1")
	require.NoError(t, err)
	require.Equal(t, models.SubmissionDraft, doc.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDefaultPayloadShapes(t *testing.T) {
	for _, docType := range models.SimpleDocumentTypes {
		raw := defaultPayload(docType)
		require.True(t, json.Valid(raw), "doc type %s", docType)
	}

	var equipment models.EquipmentConfirmationPayload
	require.NoError(t, json.Unmarshal(defaultPayload(models.DocTypeEquipment), &equipment))
	require.NotNil(t, equipment.Items)
	require.Empty(t, equipment.Items)
}
