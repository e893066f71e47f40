package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-docflow-api/internal/dto"
	"github.com/noah-isme/edu-docflow-api/internal/models"
	appErrors "github.com/noah-isme/edu-docflow-api/pkg/errors"
)

type submissionStoreStub struct {
	docType models.DocumentType
	docs    map[string]*models.SubmissionDocument
	upserts int
}

func newSubmissionStoreStub(docType models.DocumentType) *submissionStoreStub {
	return &submissionStoreStub{docType: docType, docs: make(map[string]*models.SubmissionDocument)}
}

func (s *submissionStoreStub) GetAll(ctx context.Context) ([]models.SubmissionDocument, error) {
	result := make([]models.SubmissionDocument, 0, len(s.docs))
	for _, doc := range s.docs {
		result = append(result, *doc)
	}
	return result, nil
}

func (s *submissionStoreStub) GetByID(ctx context.Context, id string) (*models.SubmissionDocument, error) {
	for _, doc := range s.docs {
		if doc.ID == id {
			copy := *doc
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *submissionStoreStub) GetByEducationID(ctx context.Context, educationID string) (*models.SubmissionDocument, error) {
	if doc, ok := s.docs[educationID]; ok {
		copy := *doc
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *submissionStoreStub) Upsert(ctx context.Context, doc *models.SubmissionDocument) error {
	s.upserts++
	doc.UpdatedAt = time.Now().UTC()
	copy := *doc
	s.docs[doc.EducationID] = &copy
	return nil
}

func (s *submissionStoreStub) GetOrCreate(ctx context.Context, educationID string) (*models.SubmissionDocument, error) {
	if doc, ok := s.docs[educationID]; ok {
		copy := *doc
		return &copy, nil
	}
	doc := &models.SubmissionDocument{
		ID:          "doc-" + educationID,
		EducationID: educationID,
		DocType:     s.docType,
		Status:      models.SubmissionDraft,
		Payload:     json.RawMessage(`{}`),
		AuditTrail:  models.AuditTrail{},
	}
	s.docs[educationID] = doc
	copy := *doc
	return &copy, nil
}

func newSubmissionFixture() (map[models.DocumentType]*submissionStoreStub, *SubmissionService) {
	stubs := map[models.DocumentType]*submissionStoreStub{}
	stores := map[models.DocumentType]submissionStore{}
	for _, docType := range models.SimpleDocumentTypes {
		stub := newSubmissionStoreStub(docType)
		stubs[docType] = stub
		stores[docType] = stub
	}
	return stubs, NewSubmissionService(stores, nil, nil)
}

func activityPayload() json.RawMessage {
	payload := models.ActivityLogPayload{
		Entries: []models.ActivityLogEntry{
			{Date: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), Content: "week one recap"},
		},
	}
	raw, _ := json.Marshal(payload)
	return raw
}

func equipmentPayload(state models.RentalState) json.RawMessage {
	borrow := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	ret := borrow.AddDate(0, 0, 30)
	payload := models.EquipmentConfirmationPayload{
		Items:        []models.RentalItem{{Name: "projector", Quantity: 1}},
		BorrowerName: "Lee",
		BorrowDate:   &borrow,
		ReturnDate:   &ret,
		RentalState:  state,
	}
	raw, _ := json.Marshal(payload)
	return raw
}

func TestSubmitMovesDraftToSubmitted(t *testing.T) {
	stubs, svc := newSubmissionFixture()
	stubs[models.DocTypeActivity].docs["edu-1"] = &models.SubmissionDocument{
		ID: "doc-1", EducationID: "edu-1", DocType: models.DocTypeActivity,
		Status: models.SubmissionDraft, Payload: activityPayload(),
	}

	doc, err := svc.Submit(context.Background(), models.DocTypeActivity, "edu-1", dto.SubmitSubmissionRequest{}, teacherActor)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionSubmitted, doc.Status)
	require.NotNil(t, doc.SubmittedAt)
	require.Equal(t, teacherActor.ID, *doc.SubmittedBy)
	require.Len(t, doc.AuditTrail, 1)
}

func TestSubmitFromSubmittedIsInvalidTransition(t *testing.T) {
	stubs, svc := newSubmissionFixture()
	stubs[models.DocTypeActivity].docs["edu-1"] = &models.SubmissionDocument{
		ID: "doc-1", EducationID: "edu-1", DocType: models.DocTypeActivity,
		Status: models.SubmissionSubmitted, Payload: json.RawMessage(`{}`),
	}

	_, err := svc.Submit(context.Background(), models.DocTypeActivity, "edu-1", dto.SubmitSubmissionRequest{}, teacherActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTransition.Code))
}

func TestEquipmentSubmitValidationBlocksTransition(t *testing.T) {
	stubs, svc := newSubmissionFixture()
	stubs[models.DocTypeEquipment].docs["edu-1"] = &models.SubmissionDocument{
		ID: "doc-1", EducationID: "edu-1", DocType: models.DocTypeEquipment,
		Status: models.SubmissionDraft, Payload: json.RawMessage(`{"items":[],"borrower_name":""}`),
	}

	_, err := svc.Submit(context.Background(), models.DocTypeEquipment, "edu-1", dto.SubmitSubmissionRequest{}, teacherActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	stored := stubs[models.DocTypeEquipment].docs["edu-1"]
	require.Equal(t, models.SubmissionDraft, stored.Status)
	require.Empty(t, stored.AuditTrail)
	require.Zero(t, stubs[models.DocTypeEquipment].upserts)
}

func TestEquipmentSubmitAcceptsCompletePayload(t *testing.T) {
	stubs, svc := newSubmissionFixture()
	stubs[models.DocTypeEquipment].docs["edu-1"] = &models.SubmissionDocument{
		ID: "doc-1", EducationID: "edu-1", DocType: models.DocTypeEquipment,
		Status: models.SubmissionDraft, Payload: equipmentPayload(models.RentalBorrowed),
	}

	doc, err := svc.Submit(context.Background(), models.DocTypeEquipment, "edu-1", dto.SubmitSubmissionRequest{}, teacherActor)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionSubmitted, doc.Status)
}

func TestActivityLogSubmitRequiresEntries(t *testing.T) {
	stubs, svc := newSubmissionFixture()
	stubs[models.DocTypeActivity].docs["edu-1"] = &models.SubmissionDocument{
		ID: "doc-1", EducationID: "edu-1", DocType: models.DocTypeActivity,
		Status: models.SubmissionDraft, Payload: json.RawMessage(`{"entries":[]}`),
	}

	_, err := svc.Submit(context.Background(), models.DocTypeActivity, "edu-1", dto.SubmitSubmissionRequest{}, teacherActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	require.Equal(t, models.SubmissionDraft, stubs[models.DocTypeActivity].docs["edu-1"].Status)
	require.Zero(t, stubs[models.DocTypeActivity].upserts)
}

func TestLessonPlanSubmitRequiresTitleAndBody(t *testing.T) {
	stubs, svc := newSubmissionFixture()
	stubs[models.DocTypeLessonPlan].docs["edu-1"] = &models.SubmissionDocument{
		ID: "doc-1", EducationID: "edu-1", DocType: models.DocTypeLessonPlan,
		Status: models.SubmissionDraft, Payload: json.RawMessage(`{"title":"Robotics","body":" "}`),
	}
	ctx := context.Background()

	_, err := svc.Submit(ctx, models.DocTypeLessonPlan, "edu-1", dto.SubmitSubmissionRequest{}, teacherActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	require.Equal(t, models.SubmissionDraft, stubs[models.DocTypeLessonPlan].docs["edu-1"].Status)

	doc, err := svc.Submit(ctx, models.DocTypeLessonPlan, "edu-1", dto.SubmitSubmissionRequest{
		Payload: json.RawMessage(`{"title":"Robotics","body":"Weekly block coding."}`),
	}, teacherActor)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionSubmitted, doc.Status)
}

func TestEvidencePacketSubmitRequiresItems(t *testing.T) {
	stubs, svc := newSubmissionFixture()
	stubs[models.DocTypeEvidence].docs["edu-1"] = &models.SubmissionDocument{
		ID: "doc-1", EducationID: "edu-1", DocType: models.DocTypeEvidence,
		Status: models.SubmissionDraft, Payload: json.RawMessage(`{"items":[]}`),
	}

	_, err := svc.Submit(context.Background(), models.DocTypeEvidence, "edu-1", dto.SubmitSubmissionRequest{}, teacherActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	stored := stubs[models.DocTypeEvidence].docs["edu-1"]
	require.Equal(t, models.SubmissionDraft, stored.Status)
	require.Empty(t, stored.AuditTrail)
	require.Zero(t, stubs[models.DocTypeEvidence].upserts)
}

func TestRejectThenResubmitClearsRejectFields(t *testing.T) {
	stubs, svc := newSubmissionFixture()
	stubs[models.DocTypeActivity].docs["edu-1"] = &models.SubmissionDocument{
		ID: "doc-1", EducationID: "edu-1", DocType: models.DocTypeActivity,
		Status: models.SubmissionSubmitted, Payload: activityPayload(),
	}
	ctx := context.Background()

	rejected, err := svc.Reject(ctx, models.DocTypeActivity, "edu-1", "missing photos", adminActor)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionRejected, rejected.Status)
	require.Equal(t, "missing photos", *rejected.RejectReason)

	resubmitted, err := svc.Submit(ctx, models.DocTypeActivity, "edu-1", dto.SubmitSubmissionRequest{}, teacherActor)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionSubmitted, resubmitted.Status)
	require.Nil(t, resubmitted.RejectReason)
	require.Nil(t, resubmitted.RejectedAt)
	require.Len(t, resubmitted.AuditTrail, 2)
}

func TestRejectRequiresReason(t *testing.T) {
	stubs, svc := newSubmissionFixture()
	stubs[models.DocTypeActivity].docs["edu-1"] = &models.SubmissionDocument{
		ID: "doc-1", EducationID: "edu-1", DocType: models.DocTypeActivity,
		Status: models.SubmissionSubmitted, Payload: json.RawMessage(`{}`),
	}

	_, err := svc.Reject(context.Background(), models.DocTypeActivity, "edu-1", "  ", adminActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	require.Equal(t, models.SubmissionSubmitted, stubs[models.DocTypeActivity].docs["edu-1"].Status)
}

func TestApproveRequiresSubmitted(t *testing.T) {
	stubs, svc := newSubmissionFixture()
	stubs[models.DocTypeLessonPlan].docs["edu-1"] = &models.SubmissionDocument{
		ID: "doc-1", EducationID: "edu-1", DocType: models.DocTypeLessonPlan,
		Status: models.SubmissionDraft, Payload: json.RawMessage(`{}`),
	}

	_, err := svc.Approve(context.Background(), models.DocTypeLessonPlan, "edu-1", adminActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTransition.Code))
}

func TestUpdateContentBlockedWhileBorrowed(t *testing.T) {
	stubs, svc := newSubmissionFixture()
	stubs[models.DocTypeEquipment].docs["edu-1"] = &models.SubmissionDocument{
		ID: "doc-1", EducationID: "edu-1", DocType: models.DocTypeEquipment,
		Status: models.SubmissionSubmitted, Payload: equipmentPayload(models.RentalBorrowed),
	}

	_, err := svc.UpdateContent(context.Background(), models.DocTypeEquipment, "edu-1",
		dto.UpdateSubmissionRequest{Payload: json.RawMessage(`{"items":[]}`)}, teacherActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrReadOnly.Code))
}

func TestConfirmReturnWhileBorrowed(t *testing.T) {
	stubs, svc := newSubmissionFixture()
	stubs[models.DocTypeEquipment].docs["edu-1"] = &models.SubmissionDocument{
		ID: "doc-1", EducationID: "edu-1", DocType: models.DocTypeEquipment,
		Status: models.SubmissionSubmitted, Payload: equipmentPayload(models.RentalBorrowed),
	}

	doc, err := svc.ConfirmReturn(context.Background(), "edu-1", dto.ConfirmReturnRequest{
		ConfirmedBy: "Kim",
		Condition:   "good",
	}, teacherActor)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionSubmitted, doc.Status)

	var payload models.EquipmentConfirmationPayload
	require.NoError(t, json.Unmarshal(doc.Payload, &payload))
	require.Equal(t, models.RentalReturned, payload.RentalState)
	require.Equal(t, "Kim", payload.ReturnConfirmedBy)
	require.NotNil(t, payload.ReturnConfirmedAt)
}

func TestConfirmReturnRequiresBorrowedState(t *testing.T) {
	stubs, svc := newSubmissionFixture()
	stubs[models.DocTypeEquipment].docs["edu-1"] = &models.SubmissionDocument{
		ID: "doc-1", EducationID: "edu-1", DocType: models.DocTypeEquipment,
		Status: models.SubmissionSubmitted, Payload: equipmentPayload(models.RentalReturned),
	}

	_, err := svc.ConfirmReturn(context.Background(), "edu-1", dto.ConfirmReturnRequest{ConfirmedBy: "Kim"}, teacherActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrConflict.Code))
}

func TestUnsupportedDocumentType(t *testing.T) {
	_, svc := newSubmissionFixture()
	_, err := svc.Get(context.Background(), models.DocTypeAttendance, "edu-1")
	require.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}
