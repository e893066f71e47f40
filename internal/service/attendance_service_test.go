package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-docflow-api/internal/dto"
	"github.com/noah-isme/edu-docflow-api/internal/models"
	appErrors "github.com/noah-isme/edu-docflow-api/pkg/errors"
)

type attendanceStoreStub struct {
	sheets  map[string]*models.AttendanceSheet
	upserts int
}

func newAttendanceStoreStub() *attendanceStoreStub {
	return &attendanceStoreStub{sheets: make(map[string]*models.AttendanceSheet)}
}

func (s *attendanceStoreStub) GetAll(ctx context.Context) ([]models.AttendanceSheet, error) {
	result := make([]models.AttendanceSheet, 0, len(s.sheets))
	for _, sheet := range s.sheets {
		result = append(result, *sheet)
	}
	return result, nil
}

func (s *attendanceStoreStub) GetByID(ctx context.Context, id string) (*models.AttendanceSheet, error) {
	for _, sheet := range s.sheets {
		if sheet.ID == id {
			copy := *sheet
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *attendanceStoreStub) GetByEducationID(ctx context.Context, educationID string) (*models.AttendanceSheet, error) {
	if sheet, ok := s.sheets[educationID]; ok {
		copy := *sheet
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *attendanceStoreStub) Upsert(ctx context.Context, sheet *models.AttendanceSheet) error {
	s.upserts++
	sheet.UpdatedAt = time.Now().UTC()
	copy := *sheet
	s.sheets[sheet.EducationID] = &copy
	return nil
}

func (s *attendanceStoreStub) GetOrCreate(ctx context.Context, educationID string) (*models.AttendanceSheet, error) {
	if sheet, ok := s.sheets[educationID]; ok {
		copy := *sheet
		return &copy, nil
	}
	sheet := &models.AttendanceSheet{
		ID:          "sheet-" + educationID,
		EducationID: educationID,
		Status:      models.AttendanceTeacherDraft,
		Students:    models.StudentList{},
		Sessions:    models.SessionList{},
		AuditTrail:  models.AuditTrail{},
	}
	s.sheets[educationID] = sheet
	copy := *sheet
	return &copy, nil
}

type notifierStub struct {
	events []models.DocumentUpdatedEvent
}

func (n *notifierStub) DocumentUpdated(educationID string, docType models.DocumentType) {
	n.events = append(n.events, models.DocumentUpdatedEvent{EducationID: educationID, DocumentType: docType})
}

func validDraftSheet(educationID string) *models.AttendanceSheet {
	return &models.AttendanceSheet{
		ID:          "sheet-" + educationID,
		EducationID: educationID,
		Status:      models.AttendanceTeacherDraft,
		TeacherInfo: models.TeacherInfo{Grade: "3", ClassName: "3-A", TeacherName: "Kim"},
		Students:    models.StudentList{{ID: "stu-1", Name: "Lee"}},
		Sessions:    models.SessionList{},
		AuditTrail:  models.AuditTrail{},
	}
}

var (
	teacherActor    = models.Actor{Role: models.RoleTeacher, ID: "teacher-1", Name: "Kim"}
	instructorActor = models.Actor{Role: models.RoleInstructor, ID: "inst-1", Name: "Park"}
	adminActor      = models.Actor{Role: models.RoleAdmin, ID: "admin-1", Name: "Choi"}
)

func TestMarkAsReadyTransitions(t *testing.T) {
	store := newAttendanceStoreStub()
	store.sheets["edu-1"] = validDraftSheet("edu-1")
	notifier := &notifierStub{}
	svc := NewAttendanceService(store, nil, nil, WithAttendanceNotifier(notifier))

	sheet, err := svc.MarkAsReady(context.Background(), "edu-1", teacherActor)
	require.NoError(t, err)
	require.Equal(t, models.AttendanceTeacherReady, sheet.Status)
	require.Len(t, sheet.AuditTrail, 1)
	require.Equal(t, string(models.AttendanceTeacherDraft), sheet.AuditTrail[0].FromState)
	require.Equal(t, string(models.AttendanceTeacherReady), sheet.AuditTrail[0].ToState)
	require.Len(t, notifier.events, 1)
}

func TestMarkAsReadyIdempotent(t *testing.T) {
	store := newAttendanceStoreStub()
	store.sheets["edu-1"] = validDraftSheet("edu-1")
	svc := NewAttendanceService(store, nil, nil)

	_, err := svc.MarkAsReady(context.Background(), "edu-1", teacherActor)
	require.NoError(t, err)
	again, err := svc.MarkAsReady(context.Background(), "edu-1", teacherActor)
	require.NoError(t, err)
	require.Equal(t, models.AttendanceTeacherReady, again.Status)
	require.Len(t, again.AuditTrail, 1)
	require.Equal(t, 1, store.upserts)
}

func TestMarkAsReadyGuardLeavesSheetUntouched(t *testing.T) {
	store := newAttendanceStoreStub()
	sheet := validDraftSheet("edu-1")
	sheet.Students = models.StudentList{}
	store.sheets["edu-1"] = sheet
	svc := NewAttendanceService(store, nil, nil)

	_, err := svc.MarkAsReady(context.Background(), "edu-1", teacherActor)
	require.Error(t, err)
	require.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	stored := store.sheets["edu-1"]
	require.Equal(t, models.AttendanceTeacherDraft, stored.Status)
	require.Empty(t, stored.AuditTrail)
	require.Zero(t, store.upserts)
}

func TestMarkAsReadyWrongStateIsInvalidTransition(t *testing.T) {
	store := newAttendanceStoreStub()
	sheet := validDraftSheet("edu-1")
	sheet.Status = models.AttendanceSubmittedToAdmin
	store.sheets["edu-1"] = sheet
	svc := NewAttendanceService(store, nil, nil)

	_, err := svc.MarkAsReady(context.Background(), "edu-1", teacherActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTransition.Code))
}

func TestFullAttendanceWorkflow(t *testing.T) {
	store := newAttendanceStoreStub()
	store.sheets["edu-1"] = validDraftSheet("edu-1")
	svc := NewAttendanceService(store, nil, nil)
	ctx := context.Background()

	_, err := svc.MarkAsReady(ctx, "edu-1", teacherActor)
	require.NoError(t, err)

	_, err = svc.RequestFromTeacher(ctx, "edu-1", instructorActor)
	require.NoError(t, err)

	sessions := models.SessionList{{
		ID:         "sess-1",
		Date:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Attendance: map[string]int{"stu-1": 1},
	}}
	_, err = svc.ReturnToTeacher(ctx, "edu-1", dto.ReturnSheetRequest{Sessions: sessions}, instructorActor)
	require.NoError(t, err)

	signed, err := svc.AddTeacherSignature(ctx, "edu-1", dto.SignatureRequest{
		Method:       "TYPED",
		SignatureRef: "Kim",
		Comment:      "counts verified",
	}, teacherActor)
	require.NoError(t, err)
	require.Equal(t, models.AttendanceFinalSentToInstructor, signed.Status)
	require.True(t, signed.TeacherSignature.Present())

	_, err = svc.SubmitToAdmin(ctx, "edu-1", instructorActor)
	require.NoError(t, err)

	approved, err := svc.Review(ctx, "edu-1", dto.ReviewRequest{Action: "APPROVE"}, adminActor)
	require.NoError(t, err)
	require.Equal(t, models.AttendanceApproved, approved.Status)
	require.NotNil(t, approved.AdminReview)
	require.Equal(t, models.AdminReviewApproved, approved.AdminReview.Status)

	require.Len(t, approved.AuditTrail, 6)
	for i, entry := range approved.AuditTrail[1:] {
		require.Equal(t, approved.AuditTrail[i].ToState, entry.FromState)
	}
}

func TestReviewRejectRequiresReason(t *testing.T) {
	store := newAttendanceStoreStub()
	sheet := validDraftSheet("edu-1")
	sheet.Status = models.AttendanceSubmittedToAdmin
	store.sheets["edu-1"] = sheet
	svc := NewAttendanceService(store, nil, nil)

	_, err := svc.Review(context.Background(), "edu-1", dto.ReviewRequest{Action: "REJECT"}, adminActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	require.Equal(t, models.AttendanceSubmittedToAdmin, store.sheets["edu-1"].Status)

	rejected, err := svc.Review(context.Background(), "edu-1", dto.ReviewRequest{Action: "REJECT", Reason: "incomplete counts"}, adminActor)
	require.NoError(t, err)
	require.Equal(t, models.AttendanceRejected, rejected.Status)
	require.Equal(t, "incomplete counts", *rejected.RejectReason)
}

func TestUpdateContentReadOnlyInInstructorCustody(t *testing.T) {
	store := newAttendanceStoreStub()
	sheet := validDraftSheet("edu-1")
	sheet.Status = models.AttendanceInstructorRequested
	store.sheets["edu-1"] = sheet
	svc := NewAttendanceService(store, nil, nil)

	students := models.StudentList{{ID: "stu-2", Name: "Han"}}
	_, err := svc.UpdateContent(context.Background(), "edu-1", dto.UpdateAttendanceSheetRequest{Students: &students}, teacherActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrReadOnly.Code))
}

func TestUpdateContentReadOnlyWhileReturnedForSigning(t *testing.T) {
	store := newAttendanceStoreStub()
	sheet := validDraftSheet("edu-1")
	sheet.Status = models.AttendanceReturnedToTeacher
	sheet.Sessions = models.SessionList{{ID: "ses-1", Attendance: map[string]int{"stu-1": 1}}}
	store.sheets["edu-1"] = sheet
	svc := NewAttendanceService(store, nil, nil)

	empty := models.SessionList{}
	_, err := svc.UpdateContent(context.Background(), "edu-1", dto.UpdateAttendanceSheetRequest{Sessions: &empty}, teacherActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrReadOnly.Code))

	// The counts the instructor recorded must survive until signing.
	stored := store.sheets["edu-1"]
	require.Len(t, stored.Sessions, 1)
	require.Equal(t, 1, stored.Sessions[0].Attendance["stu-1"])
}

func TestCompletionReportBoundary(t *testing.T) {
	store := newAttendanceStoreStub()
	sheet := validDraftSheet("edu-1")
	sheet.Students = models.StudentList{
		{ID: "stu-1", Name: "Lee"},
		{ID: "stu-2", Name: "Han"},
	}
	sessions := make(models.SessionList, 5)
	for i := range sessions {
		attendance := map[string]int{}
		if i < 4 {
			attendance["stu-1"] = 1
		}
		if i < 3 {
			attendance["stu-2"] = 1
		}
		sessions[i] = models.Session{ID: "sess", Attendance: attendance}
	}
	sheet.Sessions = sessions
	store.sheets["edu-1"] = sheet
	svc := NewAttendanceService(store, nil, nil)

	report, err := svc.CompletionReport(context.Background(), "edu-1")
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	require.InDelta(t, 0.8, report.Rows[0].CompletionRate, 1e-9)
	require.True(t, report.Rows[0].Completed)
	require.InDelta(t, 0.6, report.Rows[1].CompletionRate, 1e-9)
	require.False(t, report.Rows[1].Completed)
}

func TestTransitionRequiresDeclaredRole(t *testing.T) {
	store := newAttendanceStoreStub()
	store.sheets["edu-1"] = validDraftSheet("edu-1")
	svc := NewAttendanceService(store, nil, nil)

	_, err := svc.MarkAsReady(context.Background(), "edu-1", instructorActor)
	require.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))
}
