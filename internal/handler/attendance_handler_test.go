package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-docflow-api/internal/dto"
	"github.com/noah-isme/edu-docflow-api/internal/middleware"
	"github.com/noah-isme/edu-docflow-api/internal/models"
	appErrors "github.com/noah-isme/edu-docflow-api/pkg/errors"
)

type attendanceServiceMock struct {
	sheet     *models.AttendanceSheet
	readyErr  error
	reviewErr error
}

func (m *attendanceServiceMock) List(ctx context.Context) ([]models.AttendanceSheet, error) {
	return nil, nil
}

func (m *attendanceServiceMock) Get(ctx context.Context, educationID string) (*models.AttendanceSheet, error) {
	return m.sheet, nil
}

func (m *attendanceServiceMock) UpdateContent(ctx context.Context, educationID string, req dto.UpdateAttendanceSheetRequest, actor models.Actor) (*models.AttendanceSheet, error) {
	return m.sheet, nil
}

func (m *attendanceServiceMock) MarkAsReady(ctx context.Context, educationID string, actor models.Actor) (*models.AttendanceSheet, error) {
	if m.readyErr != nil {
		return nil, m.readyErr
	}
	return m.sheet, nil
}

func (m *attendanceServiceMock) AddTeacherSignature(ctx context.Context, educationID string, req dto.SignatureRequest, actor models.Actor) (*models.AttendanceSheet, error) {
	return m.sheet, nil
}

func (m *attendanceServiceMock) RequestFromTeacher(ctx context.Context, educationID string, actor models.Actor) (*models.AttendanceSheet, error) {
	return m.sheet, nil
}

func (m *attendanceServiceMock) ReturnToTeacher(ctx context.Context, educationID string, req dto.ReturnSheetRequest, actor models.Actor) (*models.AttendanceSheet, error) {
	return m.sheet, nil
}

func (m *attendanceServiceMock) SubmitToAdmin(ctx context.Context, educationID string, actor models.Actor) (*models.AttendanceSheet, error) {
	return m.sheet, nil
}

func (m *attendanceServiceMock) Review(ctx context.Context, educationID string, req dto.ReviewRequest, actor models.Actor) (*models.AttendanceSheet, error) {
	if m.reviewErr != nil {
		return nil, m.reviewErr
	}
	return m.sheet, nil
}

func (m *attendanceServiceMock) CompletionReport(ctx context.Context, educationID string) (*dto.CompletionReport, error) {
	return &dto.CompletionReport{EducationID: educationID}, nil
}

func testContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "educationId", Value: "edu-1"}}
	return c, w
}

func TestAttendanceHandlerMarkAsReadyRequiresAuth(t *testing.T) {
	handler := NewAttendanceHandler(&attendanceServiceMock{})
	c, w := testContext(t, http.MethodPost, "/educations/edu-1/attendance/ready", "")

	handler.MarkAsReady(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAttendanceHandlerMarkAsReadyGuardFailure(t *testing.T) {
	handler := NewAttendanceHandler(&attendanceServiceMock{
		readyErr: appErrors.Clone(appErrors.ErrValidation, "class name is required"),
	})
	c, w := testContext(t, http.MethodPost, "/educations/edu-1/attendance/ready", "")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher})

	handler.MarkAsReady(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerReviewRejectsBadPayload(t *testing.T) {
	handler := NewAttendanceHandler(&attendanceServiceMock{})
	c, w := testContext(t, http.MethodPost, "/educations/edu-1/attendance/review", "{not-json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin})

	handler.Review(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerGetReturnsSheet(t *testing.T) {
	handler := NewAttendanceHandler(&attendanceServiceMock{
		sheet: &models.AttendanceSheet{EducationID: "edu-1", Status: models.AttendanceTeacherDraft},
	})
	c, w := testContext(t, http.MethodGet, "/educations/edu-1/attendance", "")

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "edu-1")
}
