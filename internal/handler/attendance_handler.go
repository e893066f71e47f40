package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-docflow-api/internal/dto"
	"github.com/noah-isme/edu-docflow-api/internal/models"
	appErrors "github.com/noah-isme/edu-docflow-api/pkg/errors"
	"github.com/noah-isme/edu-docflow-api/pkg/response"
)

// attendanceService captures the operations the attendance endpoints need.
type attendanceService interface {
	List(ctx context.Context) ([]models.AttendanceSheet, error)
	Get(ctx context.Context, educationID string) (*models.AttendanceSheet, error)
	UpdateContent(ctx context.Context, educationID string, req dto.UpdateAttendanceSheetRequest, actor models.Actor) (*models.AttendanceSheet, error)
	MarkAsReady(ctx context.Context, educationID string, actor models.Actor) (*models.AttendanceSheet, error)
	AddTeacherSignature(ctx context.Context, educationID string, req dto.SignatureRequest, actor models.Actor) (*models.AttendanceSheet, error)
	RequestFromTeacher(ctx context.Context, educationID string, actor models.Actor) (*models.AttendanceSheet, error)
	ReturnToTeacher(ctx context.Context, educationID string, req dto.ReturnSheetRequest, actor models.Actor) (*models.AttendanceSheet, error)
	SubmitToAdmin(ctx context.Context, educationID string, actor models.Actor) (*models.AttendanceSheet, error)
	Review(ctx context.Context, educationID string, req dto.ReviewRequest, actor models.Actor) (*models.AttendanceSheet, error)
	CompletionReport(ctx context.Context, educationID string) (*dto.CompletionReport, error)
}

// AttendanceHandler wires HTTP endpoints to the attendance sheet workflow.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// List godoc
// @Summary List attendance sheets
// @Description Returns every attendance sheet in the store
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance-sheets [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	sheets, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheets, nil)
}

// Get godoc
// @Summary Get attendance sheet
// @Description Returns the attendance sheet for an education, creating a draft when absent
// @Tags Attendance
// @Produce json
// @Param educationId path string true "Education ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /educations/{educationId}/attendance [get]
func (h *AttendanceHandler) Get(c *gin.Context) {
	sheet, err := h.service.Get(c.Request.Context(), c.Param("educationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Update godoc
// @Summary Update attendance sheet content
// @Description Updates teacher-editable fields while the sheet is in teacher custody
// @Tags Attendance
// @Accept json
// @Produce json
// @Param educationId path string true "Education ID"
// @Param payload body dto.UpdateAttendanceSheetRequest true "Sheet content"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /educations/{educationId}/attendance [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateAttendanceSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sheet payload"))
		return
	}

	sheet, err := h.service.UpdateContent(c.Request.Context(), c.Param("educationId"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// MarkAsReady godoc
// @Summary Mark sheet ready
// @Description Moves a draft sheet to TEACHER_READY once required fields are filled
// @Tags Attendance
// @Produce json
// @Param educationId path string true "Education ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /educations/{educationId}/attendance/ready [post]
func (h *AttendanceHandler) MarkAsReady(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sheet, err := h.service.MarkAsReady(c.Request.Context(), c.Param("educationId"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Sign godoc
// @Summary Attach teacher signature
// @Description Signs a returned sheet and sends the final version to the instructor
// @Tags Attendance
// @Accept json
// @Produce json
// @Param educationId path string true "Education ID"
// @Param payload body dto.SignatureRequest true "Signature payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /educations/{educationId}/attendance/signature [post]
func (h *AttendanceHandler) Sign(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid signature payload"))
		return
	}

	sheet, err := h.service.AddTeacherSignature(c.Request.Context(), c.Param("educationId"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Request godoc
// @Summary Request sheet from teacher
// @Description Instructor pulls a TEACHER_READY sheet into their custody
// @Tags Attendance
// @Produce json
// @Param educationId path string true "Education ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /educations/{educationId}/attendance/request [post]
func (h *AttendanceHandler) Request(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sheet, err := h.service.RequestFromTeacher(c.Request.Context(), c.Param("educationId"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Return godoc
// @Summary Return sheet to teacher
// @Description Instructor fills session counts and hands the sheet back for signing
// @Tags Attendance
// @Accept json
// @Produce json
// @Param educationId path string true "Education ID"
// @Param payload body dto.ReturnSheetRequest true "Session counts"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /educations/{educationId}/attendance/return [post]
func (h *AttendanceHandler) Return(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ReturnSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid return payload"))
		return
	}

	sheet, err := h.service.ReturnToTeacher(c.Request.Context(), c.Param("educationId"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Submit godoc
// @Summary Submit sheet to admin
// @Description Instructor forwards a signed sheet for administrative review
// @Tags Attendance
// @Produce json
// @Param educationId path string true "Education ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /educations/{educationId}/attendance/submit [post]
func (h *AttendanceHandler) Submit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sheet, err := h.service.SubmitToAdmin(c.Request.Context(), c.Param("educationId"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Review godoc
// @Summary Review attendance sheet
// @Description Admin approves or rejects a submitted sheet
// @Tags Attendance
// @Accept json
// @Produce json
// @Param educationId path string true "Education ID"
// @Param payload body dto.ReviewRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /educations/{educationId}/attendance/review [post]
func (h *AttendanceHandler) Review(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	sheet, err := h.service.Review(c.Request.Context(), c.Param("educationId"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Completion godoc
// @Summary Attendance completion report
// @Description Per-student completion ratios against the planned session count
// @Tags Attendance
// @Produce json
// @Param educationId path string true "Education ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /educations/{educationId}/attendance/completion [get]
func (h *AttendanceHandler) Completion(c *gin.Context) {
	report, err := h.service.CompletionReport(c.Request.Context(), c.Param("educationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
