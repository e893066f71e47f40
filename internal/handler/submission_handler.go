package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-docflow-api/internal/dto"
	"github.com/noah-isme/edu-docflow-api/internal/models"
	"github.com/noah-isme/edu-docflow-api/internal/service"
	appErrors "github.com/noah-isme/edu-docflow-api/pkg/errors"
	"github.com/noah-isme/edu-docflow-api/pkg/response"
)

// docTypeSlugs maps URL path segments to document types. The raw enum value
// (upper snake case) is also accepted.
var docTypeSlugs = map[string]models.DocumentType{
	"activity-log": models.DocTypeActivity,
	"equipment":    models.DocTypeEquipment,
	"lesson-plan":  models.DocTypeLessonPlan,
	"evidence":     models.DocTypeEvidence,
}

func parseDocType(raw string) (models.DocumentType, error) {
	if t, ok := docTypeSlugs[strings.ToLower(raw)]; ok {
		return t, nil
	}
	t := models.DocumentType(strings.ToUpper(raw))
	if t.Simple() {
		return t, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "unknown document type: "+raw)
}

// SubmissionHandler wires HTTP endpoints to the simple document lifecycle.
type SubmissionHandler struct {
	service *service.SubmissionService
}

// NewSubmissionHandler creates a new handler.
func NewSubmissionHandler(svc *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{service: svc}
}

// Get godoc
// @Summary Get submission document
// @Description Returns the document for an education, creating a draft when absent
// @Tags Documents
// @Produce json
// @Param educationId path string true "Education ID"
// @Param type path string true "Document type"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /educations/{educationId}/documents/{type} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	docType, err := parseDocType(c.Param("type"))
	if err != nil {
		response.Error(c, err)
		return
	}

	doc, err := h.service.Get(c.Request.Context(), docType, c.Param("educationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Update godoc
// @Summary Update submission document
// @Description Replaces the document payload while it is editable
// @Tags Documents
// @Accept json
// @Produce json
// @Param educationId path string true "Education ID"
// @Param type path string true "Document type"
// @Param payload body dto.UpdateSubmissionRequest true "Document payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /educations/{educationId}/documents/{type} [put]
func (h *SubmissionHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	docType, err := parseDocType(c.Param("type"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid document payload"))
		return
	}

	doc, err := h.service.UpdateContent(c.Request.Context(), docType, c.Param("educationId"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Submit godoc
// @Summary Submit document
// @Description Moves a draft or rejected document into SUBMITTED
// @Tags Documents
// @Accept json
// @Produce json
// @Param educationId path string true "Education ID"
// @Param type path string true "Document type"
// @Param payload body dto.SubmitSubmissionRequest false "Optional final payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /educations/{educationId}/documents/{type}/submit [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	docType, err := parseDocType(c.Param("type"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.SubmitSubmissionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submit payload"))
			return
		}
	}

	doc, err := h.service.Submit(c.Request.Context(), docType, c.Param("educationId"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Approve godoc
// @Summary Approve document
// @Description Admin approves a submitted document
// @Tags Documents
// @Produce json
// @Param educationId path string true "Education ID"
// @Param type path string true "Document type"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /educations/{educationId}/documents/{type}/approve [post]
func (h *SubmissionHandler) Approve(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	docType, err := parseDocType(c.Param("type"))
	if err != nil {
		response.Error(c, err)
		return
	}

	doc, err := h.service.Approve(c.Request.Context(), docType, c.Param("educationId"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Reject godoc
// @Summary Reject document
// @Description Admin rejects a submitted document with a reason
// @Tags Documents
// @Accept json
// @Produce json
// @Param educationId path string true "Education ID"
// @Param type path string true "Document type"
// @Param payload body dto.RejectRequest true "Reject reason"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /educations/{educationId}/documents/{type}/reject [post]
func (h *SubmissionHandler) Reject(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	docType, err := parseDocType(c.Param("type"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "reject reason required"))
		return
	}

	doc, err := h.service.Reject(c.Request.Context(), docType, c.Param("educationId"), req.Reason, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// ConfirmReturn godoc
// @Summary Confirm equipment return
// @Description Records the physical return of borrowed equipment
// @Tags Documents
// @Accept json
// @Produce json
// @Param educationId path string true "Education ID"
// @Param payload body dto.ConfirmReturnRequest true "Return confirmation"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /educations/{educationId}/documents/equipment/return [post]
func (h *SubmissionHandler) ConfirmReturn(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ConfirmReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid return confirmation"))
		return
	}

	doc, err := h.service.ConfirmReturn(c.Request.Context(), c.Param("educationId"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}
