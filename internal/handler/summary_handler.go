package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-docflow-api/internal/service"
	"github.com/noah-isme/edu-docflow-api/pkg/response"
)

// SummaryHandler serves cross-document rollup views.
type SummaryHandler struct {
	service *service.SummaryService
}

// NewSummaryHandler creates a new handler.
func NewSummaryHandler(svc *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{service: svc}
}

// DocSummary godoc
// @Summary Education document summary
// @Description Per-type status, counts, and rollup status for one education
// @Tags Summary
// @Produce json
// @Param educationId path string true "Education ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /educations/{educationId}/summary [get]
func (h *SummaryHandler) DocSummary(c *gin.Context) {
	summary, err := h.service.BuildEducationDocSummary(c.Request.Context(), c.Param("educationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// SubmissionGroup godoc
// @Summary Education submission group
// @Description Admin review view over the three core document types
// @Tags Summary
// @Produce json
// @Param educationId path string true "Education ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /educations/{educationId}/submission-group [get]
func (h *SummaryHandler) SubmissionGroup(c *gin.Context) {
	group, err := h.service.BuildEducationSubmissionGroup(c.Request.Context(), c.Param("educationId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, group, nil)
}
