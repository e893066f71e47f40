package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-docflow-api/internal/dto"
	"github.com/noah-isme/edu-docflow-api/internal/service"
	appErrors "github.com/noah-isme/edu-docflow-api/pkg/errors"
	"github.com/noah-isme/edu-docflow-api/pkg/response"
)

// BulkHandler serves the admin bulk review endpoint.
type BulkHandler struct {
	service *service.BulkService
}

// NewBulkHandler creates a new handler.
func NewBulkHandler(svc *service.BulkService) *BulkHandler {
	return &BulkHandler{service: svc}
}

// Review godoc
// @Summary Bulk review documents
// @Description Approves or rejects every eligible core document across the given educations
// @Tags Bulk
// @Accept json
// @Produce json
// @Param payload body dto.BulkReviewRequest true "Bulk review request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /bulk-review [post]
func (h *BulkHandler) Review(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.BulkReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk review payload"))
		return
	}

	result, err := h.service.ReviewMany(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ReviewEducation godoc
// @Summary Review all documents of one education
// @Description Approves or rejects every eligible core document for a single education
// @Tags Bulk
// @Accept json
// @Produce json
// @Param educationId path string true "Education ID"
// @Param payload body dto.ReviewRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /educations/{educationId}/documents/bulk-review [post]
func (h *BulkHandler) ReviewEducation(c *gin.Context) {
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

	result, err := h.service.ApproveOrRejectAllDocuments(c.Request.Context(), c.Param("educationId"), req.Action, req.Reason, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
