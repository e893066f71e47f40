package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/edu-docflow-api/pkg/errors"
	"github.com/noah-isme/edu-docflow-api/pkg/response"
	"github.com/noah-isme/edu-docflow-api/pkg/storage"
)

const maxSignatureImageSize = 2 << 20 // 2 MiB

// SignatureHandler manages signature image uploads and signed downloads.
type SignatureHandler struct {
	store  *storage.SignatureStore
	signer *storage.SignedURLSigner
}

// NewSignatureHandler creates a new handler.
func NewSignatureHandler(store *storage.SignatureStore, signer *storage.SignedURLSigner) *SignatureHandler {
	return &SignatureHandler{store: store, signer: signer}
}

// Upload godoc
// @Summary Upload signature image
// @Description Stores a signature image and returns the opaque reference to use in signing requests
// @Tags Signatures
// @Accept multipart/form-data
// @Produce json
// @Param educationId path string true "Education ID"
// @Param file formData file true "Signature image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /educations/{educationId}/attendance/signature-image [post]
func (h *SignatureHandler) Upload(c *gin.Context) {
	if h.store == nil || h.signer == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "signature storage not configured"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "signature image file required"))
		return
	}
	if fileHeader.Size > maxSignatureImageSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "signature image exceeds 2MB"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, appErrors.ErrInternal.Message))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSignatureImageSize))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, appErrors.ErrInternal.Message))
		return
	}

	educationID := c.Param("educationId")
	ref, err := h.store.Save(educationID, fileHeader.Filename, data)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, appErrors.ErrInternal.Message))
		return
	}

	token, expiresAt, err := h.signer.Generate(educationID, ref)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, appErrors.ErrInternal.Message))
		return
	}

	response.JSON(c, http.StatusCreated, gin.H{
		"signatureRef": ref,
		"downloadUrl":  "/signatures/" + token,
		"expiresAt":    expiresAt,
	}, nil)
}

// Download godoc
// @Summary Download signature image
// @Description Streams a signature image referenced by a signed token
// @Tags Signatures
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /signatures/{token} [get]
func (h *SignatureHandler) Download(c *gin.Context) {
	if h.store == nil || h.signer == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "signature storage not configured"))
		return
	}

	_, ref, _, err := h.signer.Parse(c.Param("token"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, http.StatusUnauthorized, "invalid or expired download token"))
		return
	}

	file, err := h.store.Open(ref)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "signature image not found"))
		return
	}
	defer file.Close()

	c.Status(http.StatusOK)
	c.Header("Content-Type", "application/octet-stream")
	_, _ = io.Copy(c.Writer, file)
}
