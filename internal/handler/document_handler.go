package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gramseva/office-portal-api/internal/service"
	appErrors "github.com/gramseva/office-portal-api/pkg/errors"
	"github.com/gramseva/office-portal-api/pkg/response"
)

// DocumentHandler wires document upload and download endpoints.
type DocumentHandler struct {
	service *service.DocumentService
}

// NewDocumentHandler creates a new handler.
func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// Upload godoc
// @Summary Attach supporting document
// @Description Upload a document for an application and receive its signed URL
// @Tags Applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param applicationId formData string true "Application ID"
// @Param file formData file true "Document file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	applicationID := c.PostForm("applicationId")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file"))
		return
	}
	defer file.Close() //nolint:errcheck

	upload, err := h.service.Upload(c.Request.Context(), applicationID, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, upload, "document attached")
}

// Download godoc
// @Summary Download document
// @Description Stream a document referenced by a signed token
// @Tags Applications
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} byte
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	file, filename, err := h.service.Download(c.Request.Context(), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.FileAttachment(file.Name(), filename)
}
