package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gramseva/office-portal-api/internal/service"
	appErrors "github.com/gramseva/office-portal-api/pkg/errors"
	"github.com/gramseva/office-portal-api/pkg/response"
)

// ContactHandler records enquiries from the public contact form.
type ContactHandler struct {
	service *service.ContactService
}

// NewContactHandler creates a new handler.
func NewContactHandler(svc *service.ContactService) *ContactHandler {
	return &ContactHandler{service: svc}
}

// Create godoc
// @Summary Submit enquiry
// @Description Record a message from the public contact form
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body service.CreateContactRequest true "Contact payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /contact [post]
func (h *ContactHandler) Create(c *gin.Context) {
	var req service.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid contact payload"))
		return
	}

	message, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, message, "message received")
}

// List godoc
// @Summary List enquiries
// @Description List contact messages for the admin, newest first
// @Tags Contact
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /contact [get]
func (h *ContactHandler) List(c *gin.Context) {
	messages, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, "")
}
