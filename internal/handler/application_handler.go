package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gramseva/office-portal-api/internal/models"
	"github.com/gramseva/office-portal-api/internal/service"
	appErrors "github.com/gramseva/office-portal-api/pkg/errors"
	"github.com/gramseva/office-portal-api/pkg/response"
)

// ApplicationHandler wires HTTP endpoints to the application service.
type ApplicationHandler struct {
	service *service.ApplicationService
}

// NewApplicationHandler creates a new handler.
func NewApplicationHandler(svc *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: svc}
}

// Create godoc
// @Summary Submit application
// @Description Submit a new office application; it always starts Pending
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req service.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}

	app, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, app, "application submitted")
}

// List godoc
// @Summary List applications
// @Description List applications, optionally for one citizen, newest first by default
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Filter by submitting user"
// @Param sort query string false "Sort by submission time" Enums(asc, desc)
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	filter := models.ApplicationFilter{
		UserID:    c.Query("userId"),
		SortOrder: c.Query("sort"),
	}

	apps, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, apps, "", map[string]interface{}{"count": len(apps)})
}

// UpdateStatus godoc
// @Summary Update application status
// @Description Move an application to Pending, Approved or Rejected
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.UpdateApplicationStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications [put]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	app, err := h.service.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, app, "application status updated")
}

// Export godoc
// @Summary Export application register
// @Description Download the full register as CSV or PDF
// @Tags Applications
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "Export format" Enums(csv, pdf)
// @Success 200 {file} byte
// @Failure 400 {object} response.Envelope
// @Router /applications/export [get]
func (h *ApplicationHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	payload, contentType, err := h.service.ExportRegister(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("applications-%s.%s", time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
