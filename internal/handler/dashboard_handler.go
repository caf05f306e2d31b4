package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gramseva/office-portal-api/internal/service"
	"github.com/gramseva/office-portal-api/pkg/response"
)

// DashboardHandler exposes the admin summary endpoint.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Summary godoc
// @Summary Admin dashboard summary
// @Description Aggregate user and application totals for the admin landing page
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, cached, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, "", map[string]interface{}{"cache": cached})
}
