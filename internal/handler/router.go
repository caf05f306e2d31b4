package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/gramseva/office-portal-api/internal/middleware"
	"github.com/gramseva/office-portal-api/internal/service"
)

// Handlers groups every HTTP handler for route registration.
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Applications  *ApplicationHandler
	Notifications *NotificationHandler
	Documents     *DocumentHandler
	Dashboard     *DashboardHandler
	Contact       *ContactHandler
	Metrics       *MetricsHandler
}

// RegisterRoutes mounts the portal API under the configured prefix.
func RegisterRoutes(r *gin.Engine, prefix string, authService *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	// Public surface: account creation, login and the read-only feeds.
	api.POST("/signup", h.Auth.Signup)
	api.POST("/login", h.Auth.Login)
	api.POST("/admin-login", h.Auth.AdminLogin)
	api.GET("/notifications", h.Notifications.List)
	api.POST("/contact", h.Contact.Create)
	api.GET("/documents/download", h.Documents.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(authService))
	authed.GET("/me", h.Auth.Me)
	authed.POST("/applications", h.Applications.Create)
	authed.GET("/applications", h.Applications.List)
	authed.POST("/documents", h.Documents.Upload)

	admin := api.Group("")
	admin.Use(middleware.JWT(authService), middleware.RequireAdmin())
	admin.GET("/users-pending", h.Users.List)
	admin.PATCH("/approve", h.Users.Approve)
	admin.PUT("/applications", h.Applications.UpdateStatus)
	admin.GET("/applications/export", h.Applications.Export)
	admin.POST("/notifications", h.Notifications.Create)
	admin.DELETE("/notifications", h.Notifications.Delete)
	admin.GET("/notifications/:id/delivery", h.Notifications.DeliveryStatus)
	admin.GET("/contact", h.Contact.List)
	if h.Dashboard != nil {
		admin.GET("/dashboard/summary", h.Dashboard.Summary)
	}
}
