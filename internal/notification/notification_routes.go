package notification

import (
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the outbox read API and the real-time stream
// endpoint served by the realtime package.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, stream gin.HandlerFunc, auth gin.HandlerFunc, rbac middleware.RBACService) {
	notifications := r.Group("/notifications")
	notifications.Use(auth)
	{
		notifications.GET("/stream", middleware.RBACAuthorize(rbac, "notification", "stream"), stream)
		notifications.GET("/:id", middleware.RBACAuthorize(rbac, "notification", "read"), handler.GetByID)
	}
}
