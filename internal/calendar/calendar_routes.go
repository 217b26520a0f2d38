package calendar

import (
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, rbac middleware.RBACService) {
	cal := r.Group("/calendar")
	cal.Use(auth)
	{
		cal.GET("", middleware.RBACAuthorize(rbac, "calendar", "read"), handler.Events)
	}
}
