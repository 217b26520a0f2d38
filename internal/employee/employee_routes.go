package employee

import (
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, rbac middleware.RBACService) {
	employees := r.Group("/employees")
	employees.Use(auth)
	{
		employees.GET("/me", middleware.RBACAuthorize(rbac, "employee", "read_self"), handler.Me)
		employees.GET("/me/reports", middleware.RBACAuthorize(rbac, "employee", "read_reports"), handler.MyReports)
	}
}
