package accrual

import (
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, rbac middleware.RBACService) {
	accruals := r.Group("/admin/accruals")
	accruals.Use(auth)
	{
		accruals.POST("/:month", middleware.RBACAuthorize(rbac, "accrual", "run"), handler.Run)
		accruals.GET("/:month", middleware.RBACAuthorize(rbac, "accrual", "read"), handler.GetRun)
	}
}
