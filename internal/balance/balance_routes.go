package balance

import (
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc, rbac middleware.RBACService) {
	balances := r.Group("/balances")
	balances.Use(auth)
	{
		balances.GET("/me", middleware.RBACAuthorize(rbac, "balance", "read"), handler.GetMine)
		balances.GET("/:employee_id", middleware.RBACAuthorize(rbac, "balance", "read"), handler.GetByEmployee)
	}
}
