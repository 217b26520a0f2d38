package leave

import (
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the leave API. mutate runs before every state
// changing endpoint, typically rate limiting and idempotency keys.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	rbac middleware.RBACService,
	mutate ...gin.HandlerFunc,
) {
	leaves := r.Group("/leaves")
	leaves.Use(auth)

	with := func(action string, h gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{middleware.RBACAuthorize(rbac, "leave", action)}
		chain = append(chain, mutate...)
		return append(chain, h)
	}
	{
		leaves.GET("", middleware.RBACAuthorize(rbac, "leave", "read"), handler.ListMine)
		leaves.GET("/pending", middleware.RBACAuthorize(rbac, "leave", "read_pending"), handler.ListPending)
		leaves.GET("/:id", middleware.RBACAuthorize(rbac, "leave", "read"), handler.GetByID)
		leaves.POST("", with("submit", handler.Submit)...)
		leaves.POST("/:id/decision", with("decide", handler.Decide)...)
		leaves.POST("/:id/cancel", with("cancel", handler.Cancel)...)
	}
}
