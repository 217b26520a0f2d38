package rbac

import (
	"net/http"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/domain"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("rbac.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.handler")
	}
	return &Handler{service: service, logger: l}
}

// Check answers whether the caller's own role may perform resource:action.
// The UI uses it to hide actions the caller cannot take.
func (h *Handler) Check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, err)
		return
	}

	allowed, err := h.service.Enforce(domain.EnforceRequest{
		Role:     c.GetString(middleware.ContextRole),
		Resource: req.Resource,
		Action:   req.Action,
	})
	if err != nil {
		h.logger.Error("rbac check failed", zap.Error(err))
		response.FromError(c, apperror.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, domain.EnforceResponse{Allowed: allowed}, nil)
}

func (h *Handler) ListPolicies(c *gin.Context) {
	policies, err := h.service.Policies()
	if err != nil {
		h.logger.Error("list policies failed", zap.Error(err))
		response.FromError(c, apperror.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, policies, nil)
}

func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.service.Roles()
	if err != nil {
		h.logger.Error("list roles failed", zap.Error(err))
		response.FromError(c, apperror.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, roles, nil)
}
