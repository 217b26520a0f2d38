package accrual

import (
	"net/http"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/bootstrap"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	audit   bootstrap.AuditLogger
	logger  *zap.Logger
}

func NewHandler(service Service, audit bootstrap.AuditLogger, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("accrual.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("accrual.handler")
	}
	if audit == nil {
		audit = bootstrap.NewStdoutAuditLogger(l)
	}
	return &Handler{service: service, audit: audit, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := response.FromError(c, err)
	h.logger.Warn("accrual request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
}

// Run triggers a (back)fill for the month in the path.
func (h *Handler) Run(c *gin.Context) {
	month := c.Param("month")
	ctx := c.Request.Context()

	h.audit.Log(ctx, bootstrap.AuditLog{
		Action:  "ACCRUAL_RUN_REQUESTED",
		Message: "manual accrual run",
		Meta:    map[string]any{"month": month},
	})

	resp, err := h.service.RunAccrual(ctx, month)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetRun(c *gin.Context) {
	resp, err := h.service.GetRun(c.Request.Context(), c.Param("month"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}
