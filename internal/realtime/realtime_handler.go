package realtime

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionHub interface {
	Attach(ctx context.Context, userID string) (*Session, error)
	Detach(s *Session)
}

type Handler struct {
	hub       SessionHub
	heartbeat time.Duration
	logger    *zap.Logger
}

func NewHandler(hub SessionHub, heartbeat time.Duration, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("realtime.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("realtime.handler")
	}
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &Handler{hub: hub, heartbeat: heartbeat, logger: l}
}

// Stream holds the connection open and writes every push for the caller as
// a "leave" event, with a "ping" comment event between pushes.
func (h *Handler) Stream(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(middleware.ContextEmployeeID)

	sess, err := h.hub.Attach(ctx, userID)
	if err != nil {
		h.logger.Error("attach session failed", zap.String("user_id", userID), zap.Error(err))
		response.FromError(c, apperror.ErrInternal.WithCause(err))
		return
	}
	defer h.hub.Detach(sess)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("ready", gin.H{"session_id": sess.ID})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case payload, ok := <-sess.C:
			if !ok {
				return false
			}
			c.SSEvent("leave", json.RawMessage(payload))
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
