package app

import (
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// BuildApp connects the infrastructure, migrates the schema and mounts every
// module on router. The returned cleanup closes the connections.
func BuildApp(router *gin.Engine, cfg *config.Config) (func(), error) {
	logger := zap.L().Named("app.api")

	c, err := newCore(cfg, zap.L())
	if err != nil {
		return nil, err
	}
	logger.Info("database and redis connections established")

	if err := c.migrate(); err != nil {
		c.Close()
		return nil, err
	}

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID, middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID, middleware.HeaderReplayed},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.RequestID(),
		middleware.ContextLogger(zap.L()),
		middleware.RateLimitByIP(rate.Limit(cfg.RateLimitRPS*4), cfg.RateLimitBurst*4),
	)
	if err := registerModules(router, c); err != nil {
		c.Close()
		return nil, err
	}
	return c.Close, nil
}
