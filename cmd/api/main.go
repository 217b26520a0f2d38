package main

import (
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/app"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/bootstrap"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	cleanup, err := app.BuildApp(r, cfg)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer cleanup()

	err = bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:         cfg.Port,
			ReadTimeout:  5 * time.Second,
			// SSE streams hold the response open, so no write deadline.
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		bootstrap.NewStdoutAuditLogger(logger),
	)
	if err != nil {
		logger.Error("http server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
