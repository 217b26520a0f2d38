package main

import (
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/app"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/config"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	if err := app.RunWorker(config.Load()); err != nil {
		logger.Fatal("run worker failed", zap.Error(err))
	}
}
