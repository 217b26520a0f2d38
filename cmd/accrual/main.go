// Command accrual runs the monthly accrual for one month, e.g.
//
//	go run ./cmd/accrual -month 2026-03
package main

import (
	"context"
	"flag"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/app"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/config"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	month := flag.String("month", time.Now().Format("2006-01"), "month to accrue, YYYY-MM")
	timeout := flag.Duration("timeout", 30*time.Minute, "abort the run after this long")
	flag.Parse()

	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	run, err := app.RunAccrualOnce(ctx, config.Load(), *month)
	if err != nil {
		logger.Fatal("accrual run failed", zap.String("month", *month), zap.Error(err))
	}
	logger.Info("accrual run done",
		zap.String("month", run.MonthKey),
		zap.Int("credited", run.Succeeded),
		zap.Int("skipped", run.Skipped),
		zap.Int("failed", run.Failed),
	)
}
