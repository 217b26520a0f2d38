package app

import (
	"context"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/accrual"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/config"

	"go.uber.org/zap"
)

// RunAccrualOnce accrues a single month, for backfills and manual reruns.
// Months already accrued for an employee are skipped.
func RunAccrualOnce(ctx context.Context, cfg *config.Config, monthKey string) (accrual.RunResponse, error) {
	c, err := newCore(cfg, zap.L())
	if err != nil {
		return accrual.RunResponse{}, err
	}
	defer c.Close()

	if err := c.migrate(); err != nil {
		return accrual.RunResponse{}, err
	}
	return c.accrualService.RunAccrual(ctx, monthKey)
}
