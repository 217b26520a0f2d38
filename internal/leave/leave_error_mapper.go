package leave

import (
	"context"
	"errors"

	leaveerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/leave/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/dberr"

	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}
	return dberr.Translate(err)
}

// budgetError reports a call that ran out of its time budget as Timeout,
// whatever the driver made of the cancelled context.
func budgetError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperror.ErrTimeout.WithCause(err)
	}
	return err
}
