package balance

import (
	"context"
	"database/sql"
	"errors"

	balanceerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/dberr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger mutates balances. It never opens a transaction itself: callers bind
// it to theirs with WithTx so the mutation commits or rolls back together
// with the leave application or accrual marker it belongs to. Each mutation
// row-locks its (employee, leave type) key, so same-key mutations serialize
// and different keys do not wait on each other.
//
//go:generate mockgen -source=ledger.go -destination=mock/ledger_mock.go -package=mock
type Ledger interface {
	WithTx(tx *sql.Tx) Ledger
	Credit(ctx context.Context, employeeID string, leaveType LeaveType, amount Amount) (CreditResult, error)
	Debit(ctx context.Context, employeeID string, leaveType LeaveType, amount Amount) (Snapshot, error)
	Refund(ctx context.Context, employeeID string, leaveType LeaveType, amount Amount) (Snapshot, error)
}

type ledger struct {
	repo     Repository
	defaults Defaults
	logger   *zap.Logger
}

func NewLedger(repo Repository, defaults Defaults, logger ...*zap.Logger) Ledger {
	l := zap.L().Named("balance.ledger")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.ledger")
	}
	return &ledger{repo: repo, defaults: defaults, logger: l}
}

func (l *ledger) WithTx(tx *sql.Tx) Ledger {
	return &ledger{repo: l.repo.WithTx(tx), defaults: l.defaults, logger: l.logger}
}

func (l *ledger) Credit(ctx context.Context, employeeID string, leaveType LeaveType, amount Amount) (CreditResult, error) {
	var credited, discarded Amount
	b, err := l.mutate(ctx, employeeID, leaveType, func(b *LeaveBalance) error {
		var err error
		credited, discarded, err = b.applyCredit(amount)
		return err
	})
	if err != nil {
		return CreditResult{}, err
	}
	if discarded > 0 {
		l.logger.Info("accrual capped",
			zap.String("employee_id", employeeID),
			zap.String("leave_type", string(leaveType)),
			zap.Stringer("credited", credited),
			zap.Stringer("discarded", discarded),
		)
	}
	return CreditResult{
		Snapshot:  b.Snapshot(),
		Requested: amount,
		Credited:  credited,
		Discarded: discarded,
	}, nil
}

func (l *ledger) Debit(ctx context.Context, employeeID string, leaveType LeaveType, amount Amount) (Snapshot, error) {
	b, err := l.mutate(ctx, employeeID, leaveType, func(b *LeaveBalance) error {
		return b.applyDebit(amount)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return b.Snapshot(), nil
}

func (l *ledger) Refund(ctx context.Context, employeeID string, leaveType LeaveType, amount Amount) (Snapshot, error) {
	b, err := l.mutate(ctx, employeeID, leaveType, func(b *LeaveBalance) error {
		return b.applyRefund(amount)
	})
	if err != nil {
		if errors.Is(err, balanceerrors.ErrRefundExceedsConsumed) {
			l.logger.Error("refund exceeds consumed",
				zap.String("employee_id", employeeID),
				zap.String("leave_type", string(leaveType)),
				zap.Stringer("amount", amount),
			)
		}
		return Snapshot{}, err
	}
	return b.Snapshot(), nil
}

func (l *ledger) mutate(ctx context.Context, employeeID string, leaveType LeaveType, fn func(b *LeaveBalance) error) (*LeaveBalance, error) {
	b, err := l.loadForUpdate(ctx, employeeID, leaveType)
	if err != nil {
		return nil, err
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	if err := l.repo.Save(ctx, b); err != nil {
		return nil, dberr.Translate(err)
	}
	return b, nil
}

// loadForUpdate locks the row, opening it with defaults on first use.
func (l *ledger) loadForUpdate(ctx context.Context, employeeID string, leaveType LeaveType) (*LeaveBalance, error) {
	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, balanceerrors.ErrInvalidEmployeeID
	}

	b, err := l.repo.FindForUpdate(ctx, employeeID, leaveType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fresh := l.defaults.NewBalance(empUUID, leaveType)
		if err := l.repo.EnsureOpened(ctx, &fresh); err != nil {
			return nil, dberr.Translate(err)
		}
		b, err = l.repo.FindForUpdate(ctx, employeeID, leaveType)
	}
	if err != nil {
		return nil, dberr.Translate(err)
	}
	return b, nil
}
