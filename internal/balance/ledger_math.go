package balance

import (
	balanceerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance/errors"
)

// applyCredit adds an accrual, keeping available at or below the carry-over
// cap. The excess is discarded.
func (b *LeaveBalance) applyCredit(amount Amount) (credited, discarded Amount, err error) {
	if !amount.IsPositive() {
		return 0, 0, balanceerrors.ErrInvalidAmount
	}
	if !b.LeaveType.Capped() {
		return 0, 0, balanceerrors.ErrAccrualNotAllowed
	}

	room := b.CarryOverCap - b.Available()
	if room < 0 {
		room = 0
	}
	credited = minAmount(amount, room)
	b.Accrued += credited
	return credited, amount - credited, nil
}

// applyDebit consumes amount. Capped types fail rather than go negative.
func (b *LeaveBalance) applyDebit(amount Amount) error {
	if !amount.IsPositive() {
		return balanceerrors.ErrInvalidAmount
	}
	if b.LeaveType.Capped() && b.Available() < amount {
		return balanceerrors.ErrInsufficientBalance
	}
	b.Consumed += amount
	return nil
}

// applyRefund releases a previous debit. The cap does not apply.
func (b *LeaveBalance) applyRefund(amount Amount) error {
	if !amount.IsPositive() {
		return balanceerrors.ErrInvalidAmount
	}
	if amount > b.Consumed {
		return balanceerrors.ErrRefundExceedsConsumed
	}
	b.Consumed -= amount
	return nil
}
