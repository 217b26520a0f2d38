package balance_test

import (
	"context"
	"testing"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance/balancetest"
	balanceerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

var testDefaults = balance.Defaults{
	PaidCap:     balance.Days(24),
	SickGrant:   balance.Days(12),
	CasualGrant: balance.Days(6),
}

func seed(repo *balancetest.MemoryRepo, empID uuid.UUID, lt balance.LeaveType, accrued, consumed balance.Amount) {
	b := testDefaults.NewBalance(empID, lt)
	b.Accrued = accrued
	b.Consumed = consumed
	repo.Put(b)
}

func TestLedger_Credit(t *testing.T) {
	ctx := context.Background()

	t.Run("credit is capped and the excess discarded", func(t *testing.T) {
		repo := balancetest.NewMemoryRepo()
		empID := uuid.New()
		seed(repo, empID, balance.LeaveTypePaid, balance.MustParseAmount("23.00"), 0)
		ledger := balance.NewLedger(repo, testDefaults)

		res, err := ledger.Credit(ctx, empID.String(), balance.LeaveTypePaid, balance.MustParseAmount("1.50"))

		assert.NoError(t, err)
		assert.Equal(t, "24.00", res.Snapshot.Available.String())
		assert.Equal(t, "1.00", res.Credited.String())
		assert.Equal(t, "0.50", res.Discarded.String())
	})

	t.Run("first credit opens the row lazily", func(t *testing.T) {
		repo := balancetest.NewMemoryRepo()
		empID := uuid.New()
		ledger := balance.NewLedger(repo, testDefaults)

		res, err := ledger.Credit(ctx, empID.String(), balance.LeaveTypePaid, balance.MustParseAmount("1.25"))

		assert.NoError(t, err)
		assert.Equal(t, "1.25", res.Snapshot.Accrued.String())
		stored, ok := repo.Get(empID.String(), balance.LeaveTypePaid)
		assert.True(t, ok)
		assert.Equal(t, balance.Days(24), stored.CarryOverCap)
	})

	t.Run("cap already exceeded credits nothing", func(t *testing.T) {
		repo := balancetest.NewMemoryRepo()
		empID := uuid.New()
		seed(repo, empID, balance.LeaveTypePaid, balance.Days(30), 0)
		ledger := balance.NewLedger(repo, testDefaults)

		res, err := ledger.Credit(ctx, empID.String(), balance.LeaveTypePaid, balance.Days(2))

		assert.NoError(t, err)
		assert.Equal(t, balance.Amount(0), res.Credited)
		assert.Equal(t, balance.Days(2), res.Discarded)
		assert.Equal(t, balance.Days(30), res.Snapshot.Available)
	})

	t.Run("negative unpaid never accrues", func(t *testing.T) {
		ledger := balance.NewLedger(balancetest.NewMemoryRepo(), testDefaults)

		_, err := ledger.Credit(ctx, uuid.NewString(), balance.LeaveTypeUnpaid, balance.Days(1))

		assert.ErrorIs(t, err, balanceerrors.ErrAccrualNotAllowed)
	})

	t.Run("negative zero amount", func(t *testing.T) {
		ledger := balance.NewLedger(balancetest.NewMemoryRepo(), testDefaults)

		_, err := ledger.Credit(ctx, uuid.NewString(), balance.LeaveTypePaid, 0)

		assert.ErrorIs(t, err, balanceerrors.ErrInvalidAmount)
	})
}

func TestLedger_DebitAndRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient balance leaves the row unchanged", func(t *testing.T) {
		repo := balancetest.NewMemoryRepo()
		empID := uuid.New()
		seed(repo, empID, balance.LeaveTypePaid, balance.Days(10), balance.Days(7))
		ledger := balance.NewLedger(repo, testDefaults)

		_, err := ledger.Debit(ctx, empID.String(), balance.LeaveTypePaid, balance.Days(4))

		assert.ErrorIs(t, err, balanceerrors.ErrInsufficientBalance)
		stored, _ := repo.Get(empID.String(), balance.LeaveTypePaid)
		assert.Equal(t, balance.Days(7), stored.Consumed)
	})

	t.Run("debit down to exactly zero", func(t *testing.T) {
		repo := balancetest.NewMemoryRepo()
		empID := uuid.New()
		seed(repo, empID, balance.LeaveTypePaid, balance.Days(3), 0)
		ledger := balance.NewLedger(repo, testDefaults)

		snap, err := ledger.Debit(ctx, empID.String(), balance.LeaveTypePaid, balance.Days(3))

		assert.NoError(t, err)
		assert.Equal(t, balance.Amount(0), snap.Available)
	})

	t.Run("unpaid debit never fails", func(t *testing.T) {
		ledger := balance.NewLedger(balancetest.NewMemoryRepo(), testDefaults)

		snap, err := ledger.Debit(ctx, uuid.NewString(), balance.LeaveTypeUnpaid, balance.Days(40))

		assert.NoError(t, err)
		assert.True(t, snap.Unlimited)
		assert.Equal(t, balance.Days(40), snap.Consumed)
	})

	t.Run("sick leave opens with its grant", func(t *testing.T) {
		ledger := balance.NewLedger(balancetest.NewMemoryRepo(), testDefaults)

		snap, err := ledger.Debit(ctx, uuid.NewString(), balance.LeaveTypeSick, balance.Days(2))

		assert.NoError(t, err)
		assert.Equal(t, balance.Days(10), snap.Available)
	})

	t.Run("refund ignores the cap", func(t *testing.T) {
		repo := balancetest.NewMemoryRepo()
		empID := uuid.New()
		seed(repo, empID, balance.LeaveTypePaid, balance.Days(30), balance.Days(5))
		ledger := balance.NewLedger(repo, testDefaults)

		snap, err := ledger.Refund(ctx, empID.String(), balance.LeaveTypePaid, balance.Days(5))

		assert.NoError(t, err)
		assert.Equal(t, balance.Days(30), snap.Available)
	})

	t.Run("negative refund larger than consumed", func(t *testing.T) {
		repo := balancetest.NewMemoryRepo()
		empID := uuid.New()
		seed(repo, empID, balance.LeaveTypePaid, balance.Days(10), balance.Days(1))
		ledger := balance.NewLedger(repo, testDefaults)

		_, err := ledger.Refund(ctx, empID.String(), balance.LeaveTypePaid, balance.Days(2))

		assert.ErrorIs(t, err, balanceerrors.ErrRefundExceedsConsumed)
	})

	t.Run("negative lock timeout maps to conflict", func(t *testing.T) {
		repo := balancetest.NewMemoryRepo()
		repo.FailFind = &pgconn.PgError{Code: "55P03"}
		ledger := balance.NewLedger(repo, testDefaults)

		_, err := ledger.Debit(ctx, uuid.NewString(), balance.LeaveTypePaid, balance.Days(1))

		assert.True(t, apperror.Is(err, apperror.CodeConflict))
	})

	t.Run("negative malformed employee id", func(t *testing.T) {
		ledger := balance.NewLedger(balancetest.NewMemoryRepo(), testDefaults)

		_, err := ledger.Debit(ctx, "emp-1", balance.LeaveTypePaid, balance.Days(1))

		assert.ErrorIs(t, err, balanceerrors.ErrInvalidEmployeeID)
	})
}
