package accrual_test

import (
	"testing"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/accrual"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParsePolicy_Tiers(t *testing.T) {
	p, err := accrual.ParsePolicy("6000:2.00, 0:1.25,3000:1.50", "9")
	assert.NoError(t, err)

	cases := []struct {
		wage string
		want string
	}{
		{"0", "1.25"},
		{"2999.99", "1.25"},
		{"3000", "1.50"},
		{"5999", "1.50"},
		{"6000", "2.00"},
		{"12000", "2.00"},
	}
	for _, tc := range cases {
		e := employee.Employee{MonthlyWage: decimal.RequireFromString(tc.wage)}
		assert.Equal(t, balance.MustParseAmount(tc.want), p.AmountFor(e), "wage %s", tc.wage)
	}
}

func TestParsePolicy_Flat(t *testing.T) {
	p, err := accrual.ParsePolicy("  ", "1.50")
	assert.NoError(t, err)
	assert.Equal(t, balance.MustParseAmount("1.50"), p.AmountFor(employee.Employee{}))
}

func TestParsePolicy_Invalid(t *testing.T) {
	for _, tiers := range []string{"1000", "abc:1", "1000:x", "-5:1", "0:-1"} {
		_, err := accrual.ParsePolicy(tiers, "1")
		assert.Error(t, err, tiers)
	}
	_, err := accrual.ParsePolicy("", "-1")
	assert.Error(t, err)
}

func TestTierPolicy_BelowLowestTierEarnsNothing(t *testing.T) {
	p := accrual.NewTierPolicy([]accrual.Tier{{MinWage: decimal.NewFromInt(1000), Days: balance.Days(1)}})
	assert.Equal(t, balance.Amount(0), p.AmountFor(employee.Employee{MonthlyWage: decimal.NewFromInt(999)}))
}

func TestParseMonth(t *testing.T) {
	m, err := accrual.ParseMonth("2024-02")
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-29", m.End.Format("2006-01-02"))

	_, err = accrual.ParseMonth("2024-13")
	assert.Error(t, err)
	_, err = accrual.ParseMonth("02-2024")
	assert.Error(t, err)
}
