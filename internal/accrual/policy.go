package accrual

import (
	"fmt"
	"sort"
	"strings"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee"

	"github.com/shopspring/decimal"
)

// Policy decides how many paid days an employee earns per month.
type Policy interface {
	AmountFor(e employee.Employee) balance.Amount
}

type FlatPolicy struct {
	Days balance.Amount
}

func (p FlatPolicy) AmountFor(employee.Employee) balance.Amount { return p.Days }

type Tier struct {
	MinWage decimal.Decimal
	Days    balance.Amount
}

// TierPolicy picks the highest tier whose minimum wage does not exceed the
// employee's monthly wage. Wages below every tier earn nothing.
type TierPolicy struct {
	tiers []Tier
}

func NewTierPolicy(tiers []Tier) TierPolicy {
	sorted := append([]Tier(nil), tiers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinWage.LessThan(sorted[j].MinWage) })
	return TierPolicy{tiers: sorted}
}

func (p TierPolicy) AmountFor(e employee.Employee) balance.Amount {
	var days balance.Amount
	for _, t := range p.tiers {
		if t.MinWage.GreaterThan(e.MonthlyWage) {
			break
		}
		days = t.Days
	}
	return days
}

// ParsePolicy builds a tier policy from "minWage:days,..." and falls back to
// a flat policy when tiers is empty.
func ParsePolicy(tiers, flat string) (Policy, error) {
	tiers = strings.TrimSpace(tiers)
	if tiers == "" {
		days, err := balance.ParseAmount(flat)
		if err != nil {
			return nil, fmt.Errorf("accrual flat days %q: %w", flat, err)
		}
		if days < 0 {
			return nil, fmt.Errorf("accrual flat days %q: negative", flat)
		}
		return FlatPolicy{Days: days}, nil
	}

	var parsed []Tier
	for _, part := range strings.Split(tiers, ",") {
		wage, days, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("accrual tier %q: expected minWage:days", part)
		}
		minWage, err := decimal.NewFromString(strings.TrimSpace(wage))
		if err != nil || minWage.IsNegative() {
			return nil, fmt.Errorf("accrual tier %q: invalid wage", part)
		}
		amount, err := balance.ParseAmount(strings.TrimSpace(days))
		if err != nil {
			return nil, fmt.Errorf("accrual tier %q: %w", part, err)
		}
		if amount < 0 {
			return nil, fmt.Errorf("accrual tier %q: negative days", part)
		}
		parsed = append(parsed, Tier{MinWage: minWage, Days: amount})
	}
	return NewTierPolicy(parsed), nil
}
