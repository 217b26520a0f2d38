package accrual

import (
	"time"

	accrualerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/accrual/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"

	"github.com/google/uuid"
)

const monthLayout = "2006-01"

type RunStatus string

const (
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// Marker records that an employee was accrued for a month. It is inserted
// in the same transaction as the credit, so it exists iff the credit does.
type Marker struct {
	EmployeeID uuid.UUID      `gorm:"type:uuid;primaryKey"`
	MonthKey   string         `gorm:"type:char(7);primaryKey"`
	Amount     balance.Amount `gorm:"column:amount_minor;not null"`
	CreatedAt  time.Time
}

func (Marker) TableName() string { return "accrual_markers" }

// Run is the audit record of one month's accrual, upserted on every attempt.
type Run struct {
	MonthKey   string    `gorm:"type:char(7);primaryKey"`
	Status     RunStatus `gorm:"type:varchar(10);not null"`
	StartedAt  time.Time `gorm:"not null"`
	FinishedAt *time.Time
	Succeeded  int    `gorm:"not null;default:0"`
	Skipped    int    `gorm:"not null;default:0"`
	Failed     int    `gorm:"not null;default:0"`
	Owner      string `gorm:"type:varchar(64)"`
	LastError  string `gorm:"type:text"`
}

func (Run) TableName() string { return "accrual_runs" }

// Month is a parsed month key.
type Month struct {
	Key   string
	Start time.Time
	End   time.Time
}

func ParseMonth(key string) (Month, error) {
	start, err := time.Parse(monthLayout, key)
	if err != nil {
		return Month{}, accrualerrors.ErrInvalidMonth
	}
	return Month{
		Key:   key,
		Start: start,
		End:   start.AddDate(0, 1, -1),
	}, nil
}

// MonthOf returns the month containing t, in t's location.
func MonthOf(t time.Time) Month {
	m, _ := ParseMonth(t.Format(monthLayout))
	return m
}
