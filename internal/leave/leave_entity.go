package leave

import (
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"

	"github.com/google/uuid"
)

type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusSubmitted, StatusApproved, StatusRejected, StatusCancelled:
		return st, true
	default:
		return "", false
	}
}

// Terminal states never change again.
func (s Status) Terminal() bool {
	return s != StatusSubmitted
}

// Active applications block overlapping submissions and show on the calendar
// by default.
var ActiveStatuses = []Status{StatusSubmitted, StatusApproved}

type Outcome string

const (
	OutcomeApprove Outcome = "APPROVE"
	OutcomeReject  Outcome = "REJECT"
)

func (o Outcome) target() Status {
	if o == OutcomeApprove {
		return StatusApproved
	}
	return StatusRejected
}

// LeaveApplication is never deleted. Reserved is what Submit debited from
// the ledger, and what Reject or Cancel refund.
type LeaveApplication struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey"`
	EmployeeID      uuid.UUID         `gorm:"type:uuid;not null;index:idx_leave_applications_employee_dates,priority:1"`
	LeaveType       balance.LeaveType `gorm:"type:varchar(10);not null"`
	StartDate       time.Time         `gorm:"type:date;not null;index:idx_leave_applications_employee_dates,priority:2;index:idx_leave_applications_range,priority:1"`
	EndDate         time.Time         `gorm:"type:date;not null;index:idx_leave_applications_employee_dates,priority:3;index:idx_leave_applications_range,priority:2"`
	TotalDays       int               `gorm:"not null"`
	Reserved        balance.Amount    `gorm:"column:reserved_minor;not null;default:0"`
	Reason          string            `gorm:"type:text"`
	Status          Status            `gorm:"type:varchar(20);not null;index:idx_leave_applications_status"`
	RequestedAt     time.Time         `gorm:"not null"`
	DecidedBy       *uuid.UUID        `gorm:"type:uuid"`
	DecisionComment *string           `gorm:"type:text"`
	DecidedAt       *time.Time
	CancelledAt     *time.Time
	UpdatedAt       time.Time
}

func (LeaveApplication) TableName() string { return "leave_applications" }

// InclusiveDays counts calendar days from start to end, both included.
func InclusiveDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

func canTransition(from, to Status) bool {
	if from != StatusSubmitted {
		return false
	}
	switch to {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// decide moves a SUBMITTED application to APPROVED or REJECTED.
func (a *LeaveApplication) decide(outcome Outcome, deciderID uuid.UUID, comment string, now time.Time) bool {
	to := outcome.target()
	if !canTransition(a.Status, to) {
		return false
	}
	a.Status = to
	a.DecidedBy = &deciderID
	a.DecidedAt = &now
	if comment != "" {
		a.DecisionComment = &comment
	}
	a.UpdatedAt = now
	return true
}

func (a *LeaveApplication) cancel(now time.Time) bool {
	if !canTransition(a.Status, StatusCancelled) {
		return false
	}
	a.Status = StatusCancelled
	a.CancelledAt = &now
	a.UpdatedAt = now
	return true
}
