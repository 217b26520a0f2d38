package balance

import (
	"strings"
	"time"

	balanceerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance/errors"

	"github.com/google/uuid"
)

type LeaveType string

const (
	LeaveTypePaid   LeaveType = "PAID"
	LeaveTypeUnpaid LeaveType = "UNPAID"
	LeaveTypeSick   LeaveType = "SICK"
	LeaveTypeCasual LeaveType = "CASUAL"
)

// AllLeaveTypes is the display order used by balance reads.
var AllLeaveTypes = []LeaveType{LeaveTypePaid, LeaveTypeSick, LeaveTypeCasual, LeaveTypeUnpaid}

func ParseLeaveType(s string) (LeaveType, error) {
	switch t := LeaveType(strings.ToUpper(strings.TrimSpace(s))); t {
	case LeaveTypePaid, LeaveTypeUnpaid, LeaveTypeSick, LeaveTypeCasual:
		return t, nil
	default:
		return "", balanceerrors.ErrInvalidLeaveType
	}
}

// Capped types may never go below zero available.
func (t LeaveType) Capped() bool { return t != LeaveTypeUnpaid }

// Accrues reports whether the monthly accrual run credits this type.
func (t LeaveType) Accrues() bool { return t == LeaveTypePaid }

// LeaveBalance is one ledger row per (employee, leave type).
type LeaveBalance struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_leave_balance"`
	LeaveType    LeaveType `gorm:"type:varchar(10);not null;uniqueIndex:uq_leave_balance"`
	Accrued      Amount    `gorm:"column:accrued_minor;not null;default:0"`
	Consumed     Amount    `gorm:"column:consumed_minor;not null;default:0"`
	CarryOverCap Amount    `gorm:"column:carry_over_cap_minor;not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (b LeaveBalance) Available() Amount {
	return b.Accrued - b.Consumed
}

// Snapshot is the post-mutation view returned by every ledger operation.
type Snapshot struct {
	EmployeeID string    `json:"employee_id"`
	LeaveType  LeaveType `json:"leave_type"`
	Accrued    Amount    `json:"accrued"`
	Consumed   Amount    `json:"consumed"`
	Available  Amount    `json:"available"`
	Cap        Amount    `json:"carry_over_cap"`
	Unlimited  bool      `json:"unlimited"`
}

func (b LeaveBalance) Snapshot() Snapshot {
	return Snapshot{
		EmployeeID: b.EmployeeID.String(),
		LeaveType:  b.LeaveType,
		Accrued:    b.Accrued,
		Consumed:   b.Consumed,
		Available:  b.Available(),
		Cap:        b.CarryOverCap,
		Unlimited:  !b.LeaveType.Capped(),
	}
}

// CreditResult reports how much of an accrual was kept and how much was
// discarded by the carry-over cap.
type CreditResult struct {
	Snapshot  Snapshot `json:"snapshot"`
	Requested Amount   `json:"requested"`
	Credited  Amount   `json:"credited"`
	Discarded Amount   `json:"discarded"`
}
