package balance

import (
	"time"

	"github.com/google/uuid"
)

// Defaults describe a balance row when it is first opened. SICK and CASUAL
// start with a fixed grant equal to their cap, PAID starts empty and is
// filled by accrual, UNPAID is unlimited.
type Defaults struct {
	PaidCap     Amount
	SickGrant   Amount
	CasualGrant Amount
}

func (d Defaults) NewBalance(employeeID uuid.UUID, leaveType LeaveType) LeaveBalance {
	now := time.Now().UTC()
	b := LeaveBalance{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	switch leaveType {
	case LeaveTypePaid:
		b.CarryOverCap = d.PaidCap
	case LeaveTypeSick:
		b.Accrued = d.SickGrant
		b.CarryOverCap = d.SickGrant
	case LeaveTypeCasual:
		b.Accrued = d.CasualGrant
		b.CarryOverCap = d.CasualGrant
	}
	return b
}
