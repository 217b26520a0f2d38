package events

import "time"

const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

const (
	EventTypeLeaveSubmitted = "leave.submitted"
	EventTypeLeaveApproved  = "leave.approved"
	EventTypeLeaveRejected  = "leave.rejected"
	EventTypeLeaveCancelled = "leave.cancelled"
	EventTypeLeaveAccrued   = "leave.accrued"
)

// LeaveLifecycleEvent is the payload stored with every outbox event and
// published unchanged on LeaveLifecycleTopic. Amounts are decimal strings
// with two fractional digits.
type LeaveLifecycleEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`

	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	ManagerID    string `json:"manager_id,omitempty"`
	ManagerName  string `json:"manager_name,omitempty"`

	ApplicationID string `json:"application_id,omitempty"`
	LeaveType     string `json:"leave_type"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	TotalDays     int    `json:"total_days,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Status        string `json:"status,omitempty"`
	DecidedBy     string `json:"decided_by,omitempty"`
	Comment       string `json:"comment,omitempty"`

	MonthKey  string `json:"month_key,omitempty"`
	Credited  string `json:"credited,omitempty"`
	Discarded string `json:"discarded,omitempty"`
	Available string `json:"available,omitempty"`
}
