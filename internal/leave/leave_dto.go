package leave

type SubmitLeaveRequest struct {
	// EmployeeID is only set by an admin submitting on someone's behalf.
	EmployeeID string `json:"employee_id" binding:"omitempty,uuid"`
	LeaveType  string `json:"leave_type" binding:"required,oneof=PAID UNPAID SICK CASUAL"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Reason     string `json:"reason" binding:"max=1000"`
}

type DecisionRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=APPROVE REJECT"`
	Comment string `json:"comment" binding:"max=1000"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	Reserved        string  `json:"reserved"`
	Reason          string  `json:"reason,omitempty"`
	Status          string  `json:"status"`
	RequestedAt     string  `json:"requested_at"`
	DecidedBy       *string `json:"decided_by,omitempty"`
	DecisionComment *string `json:"decision_comment,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
	CancelledAt     *string `json:"cancelled_at,omitempty"`
}
