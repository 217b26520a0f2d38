package calendar

type Query struct {
	From       string `form:"from"`
	To         string `form:"to"`
	LeaveType  string `form:"leave_type"`
	Status     string `form:"status"`
	EmployeeID string `form:"employee_id"`
}

// key identifies identical reads for coalescing.
func (q Query) key() string {
	return q.From + "|" + q.To + "|" + q.LeaveType + "|" + q.Status + "|" + q.EmployeeID
}

type EventResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Title      string `json:"title"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Status     string `json:"status"`
	LeaveType  string `json:"leave_type"`
	TotalDays  int    `json:"total_days"`
}
