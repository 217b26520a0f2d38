package balance

type BalanceEntry struct {
	Accrued      Amount `json:"accrued"`
	Consumed     Amount `json:"consumed"`
	Available    Amount `json:"available"`
	CarryOverCap Amount `json:"carry_over_cap"`
	Unlimited    bool   `json:"unlimited"`
}

type BalanceResponse struct {
	EmployeeID string                     `json:"employee_id"`
	Balances   map[LeaveType]BalanceEntry `json:"balances"`
}
