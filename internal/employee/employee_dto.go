package employee

type EmployeeResponse struct {
	ID              string  `json:"id"`
	FullName        string  `json:"full_name"`
	Email           string  `json:"email"`
	ManagerID       *string `json:"manager_id,omitempty"`
	JoinDate        string  `json:"join_date"`
	AccrualEligible bool    `json:"accrual_eligible"`
	IsActive        bool    `json:"is_active"`
	Locale          string  `json:"locale"`
}
