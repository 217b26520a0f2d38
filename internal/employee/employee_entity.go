package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Employee is owned by the HR onboarding workflows. The leave engine only
// reads it; rows are deactivated, never deleted.
type Employee struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	FullName        string          `gorm:"type:varchar(150);not null"`
	Email           string          `gorm:"type:varchar(255);not null;uniqueIndex:uq_employee_email"`
	ManagerID       *uuid.UUID      `gorm:"type:uuid;index:idx_employees_manager"`
	MonthlyWage     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	AccrualEligible bool            `gorm:"not null;default:true"`
	IsActive        bool            `gorm:"not null;default:true"`
	JoinDate        time.Time       `gorm:"type:date;not null"`
	Locale          string          `gorm:"type:varchar(10);not null;default:'en'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsManagedBy reports whether managerID is this employee's direct manager.
func (e Employee) IsManagedBy(managerID uuid.UUID) bool {
	return e.ManagerID != nil && *e.ManagerID == managerID
}

// EligibleForAccrual reports whether the employee earns accrual for the
// month ending at monthEnd.
func (e Employee) EligibleForAccrual(monthEnd time.Time) bool {
	return e.IsActive && e.AccrualEligible && !e.JoinDate.After(monthEnd)
}

// IdentityQuery resolves an employee by primary key first and by exact
// email only when no ID is given.
type IdentityQuery struct {
	ID    string
	Email string
}
