package leave

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/txdb"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IntersectQuery selects applications whose [start, end] intersects
// [From, To]. Empty filters match everything.
type IntersectQuery struct {
	From        time.Time
	To          time.Time
	Statuses    []Status
	LeaveType   string
	EmployeeIDs []string
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *LeaveApplication) error
	FindByID(ctx context.Context, id string) (*LeaveApplication, error)
	FindForUpdate(ctx context.Context, id string) (*LeaveApplication, error)
	Update(ctx context.Context, a *LeaveApplication) error
	HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error)
	ListByEmployee(ctx context.Context, employeeID string, statuses []Status) ([]LeaveApplication, error)
	ListPendingForManager(ctx context.Context, managerID string) ([]LeaveApplication, error)
	ListIntersecting(ctx context.Context, q IntersectQuery) ([]LeaveApplication, error)
}

type repository struct {
	db          *gorm.DB
	tx          *sql.Tx
	lockTimeout time.Duration
}

func NewRepository(db *gorm.DB, lockTimeout time.Duration) Repository {
	return &repository{db: db, lockTimeout: lockTimeout}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx, lockTimeout: r.lockTimeout}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return txdb.Conn(ctx, r.db, r.tx)
}

func (r *repository) Create(ctx context.Context, a *LeaveApplication) error {
	return r.conn(ctx).Create(a).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveApplication, error) {
	var a LeaveApplication
	err := r.conn(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) FindForUpdate(ctx context.Context, id string) (*LeaveApplication, error) {
	if r.tx != nil && r.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if _, err := r.tx.ExecContext(ctx, stmt); err != nil {
			return nil, err
		}
	}

	var a LeaveApplication
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) Update(ctx context.Context, a *LeaveApplication) error {
	return r.conn(ctx).
		Model(a).
		Select("status", "decided_by", "decision_comment", "decided_at", "cancelled_at", "updated_at").
		Updates(a).Error
}

func (r *repository) HasOverlappingPeriod(ctx context.Context, employeeID string, startDate, endDate time.Time) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&LeaveApplication{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", ActiveStatuses).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListByEmployee(ctx context.Context, employeeID string, statuses []Status) ([]LeaveApplication, error) {
	db := r.conn(ctx).Where("employee_id = ?", employeeID)
	if len(statuses) > 0 {
		db = db.Where("status IN ?", statuses)
	}

	var apps []LeaveApplication
	err := db.Order("start_date DESC").Find(&apps).Error
	return apps, err
}

func (r *repository) ListPendingForManager(ctx context.Context, managerID string) ([]LeaveApplication, error) {
	var apps []LeaveApplication
	err := r.conn(ctx).
		Joins("JOIN employees e ON e.id = leave_applications.employee_id").
		Where("e.manager_id = ?", managerID).
		Where("leave_applications.status = ?", StatusSubmitted).
		Order("leave_applications.requested_at").
		Find(&apps).Error
	return apps, err
}

func (r *repository) ListIntersecting(ctx context.Context, q IntersectQuery) ([]LeaveApplication, error) {
	db := r.conn(ctx).
		Where("start_date <= ?", q.To).
		Where("end_date >= ?", q.From)
	if len(q.Statuses) > 0 {
		db = db.Where("status IN ?", q.Statuses)
	}
	if q.LeaveType != "" {
		db = db.Where("leave_type = ?", q.LeaveType)
	}
	if len(q.EmployeeIDs) > 0 {
		db = db.Where("employee_id IN ?", q.EmployeeIDs)
	}

	var apps []LeaveApplication
	err := db.Order("start_date, employee_id").Find(&apps).Error
	return apps, err
}
