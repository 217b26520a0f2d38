package employee

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/txdb"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	FindByIDs(ctx context.Context, ids []string) ([]Employee, error)
	LockByID(ctx context.Context, id string) (*Employee, error)
	ListAccrualCandidates(ctx context.Context, monthEnd time.Time) ([]Employee, error)
	ListReports(ctx context.Context, managerID string) ([]Employee, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return txdb.Conn(ctx, r.db, r.tx)
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.conn(ctx).First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	var e Employee
	err := r.conn(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&e).Error
	return &e, err
}

func (r *repository) FindByIDs(ctx context.Context, ids []string) ([]Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var emps []Employee
	err := r.conn(ctx).Where("id IN ?", ids).Find(&emps).Error
	return emps, err
}

// LockByID takes a row lock on the employee so that concurrent submissions
// for the same employee serialize their overlap checks.
func (r *repository) LockByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) ListAccrualCandidates(ctx context.Context, monthEnd time.Time) ([]Employee, error) {
	var emps []Employee
	err := r.conn(ctx).
		Where("is_active = ?", true).
		Where("accrual_eligible = ?", true).
		Where("join_date <= ?", monthEnd).
		Order("id").
		Find(&emps).Error
	return emps, err
}

func (r *repository) ListReports(ctx context.Context, managerID string) ([]Employee, error) {
	var emps []Employee
	err := r.conn(ctx).
		Where("manager_id = ?", managerID).
		Where("is_active = ?", true).
		Order("full_name").
		Find(&emps).Error
	return emps, err
}
