package balance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/txdb"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	EnsureOpened(ctx context.Context, b *LeaveBalance) error
	FindForUpdate(ctx context.Context, employeeID string, leaveType LeaveType) (*LeaveBalance, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]LeaveBalance, error)
	Save(ctx context.Context, b *LeaveBalance) error
}

type repository struct {
	db          *gorm.DB
	tx          *sql.Tx
	lockTimeout time.Duration
}

// NewRepository returns a ledger repository. lockTimeout bounds how long a
// FOR UPDATE waits for the (employee, leave type) row inside a transaction.
func NewRepository(db *gorm.DB, lockTimeout time.Duration) Repository {
	return &repository{db: db, lockTimeout: lockTimeout}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx, lockTimeout: r.lockTimeout}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return txdb.Conn(ctx, r.db, r.tx)
}

func (r *repository) EnsureOpened(ctx context.Context, b *LeaveBalance) error {
	return r.conn(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(b).Error
}

func (r *repository) FindForUpdate(ctx context.Context, employeeID string, leaveType LeaveType) (*LeaveBalance, error) {
	if r.tx != nil && r.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if _, err := r.tx.ExecContext(ctx, stmt); err != nil {
			return nil, err
		}
	}

	var b LeaveBalance
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ?", employeeID).
		Where("leave_type = ?", leaveType).
		First(&b).Error
	return &b, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]LeaveBalance, error) {
	var balances []LeaveBalance
	err := r.conn(ctx).
		Where("employee_id = ?", employeeID).
		Find(&balances).Error
	return balances, err
}

func (r *repository) Save(ctx context.Context, b *LeaveBalance) error {
	return r.conn(ctx).
		Model(b).
		Select("accrued_minor", "consumed_minor", "updated_at").
		Updates(map[string]any{
			"accrued_minor":  b.Accrued,
			"consumed_minor": b.Consumed,
			"updated_at":     time.Now().UTC(),
		}).Error
}
