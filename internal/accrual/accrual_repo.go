package accrual

import (
	"context"
	"database/sql"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/txdb"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=accrual_repo.go -destination=mock/accrual_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// InsertMarker reports false when the employee was already accrued for
	// the month.
	InsertMarker(ctx context.Context, m *Marker) (bool, error)
	SaveRun(ctx context.Context, run *Run) error
	FindRun(ctx context.Context, monthKey string) (*Run, error)
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

func (r *repository) InsertMarker(ctx context.Context, m *Marker) (bool, error) {
	res := r.conn(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) SaveRun(ctx context.Context, run *Run) error {
	return r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "month_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "started_at", "finished_at", "succeeded", "skipped", "failed", "owner", "last_error"}),
		}).
		Create(run).Error
}

func (r *repository) FindRun(ctx context.Context, monthKey string) (*Run, error) {
	var run Run
	err := r.conn(ctx).First(&run, "month_key = ?", monthKey).Error
	return &run, err
}
