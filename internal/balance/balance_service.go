package balance

import (
	"context"
	"database/sql"
	"errors"

	balanceerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee"
	employeeerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const roleAdmin = "admin"

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	GetBalance(ctx context.Context, employeeID string) (BalanceResponse, error)
	OpenAccounts(ctx context.Context, employeeID string) ([]Snapshot, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	empRepo  employee.Repository
	defaults Defaults
	logger   *zap.Logger
}

func NewService(db *sql.DB, repo Repository, empRepo employee.Repository, defaults Defaults, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, empRepo: empRepo, defaults: defaults, logger: l}
}

// GetBalance returns every leave type for the employee. Types never touched
// are reported with their opening values without being persisted. Callers
// may read their own balance, their direct reports' balances, or any balance
// as admin.
func (s *service) GetBalance(ctx context.Context, employeeID string) (BalanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}

	if err := s.authorizeRead(ctx, employeeID); err != nil {
		log.Warn("balance read denied", zap.String("target_employee_id", employeeID))
		return BalanceResponse{}, err
	}

	rows, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		log.Error("find balances failed", zap.String("employee_id", employeeID), zap.Error(err))
		return BalanceResponse{}, mapRepositoryError(err)
	}

	byType := make(map[LeaveType]LeaveBalance, len(rows))
	for _, b := range rows {
		byType[b.LeaveType] = b
	}

	resp := BalanceResponse{EmployeeID: employeeID, Balances: make(map[LeaveType]BalanceEntry, len(AllLeaveTypes))}
	for _, lt := range AllLeaveTypes {
		b, ok := byType[lt]
		if !ok {
			b = s.defaults.NewBalance(empUUID, lt)
		}
		resp.Balances[lt] = mapToEntry(b)
	}
	return resp, nil
}

func (s *service) authorizeRead(ctx context.Context, employeeID string) error {
	actor, ok := contextutil.GetActor(ctx)
	if !ok || actor.EmployeeID == employeeID || actor.Role == roleAdmin {
		return nil
	}

	actorUUID, err := uuid.Parse(actor.EmployeeID)
	if err != nil {
		return balanceerrors.ErrNotAuthorized
	}
	target, err := s.empRepo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return employeeerrors.ErrEmployeeNotFound
		}
		return mapRepositoryError(err)
	}
	if !target.IsManagedBy(actorUUID) {
		return balanceerrors.ErrNotAuthorized
	}
	return nil
}

// OpenAccounts creates every missing balance row for a new employee. Rows
// that already exist are left untouched, so replaying the onboarding event
// is harmless.
func (s *service) OpenAccounts(ctx context.Context, employeeID string) ([]Snapshot, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, balanceerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	for _, lt := range AllLeaveTypes {
		b := s.defaults.NewBalance(empUUID, lt)
		if err := qtx.EnsureOpened(ctx, &b); err != nil {
			log.Error("open balance failed",
				zap.String("employee_id", employeeID),
				zap.String("leave_type", string(lt)),
				zap.Error(err),
			)
			return nil, mapRepositoryError(err)
		}
	}

	rows, err := qtx.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapRepositoryError(err)
	}

	snaps := make([]Snapshot, 0, len(rows))
	for _, b := range rows {
		snaps = append(snaps, b.Snapshot())
	}
	log.Info("balance accounts opened", zap.String("employee_id", employeeID), zap.Int("accounts", len(snaps)))
	return snaps, nil
}

func mapToEntry(b LeaveBalance) BalanceEntry {
	return BalanceEntry{
		Accrued:      b.Accrued,
		Consumed:     b.Consumed,
		Available:    b.Available(),
		CarryOverCap: b.CarryOverCap,
		Unlimited:    !b.LeaveType.Capped(),
	}
}
