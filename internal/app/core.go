package app

import (
	"database/sql"
	"fmt"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/accrual"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/bootstrap"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/leave"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/config"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/connection"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// core holds the connections and the services shared by every process:
// the API, the worker, the consumer and the accrual CLI.
type core struct {
	cfg    *config.Config
	logger *zap.Logger
	audit  bootstrap.AuditLogger

	gormDB *gorm.DB
	sqlDB  *sql.DB
	rdb    *redis.Client

	employeeRepo employee.Repository
	balanceRepo  balance.Repository
	leaveRepo    leave.Repository
	outboxRepo   notification.OutboxRepository
	defaults     balance.Defaults
	ledger       balance.Ledger

	accrualService accrual.Service
}

func newCore(cfg *config.Config, logger *zap.Logger) (*core, error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg, 5)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	defaults, err := leaveDefaults(cfg)
	if err != nil {
		return nil, err
	}
	policy, err := accrual.ParsePolicy(cfg.AccrualTiers, cfg.AccrualFlatDays)
	if err != nil {
		return nil, err
	}

	c := &core{
		cfg:          cfg,
		logger:       logger,
		audit:        bootstrap.NewStdoutAuditLogger(logger),
		gormDB:       gormDB,
		sqlDB:        sqlDB,
		rdb:          rdb,
		employeeRepo: employee.NewRepository(gormDB),
		balanceRepo:  balance.NewRepository(gormDB, cfg.LockTimeout),
		leaveRepo:    leave.NewRepository(gormDB, cfg.LockTimeout),
		outboxRepo:   notification.NewOutboxRepository(sqlDB),
		defaults:     defaults,
	}
	c.ledger = balance.NewLedger(c.balanceRepo, defaults, logger)
	c.accrualService = accrual.NewService(
		sqlDB,
		accrual.NewRepository(gormDB),
		c.employeeRepo,
		c.ledger,
		c.outboxRepo,
		accrual.NewRedisLease(rdb),
		accrual.Options{
			Policy:       policy,
			Workers:      4,
			MaxRetries:   cfg.AccrualMaxRetries,
			RetryBackoff: cfg.AccrualRetryBackoff,
			LeaseTTL:     cfg.AccrualLeaseTTL,
		},
		logger,
	)
	return c, nil
}

func (c *core) Close() {
	if err := c.rdb.Close(); err != nil {
		c.logger.Warn("close redis failed", zap.Error(err))
	}
	if err := c.sqlDB.Close(); err != nil {
		c.logger.Warn("close database failed", zap.Error(err))
	}
}

func (c *core) migrate() error {
	return c.gormDB.AutoMigrate(
		&employee.Employee{},
		&balance.LeaveBalance{},
		&leave.LeaveApplication{},
		&notification.Event{},
		&notification.Delivery{},
		&accrual.Marker{},
		&accrual.Run{},
	)
}

func leaveDefaults(cfg *config.Config) (balance.Defaults, error) {
	paidCap, err := balance.ParseAmount(cfg.DefaultPaidCap)
	if err != nil {
		return balance.Defaults{}, fmt.Errorf("LEAVE_DEFAULT_PAID_CAP: %w", err)
	}
	sick, err := balance.ParseAmount(cfg.SickGrant)
	if err != nil {
		return balance.Defaults{}, fmt.Errorf("LEAVE_SICK_GRANT: %w", err)
	}
	casual, err := balance.ParseAmount(cfg.CasualGrant)
	if err != nil {
		return balance.Defaults{}, fmt.Errorf("LEAVE_CASUAL_GRANT: %w", err)
	}
	return balance.Defaults{PaidCap: paidCap, SickGrant: sick, CasualGrant: casual}, nil
}
