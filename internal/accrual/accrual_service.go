package accrual

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	accrualerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/accrual/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/events"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/contextutil"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/dberr"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const leaseKey = "leave:accrual:run"

//go:generate mockgen -source=accrual_service.go -destination=mock/accrual_service_mock.go -package=mock
type Service interface {
	RunAccrual(ctx context.Context, monthKey string) (RunResponse, error)
	GetRun(ctx context.Context, monthKey string) (RunResponse, error)
}

type Options struct {
	Policy Policy
	// Workers bounds how many employees are accrued concurrently.
	Workers int
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries   int
	RetryBackoff time.Duration
	LeaseTTL     time.Duration
}

type outcome int

const (
	outcomeCredited outcome = iota
	outcomeSkipped
)

type service struct {
	db      *sql.DB
	repo    Repository
	empRepo employee.Repository
	ledger  balance.Ledger
	outbox  notification.OutboxRepository
	lease   Lease
	opts    Options
	logger  *zap.Logger
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewService(
	db *sql.DB,
	repo Repository,
	empRepo employee.Repository,
	ledger balance.Ledger,
	outbox notification.OutboxRepository,
	lease Lease,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("accrual.scheduler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("accrual.scheduler")
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = 30 * time.Minute
	}
	return &service{
		db:      db,
		repo:    repo,
		empRepo: empRepo,
		ledger:  ledger,
		outbox:  outbox,
		lease:   lease,
		opts:    opts,
		logger:  l,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

func (s *service) RunAccrual(ctx context.Context, monthKey string) (RunResponse, error) {
	month, err := ParseMonth(monthKey)
	if err != nil {
		return RunResponse{}, err
	}
	log := contextutil.GetLogger(ctx, s.logger).With(zap.String("month", month.Key))

	token, ok, err := s.lease.Acquire(ctx, leaseKey, s.opts.LeaseTTL)
	if err != nil {
		log.Error("acquire accrual lease failed", zap.Error(err))
		return RunResponse{}, err
	}
	if !ok {
		log.Warn("accrual run refused, another run holds the lease")
		return RunResponse{}, accrualerrors.ErrRunInProgress
	}
	defer func() {
		if err := s.lease.Release(context.WithoutCancel(ctx), leaseKey, token); err != nil {
			log.Warn("release accrual lease failed", zap.Error(err))
		}
	}()

	// The run has to end before the lease can expire under it.
	ctx, cancel := context.WithTimeout(ctx, s.opts.LeaseTTL-s.opts.LeaseTTL/10)
	defer cancel()

	run := &Run{
		MonthKey:  month.Key,
		Status:    RunRunning,
		StartedAt: s.now().UTC(),
		Owner:     token,
	}
	if err := s.repo.SaveRun(ctx, run); err != nil {
		return RunResponse{}, dberr.Translate(err)
	}

	candidates, err := s.empRepo.ListAccrualCandidates(ctx, month.End)
	if err != nil {
		s.finish(ctx, log, run, RunFailed, err)
		return RunResponse{}, dberr.Translate(err)
	}

	var (
		credited, skipped, failed atomic.Int64
		mu                        sync.Mutex
		lastErr                   error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for _, emp := range candidates {
		emp := emp
		if !emp.EligibleForAccrual(month.End) {
			skipped.Add(1)
			continue
		}
		g.Go(func() error {
			out, err := s.accrueWithRetry(gctx, month, emp)
			switch {
			case err != nil:
				failed.Add(1)
				mu.Lock()
				lastErr = err
				mu.Unlock()
				log.Error("accrual failed for employee",
					zap.String("employee_id", emp.ID.String()),
					zap.Error(err),
				)
			case out == outcomeSkipped:
				skipped.Add(1)
			default:
				credited.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	run.Succeeded = int(credited.Load())
	run.Skipped = int(skipped.Load())
	run.Failed = int(failed.Load())
	if err := ctx.Err(); err != nil {
		s.finish(ctx, log, run, RunFailed, err)
		log.Warn("accrual run stopped before every employee was processed",
			zap.Int("credited", run.Succeeded),
			zap.Int("failed", run.Failed),
			zap.Error(err),
		)
		return RunResponse{}, dberr.Translate(err)
	}
	s.finish(ctx, log, run, RunCompleted, lastErr)

	log.Info("accrual run finished",
		zap.Int("candidates", len(candidates)),
		zap.Int("credited", run.Succeeded),
		zap.Int("skipped", run.Skipped),
		zap.Int("failed", run.Failed),
	)
	return mapToResponse(*run), nil
}

func (s *service) finish(ctx context.Context, log *zap.Logger, run *Run, status RunStatus, cause error) {
	finished := s.now().UTC()
	run.Status = status
	run.FinishedAt = &finished
	if cause != nil {
		run.LastError = cause.Error()
	}
	if err := s.repo.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		log.Error("save accrual run failed", zap.Error(err))
	}
}

func (s *service) accrueWithRetry(ctx context.Context, month Month, emp employee.Employee) (outcome, error) {
	var err error
	for attempt := 0; attempt <= s.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := s.opts.RetryBackoff << (attempt - 1)
			s.logger.Debug("retrying accrual",
				zap.String("employee_id", emp.ID.String()),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", wait),
				zap.Error(err),
			)
			if serr := s.sleep(ctx, wait); serr != nil {
				return 0, err
			}
		}
		var out outcome
		out, err = s.accrueOne(ctx, month, emp)
		if err == nil {
			return out, nil
		}
	}
	return 0, err
}

// accrueOne writes the marker, the credit and the ACCRUED event in one
// transaction. A marker conflict means the month was already accrued.
func (s *service) accrueOne(ctx context.Context, month Month, emp employee.Employee) (outcome, error) {
	amount := s.opts.Policy.AmountFor(emp)
	if !amount.IsPositive() {
		return outcomeSkipped, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, dberr.Translate(err)
	}
	defer tx.Rollback()

	now := s.now().UTC()
	inserted, err := s.repo.WithTx(tx).InsertMarker(ctx, &Marker{
		EmployeeID: emp.ID,
		MonthKey:   month.Key,
		Amount:     amount,
		CreatedAt:  now,
	})
	if err != nil {
		return 0, dberr.Translate(err)
	}
	if !inserted {
		return outcomeSkipped, nil
	}

	res, err := s.ledger.WithTx(tx).Credit(ctx, emp.ID.String(), balance.LeaveTypePaid, amount)
	if err != nil {
		return 0, err
	}

	if res.Credited.IsPositive() {
		if err := s.appendAccrued(ctx, tx, month, emp, res, now); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, dberr.Translate(err)
	}
	return outcomeCredited, nil
}

func (s *service) appendAccrued(ctx context.Context, tx *sql.Tx, month Month, emp employee.Employee, res balance.CreditResult, now time.Time) error {
	payload := events.LeaveLifecycleEvent{
		RequestID:    contextutil.GetRequestID(ctx),
		EmployeeID:   emp.ID.String(),
		EmployeeName: emp.FullName,
		LeaveType:    string(balance.LeaveTypePaid),
		MonthKey:     month.Key,
		Credited:     res.Credited.String(),
		Discarded:    res.Discarded.String(),
		Available:    res.Snapshot.Available.String(),
	}
	if emp.ManagerID != nil {
		payload.ManagerID = emp.ManagerID.String()
	}

	self := notification.Recipient{EmployeeID: emp.ID, Email: emp.Email, Locale: emp.Locale}
	routing := notification.Routing{
		Email:    []notification.Recipient{self},
		Realtime: []notification.Recipient{self},
		Bus:      true,
	}
	ev, err := notification.NewEvent(notification.KindAccrued, notification.AggregateLeaveBalance, emp.ID, payload, routing, now)
	if err != nil {
		return err
	}
	if err := s.outbox.WithTx(tx).Append(ctx, ev); err != nil {
		return dberr.Translate(err)
	}
	return nil
}

func (s *service) GetRun(ctx context.Context, monthKey string) (RunResponse, error) {
	if _, err := ParseMonth(monthKey); err != nil {
		return RunResponse{}, err
	}
	run, err := s.repo.FindRun(ctx, monthKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RunResponse{}, accrualerrors.ErrRunNotFound
		}
		return RunResponse{}, dberr.Translate(err)
	}
	return mapToResponse(*run), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
