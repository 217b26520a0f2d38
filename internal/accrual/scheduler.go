package accrual

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler fires RunAccrual on a cron cadence. The fire time's month is the
// month accrued, so the default "0 0 1 * *" accrues the month just starting.
type Scheduler struct {
	cron    *cron.Cron
	service Service
	logger  *zap.Logger
	// runTimeout bounds a single scheduled run.
	runTimeout time.Duration
}

func NewScheduler(spec string, service Service, runTimeout time.Duration, logger ...*zap.Logger) (*Scheduler, error) {
	l := zap.L().Named("accrual.cron")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("accrual.cron")
	}
	s := &Scheduler{
		cron:       cron.New(cron.WithLocation(time.Local)),
		service:    service,
		logger:     l,
		runTimeout: runTimeout,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.fire(time.Now()) }); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) fire(at time.Time) {
	ctx := context.Background()
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}
	month := MonthOf(at)
	s.logger.Info("scheduled accrual fired", zap.String("month", month.Key))
	if _, err := s.service.RunAccrual(ctx, month.Key); err != nil {
		s.logger.Error("scheduled accrual failed", zap.String("month", month.Key), zap.Error(err))
	}
}

// Run blocks until ctx is done, then waits for an in-flight run to return.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
}
