package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type DispatcherConfig struct {
	Workers      int
	BatchSize    int
	PollInterval time.Duration
	ClaimTTL     time.Duration
	MaxAttempts  int
	RetryBase    time.Duration
	RetryMax     time.Duration
	Retention    time.Duration
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 3 * time.Second
	}
	if c.ClaimTTL <= 0 {
		c.ClaimTTL = time.Minute
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.RetryBase <= 0 {
		c.RetryBase = 2 * time.Second
	}
	if c.RetryMax <= 0 {
		c.RetryMax = 5 * time.Minute
	}
	if c.Retention <= 0 {
		c.Retention = 30 * 24 * time.Hour
	}
	return c
}

// Dispatcher drains the outbox. Each channel has its own poller and worker
// pool, so a slow SMTP server never delays real-time pushes.
type Dispatcher struct {
	repo    OutboxRepository
	senders map[Channel]Sender
	cfg     DispatcherConfig
	logger  *zap.Logger
	now     func() time.Time
}

func NewDispatcher(repo OutboxRepository, senders []Sender, cfg DispatcherConfig, logger ...*zap.Logger) *Dispatcher {
	l := zap.L().Named("notification.dispatcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.dispatcher")
	}
	byChannel := make(map[Channel]Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	return &Dispatcher{
		repo:    repo,
		senders: byChannel,
		cfg:     cfg.withDefaults(),
		logger:  l,
		now:     time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for ch := range d.senders {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()
			d.pollLoop(ctx, ch)
		}(ch)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.retentionLoop(ctx)
	}()
	wg.Wait()
}

func (d *Dispatcher) pollLoop(ctx context.Context, ch Channel) {
	log := d.logger.With(zap.String("channel", string(ch)))
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	log.Info("dispatcher started",
		zap.Duration("poll_interval", d.cfg.PollInterval),
		zap.Int("workers", d.cfg.Workers),
	)
	for {
		select {
		case <-ctx.Done():
			log.Info("dispatcher stopped")
			return
		case <-ticker.C:
			if _, err := d.DispatchOnce(ctx, ch); err != nil && ctx.Err() == nil {
				log.Error("dispatch batch failed", zap.Error(err))
			}
		}
	}
}

func (d *Dispatcher) retentionLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.Purge(ctx); err != nil && ctx.Err() == nil {
				d.logger.Error("purge notifications failed", zap.Error(err))
			}
		}
	}
}

// DispatchOnce claims one batch for ch and delivers it on the worker pool.
// It returns the number of deliveries attempted.
func (d *Dispatcher) DispatchOnce(ctx context.Context, ch Channel) (int, error) {
	sender, ok := d.senders[ch]
	if !ok {
		return 0, errors.New("no sender registered for channel " + string(ch))
	}

	claims, err := d.repo.ClaimDue(ctx, ch, d.cfg.BatchSize, d.cfg.ClaimTTL)
	if err != nil {
		return 0, err
	}
	if len(claims) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)
	for _, c := range claims {
		c := c
		g.Go(func() error {
			d.deliver(gctx, sender, c)
			return nil
		})
	}
	_ = g.Wait()
	return len(claims), nil
}

func (d *Dispatcher) deliver(ctx context.Context, sender Sender, c Claim) {
	log := d.logger.With(
		zap.String("delivery_id", c.Delivery.ID.String()),
		zap.String("event_id", c.Event.ID.String()),
		zap.String("channel", string(c.Delivery.Channel)),
		zap.String("kind", string(c.Event.Kind)),
		zap.String("request_id", c.Event.RequestID),
	)

	msg, err := toMessage(c)
	if err != nil {
		log.Error("decode notification payload failed", zap.Error(err))
		d.mark(log, d.repo.MarkFailed(ctx, c.Delivery.ID, err.Error()))
		return
	}

	err = sender.Send(ctx, msg)
	attempt := c.Delivery.Attempts + 1
	switch {
	case err == nil:
		log.Info("notification delivered", zap.Int("attempt", attempt))
		d.mark(log, d.repo.MarkSent(ctx, c.Delivery.ID))

	case errors.Is(err, ErrNoSession):
		log.Debug("no live session, push skipped")
		d.mark(log, d.repo.MarkSkipped(ctx, c.Delivery.ID, err.Error()))

	case IsPermanent(err):
		log.Error("notification failed permanently", zap.Int("attempt", attempt), zap.Error(err))
		d.mark(log, d.repo.MarkFailed(ctx, c.Delivery.ID, err.Error()))

	case attempt >= d.cfg.MaxAttempts:
		log.Error("notification failed, attempts exhausted", zap.Int("attempt", attempt), zap.Error(err))
		d.mark(log, d.repo.MarkFailed(ctx, c.Delivery.ID, err.Error()))

	default:
		next := d.now().Add(Backoff(attempt, d.cfg.RetryBase, d.cfg.RetryMax))
		log.Warn("notification failed, will retry",
			zap.Int("attempt", attempt),
			zap.Time("next_attempt_at", next),
			zap.Error(err),
		)
		d.mark(log, d.repo.MarkRetry(ctx, c.Delivery.ID, next, err.Error()))
	}
}

// mark logs a failed status write. The claim lease expires on its own and
// the delivery is picked up again.
func (d *Dispatcher) mark(log *zap.Logger, err error) {
	if err != nil {
		log.Error("record delivery status failed", zap.Error(err))
	}
}

// Purge removes terminal events older than the retention window.
func (d *Dispatcher) Purge(ctx context.Context) (int64, error) {
	n, err := d.repo.PurgeExpired(ctx, d.now().Add(-d.cfg.Retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		d.logger.Info("purged expired notifications", zap.Int64("events", n))
	}
	return n, nil
}

// Backoff is base * 2^(attempt-1), capped at max.
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= max {
			return max
		}
	}
	if delay > max {
		return max
	}
	return delay
}

func toMessage(c Claim) (Message, error) {
	msg := Message{
		DeliveryID:       c.Delivery.ID.String(),
		EventID:          c.Event.ID.String(),
		Kind:             c.Event.Kind,
		RecipientAddress: c.Delivery.RecipientAddress,
		RecipientLocale:  c.Delivery.RecipientLocale,
		Attempt:          c.Delivery.Attempts + 1,
		Raw:              c.Event.Payload,
	}
	if c.Delivery.RecipientID != nil {
		msg.RecipientID = c.Delivery.RecipientID.String()
	}
	if err := json.Unmarshal(c.Event.Payload, &msg.Payload); err != nil {
		return Message{}, err
	}
	return msg, nil
}
