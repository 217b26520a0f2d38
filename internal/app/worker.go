package app

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/accrual"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/messaging/kafka/producer"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/realtime"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/config"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker drains the notification outbox on every channel and fires the
// monthly accrual until SIGINT or SIGTERM.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	c, err := newCore(cfg, zap.L())
	if err != nil {
		return err
	}
	defer c.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	mailer, err := notification.NewMailer(cfg.MailDriver, notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	}, zap.L())
	if err != nil {
		return err
	}
	renderer, err := notification.NewRenderer(cfg.NotifyLocale)
	if err != nil {
		return err
	}

	dispatcher := notification.NewDispatcher(
		c.outboxRepo,
		[]notification.Sender{
			notification.NewEmailSender(mailer, renderer, cfg.MailFrom),
			notification.NewRealtimeSender(realtime.NewBridge(c.rdb)),
			producer.NewBusSender(kafkaWriter),
		},
		notification.DispatcherConfig{
			Workers:      cfg.NotifyWorkers,
			BatchSize:    cfg.NotifyBatchSize,
			PollInterval: cfg.NotifyPollInterval,
			ClaimTTL:     cfg.NotifyClaimTTL,
			MaxAttempts:  cfg.NotifyMaxAttempts,
			RetryBase:    cfg.NotifyRetryBase,
			RetryMax:     cfg.NotifyRetryMax,
			Retention:    cfg.NotifyRetention,
		},
		zap.L(),
	)

	scheduler, err := accrual.NewScheduler(cfg.AccrualCron, c.accrualService, cfg.AccrualLeaseTTL, zap.L())
	if err != nil {
		return fmt.Errorf("ACCRUAL_CRON %q: %w", cfg.AccrualCron, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		scheduler.Run(ctx)
	}()
	logger.Info("worker started", zap.String("accrual_cron", cfg.AccrualCron))

	<-ctx.Done()
	logger.Info("worker shutting down")
	wg.Wait()
	return nil
}
