package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/events"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/messaging/kafka/consumer"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/config"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer opens leave balances for employees created by onboarding.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	c, err := newCore(cfg, zap.L())
	if err != nil {
		return err
	}
	defer c.Close()

	balanceService := balance.NewService(c.sqlDB, c.balanceRepo, c.employeeRepo, c.defaults, zap.L())

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.EmployeeLifecycleTopic,
		GroupID:        "leave-engine-balance-opener",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opener := consumer.AccountOpenerFunc(func(ctx context.Context, employeeID string) error {
		_, err := balanceService.OpenAccounts(ctx, employeeID)
		return err
	})
	consumer.ConsumeEmployeeLifecycle(ctx, reader, opener, zap.L())

	logger.Info("consumer shut down")
	return nil
}
