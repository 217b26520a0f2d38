package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	balanceerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const maxHandleAttempts = 3

var retryBackoff = time.Second

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// AccountOpener is the balance operation run for every new employee.
type AccountOpener interface {
	OpenAccounts(ctx context.Context, employeeID string) error
}

// AccountOpenerFunc adapts a function to AccountOpener.
type AccountOpenerFunc func(ctx context.Context, employeeID string) error

func (f AccountOpenerFunc) OpenAccounts(ctx context.Context, employeeID string) error {
	return f(ctx, employeeID)
}

// ConsumeEmployeeLifecycle opens leave balances for employee_created events.
// Opening is idempotent, so redelivered messages are harmless.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	opener AccountOpener,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			log.Error("fetch employee lifecycle message failed", zap.Error(err))
			select {
			case <-ctx.Done():
				log.Info("employee lifecycle consumer stopped")
				return
			case <-time.After(retryBackoff):
			}
			continue
		}

		var event events.EmployeeCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode employee lifecycle event failed", zap.Int64("offset", msg.Offset), zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		if event.EventType != events.EventTypeEmployeeCreated {
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := openWithRetry(ctx, opener, event.EmployeeID); err != nil {
			if ctx.Err() != nil {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			log.Error("open leave balances failed, message dropped",
				zap.String("employee_id", event.EmployeeID),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		} else {
			log.Info("leave balances opened from employee_created event",
				zap.String("employee_id", event.EmployeeID),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit employee lifecycle message failed", zap.Error(err))
		}
	}
}

func openWithRetry(ctx context.Context, opener AccountOpener, employeeID string) error {
	var err error
	for attempt := 1; attempt <= maxHandleAttempts; attempt++ {
		err = opener.OpenAccounts(ctx, employeeID)
		if err == nil || errors.Is(err, balanceerrors.ErrInvalidEmployeeID) {
			return err
		}
		if attempt == maxHandleAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	return err
}
