package notification

import (
	"context"
	"errors"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/events"
)

// ErrNoSession means the recipient has no live real-time session. The
// delivery is marked SKIPPED and never retried.
var ErrNoSession = errors.New("recipient has no live session")

// PermanentError marks a delivery failure that retrying cannot fix, such as
// an invalid address or an SMTP 5xx reply.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// Message is what a sender receives for one claimed delivery.
type Message struct {
	DeliveryID       string
	EventID          string
	Kind             Kind
	RecipientID      string
	RecipientAddress string
	RecipientLocale  string
	Attempt          int
	Payload          events.LeaveLifecycleEvent
	Raw              []byte
}

//go:generate mockgen -source=sender.go -destination=mock/sender_mock.go -package=mock
type Sender interface {
	Channel() Channel
	Send(ctx context.Context, msg Message) error
}
