package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/events"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification/notificationtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type scriptedSender struct {
	mu      sync.Mutex
	channel notification.Channel
	results []error
	calls   int
	last    notification.Message
}

func (s *scriptedSender) Channel() notification.Channel { return s.channel }

func (s *scriptedSender) Send(_ context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = msg
	s.calls++
	if len(s.results) == 0 {
		return nil
	}
	err := s.results[0]
	s.results = s.results[1:]
	return err
}

type fixedPusher struct{ receivers int64 }

func (p fixedPusher) PushToUser(context.Context, string, []byte) (int64, error) {
	return p.receivers, nil
}

func appendSubmitted(t *testing.T, repo *notificationtest.MemoryOutbox, manager notification.Recipient) notification.Event {
	t.Helper()
	ev, err := notification.NewEvent(notification.KindSubmitted, notification.AggregateLeaveApplication, uuid.New(),
		events.LeaveLifecycleEvent{EmployeeName: "Ana", LeaveType: "PAID", StartDate: "2026-03-01", EndDate: "2026-03-05", TotalDays: 5},
		notification.Routing{Email: []notification.Recipient{manager}, Realtime: []notification.Recipient{manager}},
		time.Now().Add(-time.Minute),
	)
	assert.NoError(t, err)
	assert.NoError(t, repo.Append(context.Background(), ev))
	return ev
}

func channelStatus(t *testing.T, repo *notificationtest.MemoryOutbox, eventID uuid.UUID) map[notification.Channel]notification.DeliveryStatus {
	t.Helper()
	ev, err := repo.GetEvent(context.Background(), eventID)
	assert.NoError(t, err)
	return notification.FoldStatus(ev.Deliveries)
}

var testCfg = notification.DispatcherConfig{
	Workers:     2,
	BatchSize:   10,
	MaxAttempts: 5,
	RetryBase:   time.Second,
	RetryMax:    time.Minute,
	ClaimTTL:    time.Minute,
}

func TestDispatcher_EmailRetriesWhileRealtimeIsIndependent(t *testing.T) {
	ctx := context.Background()
	repo := notificationtest.NewMemoryOutbox()
	manager := notification.Recipient{EmployeeID: uuid.New(), Email: "boss@corp.test", Locale: "en"}
	ev := appendSubmitted(t, repo, manager)

	transient := errors.New("451 try again later")
	email := &scriptedSender{channel: notification.ChannelEmail, results: []error{transient, transient, nil}}
	realtime := notification.NewRealtimeSender(fixedPusher{receivers: 1})
	d := notification.NewDispatcher(repo, []notification.Sender{email, realtime}, testCfg)

	n, err := d.DispatchOnce(ctx, notification.ChannelEmail)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = d.DispatchOnce(ctx, notification.ChannelRealtime)
	assert.NoError(t, err)

	st := channelStatus(t, repo, ev.ID)
	assert.Equal(t, notification.StatusPending, st[notification.ChannelEmail])
	assert.Equal(t, notification.StatusSent, st[notification.ChannelRealtime])

	// not due yet
	n, err = d.DispatchOnce(ctx, notification.ChannelEmail)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)

	repo.Advance(time.Hour)
	_, err = d.DispatchOnce(ctx, notification.ChannelEmail)
	assert.NoError(t, err)
	assert.Equal(t, notification.StatusPending, channelStatus(t, repo, ev.ID)[notification.ChannelEmail])

	repo.Advance(time.Hour)
	_, err = d.DispatchOnce(ctx, notification.ChannelEmail)
	assert.NoError(t, err)

	got, _ := repo.GetEvent(ctx, ev.ID)
	assert.Equal(t, notification.StatusSent, notification.FoldStatus(got.Deliveries)[notification.ChannelEmail])
	for _, dl := range got.Deliveries {
		if dl.Channel == notification.ChannelEmail {
			assert.Equal(t, 3, dl.Attempts)
		}
	}
	assert.Equal(t, 3, email.calls)
	assert.Equal(t, "boss@corp.test", email.last.RecipientAddress)
	assert.Equal(t, "Ana", email.last.Payload.EmployeeName)
}

func TestDispatcher_TerminalOutcomes(t *testing.T) {
	ctx := context.Background()
	manager := notification.Recipient{EmployeeID: uuid.New(), Email: "boss@corp.test"}

	t.Run("permanent error fails immediately", func(t *testing.T) {
		repo := notificationtest.NewMemoryOutbox()
		ev := appendSubmitted(t, repo, manager)
		email := &scriptedSender{channel: notification.ChannelEmail, results: []error{notification.Permanent(errors.New("550 no such user"))}}
		d := notification.NewDispatcher(repo, []notification.Sender{email}, testCfg)

		_, err := d.DispatchOnce(ctx, notification.ChannelEmail)

		assert.NoError(t, err)
		assert.Equal(t, notification.StatusFailed, channelStatus(t, repo, ev.ID)[notification.ChannelEmail])
	})

	t.Run("attempts exhausted", func(t *testing.T) {
		repo := notificationtest.NewMemoryOutbox()
		ev := appendSubmitted(t, repo, manager)
		down := errors.New("connection refused")
		email := &scriptedSender{channel: notification.ChannelEmail, results: []error{down, down, down, down, down, down}}
		d := notification.NewDispatcher(repo, []notification.Sender{email}, testCfg)

		for i := 0; i < 6; i++ {
			_, err := d.DispatchOnce(ctx, notification.ChannelEmail)
			assert.NoError(t, err)
			repo.Advance(time.Hour)
		}

		assert.Equal(t, notification.StatusFailed, channelStatus(t, repo, ev.ID)[notification.ChannelEmail])
		assert.Equal(t, 5, email.calls)
	})

	t.Run("no live session is skipped, not retried", func(t *testing.T) {
		repo := notificationtest.NewMemoryOutbox()
		ev := appendSubmitted(t, repo, manager)
		d := notification.NewDispatcher(repo, []notification.Sender{notification.NewRealtimeSender(fixedPusher{})}, testCfg)

		_, err := d.DispatchOnce(ctx, notification.ChannelRealtime)
		assert.NoError(t, err)
		repo.Advance(time.Hour)
		n, err := d.DispatchOnce(ctx, notification.ChannelRealtime)
		assert.NoError(t, err)

		assert.Equal(t, 0, n)
		assert.Equal(t, notification.StatusSkipped, channelStatus(t, repo, ev.ID)[notification.ChannelRealtime])
	})

	t.Run("unregistered channel is an error", func(t *testing.T) {
		d := notification.NewDispatcher(notificationtest.NewMemoryOutbox(), nil, testCfg)

		_, err := d.DispatchOnce(ctx, notification.ChannelBus)

		assert.Error(t, err)
	})
}

func TestBackoff(t *testing.T) {
	base, max := 2*time.Second, 5*time.Minute
	assert.Equal(t, 2*time.Second, notification.Backoff(1, base, max))
	assert.Equal(t, 4*time.Second, notification.Backoff(2, base, max))
	assert.Equal(t, 16*time.Second, notification.Backoff(4, base, max))
	assert.Equal(t, max, notification.Backoff(20, base, max))
}
