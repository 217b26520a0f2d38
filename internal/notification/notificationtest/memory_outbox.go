// Package notificationtest provides an in-memory notification.OutboxRepository
// with the claim and mark semantics of the SQL outbox on a movable clock.
package notificationtest

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification"

	"github.com/google/uuid"
)

// MemoryOutbox ignores transactions: appended events are visible at once
// and are not rolled back.
type MemoryOutbox struct {
	mu         sync.Mutex
	clock      time.Time
	order      []uuid.UUID
	events     map[uuid.UUID]notification.Event
	deliveries map[uuid.UUID]*notification.Delivery

	// FailAppend, when set, is returned by Append.
	FailAppend error
}

func NewMemoryOutbox() *MemoryOutbox {
	return &MemoryOutbox{
		clock:      time.Now(),
		events:     map[uuid.UUID]notification.Event{},
		deliveries: map[uuid.UUID]*notification.Delivery{},
	}
}

// Advance moves the clock used to decide which deliveries are due.
func (m *MemoryOutbox) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(d)
}

// Events returns appended events in append order, without deliveries.
func (m *MemoryOutbox) Events() []notification.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notification.Event, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.events[id])
	}
	return out
}

// Kinds returns the kinds of appended events in append order.
func (m *MemoryOutbox) Kinds() []notification.Kind {
	var kinds []notification.Kind
	for _, ev := range m.Events() {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func (m *MemoryOutbox) WithTx(*sql.Tx) notification.OutboxRepository { return m }

func (m *MemoryOutbox) Append(_ context.Context, ev notification.Event) error {
	if err := notification.ValidateEvent(ev); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAppend != nil {
		return m.FailAppend
	}
	for _, d := range ev.Deliveries {
		d := d
		m.deliveries[d.ID] = &d
	}
	ev.Deliveries = nil
	m.events[ev.ID] = ev
	m.order = append(m.order, ev.ID)
	return nil
}

func (m *MemoryOutbox) ClaimDue(_ context.Context, ch notification.Channel, limit int, lease time.Duration) ([]notification.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	due := make([]*notification.Delivery, 0)
	for _, d := range m.deliveries {
		if d.Channel != ch || d.Status != notification.StatusPending || d.NextAttemptAt.After(m.clock) {
			continue
		}
		if d.LockedUntil != nil && d.LockedUntil.After(m.clock) {
			continue
		}
		due = append(due, d)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextAttemptAt.Before(due[j].NextAttemptAt) })
	if len(due) > limit {
		due = due[:limit]
	}

	out := make([]notification.Claim, 0, len(due))
	for _, d := range due {
		until := m.clock.Add(lease)
		d.LockedUntil = &until
		out = append(out, notification.Claim{Delivery: *d, Event: m.events[d.EventID]})
	}
	return out, nil
}

func (m *MemoryOutbox) finish(id uuid.UUID, status notification.DeliveryStatus, reason string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deliveries[id]
	if d.Status != notification.StatusPending {
		return false
	}
	d.Status = status
	d.Attempts++
	d.LockedUntil = nil
	d.LastError = reason
	if status == notification.StatusSent {
		now := m.clock
		d.SentAt = &now
	}
	return true
}

func (m *MemoryOutbox) MarkSent(_ context.Context, id uuid.UUID) error {
	m.finish(id, notification.StatusSent, "")
	return nil
}

func (m *MemoryOutbox) MarkSkipped(_ context.Context, id uuid.UUID, reason string) error {
	m.finish(id, notification.StatusSkipped, reason)
	return nil
}

func (m *MemoryOutbox) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	m.finish(id, notification.StatusFailed, reason)
	return nil
}

func (m *MemoryOutbox) MarkRetry(_ context.Context, id uuid.UUID, next time.Time, reason string) error {
	if !m.finish(id, notification.StatusPending, reason) {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[id].NextAttemptAt = next
	return nil
}

func (m *MemoryOutbox) GetEvent(_ context.Context, id uuid.UUID) (*notification.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for _, d := range m.deliveries {
		if d.EventID == id {
			ev.Deliveries = append(ev.Deliveries, *d)
		}
	}
	sort.Slice(ev.Deliveries, func(i, j int) bool {
		if ev.Deliveries[i].Channel != ev.Deliveries[j].Channel {
			return ev.Deliveries[i].Channel < ev.Deliveries[j].Channel
		}
		return ev.Deliveries[i].ID.String() < ev.Deliveries[j].ID.String()
	})
	return &ev, nil
}

func (m *MemoryOutbox) PurgeExpired(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var purged int64
	kept := m.order[:0]
	for _, id := range m.order {
		ev := m.events[id]
		terminal := true
		for _, d := range m.deliveries {
			if d.EventID == id && !d.Status.Terminal() {
				terminal = false
			}
		}
		if terminal && ev.CreatedAt.Before(olderThan) {
			for did, d := range m.deliveries {
				if d.EventID == id {
					delete(m.deliveries, did)
				}
			}
			delete(m.events, id)
			purged++
			continue
		}
		kept = append(kept, id)
	}
	m.order = kept
	return purged, nil
}
