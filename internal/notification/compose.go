package notification

import (
	"encoding/json"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/events"

	"github.com/google/uuid"
)

var eventTypes = map[Kind]string{
	KindSubmitted: events.EventTypeLeaveSubmitted,
	KindApproved:  events.EventTypeLeaveApproved,
	KindRejected:  events.EventTypeLeaveRejected,
	KindCancelled: events.EventTypeLeaveCancelled,
	KindAccrued:   events.EventTypeLeaveAccrued,
}

type Recipient struct {
	EmployeeID uuid.UUID
	Email      string
	Locale     string
}

// Routing says who hears about an event on which channel.
type Routing struct {
	Email    []Recipient
	Realtime []Recipient
	Bus      bool
}

// NewEvent stamps payload with the event identity and expands routing into
// one PENDING delivery per channel and recipient. Email recipients without
// an address are dropped.
func NewEvent(kind Kind, aggregateType string, aggregateID uuid.UUID, payload events.LeaveLifecycleEvent, routing Routing, now time.Time) (Event, error) {
	now = now.UTC()
	ev := Event{
		ID:            uuid.New(),
		Kind:          kind,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		RequestID:     payload.RequestID,
		CreatedAt:     now,
	}

	payload.EventID = ev.ID.String()
	payload.EventType = eventTypes[kind]
	payload.OccurredAt = now
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	ev.Payload = raw

	newDelivery := func(ch Channel, r *Recipient) Delivery {
		d := Delivery{
			ID:            uuid.New(),
			EventID:       ev.ID,
			Channel:       ch,
			Status:        StatusPending,
			NextAttemptAt: now,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if r != nil {
			id := r.EmployeeID
			d.RecipientID = &id
			d.RecipientAddress = r.Email
			d.RecipientLocale = r.Locale
		}
		return d
	}

	for i := range routing.Email {
		if routing.Email[i].Email == "" {
			continue
		}
		ev.Deliveries = append(ev.Deliveries, newDelivery(ChannelEmail, &routing.Email[i]))
	}
	for i := range routing.Realtime {
		ev.Deliveries = append(ev.Deliveries, newDelivery(ChannelRealtime, &routing.Realtime[i]))
	}
	if routing.Bus {
		ev.Deliveries = append(ev.Deliveries, newDelivery(ChannelBus, nil))
	}
	return ev, nil
}
