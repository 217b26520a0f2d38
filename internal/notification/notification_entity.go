package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Kind string

const (
	KindSubmitted Kind = "SUBMITTED"
	KindApproved  Kind = "APPROVED"
	KindRejected  Kind = "REJECTED"
	KindCancelled Kind = "CANCELLED"
	KindAccrued   Kind = "ACCRUED"
)

type Channel string

const (
	ChannelEmail    Channel = "EMAIL"
	ChannelRealtime Channel = "REALTIME"
	ChannelBus      Channel = "BUS"
)

type DeliveryStatus string

const (
	StatusPending DeliveryStatus = "PENDING"
	StatusSent    DeliveryStatus = "SENT"
	StatusFailed  DeliveryStatus = "FAILED"
	// StatusSkipped marks a real-time push with no live session. Real-time
	// delivery is best effort and is not retried.
	StatusSkipped DeliveryStatus = "SKIPPED"
)

const (
	AggregateLeaveApplication = "leave_application"
	AggregateLeaveBalance     = "leave_balance"
)

// Event is one domain event written to the outbox in the same transaction
// as the state change it describes.
type Event struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Kind          Kind           `gorm:"type:varchar(20);not null"`
	AggregateType string         `gorm:"type:varchar(40);not null"`
	AggregateID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_notification_events_aggregate"`
	RequestID     string         `gorm:"type:varchar(64)"`
	Payload       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time      `gorm:"not null;index:idx_notification_events_created"`
	Deliveries    []Delivery     `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
}

func (Event) TableName() string { return "notification_events" }

// Delivery is the per channel, per recipient part of an event.
type Delivery struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	EventID          uuid.UUID      `gorm:"type:uuid;not null;index"`
	Channel          Channel        `gorm:"type:varchar(10);not null;index:idx_notification_deliveries_due,priority:1"`
	RecipientID      *uuid.UUID     `gorm:"type:uuid"`
	RecipientAddress string         `gorm:"type:varchar(255)"`
	RecipientLocale  string         `gorm:"type:varchar(10)"`
	Status           DeliveryStatus `gorm:"type:varchar(10);not null;index:idx_notification_deliveries_due,priority:2"`
	Attempts         int            `gorm:"not null;default:0"`
	NextAttemptAt    time.Time      `gorm:"not null;index:idx_notification_deliveries_due,priority:3"`
	LockedUntil      *time.Time
	LastError        string `gorm:"type:text"`
	SentAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Delivery) TableName() string { return "notification_deliveries" }

func (s DeliveryStatus) Terminal() bool {
	return s != StatusPending
}

// FoldStatus reduces delivery rows to one status per channel: any PENDING
// row keeps the channel PENDING, otherwise any FAILED row makes it FAILED,
// otherwise it is SENT. A channel whose rows are all SKIPPED is SKIPPED.
func FoldStatus(deliveries []Delivery) map[Channel]DeliveryStatus {
	type acc struct{ pending, failed, sent, skipped int }
	per := map[Channel]*acc{}
	for _, d := range deliveries {
		a, ok := per[d.Channel]
		if !ok {
			a = &acc{}
			per[d.Channel] = a
		}
		switch d.Status {
		case StatusPending:
			a.pending++
		case StatusFailed:
			a.failed++
		case StatusSent:
			a.sent++
		case StatusSkipped:
			a.skipped++
		}
	}

	out := make(map[Channel]DeliveryStatus, len(per))
	for ch, a := range per {
		switch {
		case a.pending > 0:
			out[ch] = StatusPending
		case a.failed > 0:
			out[ch] = StatusFailed
		case a.sent == 0 && a.skipped > 0:
			out[ch] = StatusSkipped
		default:
			out[ch] = StatusSent
		}
	}
	return out
}
