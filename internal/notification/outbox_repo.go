package notification

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Claim is a delivery leased to one dispatcher worker together with the
// event it belongs to.
type Claim struct {
	Delivery Delivery
	Event    Event
}

// OutboxRepository stores events and their deliveries. The Mark methods only
// touch deliveries that are still PENDING, so a late result from a worker
// whose claim expired cannot overwrite a finished delivery.
//
//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock
type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Append(ctx context.Context, event Event) error
	ClaimDue(ctx context.Context, channel Channel, limit int, lease time.Duration) ([]Claim, error)
	MarkSent(ctx context.Context, deliveryID uuid.UUID) error
	MarkSkipped(ctx context.Context, deliveryID uuid.UUID, reason string) error
	MarkRetry(ctx context.Context, deliveryID uuid.UUID, nextAttemptAt time.Time, reason string) error
	MarkFailed(ctx context.Context, deliveryID uuid.UUID, reason string) error
	GetEvent(ctx context.Context, eventID uuid.UUID) (*Event, error)
	PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

// Append must run on a transaction bound with WithTx so the event commits
// with the state change.
func (r *outboxRepository) Append(ctx context.Context, event Event) error {
	if r.tx == nil {
		return errors.New("outbox append requires a transaction")
	}
	if err := ValidateEvent(event); err != nil {
		return err
	}

	_, err := r.tx.ExecContext(ctx, `
INSERT INTO notification_events (id, kind, aggregate_type, aggregate_id, request_id, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`,
		event.ID, string(event.Kind), event.AggregateType, event.AggregateID,
		event.RequestID, event.Payload, event.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, d := range event.Deliveries {
		_, err := r.tx.ExecContext(ctx, `
INSERT INTO notification_deliveries (
	id, event_id, channel, recipient_id, recipient_address, recipient_locale,
	status, attempts, next_attempt_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, $9)
`,
			d.ID, event.ID, string(d.Channel), d.RecipientID, d.RecipientAddress,
			d.RecipientLocale, string(StatusPending), d.NextAttemptAt, event.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ClaimDue leases up to limit due PENDING deliveries of one channel.
// SKIP LOCKED lets several workers claim concurrently without blocking or
// double claiming; an expired lease makes the row claimable again.
func (r *outboxRepository) ClaimDue(ctx context.Context, channel Channel, limit int, lease time.Duration) ([]Claim, error) {
	rows, err := r.db.QueryContext(ctx, `
UPDATE notification_deliveries d
SET
	locked_until = NOW() + ($3 * INTERVAL '1 millisecond'),
	updated_at = NOW()
FROM notification_events e
WHERE e.id = d.event_id
	AND d.id IN (
		SELECT id FROM notification_deliveries
		WHERE channel = $1
			AND status = 'PENDING'
			AND next_attempt_at <= NOW()
			AND (locked_until IS NULL OR locked_until < NOW())
		ORDER BY next_attempt_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	)
RETURNING
	d.id, d.event_id, d.channel, d.recipient_id, COALESCE(d.recipient_address, ''),
	COALESCE(d.recipient_locale, ''), d.attempts,
	e.kind, e.aggregate_type, e.aggregate_id, COALESCE(e.request_id, ''), e.payload, e.created_at
`, string(channel), limit, lease.Milliseconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claims := make([]Claim, 0, limit)
	for rows.Next() {
		var (
			c           Claim
			recipientID uuid.NullUUID
		)
		if err := rows.Scan(
			&c.Delivery.ID,
			&c.Delivery.EventID,
			&c.Delivery.Channel,
			&recipientID,
			&c.Delivery.RecipientAddress,
			&c.Delivery.RecipientLocale,
			&c.Delivery.Attempts,
			&c.Event.Kind,
			&c.Event.AggregateType,
			&c.Event.AggregateID,
			&c.Event.RequestID,
			&c.Event.Payload,
			&c.Event.CreatedAt,
		); err != nil {
			return nil, err
		}
		if recipientID.Valid {
			id := recipientID.UUID
			c.Delivery.RecipientID = &id
		}
		c.Delivery.Status = StatusPending
		c.Event.ID = c.Delivery.EventID
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, deliveryID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE notification_deliveries
SET
	status = $2,
	attempts = attempts + 1,
	sent_at = NOW(),
	locked_until = NULL,
	last_error = NULL,
	updated_at = NOW()
WHERE id = $1 AND status = 'PENDING'
`, deliveryID, string(StatusSent))
	return err
}

func (r *outboxRepository) MarkSkipped(ctx context.Context, deliveryID uuid.UUID, reason string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE notification_deliveries
SET
	status = $2,
	attempts = attempts + 1,
	locked_until = NULL,
	last_error = LEFT($3, 500),
	updated_at = NOW()
WHERE id = $1 AND status = 'PENDING'
`, deliveryID, string(StatusSkipped), reason)
	return err
}

func (r *outboxRepository) MarkRetry(ctx context.Context, deliveryID uuid.UUID, nextAttemptAt time.Time, reason string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE notification_deliveries
SET
	attempts = attempts + 1,
	next_attempt_at = $2,
	locked_until = NULL,
	last_error = LEFT($3, 500),
	updated_at = NOW()
WHERE id = $1 AND status = 'PENDING'
`, deliveryID, nextAttemptAt, reason)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, deliveryID uuid.UUID, reason string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE notification_deliveries
SET
	status = $2,
	attempts = attempts + 1,
	locked_until = NULL,
	last_error = LEFT($3, 500),
	updated_at = NOW()
WHERE id = $1 AND status = 'PENDING'
`, deliveryID, string(StatusFailed), reason)
	return err
}

func (r *outboxRepository) GetEvent(ctx context.Context, eventID uuid.UUID) (*Event, error) {
	var e Event
	err := r.db.QueryRowContext(ctx, `
SELECT id, kind, aggregate_type, aggregate_id, COALESCE(request_id, ''), payload, created_at
FROM notification_events
WHERE id = $1
`, eventID).Scan(&e.ID, &e.Kind, &e.AggregateType, &e.AggregateID, &e.RequestID, &e.Payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT
	id, channel, recipient_id, COALESCE(recipient_address, ''), status, attempts,
	next_attempt_at, COALESCE(last_error, ''), sent_at
FROM notification_deliveries
WHERE event_id = $1
ORDER BY channel, created_at
`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			d           Delivery
			recipientID uuid.NullUUID
			sentAt      sql.NullTime
		)
		if err := rows.Scan(
			&d.ID, &d.Channel, &recipientID, &d.RecipientAddress, &d.Status,
			&d.Attempts, &d.NextAttemptAt, &d.LastError, &sentAt,
		); err != nil {
			return nil, err
		}
		d.EventID = e.ID
		if recipientID.Valid {
			id := recipientID.UUID
			d.RecipientID = &id
		}
		if sentAt.Valid {
			t := sentAt.Time
			d.SentAt = &t
		}
		e.Deliveries = append(e.Deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &e, nil
}

// PurgeExpired deletes events created before olderThan whose deliveries are
// all terminal, together with their deliveries.
func (r *outboxRepository) PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
WITH expired AS (
	SELECT e.id FROM notification_events e
	WHERE e.created_at < $1
		AND NOT EXISTS (
			SELECT 1 FROM notification_deliveries d
			WHERE d.event_id = e.id AND d.status = 'PENDING'
		)
), purged_deliveries AS (
	DELETE FROM notification_deliveries WHERE event_id IN (SELECT id FROM expired)
)
DELETE FROM notification_events WHERE id IN (SELECT id FROM expired)
`, olderThan)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func ValidateEvent(event Event) error {
	if event.ID == uuid.Nil {
		return errors.New("notification event id is required")
	}
	if _, ok := eventTypes[event.Kind]; !ok {
		return errors.New("unknown notification kind: " + string(event.Kind))
	}
	if len(event.Payload) == 0 {
		return errors.New("notification payload is required")
	}
	for _, d := range event.Deliveries {
		switch d.Channel {
		case ChannelEmail, ChannelRealtime, ChannelBus:
		default:
			return errors.New("unknown notification channel: " + string(d.Channel))
		}
	}
	return nil
}
