package notification

import "encoding/json"

type ChannelStatusResponse struct {
	Status   DeliveryStatus `json:"status"`
	Attempts int            `json:"attempts"`
}

type DeliveryResponse struct {
	ID            string         `json:"id"`
	Channel       Channel        `json:"channel"`
	RecipientID   *string        `json:"recipient_id,omitempty"`
	Status        DeliveryStatus `json:"status"`
	Attempts      int            `json:"attempts"`
	NextAttemptAt string         `json:"next_attempt_at"`
	LastError     string         `json:"last_error,omitempty"`
	SentAt        *string        `json:"sent_at,omitempty"`
}

type EventResponse struct {
	ID            string                            `json:"id"`
	Kind          Kind                              `json:"kind"`
	AggregateType string                            `json:"aggregate_type"`
	AggregateID   string                            `json:"aggregate_id"`
	RequestID     string                            `json:"request_id,omitempty"`
	CreatedAt     string                            `json:"created_at"`
	Payload       json.RawMessage                   `json:"payload"`
	Channels      map[Channel]ChannelStatusResponse `json:"channels"`
	Deliveries    []DeliveryResponse                `json:"deliveries"`
}
