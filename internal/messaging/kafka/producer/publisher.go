// Package producer publishes leave lifecycle events to Kafka as the BUS
// delivery channel of the notification dispatcher.
package producer

import (
	"context"
	"errors"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/events"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type BusSender struct {
	writer MessageWriter
	topic  string
}

func NewBusSender(writer MessageWriter) *BusSender {
	return &BusSender{writer: writer, topic: events.LeaveLifecycleTopic}
}

func (s *BusSender) Channel() notification.Channel { return notification.ChannelBus }

// Send keys each message by its aggregate, so events of one application
// land on one partition in commit order.
func (s *BusSender) Send(ctx context.Context, msg notification.Message) error {
	key := msg.Payload.ApplicationID
	if key == "" {
		key = msg.Payload.EmployeeID
	}
	err := s.writer.WriteMessages(ctx, kafkago.Message{
		Topic: s.topic,
		Key:   []byte(key),
		Value: msg.Raw,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(msg.EventID)},
			{Key: "event_type", Value: []byte(msg.Payload.EventType)},
		},
	})
	if err == nil {
		return nil
	}

	var tooLarge kafkago.MessageTooLargeError
	if errors.As(err, &tooLarge) {
		return notification.Permanent(err)
	}
	var kerr kafkago.Error
	if errors.As(err, &kerr) && !kerr.Temporary() {
		return notification.Permanent(err)
	}
	return err
}
