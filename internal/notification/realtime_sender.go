package notification

import (
	"context"
	"errors"
)

// Pusher publishes to a user's live sessions and reports how many
// received it.
type Pusher interface {
	PushToUser(ctx context.Context, userID string, payload []byte) (int64, error)
}

type RealtimeSender struct {
	pusher Pusher
}

func NewRealtimeSender(pusher Pusher) *RealtimeSender {
	return &RealtimeSender{pusher: pusher}
}

func (s *RealtimeSender) Channel() Channel { return ChannelRealtime }

func (s *RealtimeSender) Send(ctx context.Context, msg Message) error {
	if msg.RecipientID == "" {
		return Permanent(errors.New("realtime delivery without recipient"))
	}
	receivers, err := s.pusher.PushToUser(ctx, msg.RecipientID, msg.Raw)
	if err != nil {
		return err
	}
	if receivers == 0 {
		return ErrNoSession
	}
	return nil
}
