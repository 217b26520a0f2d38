// Package realtime carries push notifications from the dispatcher to live
// Server-Sent-Events sessions. Any process may publish; each API process
// subscribes to the users that currently hold a session on it.
package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "leave:push:"

func ChannelFor(userID string) string {
	return channelPrefix + userID
}

type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// Bridge is the Redis pub/sub transport.
type Bridge struct {
	rdb *redis.Client
}

func NewBridge(rdb *redis.Client) *Bridge {
	return &Bridge{rdb: rdb}
}

// PushToUser publishes payload and returns the number of subscribed API
// processes. Zero means the user has no live session anywhere.
func (b *Bridge) PushToUser(ctx context.Context, userID string, payload []byte) (int64, error) {
	return b.rdb.Publish(ctx, ChannelFor(userID), payload).Result()
}

// Subscribe waits for Redis to confirm the subscription so that a push
// published right after it returns is not lost.
func (b *Bridge) Subscribe(ctx context.Context, userID string) (Subscription, error) {
	ps := b.rdb.Subscribe(ctx, ChannelFor(userID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			out <- []byte(msg.Payload)
		}
	}()
	return &redisSubscription{ps: ps, out: out}, nil
}

type redisSubscription struct {
	ps  *redis.PubSub
	out chan []byte
}

func (s *redisSubscription) Messages() <-chan []byte { return s.out }

func (s *redisSubscription) Close() error { return s.ps.Close() }
