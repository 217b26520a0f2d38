package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Subscriber interface {
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}

// Session is one connected SSE client.
type Session struct {
	ID     string
	UserID string
	C      chan []byte
}

type userFeed struct {
	sub      Subscription
	sessions map[*Session]struct{}
}

// Hub keeps one subscription per user per process and fans messages out to
// every local session of that user. A session that cannot keep up loses
// messages instead of blocking the others.
type Hub struct {
	subscriber Subscriber
	buffer     int
	mu         sync.Mutex
	feeds      map[string]*userFeed
	logger     *zap.Logger
}

func NewHub(subscriber Subscriber, buffer int, logger ...*zap.Logger) *Hub {
	l := zap.L().Named("realtime.hub")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("realtime.hub")
	}
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subscriber: subscriber, buffer: buffer, feeds: map[string]*userFeed{}, logger: l}
}

func (h *Hub) Attach(ctx context.Context, userID string) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := &Session{ID: uuid.NewString(), UserID: userID, C: make(chan []byte, h.buffer)}

	feed, ok := h.feeds[userID]
	if !ok {
		sub, err := h.subscriber.Subscribe(ctx, userID)
		if err != nil {
			return nil, err
		}
		feed = &userFeed{sub: sub, sessions: map[*Session]struct{}{}}
		h.feeds[userID] = feed
		go h.pump(userID, feed)
	}
	feed.sessions[s] = struct{}{}

	h.logger.Debug("session attached", zap.String("user_id", userID), zap.Int("sessions", len(feed.sessions)))
	return s, nil
}

func (h *Hub) Detach(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	feed, ok := h.feeds[s.UserID]
	if !ok {
		return
	}
	if _, ok := feed.sessions[s]; !ok {
		return
	}
	delete(feed.sessions, s)
	close(s.C)

	if len(feed.sessions) == 0 {
		delete(h.feeds, s.UserID)
		if err := feed.sub.Close(); err != nil {
			h.logger.Warn("close subscription failed", zap.String("user_id", s.UserID), zap.Error(err))
		}
	}
	h.logger.Debug("session detached", zap.String("user_id", s.UserID))
}

// Sessions returns the number of local sessions for userID.
func (h *Hub) Sessions(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if feed, ok := h.feeds[userID]; ok {
		return len(feed.sessions)
	}
	return 0
}

func (h *Hub) pump(userID string, feed *userFeed) {
	for payload := range feed.sub.Messages() {
		h.mu.Lock()
		for s := range feed.sessions {
			select {
			case s.C <- payload:
			default:
				h.logger.Warn("session too slow, push dropped", zap.String("user_id", userID), zap.String("session_id", s.ID))
			}
		}
		h.mu.Unlock()
	}
}
