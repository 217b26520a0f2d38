package realtime_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/middleware"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

type fakeSubscription struct {
	ch     chan []byte
	once   sync.Once
	closed bool
}

func (f *fakeSubscription) Messages() <-chan []byte { return f.ch }

func (f *fakeSubscription) Close() error {
	f.once.Do(func() {
		f.closed = true
		close(f.ch)
	})
	return nil
}

type fakeSubscriber struct {
	mu   sync.Mutex
	subs map[string]*fakeSubscription
	n    int
}

func (f *fakeSubscriber) Subscribe(_ context.Context, userID string) (realtime.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs == nil {
		f.subs = map[string]*fakeSubscription{}
	}
	s := &fakeSubscription{ch: make(chan []byte, 4)}
	f.subs[userID] = s
	f.n++
	return s, nil
}

func (f *fakeSubscriber) get(userID string) *fakeSubscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[userID]
}

func TestBridge_PushToUser(t *testing.T) {
	db, mock := redismock.NewClientMock()
	bridge := realtime.NewBridge(db)

	mock.ExpectPublish("leave:push:emp-1", []byte(`{"kind":"APPROVED"}`)).SetVal(1)
	mock.ExpectPublish("leave:push:emp-2", []byte(`{}`)).SetVal(0)

	n, err := bridge.PushToUser(context.Background(), "emp-1", []byte(`{"kind":"APPROVED"}`))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = bridge.PushToUser(context.Background(), "emp-2", []byte(`{}`))
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHub_FanOutAndDetach(t *testing.T) {
	sub := &fakeSubscriber{}
	hub := realtime.NewHub(sub, 4)
	ctx := context.Background()

	a, err := hub.Attach(ctx, "emp-1")
	assert.NoError(t, err)
	b, err := hub.Attach(ctx, "emp-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, sub.n, "one subscription per user per process")
	assert.Equal(t, 2, hub.Sessions("emp-1"))

	sub.get("emp-1").ch <- []byte("hello")

	for _, s := range []*realtime.Session{a, b} {
		select {
		case got := <-s.C:
			assert.Equal(t, "hello", string(got))
		case <-time.After(time.Second):
			t.Fatal("session did not receive push")
		}
	}

	hub.Detach(a)
	assert.False(t, sub.get("emp-1").closed)
	hub.Detach(b)
	assert.True(t, sub.get("emp-1").closed)
	assert.Equal(t, 0, hub.Sessions("emp-1"))

	hub.Detach(b)
}

type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }

type fakeHub struct {
	sess     *realtime.Session
	detached chan struct{}
}

func (f *fakeHub) Attach(_ context.Context, userID string) (*realtime.Session, error) {
	f.sess = &realtime.Session{ID: "s-1", UserID: userID, C: make(chan []byte, 1)}
	f.sess.C <- []byte(`{"event_type":"leave.approved"}`)
	return f.sess, nil
}

func (f *fakeHub) Detach(*realtime.Session) { close(f.detached) }

func TestHandler_Stream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := &fakeHub{detached: make(chan struct{})}
	h := realtime.NewHandler(hub, time.Hour)

	r := gin.New()
	r.GET("/stream", func(c *gin.Context) {
		c.Set(middleware.ContextEmployeeID, "emp-1")
	}, h.Stream)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	w := &closeNotifyRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after the client went away")
	}
	<-hub.detached

	body := w.Body.String()
	assert.Equal(t, "emp-1", hub.sess.UserID)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(body, "event:ready"))
	assert.True(t, strings.Contains(body, "event:leave"))
	assert.True(t, strings.Contains(body, `data:{"event_type":"leave.approved"}`))
}
