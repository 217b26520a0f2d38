// Package calendar projects leave applications into date-ranged events.
// It keeps no state: every read goes to leave_applications.
package calendar

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/balance"
	calendarerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/calendar/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/employee"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/leave"
	leaveerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/leave/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/contextutil"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/dberr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	dateLayout = "2006-01-02"
	maxWindow  = 366
)

// Source is the slice of the leave repository the projection reads.
type Source interface {
	ListIntersecting(ctx context.Context, q leave.IntersectQuery) ([]leave.LeaveApplication, error)
}

// Directory resolves employee names for event titles.
type Directory interface {
	FindByIDs(ctx context.Context, ids []string) ([]employee.Employee, error)
}

type Service interface {
	Events(ctx context.Context, q Query) ([]EventResponse, error)
}

type service struct {
	source    Source
	directory Directory
	group     singleflight.Group
	logger    *zap.Logger

	// gen names the flight new readers may join. It moves on every time a
	// flight starts reading, so a reader never joins a query older than itself.
	gen  atomic.Uint64
	mu   sync.Mutex
	busy map[string]chan struct{}
}

func NewService(source Source, directory Directory, logger ...*zap.Logger) Service {
	l := zap.L().Named("calendar.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("calendar.service")
	}
	return &service{source: source, directory: directory, logger: l, busy: map[string]chan struct{}{}}
}

func (s *service) Events(ctx context.Context, q Query) ([]EventResponse, error) {
	iq, err := toIntersectQuery(q)
	if err != nil {
		return nil, err
	}

	// Identical reads that arrive while a query runs share the next one. The
	// result is not kept after the call returns.
	key := q.key()
	flight := fmt.Sprintf("%s@%d", key, s.gen.Load())
	v, err, shared := s.group.Do(flight, func() (any, error) {
		done := s.start(key)
		defer s.finish(key, done)
		return s.project(context.WithoutCancel(ctx), iq)
	})
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Warn("calendar projection failed", zap.Error(err))
		return nil, err
	}
	if shared {
		s.logger.Debug("calendar read coalesced", zap.String("key", key))
	}
	events := v.([]EventResponse)
	out := make([]EventResponse, len(events))
	copy(out, events)
	return out, nil
}

// start waits for the previous query on key, then closes the current flight
// to newcomers.
func (s *service) start(key string) chan struct{} {
	s.mu.Lock()
	prev := s.busy[key]
	s.mu.Unlock()
	if prev != nil {
		<-prev
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.busy[key] = done
	s.gen.Add(1)
	s.mu.Unlock()
	return done
}

func (s *service) finish(key string, done chan struct{}) {
	s.mu.Lock()
	if s.busy[key] == done {
		delete(s.busy, key)
	}
	s.mu.Unlock()
	close(done)
}

func (s *service) project(ctx context.Context, iq leave.IntersectQuery) ([]EventResponse, error) {
	apps, err := s.source.ListIntersecting(ctx, iq)
	if err != nil {
		return nil, dberr.Translate(err)
	}
	if len(apps) == 0 {
		return []EventResponse{}, nil
	}

	seen := map[string]struct{}{}
	var ids []string
	for _, a := range apps {
		id := a.EmployeeID.String()
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	emps, err := s.directory.FindByIDs(ctx, ids)
	if err != nil {
		return nil, dberr.Translate(err)
	}
	names := make(map[string]string, len(emps))
	for _, e := range emps {
		names[e.ID.String()] = e.FullName
	}

	out := make([]EventResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, toEvent(a, names[a.EmployeeID.String()]))
	}
	return out, nil
}

func toIntersectQuery(q Query) (leave.IntersectQuery, error) {
	if q.From == "" || q.To == "" {
		return leave.IntersectQuery{}, calendarerrors.ErrMissingWindow
	}
	from, err := time.Parse(dateLayout, q.From)
	if err != nil {
		return leave.IntersectQuery{}, leaveerrors.ErrInvalidDateFormat
	}
	to, err := time.Parse(dateLayout, q.To)
	if err != nil {
		return leave.IntersectQuery{}, leaveerrors.ErrInvalidDateFormat
	}
	if from.After(to) {
		return leave.IntersectQuery{}, leaveerrors.ErrInvalidRange
	}
	if leave.InclusiveDays(from, to) > maxWindow {
		return leave.IntersectQuery{}, calendarerrors.ErrWindowTooLarge
	}

	iq := leave.IntersectQuery{From: from, To: to, Statuses: leave.ActiveStatuses}
	if q.Status != "" {
		iq.Statuses = nil
		for _, raw := range strings.Split(q.Status, ",") {
			st, ok := leave.ParseStatus(strings.TrimSpace(raw))
			if !ok {
				return leave.IntersectQuery{}, leaveerrors.ErrInvalidStatusFilter
			}
			iq.Statuses = append(iq.Statuses, st)
		}
	}
	if q.LeaveType != "" {
		lt, err := balance.ParseLeaveType(q.LeaveType)
		if err != nil {
			return leave.IntersectQuery{}, err
		}
		iq.LeaveType = string(lt)
	}
	if q.EmployeeID != "" {
		if _, err := uuid.Parse(q.EmployeeID); err != nil {
			return leave.IntersectQuery{}, leaveerrors.ErrInvalidEmployeeID
		}
		iq.EmployeeIDs = []string{q.EmployeeID}
	}
	return iq, nil
}

func toEvent(a leave.LeaveApplication, name string) EventResponse {
	title := string(a.LeaveType) + " leave"
	if name != "" {
		title = name + " - " + title
	}
	return EventResponse{
		ID:         a.ID.String(),
		EmployeeID: a.EmployeeID.String(),
		Title:      title,
		Start:      a.StartDate.Format(dateLayout),
		End:        a.EndDate.Format(dateLayout),
		Status:     string(a.Status),
		LeaveType:  string(a.LeaveType),
		TotalDays:  a.TotalDays,
	}
}
