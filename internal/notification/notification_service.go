package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	notificationerrors "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification/errors"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/shared/dberr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	GetEvent(ctx context.Context, id string) (EventResponse, error)
}

type service struct {
	repo   OutboxRepository
	logger *zap.Logger
}

func NewService(repo OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetEvent(ctx context.Context, id string) (EventResponse, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return EventResponse{}, notificationerrors.ErrInvalidNotificationID
	}

	ev, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EventResponse{}, notificationerrors.ErrNotificationNotFound
		}
		s.logger.Error("get notification failed", zap.String("event_id", id), zap.Error(err))
		return EventResponse{}, dberr.Translate(err)
	}
	return mapToResponse(*ev), nil
}

func mapToResponse(ev Event) EventResponse {
	resp := EventResponse{
		ID:            ev.ID.String(),
		Kind:          ev.Kind,
		AggregateType: ev.AggregateType,
		AggregateID:   ev.AggregateID.String(),
		RequestID:     ev.RequestID,
		CreatedAt:     ev.CreatedAt.UTC().Format(time.RFC3339),
		Payload:       json.RawMessage(ev.Payload),
		Channels:      map[Channel]ChannelStatusResponse{},
		Deliveries:    make([]DeliveryResponse, 0, len(ev.Deliveries)),
	}

	folded := FoldStatus(ev.Deliveries)
	for ch, st := range folded {
		resp.Channels[ch] = ChannelStatusResponse{Status: st}
	}

	for _, d := range ev.Deliveries {
		cs := resp.Channels[d.Channel]
		cs.Attempts += d.Attempts
		resp.Channels[d.Channel] = cs

		dr := DeliveryResponse{
			ID:            d.ID.String(),
			Channel:       d.Channel,
			Status:        d.Status,
			Attempts:      d.Attempts,
			NextAttemptAt: d.NextAttemptAt.UTC().Format(time.RFC3339),
			LastError:     d.LastError,
		}
		if d.RecipientID != nil {
			v := d.RecipientID.String()
			dr.RecipientID = &v
		}
		if d.SentAt != nil {
			v := d.SentAt.UTC().Format(time.RFC3339)
			dr.SentAt = &v
		}
		resp.Deliveries = append(resp.Deliveries, dr)
	}
	return resp
}
