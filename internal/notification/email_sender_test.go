package notification_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/events"
	"github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification"
	mock_notification "github.com/CodeCrafter1319/Odoo-Hackathon-3-1-2026-sub001/internal/notification/mock"

	"github.com/stretchr/testify/assert"
	"github.com/wneessen/go-mail"
	"go.uber.org/mock/gomock"
)

func approvedMessage(locale string) notification.Message {
	return notification.Message{
		DeliveryID:       "d-1",
		Kind:             notification.KindApproved,
		RecipientAddress: "ana@corp.test",
		RecipientLocale:  locale,
		Payload: events.LeaveLifecycleEvent{
			EmployeeName: "Ana",
			LeaveType:    "PAID",
			StartDate:    "2026-03-01",
			EndDate:      "2026-03-05",
			TotalDays:    5,
			Comment:      "enjoy",
		},
	}
}

func TestRenderer(t *testing.T) {
	r, err := notification.NewRenderer("en")
	assert.NoError(t, err)
	p := approvedMessage("").Payload

	subject, body, err := r.Render("en", notification.KindApproved, p)
	assert.NoError(t, err)
	assert.Equal(t, "Your leave from 2026-03-01 to 2026-03-05 was approved", subject)
	assert.Contains(t, body, "Paid leave")
	assert.Contains(t, body, "Comment: enjoy")

	subject, _, err = r.Render("id", notification.KindApproved, p)
	assert.NoError(t, err)
	assert.Equal(t, "Cuti Anda 2026-03-01 s.d. 2026-03-05 disetujui", subject)

	subject, _, err = r.Render("fr", notification.KindApproved, p)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(subject, "Your leave"))

	_, _, err = r.Render("en", notification.Kind("UNKNOWN"), p)
	assert.Error(t, err)
}

func TestEmailSender(t *testing.T) {
	ctx := context.Background()
	renderer, err := notification.NewRenderer("en")
	assert.NoError(t, err)

	setup := func(t *testing.T) (*mock_notification.MockMailer, *notification.EmailSender) {
		ctrl := gomock.NewController(t)
		mailer := mock_notification.NewMockMailer(ctrl)
		return mailer, notification.NewEmailSender(mailer, renderer, "hr@corp.test")
	}

	t.Run("renders and sends", func(t *testing.T) {
		mailer, sender := setup(t)
		mailer.EXPECT().
			DialAndSendWithContext(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msgs ...*mail.Msg) error {
				assert.Len(t, msgs, 1)
				to, _ := msgs[0].GetRecipients()
				assert.Equal(t, []string{"ana@corp.test"}, to)
				assert.Equal(t, []string{"Cuti Anda 2026-03-01 s.d. 2026-03-05 disetujui"}, msgs[0].GetGenHeader(mail.HeaderSubject))
				return nil
			})

		assert.NoError(t, sender.Send(ctx, approvedMessage("id")))
	})

	t.Run("connection errors are transient", func(t *testing.T) {
		mailer, sender := setup(t)
		mailer.EXPECT().
			DialAndSendWithContext(gomock.Any(), gomock.Any()).
			Return(errors.New("dial tcp: connection refused"))

		err := sender.Send(ctx, approvedMessage("en"))

		assert.Error(t, err)
		assert.False(t, notification.IsPermanent(err))
	})

	t.Run("negative smtp rejection is permanent", func(t *testing.T) {
		mailer, sender := setup(t)
		mailer.EXPECT().
			DialAndSendWithContext(gomock.Any(), gomock.Any()).
			Return(&mail.SendError{Reason: mail.ErrSMTPRcptTo})

		err := sender.Send(ctx, approvedMessage("en"))

		assert.True(t, notification.IsPermanent(err))
	})

	t.Run("negative invalid address never reaches smtp", func(t *testing.T) {
		_, sender := setup(t)
		msg := approvedMessage("en")
		msg.RecipientAddress = "not an address"

		err := sender.Send(ctx, msg)

		assert.True(t, notification.IsPermanent(err))
	})
}
