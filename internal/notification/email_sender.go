package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

type EmailSender struct {
	mailer   Mailer
	renderer *Renderer
	from     string
}

func NewEmailSender(mailer Mailer, renderer *Renderer, from string) *EmailSender {
	return &EmailSender{mailer: mailer, renderer: renderer, from: from}
}

func (s *EmailSender) Channel() Channel { return ChannelEmail }

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	subject, body, err := s.renderer.Render(msg.RecipientLocale, msg.Kind, msg.Payload)
	if err != nil {
		return Permanent(fmt.Errorf("render email: %w", err))
	}

	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return Permanent(fmt.Errorf("invalid sender address: %w", err))
	}
	if err := m.To(msg.RecipientAddress); err != nil {
		return Permanent(fmt.Errorf("invalid recipient address: %w", err))
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)
	// stable across retries so receiving servers can dedupe
	m.SetMessageIDWithValue(msg.DeliveryID + "@leave-engine")

	if err := s.mailer.DialAndSendWithContext(ctx, m); err != nil {
		var sendErr *mail.SendError
		if errors.As(err, &sendErr) && !sendErr.IsTemp() {
			return Permanent(err)
		}
		return err
	}
	return nil
}
