package notification

import (
	"context"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

//go:generate mockgen -source=mailer.go -destination=mock/mailer_mock.go -package=mock
type Mailer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// NewSMTPMailer returns a go-mail client. STARTTLS is used when offered and
// PLAIN auth only when a username is configured.
func NewSMTPMailer(cfg SMTPConfig) (Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// LogMailer writes messages to the log instead of sending them. It is the
// development transport.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger ...*zap.Logger) *LogMailer {
	l := zap.L().Named("notification.mail")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.mail")
	}
	return &LogMailer{logger: l}
}

func (m *LogMailer) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	for _, msg := range messages {
		to, _ := msg.GetRecipients()
		m.logger.Info("email",
			zap.String("to", strings.Join(to, ",")),
			zap.String("subject", strings.Join(msg.GetGenHeader(mail.HeaderSubject), "")),
		)
	}
	return nil
}

// NewMailer picks the transport named by driver: "smtp" or "log".
func NewMailer(driver string, cfg SMTPConfig, logger *zap.Logger) (Mailer, error) {
	if driver == "smtp" {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(logger), nil
}
