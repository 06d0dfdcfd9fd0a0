package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/taskpilot/core/internal/infrastructure/config"
	"github.com/taskpilot/core/internal/infrastructure/logger"
	"github.com/taskpilot/core/internal/ports"
)

// SMTPMailer delivers notifications over SMTP. It is constructed once at
// startup and injected wherever outbound mail is needed.
type SMTPMailer struct {
	client *gomail.Client
	from   string
	logger *logger.Logger
}

// NewSMTPMailer creates a new SMTP-backed mailer
func NewSMTPMailer(cfg config.SMTPConfig, appLogger *logger.Logger) (ports.Mailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(cfg.SendTimeout),
	}

	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPMailer{
		client: client,
		from:   cfg.From,
		logger: appLogger.WithComponent("mailer"),
	}, nil
}

// Send delivers a single HTML message. Any SMTP failure is returned to the
// caller; no retries happen at this layer.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()

	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Warnw("Email delivery failed", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Debugw("Email sent", "to", to, "subject", subject)
	return nil
}
