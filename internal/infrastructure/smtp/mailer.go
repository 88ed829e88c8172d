package smtp

import (
	"context"
	"fmt"

	"github.com/go-notes-api/internal/config"
	gomail "github.com/wneessen/go-mail"
)

// Mailer sends emails. Sends are context-bounded so a slow relay cannot
// hold a request open past the caller's deadline.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type mailer struct {
	client   *gomail.Client
	from     string
	fromName string
}

func NewMailer(cfg *config.Config) (Mailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTPPort),
	}

	if cfg.SMTPTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
		// Implicit TLS for 465, STARTTLS otherwise.
		if cfg.SMTPPort == 465 {
			opts = append(opts, gomail.WithSSL())
		}
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	if cfg.SMTPUsername != "" && cfg.SMTPPassword != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTPUsername),
			gomail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}

	return &mailer{client: client, from: cfg.SMTPFrom, fromName: cfg.SMTPFromName}, nil
}

func (m *mailer) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()

	if m.fromName != "" {
		if err := msg.FromFormat(m.fromName, m.from); err != nil {
			return fmt.Errorf("set from address: %w", err)
		}
	} else {
		if err := msg.From(m.from); err != nil {
			return fmt.Errorf("set from address: %w", err)
		}
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	return m.client.DialAndSendWithContext(ctx, msg)
}
