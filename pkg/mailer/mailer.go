package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/tommiesfashion/storefront-backend/pkg/config"
	"github.com/tommiesfashion/storefront-backend/pkg/logger"
)

var errLoggerRequired = errors.New("mailer logger is required")

// Message is a plain-text email ready for submission.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender submits messages to the configured relay.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer submits mail over SMTP. When no relay is configured every send
// becomes a logged no-op so order placement never depends on mail delivery.
type Mailer struct {
	cfg    config.SMTPConfig
	logger *logger.Logger
	send   sendFunc
}

// New builds a Mailer from the SMTP coordinates in config.
func New(cfg config.SMTPConfig, logg *logger.Logger) (*Mailer, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	return &Mailer{
		cfg:    cfg,
		logger: logg,
		send:   smtp.SendMail,
	}, nil
}

// Send submits the message to the relay. Recipient and subject are required.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return fmt.Errorf("recipient is required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return fmt.Errorf("subject is required")
	}

	if !m.cfg.Enabled() {
		m.logger.Warn(ctx, "smtp relay not configured, skipping email")
		return nil
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	payload := buildPayload(m.cfg.From, to, msg.Subject, msg.Body)

	if err := m.send(addr, auth, m.cfg.From, []string{to}, payload); err != nil {
		return fmt.Errorf("sending mail via %s: %w", addr, err)
	}

	m.logger.Info(m.logger.WithField(ctx, "subject", msg.Subject), "email submitted")
	return nil
}

func buildPayload(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
