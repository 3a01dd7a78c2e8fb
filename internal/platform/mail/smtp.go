package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/phrazzld/cardhub-api/internal/config"
	"github.com/phrazzld/cardhub-api/internal/service/verification"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier delivers one-time codes by email.
type SMTPNotifier struct {
	cfg    config.MailConfig
	send   sendFunc
	now    func() time.Time
	logger *slog.Logger
}

// NewSMTPNotifier creates a notifier that submits mail to cfg.Host:cfg.Port.
// smtp.SendMail upgrades to TLS when the server offers STARTTLS.
func NewSMTPNotifier(cfg config.MailConfig, logger *slog.Logger) *SMTPNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPNotifier{
		cfg:    cfg,
		send:   smtp.SendMail,
		now:    time.Now,
		logger: logger.With(slog.String("component", "smtp_notifier")),
	}
}

// Send implements verification.Notifier.
func (n *SMTPNotifier) Send(ctx context.Context, note verification.Notification) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	subject, body, err := Render(note)
	if err != nil {
		return err
	}

	msg := n.compose(note.To, subject, body)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	if err := n.send(addr, auth, n.cfg.From, []string{note.To}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.InfoContext(ctx, "email sent",
		slog.String("subject", subject),
		slog.String("purpose", string(note.Purpose)))
	return nil
}

func (n *SMTPNotifier) compose(to, subject, body string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", n.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.Bytes()
}
