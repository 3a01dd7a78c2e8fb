package mail

import (
	"context"
	"log/slog"

	"github.com/phrazzld/cardhub-api/internal/config"
	"github.com/phrazzld/cardhub-api/internal/service/verification"
)

// LogNotifier writes notifications, code included, to the log instead of
// sending them. Local development only.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With(slog.String("component", "log_notifier"))}
}

// Send implements verification.Notifier.
func (n *LogNotifier) Send(ctx context.Context, note verification.Notification) error {
	subject, body, err := Render(note)
	if err != nil {
		return err
	}
	n.logger.InfoContext(ctx, "verification email",
		slog.String("to", note.To),
		slog.String("subject", subject),
		slog.String("body", body),
		slog.Time("expires_at", note.ExpiresAt))
	return nil
}

// New returns the notifier selected by cfg.Driver.
func New(cfg config.MailConfig, logger *slog.Logger) verification.Notifier {
	if cfg.Driver == "smtp" {
		return NewSMTPNotifier(cfg, logger)
	}
	return NewLogNotifier(logger)
}
