package account

import (
	"context"
	"log/slog"
)

// LogMailer satisfies Mailer by logging the handoff. The real transport
// sits behind the platform's mail relay, outside this service.
type LogMailer struct{}

func (LogMailer) AccountDeleted(ctx context.Context, email string) error {
	slog.Info("account deleted mail queued", "email", email)
	return nil
}
