package mail

import (
	"context"
	"log/slog"
)

// LogDispatcher writes the mail to the log instead of sending it. It is the
// development driver: the confirmation link can be copied from the output.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher creates a LogDispatcher.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDispatcher{logger: logger.With(slog.String("component", "mail"))}
}

// SendConfirmation implements Dispatcher.
func (d *LogDispatcher) SendConfirmation(ctx context.Context, msg ConfirmationMessage) error {
	d.logger.InfoContext(ctx, "confirmation mail",
		slog.String("user_id", msg.UserID.String()),
		slog.String("username", msg.Username),
		slog.String("confirm_url", msg.ConfirmURL))
	return nil
}
