package notify

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleSender writes reminders to the structured log. Used in development and as the default channel.
type ConsoleSender struct {
	logger *zap.Logger
}

// NewConsoleSender constructs a log backed sender.
func NewConsoleSender(logger *zap.Logger) *ConsoleSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleSender{logger: logger}
}

// Send implements Sender.
func (s *ConsoleSender) Send(_ context.Context, n Notification) (bool, error) {
	s.logger.Info("sending reminder",
		zap.String("user_id", n.UserID),
		zap.String("assignment_id", n.AssignmentID),
		zap.String("to", n.Recipient.Address),
		zap.String("message", n.Message),
	)
	return true, nil
}
