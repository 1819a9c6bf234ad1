package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/studyplanner-api/internal/models"
	appErrors "github.com/noah-isme/studyplanner-api/pkg/errors"
	"github.com/noah-isme/studyplanner-api/pkg/notify"
)

// DefaultReminderLookahead is how far ahead deadlines are checked, and how long a sent reminder suppresses another.
const DefaultReminderLookahead = 24 * time.Hour

type reminderStore interface {
	ListDueBetween(ctx context.Context, userID string, from, to time.Time) ([]models.Assignment, error)
	AppendReminder(ctx context.Context, id string, ts time.Time) error
}

type recipientLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// NotificationService sends deadline reminders for assignments due soon.
type NotificationService struct {
	assignments reminderStore
	users       recipientLookup
	sender      notify.Sender
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewNotificationService wires the reminder flow. users may be nil when recipients are not needed.
func NewNotificationService(assignments reminderStore, users recipientLookup, sender notify.Sender, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if sender == nil {
		sender = notify.Disabled{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		assignments: assignments,
		users:       users,
		sender:      sender,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// CheckUpcomingDeadlines reminds the user about unfinished assignments due within lookahead.
// An assignment already reminded within the lookahead is skipped. Only a failing store lookup
// is returned; delivery problems are logged and the remaining reminders still go out.
func (s *NotificationService) CheckUpcomingDeadlines(ctx context.Context, userID string, lookahead time.Duration) ([]models.ReminderRecord, error) {
	if lookahead <= 0 {
		lookahead = DefaultReminderLookahead
	}
	now := s.now().UTC()
	due, err := s.assignments.ListDueBetween(ctx, userID, now, now.Add(lookahead))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataFetch.Code, appErrors.ErrDataFetch.Status, "failed to load upcoming assignments")
	}

	recipient := s.recipient(ctx, userID)
	sent := make([]models.ReminderRecord, 0, len(due))
	for _, a := range due {
		if err := a.Validate(); err != nil {
			s.logger.Warn("skipping malformed assignment", zap.String("assignment_id", a.ID), zap.Error(err))
			s.metrics.RecordSkippedRecord("reminders")
			continue
		}
		if a.IsCompleted() || recentlyReminded(a.RemindersSent, now, lookahead) {
			continue
		}

		delivered, err := s.sender.Send(ctx, notify.Notification{
			UserID:       userID,
			AssignmentID: a.ID,
			Recipient:    recipient,
			Subject:      fmt.Sprintf("%s is due soon", a.Title),
			Message:      fmt.Sprintf("Reminder: %s is due on %s", a.Title, a.DueDate.UTC().Format(time.RFC1123)),
		})
		if err != nil {
			s.logger.Warn("reminder delivery failed", zap.String("user_id", userID), zap.String("assignment_id", a.ID), zap.Error(err))
			s.metrics.RecordReminder(false)
			continue
		}
		if !delivered {
			continue
		}
		s.metrics.RecordReminder(true)

		if err := s.assignments.AppendReminder(ctx, a.ID, now); err != nil {
			s.logger.Warn("failed to record reminder", zap.String("assignment_id", a.ID), zap.Error(err))
		}
		sent = append(sent, models.ReminderRecord{AssignmentID: a.ID, Title: a.Title, DueDate: a.DueDate})
	}
	return sent, nil
}

func (s *NotificationService) recipient(ctx context.Context, userID string) mail.Address {
	if s.users == nil {
		return mail.Address{}
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Debug("reminder recipient lookup failed", zap.String("user_id", userID), zap.Error(err))
		return mail.Address{}
	}
	return mail.Address{Name: user.Name, Address: user.Email}
}

func recentlyReminded(sent models.TimeList, now time.Time, window time.Duration) bool {
	for _, ts := range sent {
		if now.Sub(ts) < window {
			return true
		}
	}
	return false
}
