// Package notify delivers deadline reminders to students.
package notify

import (
	"context"
	"net/mail"
)

// Notification is a single reminder addressed to a user about one assignment.
type Notification struct {
	UserID       string
	AssignmentID string
	Recipient    mail.Address
	Subject      string
	Message      string
}

// Sender delivers notifications. Delivery is best effort and not idempotent.
type Sender interface {
	Send(ctx context.Context, n Notification) (bool, error)
}

// Disabled drops every notification without delivering it.
type Disabled struct{}

// Send implements Sender.
func (Disabled) Send(context.Context, Notification) (bool, error) {
	return false, nil
}
