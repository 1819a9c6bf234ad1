package notify

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"testing"

	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMailClient struct {
	sent   []*sgmail.SGMailV3
	status int
	err    error
}

func (f *fakeMailClient) SendWithContext(_ context.Context, email *sgmail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

func reminder() Notification {
	return Notification{
		UserID:       "user-1",
		AssignmentID: "assignment-1",
		Recipient:    mail.Address{Name: "Ada", Address: "ada@example.com"},
		Subject:      "Essay due soon",
		Message:      "Reminder: Essay is due tomorrow",
	}
}

func TestSendGridSenderDelivers(t *testing.T) {
	client := &fakeMailClient{status: http.StatusAccepted}
	sender := newSendGridSender(client, "Study Planner", "no-reply@example.com")

	ok, err := sender.Send(context.Background(), reminder())
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, client.sent, 1)
	assert.Equal(t, "[Study Planner] Essay due soon", client.sent[0].Subject)
}

func TestSendGridSenderReportsFailures(t *testing.T) {
	sender := newSendGridSender(&fakeMailClient{status: http.StatusUnauthorized}, "Study Planner", "no-reply@example.com")
	ok, err := sender.Send(context.Background(), reminder())
	assert.Error(t, err)
	assert.False(t, ok)

	sender = newSendGridSender(&fakeMailClient{err: errors.New("timeout")}, "Study Planner", "no-reply@example.com")
	ok, err = sender.Send(context.Background(), reminder())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestSendGridSenderSkipsMissingRecipient(t *testing.T) {
	client := &fakeMailClient{status: http.StatusAccepted}
	n := reminder()
	n.Recipient = mail.Address{}

	ok, err := newSendGridSender(client, "Study Planner", "no-reply@example.com").Send(context.Background(), n)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, client.sent)
}

func TestConsoleSenderAlwaysDelivers(t *testing.T) {
	ok, err := NewConsoleSender(zap.NewNop()).Send(context.Background(), reminder())
	require.NoError(t, err)
	assert.True(t, ok)
}
