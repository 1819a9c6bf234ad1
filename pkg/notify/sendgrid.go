package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type mailClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridSender emails reminders through the SendGrid v3 API.
type SendGridSender struct {
	client     mailClient
	from       *sgmail.Email
	subjPrefix string
}

// NewSendGridSender constructs an email sender for the given API key.
func NewSendGridSender(apiKey, appName, fromEmail string) *SendGridSender {
	return newSendGridSender(sendgrid.NewSendClient(apiKey), appName, fromEmail)
}

func newSendGridSender(client mailClient, appName, fromEmail string) *SendGridSender {
	return &SendGridSender{
		client:     client,
		from:       sgmail.NewEmail(appName, fromEmail),
		subjPrefix: "[" + appName + "] ",
	}
}

// Send implements Sender. Users without an email address are reported as undelivered.
func (s *SendGridSender) Send(ctx context.Context, n Notification) (bool, error) {
	if n.Recipient.Address == "" {
		return false, nil
	}
	subject := n.Subject
	if subject == "" {
		subject = "Upcoming deadline"
	}
	to := sgmail.NewEmail(n.Recipient.Name, n.Recipient.Address)
	msg := sgmail.NewSingleEmail(s.from, s.subjPrefix+subject, to, n.Message, "")

	res, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return false, fmt.Errorf("sendgrid send: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return false, fmt.Errorf("sendgrid send: status %d: %s", res.StatusCode, res.Body)
	}
	return true, nil
}
