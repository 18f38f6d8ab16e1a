package contact

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/contactguard/pkg/email"
)

// EmailNotifier sends messages to a fixed recipient through an email sender.
type EmailNotifier struct {
	sender    email.EmailSender
	recipient string
}

func NewEmailNotifier(sender email.EmailSender, recipient string) *EmailNotifier {
	return &EmailNotifier{sender: sender, recipient: recipient}
}

func (n *EmailNotifier) Notify(ctx context.Context, msg Message) error {
	body, err := email.Render(ctx, msg.Body())
	if err != nil {
		return fmt.Errorf("render message: %w", err)
	}
	return n.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   n.recipient,
		ReplyTo:  msg.ReplyTo,
		Subject:  msg.Subject,
		BodyHTML: body,
		BodyText: msg.Text(),
		Tag:      "contact-form",
	})
}
