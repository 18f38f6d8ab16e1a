package contact_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contactguard/pkg/email"
	"github.com/dmitrymomot/contactguard/pkg/sanitizer"
	"github.com/dmitrymomot/contactguard/svc/contact"
)

type senderMock struct {
	mock.Mock
}

func (m *senderMock) SendEmail(ctx context.Context, p email.SendEmailParams) error {
	return m.Called(ctx, p).Error(0)
}

func sanitizedValues() map[string]string {
	return map[string]string{
		"name":    sanitizer.Sanitize("Ali"),
		"email":   sanitizer.Sanitize("o'brien@example.com"),
		"company": sanitizer.Sanitize("Tom & Jerry"),
		"message": sanitizer.Sanitize("line one\nline <two>"),
	}
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	msg := contact.BuildMessage("Hello\r\nBcc: victim@example.com", sanitizedValues())
	assert.NotContains(t, msg.Subject, "\n")
	assert.NotContains(t, msg.Subject, "\r")
	assert.Equal(t, "o'brien@example.com", msg.ReplyTo)

	require.Len(t, msg.Fields, len(contact.Rules))
	assert.Equal(t, "Name", msg.Fields[0].Label)
	assert.Equal(t, "Ali", msg.Fields[0].Value)

	text := msg.Text()
	assert.Contains(t, text, "Company: Tom & Jerry\n")
}

func TestMessage_Body(t *testing.T) {
	t.Parallel()

	msg := contact.BuildMessage("New Contact Form Message", sanitizedValues())
	html, err := email.Render(context.Background(), msg.Body())
	require.NoError(t, err)

	assert.Contains(t, html, "<h2>New Contact Form Message</h2>")
	assert.Contains(t, html, "Tom &amp; Jerry")
	assert.NotContains(t, html, "&amp;amp;")
	assert.Contains(t, html, "line one<br>")
	assert.NotContains(t, html, "<two>")
}

func TestEmailNotifier(t *testing.T) {
	t.Parallel()

	s := &senderMock{}
	s.On("SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
		return p.SendTo == "info@example.com" &&
			p.ReplyTo == "o'brien@example.com" &&
			p.Subject == "New Contact Form Message" &&
			p.Tag == "contact-form" &&
			p.BodyHTML != "" && p.BodyText != ""
	})).Return(nil).Once()

	n := contact.NewEmailNotifier(s, "info@example.com")
	err := n.Notify(context.Background(), contact.BuildMessage("New Contact Form Message", sanitizedValues()))
	require.NoError(t, err)
	s.AssertExpectations(t)
}
