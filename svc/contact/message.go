package contact

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/contactguard/pkg/sanitizer"
)

// Message is the notification built from a valid submission.
// Field values are sanitized and safe to embed in HTML as is.
type Message struct {
	Subject string
	// ReplyTo is the submitter's validated address, decoded and stripped of
	// header-breaking characters.
	ReplyTo string
	Fields  []MessageField
}

type MessageField struct {
	Label string
	Value string
}

// Notifier delivers a Message. Implementations must honor ctx cancellation.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// BuildMessage composes the notification from sanitized values in field
// declaration order.
func BuildMessage(subject string, sanitized map[string]string) Message {
	msg := Message{
		Subject: sanitizer.SingleLine(sanitizer.PreventHeaderInjection(subject)),
		ReplyTo: sanitizer.PreventHeaderInjection(sanitizer.Text(sanitized[FieldEmail])),
		Fields:  make([]MessageField, 0, len(Rules)),
	}
	for _, r := range Rules {
		msg.Fields = append(msg.Fields, MessageField{Label: r.Label, Value: sanitized[r.Name]})
	}
	return msg
}

// Text renders the message as plain text.
func (m Message) Text() string {
	var b strings.Builder
	b.WriteString(m.Subject)
	b.WriteString("\n\n")
	for _, f := range m.Fields {
		b.WriteString(f.Label)
		b.WriteString(": ")
		b.WriteString(sanitizer.Text(f.Value))
		b.WriteByte('\n')
	}
	return b.String()
}

// Body renders the message as an HTML document. Values are written as
// already-escaped text with newlines turned into <br>.
func (m Message) Body() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>`)
		b.WriteString(templ.EscapeString(m.Subject))
		b.WriteString(`</title></head><body style="font-family:Arial,sans-serif;line-height:1.6;color:#333">`)
		b.WriteString(`<h2>`)
		b.WriteString(templ.EscapeString(m.Subject))
		b.WriteString(`</h2><table cellpadding="6" style="border-collapse:collapse">`)
		for _, f := range m.Fields {
			b.WriteString(`<tr><th align="left" valign="top">`)
			b.WriteString(templ.EscapeString(f.Label))
			b.WriteString(`</th><td>`)
			b.WriteString(strings.ReplaceAll(f.Value, "\n", "<br>"))
			b.WriteString(`</td></tr>`)
		}
		b.WriteString(`</table></body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
