package contact

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/contactguard/pkg/csrf"
	"github.com/dmitrymomot/contactguard/pkg/formguard"
	svc "github.com/dmitrymomot/contactguard/svc/contact"
)

// FormPageParams feeds the contact form view.
type FormPageParams struct {
	// Values are the submitter's raw inputs, echoed back escaped.
	Values map[string]string
	// Errors are per-field messages in declaration order.
	Errors []string
	// Notice is a page-level message, empty when there is none.
	Notice    string
	Success   bool
	CSRFToken string
	// GuardAttr is formguard.Config.Attr output, already attribute-escaped.
	GuardAttr string
}

type Views struct {
	FormPage func(FormPageParams) templ.Component
}

func DefaultViews() *Views {
	return &Views{FormPage: FormPage}
}

// FormPage renders a standalone contact page.
func FormPage(p FormPageParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>Contact us</title></head><body><main><h1>Contact us</h1>`)

		if p.Success {
			b.WriteString(`<p class="alert alert-success" role="status">`)
			b.WriteString(templ.EscapeString(svc.MessageSuccess))
			b.WriteString(`</p>`)
		}
		if p.Notice != "" {
			b.WriteString(`<p class="alert alert-error" role="alert">`)
			b.WriteString(templ.EscapeString(p.Notice))
			b.WriteString(`</p>`)
		}
		if len(p.Errors) > 0 {
			b.WriteString(`<ul class="errors" role="alert">`)
			for _, e := range p.Errors {
				b.WriteString(`<li>`)
				b.WriteString(templ.EscapeString(e))
				b.WriteString(`</li>`)
			}
			b.WriteString(`</ul>`)
		}

		b.WriteString(`<form method="post" action="/contact" novalidate data-guard="`)
		b.WriteString(p.GuardAttr)
		b.WriteString(`"><input type="hidden" name="`)
		b.WriteString(csrf.FieldName)
		b.WriteString(`" value="`)
		b.WriteString(templ.EscapeString(p.CSRFToken))
		b.WriteString(`">`)

		for _, r := range svc.Rules {
			writeField(&b, r, p.Values[r.Name])
		}

		b.WriteString(`<button type="submit">Send message</button></form></main>`)
		b.WriteString(`<script src="`)
		b.WriteString(formguard.ScriptPath)
		b.WriteString(`" defer></script></body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeField(b *strings.Builder, r svc.FieldRule, value string) {
	name := templ.EscapeString(r.Name)
	b.WriteString(`<div class="field"><label for="`)
	b.WriteString(name)
	b.WriteString(`">`)
	b.WriteString(templ.EscapeString(r.Label))
	if r.Required {
		b.WriteString(` *`)
	}
	b.WriteString(`</label>`)

	attrs := ` id="` + name + `" name="` + name + `"`
	if r.Required {
		attrs += ` required`
	}

	if r.Name == svc.FieldMessage {
		b.WriteString(`<textarea rows="6"` + attrs + `>`)
		b.WriteString(templ.EscapeString(value))
		b.WriteString(`</textarea>`)
	} else {
		typ := "text"
		switch r.Kind {
		case svc.KindEmail:
			typ = "email"
		case svc.KindPhone:
			typ = "tel"
		}
		b.WriteString(`<input type="` + typ + `"` + attrs + ` value="`)
		b.WriteString(templ.EscapeString(value))
		b.WriteString(`">`)
	}
	b.WriteString(`</div>`)
}
