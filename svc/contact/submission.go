package contact

import (
	"net/url"

	"github.com/dmitrymomot/contactguard/pkg/csrf"
)

// Submission is one raw, unsanitized form post.
type Submission struct {
	// Identifier is the rate-limit client key, usually the client IP.
	Identifier string
	// Token is the presented anti-forgery token.
	Token  string
	Values map[string]string
}

// SubmissionFromForm copies the known fields and the token out of form.
// Unknown fields are dropped.
func SubmissionFromForm(identifier string, form url.Values) Submission {
	s := Submission{
		Identifier: identifier,
		Token:      form.Get(csrf.FieldName),
		Values:     make(map[string]string, len(Rules)),
	}
	for _, r := range Rules {
		s.Values[r.Name] = form.Get(r.Name)
	}
	return s
}
