package contact

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/contactguard/pkg/formguard"
	"github.com/dmitrymomot/contactguard/pkg/sanitizer"
	"github.com/dmitrymomot/contactguard/pkg/validator"
)

const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldCompany = "company"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// Kind selects the type-specific check applied after length checks.
type Kind int

const (
	KindText Kind = iota
	KindEmail
	KindPhone
)

// FieldRule describes one form field.
type FieldRule struct {
	Name     string
	Label    string
	Required bool
	MinLen   int
	MaxLen   int
	Kind     Kind
	// Hint is the browser-side message for any failure of this field.
	Hint string
}

// Rules is the field table in declaration order.
var Rules = []FieldRule{
	{Name: FieldName, Label: "Name", Required: true, MinLen: 2, MaxLen: 200,
		Hint: "Name must be at least 2 characters long"},
	{Name: FieldEmail, Label: "Email", Required: true, MaxLen: 254, Kind: KindEmail,
		Hint: "Please enter a valid email address"},
	{Name: FieldPhone, Label: "Phone", MaxLen: 32, Kind: KindPhone,
		Hint: "Please enter a valid phone number"},
	{Name: FieldCompany, Label: "Company", MaxLen: 200,
		Hint: "Company must be at most 200 characters long"},
	{Name: FieldSubject, Label: "Subject", MaxLen: 200,
		Hint: "Subject must be at most 200 characters long"},
	{Name: FieldMessage, Label: "Message", Required: true, MinLen: 10, MaxLen: 1000,
		Hint: "Message must be between 10 and 1000 characters"},
}

// RuleFor looks up the rule for field.
func RuleFor(field string) (FieldRule, bool) {
	for _, r := range Rules {
		if r.Name == field {
			return r, true
		}
	}
	return FieldRule{}, false
}

// FieldResult is the outcome of validating one field.
type FieldResult struct {
	Field  string `json:"field"`
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	// Message is the sentence shown next to the form.
	Message string `json:"message,omitempty"`
}

// Validate checks value against the rule for field. Raw and sanitized
// values give the same result: markup is stripped before measuring and
// lengths count the decoded text.
func Validate(field, value string) FieldResult {
	r, ok := RuleFor(field)
	if !ok {
		return FieldResult{Field: field, Reason: validator.ReasonInvalid, Message: "Unknown field"}
	}
	return r.Validate(value)
}

// Validate applies the presence check first, then the length and type
// checks, and reports the first failure.
func (r FieldRule) Validate(value string) FieldResult {
	text := strings.TrimSpace(sanitizer.Text(sanitizer.Sanitize(value)))
	res := FieldResult{Field: r.Name, Valid: true}
	if text == "" && !r.Required {
		return res
	}

	rules := []validator.Rule{validator.Required(r.Name, text)}
	if r.MinLen > 0 {
		rules = append(rules, validator.MinLen(r.Name, text, r.MinLen))
	}
	if r.MaxLen > 0 {
		rules = append(rules, validator.MaxLen(r.Name, text, r.MaxLen))
	}
	switch r.Kind {
	case KindEmail:
		rules = append(rules, validator.ValidEmail(r.Name, text))
	case KindPhone:
		rules = append(rules, validator.ValidPhone(r.Name, text))
	}

	if fail, failed := validator.First(rules...); failed {
		res.Valid = false
		res.Reason = fail.Reason
		res.Message = fail.Message
	}
	return res
}

// Results holds one FieldResult per rule in declaration order.
type Results []FieldResult

// ValidateAll validates every field in Rules. It never stops early.
func ValidateAll(values map[string]string) Results {
	out := make(Results, 0, len(Rules))
	for _, r := range Rules {
		out = append(out, r.Validate(values[r.Name]))
	}
	return out
}

func (rs Results) Valid() bool {
	for _, r := range rs {
		if !r.Valid {
			return false
		}
	}
	return true
}

// Failures returns the invalid results, order preserved.
func (rs Results) Failures() Results {
	var out Results
	for _, r := range rs {
		if !r.Valid {
			out = append(out, r)
		}
	}
	return out
}

// Reason returns the failure reason for field.
func (rs Results) Reason(field string) (string, bool) {
	for _, r := range rs {
		if r.Field == field && !r.Valid {
			return r.Reason, true
		}
	}
	return "", false
}

// Messages returns one message per failing field.
func (rs Results) Messages() []string {
	var out []string
	for _, r := range rs.Failures() {
		out = append(out, r.Message)
	}
	return out
}

// Err returns the failures as validator.ValidationErrors, or nil.
func (rs Results) Err() error {
	var errs validator.ValidationErrors
	for _, r := range rs.Failures() {
		errs.Add(validator.ValidationError{Field: r.Field, Reason: r.Reason, Message: r.Message})
	}
	if errs.IsEmpty() {
		return nil
	}
	return errs
}

const (
	emailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
	phonePattern = `^(\+966|966|0)?[5-9][0-9]{8}$`
)

// GuardFields mirrors Rules for the browser-side guard.
func GuardFields() []formguard.Field {
	fields := make([]formguard.Field, 0, len(Rules))
	for _, r := range Rules {
		f := formguard.Field{
			Name:     r.Name,
			Required: r.Required,
			MinLen:   r.MinLen,
			MaxLen:   r.MaxLen,
			Message:  r.hint(),
		}
		switch r.Kind {
		case KindEmail:
			f.Pattern = emailPattern
		case KindPhone:
			f.Pattern = phonePattern
			f.Strip = " -"
		}
		fields = append(fields, f)
	}
	return fields
}

func (r FieldRule) hint() string {
	if r.Hint != "" {
		return r.Hint
	}
	return fmt.Sprintf("Please check the %s field", strings.ToLower(r.Label))
}
