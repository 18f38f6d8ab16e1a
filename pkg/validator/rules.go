package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// saudiPhone accepts mobile numbers with an optional +966, 966 or 0 prefix.
var saudiPhone = regexp.MustCompile(`^(\+966|966|0)?[5-9][0-9]{8}$`)

func Required(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{
			Field:   field,
			Reason:  ReasonRequired,
			Message: fmt.Sprintf("%s is required", label(field)),
		},
	}
}

// MinLen counts runes, not bytes.
func MinLen(field, value string, min int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) >= min },
		Error: ValidationError{
			Field:   field,
			Reason:  ReasonTooShort,
			Message: fmt.Sprintf("%s must be at least %d characters long", label(field), min),
		},
	}
}

// MaxLen counts runes, not bytes.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return utf8.RuneCountInString(value) <= max },
		Error: ValidationError{
			Field:   field,
			Reason:  ReasonTooLong,
			Message: fmt.Sprintf("%s must be at most %d characters long", label(field), max),
		},
	}
}

// ValidEmail accepts a bare address (no display name) whose domain has at
// least one dot and no empty labels.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool { return IsEmail(value) },
		Error: ValidationError{
			Field:   field,
			Reason:  ReasonInvalidEmail,
			Message: "Please enter a valid email address",
		},
	}
}

// ValidPhone accepts Saudi mobile numbers; spaces and dashes are ignored.
func ValidPhone(field, value string) Rule {
	return Rule{
		Check: func() bool { return IsPhone(value) },
		Error: ValidationError{
			Field:   field,
			Reason:  ReasonInvalidPhone,
			Message: "Please enter a valid phone number",
		},
	}
}

// Pattern checks value against re.
func Pattern(field, value string, re *regexp.Regexp, reason string) Rule {
	return Rule{
		Check: func() bool { return re.MatchString(value) },
		Error: ValidationError{
			Field:   field,
			Reason:  reason,
			Message: fmt.Sprintf("%s is not valid", label(field)),
		},
	}
}

func IsEmail(value string) bool {
	if value == "" || strings.TrimSpace(value) != value {
		return false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Name != "" || addr.Address != value {
		return false
	}
	at := strings.LastIndexByte(value, '@')
	if at <= 0 {
		return false
	}
	domain := value[at+1:]
	if !strings.Contains(domain, ".") {
		return false
	}
	for label := range strings.SplitSeq(domain, ".") {
		if label == "" {
			return false
		}
	}
	return true
}

func IsPhone(value string) bool {
	return saudiPhone.MatchString(NormalizePhone(value))
}

// NormalizePhone strips spaces and dashes.
func NormalizePhone(value string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, value)
}

func label(field string) string {
	if field == "" {
		return "Field"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
