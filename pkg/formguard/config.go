package formguard

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Field mirrors one server-side field rule for the browser.
type Field struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	MinLen   int    `json:"minLen,omitempty"`
	MaxLen   int    `json:"maxLen,omitempty"`
	// Pattern is an ECMAScript-compatible regular expression.
	Pattern string `json:"pattern,omitempty"`
	// Strip lists characters removed before Pattern is applied.
	Strip   string `json:"strip,omitempty"`
	Message string `json:"message"`
}

// Config is serialized into the page for guard.js.
type Config struct {
	DebounceMS     int64   `json:"debounceMs"`
	MaxSubmissions int     `json:"maxSubmissions"`
	CooldownMS     int64   `json:"cooldownMs"`
	StorageKey     string  `json:"storageKey"`
	Fields         []Field `json:"fields"`
}

const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultCooldown = 5 * time.Minute
	DefaultMax      = 3
)

func NewConfig(fields []Field) Config {
	return Config{
		DebounceMS:     DefaultDebounce.Milliseconds(),
		MaxSubmissions: DefaultMax,
		CooldownMS:     DefaultCooldown.Milliseconds(),
		StorageKey:     "contactguard.submissions",
		Fields:         fields,
	}
}

// Attr returns the JSON for the data-guard attribute, escaped for use inside
// a double-quoted HTML attribute.
func (c Config) Attr() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return html.EscapeString(string(b)), nil
}

// Check applies f to value the way guard.js does and returns the message to
// show, or "" when the value passes.
func (f Field) Check(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		if f.Required {
			return f.Message
		}
		return ""
	}
	n := utf8.RuneCountInString(value)
	if f.MinLen > 0 && n < f.MinLen {
		return f.Message
	}
	if f.MaxLen > 0 && n > f.MaxLen {
		return f.Message
	}
	if f.Pattern != "" {
		if f.Strip != "" {
			value = strings.Map(func(r rune) rune {
				if strings.ContainsRune(f.Strip, r) {
					return -1
				}
				return r
			}, value)
		}
		re, err := regexp.Compile(f.Pattern)
		if err == nil && !re.MatchString(value) {
			return f.Message
		}
	}
	return ""
}
