package sanitizer

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

// strict allows no elements or attributes. A Policy is safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// Sanitize returns s as entity-encoded plain text with all markup removed.
// Control characters other than \n, \r and \t are dropped, the text is NFC
// normalized and surrounding whitespace is trimmed. The steps after markup
// stripping run on the encoded output so entities such as &#1; cannot
// reintroduce what an earlier step removed.
//
// A '<' directly followed by a letter opens a tag, so everything after it
// is dropped: "a<b" becomes "a". A '<' followed by a space is kept as &lt;.
func Sanitize(s string) string {
	return Apply(s,
		strict.Sanitize,
		RemoveControlChars,
		norm.NFC.String,
		strings.TrimSpace,
	)
}

// Text decodes the entities in a sanitized value, giving the text a reader
// would see. Use it for length checks and plain-text rendering only; never
// write it into HTML unescaped.
func Text(sanitized string) string {
	return html.UnescapeString(sanitized)
}

// RemoveControlChars drops Unicode control characters except \n, \r and \t.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// PreventHeaderInjection removes CR, LF and NUL from values destined for
// message headers.
func PreventHeaderInjection(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', 0:
			return -1
		}
		return r
	}, s)
}

// SingleLine collapses every whitespace run, newlines included, to one space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
