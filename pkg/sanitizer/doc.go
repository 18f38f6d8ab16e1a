// Package sanitizer turns untrusted form input into inert text.
//
// Sanitize strips every element with bluemonday's strict policy (the bodies
// of script and style elements are dropped with their tags), entity-encodes
// the remaining text, removes control characters and applies Unicode NFC. The
// result is safe to write into HTML without further escaping and
// Sanitize(Sanitize(x)) == Sanitize(x) for every x.
//
// Because the output is entity-encoded, lengths shown to users must be
// measured on Text(Sanitize(x)), the decoded form.
//
// Apply and Compose chain string transforms for field-specific pipelines.
package sanitizer
