// Package selfcheck runs fixture-driven diagnostics against the submission
// pipeline components and produces a pass/fail report for deployment
// verification.
//
// Every check runs against fixed inputs. The rate-limit probe uses its own
// in-memory store and a random key, so running the harness never touches
// production counters. Failures are diagnostics for operators, not errors
// for end users.
package selfcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/contactguard/pkg/csrf"
	"github.com/dmitrymomot/contactguard/pkg/ratelimit"
	"github.com/dmitrymomot/contactguard/pkg/sanitizer"
)

// minTokenLength is 128 bits in unpadded base64url.
const minTokenLength = 22

// ValidateFunc reports whether value is acceptable for field.
type ValidateFunc func(field, value string) bool

// Check is one diagnostic result.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
	// Informational checks are reported but never fail the report.
	Informational bool `json:"informational,omitempty"`
}

// Report is the outcome of one harness run.
type Report struct {
	Checks    []Check       `json:"checks"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Passed reports whether every non-informational check passed.
func (r Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed && !c.Informational {
			return false
		}
	}
	return true
}

// Failed returns the names of failing non-informational checks.
func (r Report) Failed() []string {
	var names []string
	for _, c := range r.Checks {
		if !c.Passed && !c.Informational {
			names = append(names, c.Name)
		}
	}
	return names
}

func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	return json.Marshal(struct {
		plain
		Passed bool `json:"passed"`
	}{plain(r), r.Passed()})
}

// String renders the report as plain text, one line per check.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString("Security self-check\n")
	for _, c := range r.Checks {
		status := "PASS"
		switch {
		case c.Informational:
			status = "INFO"
		case !c.Passed:
			status = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s", status, c.Name)
		if c.Detail != "" {
			fmt.Fprintf(&b, ": %s", c.Detail)
		}
		b.WriteByte('\n')
	}
	if r.Passed() {
		b.WriteString("Result: all checks passed\n")
	} else {
		fmt.Fprintf(&b, "Result: %d check(s) failed\n", len(r.Failed()))
	}
	return b.String()
}

// Harness holds the components under test.
type Harness struct {
	generate func() (string, error)
	sanitize func(string) string
	validate ValidateFunc
	policy   ratelimit.Policy
	now      func() time.Time
}

type Option func(*Harness)

func WithTokenGenerator(fn func() (string, error)) Option {
	return func(h *Harness) { h.generate = fn }
}

func WithSanitizer(fn func(string) string) Option {
	return func(h *Harness) { h.sanitize = fn }
}

// WithPolicy sets the window and maximum used by the rate-limit probe.
func WithPolicy(p ratelimit.Policy) Option {
	return func(h *Harness) { h.policy = p }
}

func WithClock(now func() time.Time) Option {
	return func(h *Harness) { h.now = now }
}

// New creates a harness. validate is the field validator under test.
func New(validate ValidateFunc, opts ...Option) *Harness {
	h := &Harness{
		generate: csrf.Generate,
		sanitize: sanitizer.Sanitize,
		validate: validate,
		policy:   ratelimit.DefaultPolicy(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RunOptions carries facts about the request that triggered the run.
type RunOptions struct {
	// Secure reports whether the audit request arrived over HTTPS.
	Secure bool
}

// Run executes every check.
func (h *Harness) Run(ctx context.Context, opts RunOptions) Report {
	started := h.now()
	r := Report{StartedAt: started}

	r.Checks = append(r.Checks, h.checkToken())
	r.Checks = append(r.Checks, h.checkSanitize()...)
	r.Checks = append(r.Checks, h.checkValidators()...)
	r.Checks = append(r.Checks, h.checkRateLimit(ctx))
	r.Checks = append(r.Checks, Check{
		Name:          "https transport",
		Passed:        opts.Secure,
		Detail:        map[bool]string{true: "request served over HTTPS", false: "request not served over HTTPS"}[opts.Secure],
		Informational: true,
	})

	r.Duration = h.now().Sub(started)
	return r
}

func (h *Harness) checkToken() Check {
	c := Check{Name: "token generation"}
	a, err := h.generate()
	if err != nil {
		c.Detail = "generator error: " + err.Error()
		return c
	}
	b, err := h.generate()
	if err != nil {
		c.Detail = "generator error: " + err.Error()
		return c
	}
	switch {
	case a == "":
		c.Detail = "empty token"
	case len(a) < minTokenLength:
		c.Detail = fmt.Sprintf("token length %d below %d", len(a), minTokenLength)
	case a == b:
		c.Detail = "consecutive tokens are identical"
	default:
		c.Passed = true
		c.Detail = fmt.Sprintf("length %d", len(a))
	}
	return c
}

func (h *Harness) checkSanitize() []Check {
	const (
		in   = "<script>alert('xss')</script>Hello World"
		want = "Hello World"
	)
	got := h.sanitize(in)
	markup := Check{Name: "sanitize strips markup", Passed: got == want}
	if !markup.Passed {
		markup.Detail = fmt.Sprintf("got %q, want %q", got, want)
	}

	probes := []string{in, `"><img src=x onerror=alert(1)>`, "Tom & Jerry", "&lt;b&gt;"}
	idem := Check{Name: "sanitize is idempotent", Passed: true}
	for _, p := range probes {
		once := h.sanitize(p)
		if twice := h.sanitize(once); twice != once {
			idem.Passed = false
			idem.Detail = fmt.Sprintf("input %q: %q != %q", p, twice, once)
			break
		}
	}
	return []Check{markup, idem}
}

func (h *Harness) checkValidators() []Check {
	fixtures := []struct {
		field, value string
		want         bool
	}{
		{"email", "test@example.com", true},
		{"email", "invalid-email", false},
		{"phone", "+966501234567", true},
		{"phone", "123", false},
	}
	checks := make([]Check, 0, len(fixtures))
	for _, f := range fixtures {
		verb := "accepts"
		if !f.want {
			verb = "rejects"
		}
		c := Check{Name: fmt.Sprintf("%s validator %s %q", f.field, verb, f.value)}
		if h.validate == nil {
			c.Detail = "no validator configured"
		} else {
			c.Passed = h.validate(f.field, f.value) == f.want
		}
		checks = append(checks, c)
	}
	return checks
}

func (h *Harness) checkRateLimit(ctx context.Context) Check {
	c := Check{Name: "rate limiter denies after limit"}
	store := ratelimit.NewMemoryStore()
	key := ratelimit.Key{Client: "selfcheck-" + uuid.NewString(), Action: h.policy.Action}
	now := h.now()

	for i := range h.policy.Max {
		d, err := ratelimit.Check(ctx, store, key, now, h.policy.Window, h.policy.Max)
		if err != nil {
			c.Detail = err.Error()
			return c
		}
		if !d.Allowed {
			c.Detail = fmt.Sprintf("attempt %d denied below limit", i+1)
			return c
		}
	}
	d, err := ratelimit.Check(ctx, store, key, now, h.policy.Window, h.policy.Max)
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	if d.Allowed {
		c.Detail = fmt.Sprintf("attempt %d allowed above limit", h.policy.Max+1)
		return c
	}

	d, err = ratelimit.Check(ctx, store, key, now.Add(h.policy.Window), h.policy.Window, h.policy.Max)
	if err != nil || !d.Allowed {
		c.Detail = "window did not slide"
		return c
	}
	c.Passed = true
	c.Detail = fmt.Sprintf("%d per %s on isolated store", h.policy.Max, h.policy.Window)
	return c
}
