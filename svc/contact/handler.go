package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/contactguard/pkg/audit"
	"github.com/dmitrymomot/contactguard/pkg/csrf"
	"github.com/dmitrymomot/contactguard/pkg/logger"
	"github.com/dmitrymomot/contactguard/pkg/ratelimit"
	"github.com/dmitrymomot/contactguard/pkg/sanitizer"
	"github.com/dmitrymomot/contactguard/pkg/session"
	"github.com/dmitrymomot/contactguard/pkg/statemachine"
)

const (
	StateReceived         statemachine.State = "received"
	StateRateLimitChecked statemachine.State = "rate_limit_checked"
	StateTokenVerified    statemachine.State = "token_verified"
	StateSanitized        statemachine.State = "sanitized"
	StateValidated        statemachine.State = "validated"
	StateDispatched       statemachine.State = "dispatched"
	StateRejected         statemachine.State = "rejected"
)

var pipeline = statemachine.MustDefine(StateReceived,
	statemachine.Transition{From: StateReceived, To: StateRateLimitChecked},
	statemachine.Transition{From: StateReceived, To: StateRejected},
	statemachine.Transition{From: StateRateLimitChecked, To: StateTokenVerified},
	statemachine.Transition{From: StateRateLimitChecked, To: StateRejected},
	statemachine.Transition{From: StateTokenVerified, To: StateSanitized},
	statemachine.Transition{From: StateSanitized, To: StateValidated},
	statemachine.Transition{From: StateValidated, To: StateDispatched},
	statemachine.Transition{From: StateValidated, To: StateRejected},
)

// Outcome records what happened to one submission.
type Outcome struct {
	run *statemachine.Machine

	// Decision is the rate-limit decision; zero if the check did not run.
	Decision ratelimit.Decision
	// Results is set once validation ran.
	Results Results
	// Sanitized holds the sanitized field values once sanitization ran.
	Sanitized map[string]string
}

func (o *Outcome) State() statemachine.State {
	return o.run.Current()
}

// States returns every state visited, in order.
func (o *Outcome) States() []statemachine.State {
	return o.run.History()
}

func (o *Outcome) Reached(s statemachine.State) bool {
	return o.run.Reached(s)
}

func (o *Outcome) advance(to statemachine.State) {
	if err := o.run.Fire(to); err != nil {
		panic(fmt.Sprintf("contact: %v", err))
	}
}

// EventRecorder stores security events. *audit.Recorder satisfies it.
type EventRecorder interface {
	Record(ctx context.Context, t audit.EventType, identifier string) error
}

// Handler runs submissions through the pipeline.
type Handler struct {
	limiter  *ratelimit.Limiter
	notifier Notifier
	events   EventRecorder
	log      *slog.Logger
	subject  string
	timeout  time.Duration
}

type Option func(*Handler)

func WithEventRecorder(r EventRecorder) Option {
	return func(h *Handler) { h.events = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithSubject sets the notification subject line.
func WithSubject(subject string) Option {
	return func(h *Handler) {
		if subject != "" {
			h.subject = subject
		}
	}
}

// WithDispatchTimeout bounds each Notifier call.
func WithDispatchTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewHandler panics when limiter or notifier is nil.
func NewHandler(limiter *ratelimit.Limiter, notifier Notifier, opts ...Option) *Handler {
	if limiter == nil {
		panic("contact: limiter cannot be nil")
	}
	if notifier == nil {
		panic("contact: notifier cannot be nil")
	}
	h := &Handler{
		limiter:  limiter,
		notifier: notifier,
		log:      logger.Nop(),
		subject:  "New Contact Form Message",
		timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With(logger.Component("contact"))
	return h
}

// Handle processes sub for the visitor session sess. The returned Outcome is
// never nil. The error is nil on success and otherwise matches one of
// ErrRateLimitExceeded, ErrInvalidToken, ErrValidationFailed,
// ErrDispatchFailed or ErrUnavailable.
func (h *Handler) Handle(ctx context.Context, sess *session.Session, sub Submission) (*Outcome, error) {
	out := &Outcome{run: pipeline.Start()}
	log := h.log.With(logger.ClientID(sub.Identifier))

	decision, err := h.limiter.Allow(ctx, sub.Identifier)
	if err != nil {
		out.advance(StateRejected)
		log.ErrorContext(ctx, "rate limit check failed", logger.Error(err))
		return out, errors.Join(ErrUnavailable, err)
	}
	out.Decision = decision
	if !decision.Allowed {
		out.advance(StateRejected)
		h.record(ctx, audit.EventRateLimitExceeded, sub.Identifier)
		log.WarnContext(ctx, "submission rate limited",
			logger.Action(h.limiter.Policy().Action),
			slog.Duration("retry_after", decision.RetryAfter))
		return out, ErrRateLimitExceeded
	}
	out.advance(StateRateLimitChecked)

	if !csrf.Verify(sess, sub.Token) {
		out.advance(StateRejected)
		h.record(ctx, audit.EventInvalidToken, sub.Identifier)
		log.WarnContext(ctx, "submission token rejected")
		return out, ErrInvalidToken
	}
	out.advance(StateTokenVerified)

	out.Sanitized = make(map[string]string, len(Rules))
	for _, r := range Rules {
		out.Sanitized[r.Name] = sanitizer.Sanitize(sub.Values[r.Name])
	}
	out.advance(StateSanitized)

	out.Results = ValidateAll(out.Sanitized)
	out.advance(StateValidated)
	if err := out.Results.Err(); err != nil {
		out.advance(StateRejected)
		log.InfoContext(ctx, "submission failed validation",
			slog.Any("fields", failedFields(out.Results)))
		return out, err
	}

	msg := BuildMessage(h.subject, out.Sanitized)
	if err := h.dispatch(ctx, msg); err != nil {
		out.advance(StateRejected)
		h.record(ctx, audit.EventDispatchFailed, sub.Identifier)
		log.ErrorContext(ctx, "notification dispatch failed", logger.Error(err))
		return out, errors.Join(ErrDispatchFailed, err)
	}
	out.advance(StateDispatched)
	log.InfoContext(ctx, "submission dispatched")
	return out, nil
}

// dispatch calls the notifier under a timeout and turns a panic into an
// error.
func (h *Handler) dispatch(ctx context.Context, msg Message) (err error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	return h.notifier.Notify(ctx, msg)
}

func (h *Handler) record(ctx context.Context, t audit.EventType, identifier string) {
	if h.events == nil {
		return
	}
	if err := h.events.Record(ctx, t, identifier); err != nil {
		h.log.ErrorContext(ctx, "failed to record security event",
			logger.EventType(string(t)), logger.Error(err))
	}
}

func failedFields(rs Results) []string {
	var fields []string
	for _, r := range rs.Failures() {
		fields = append(fields, r.Field)
	}
	return fields
}
