package contact_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contactguard/pkg/audit"
	"github.com/dmitrymomot/contactguard/pkg/csrf"
	"github.com/dmitrymomot/contactguard/pkg/ratelimit"
	"github.com/dmitrymomot/contactguard/pkg/session"
	"github.com/dmitrymomot/contactguard/pkg/validator"
	"github.com/dmitrymomot/contactguard/svc/contact"
)

type notifierMock struct {
	mock.Mock
}

func (m *notifierMock) Notify(ctx context.Context, msg contact.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type failingStore struct{}

func (failingStore) CheckAndRecord(context.Context, string, time.Time, time.Duration, int) (bool, int, time.Time, error) {
	return false, 0, time.Time{}, errors.New("connection refused")
}

func (failingStore) Reset(context.Context, string) error { return nil }

type fixture struct {
	handler *contact.Handler
	events  *audit.MemoryStorage
	sess    *session.Session
	token   string
	clock   time.Time
}

func newFixture(t *testing.T, notifier contact.Notifier, opts ...contact.Option) *fixture {
	t.Helper()

	f := &fixture{clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	limiter, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.DefaultPolicy(),
		ratelimit.WithClock(func() time.Time { return f.clock }))
	require.NoError(t, err)

	f.events = audit.NewMemoryStorage(100)
	opts = append([]contact.Option{contact.WithEventRecorder(audit.NewRecorder(f.events))}, opts...)
	f.handler = contact.NewHandler(limiter, notifier, opts...)

	f.sess, err = session.New(time.Hour)
	require.NoError(t, err)
	f.token, err = csrf.NewIssuer(nil).Issue(context.Background(), f.sess)
	require.NoError(t, err)
	return f
}

func (f *fixture) submit(t *testing.T, token string, values map[string]string) (*contact.Outcome, error) {
	t.Helper()
	return f.handler.Handle(context.Background(), f.sess, contact.Submission{
		Identifier: "203.0.113.7",
		Token:      token,
		Values:     values,
	})
}

func validValues() map[string]string {
	return map[string]string{
		"name":    "Ali",
		"email":   "a@b.com",
		"phone":   "",
		"message": "1234567890",
	}
}

func TestHandle_ValidSubmissionDispatchesOnce(t *testing.T) {
	t.Parallel()

	n := &notifierMock{}
	n.On("Notify", mock.Anything, mock.Anything).Return(nil)
	f := newFixture(t, n)

	out, err := f.submit(t, f.token, validValues())
	require.NoError(t, err)

	n.AssertNumberOfCalls(t, "Notify", 1)
	msg := n.Calls[0].Arguments.Get(1).(contact.Message)
	assert.Equal(t, "a@b.com", msg.ReplyTo)
	assert.Equal(t, "New Contact Form Message", msg.Subject)

	assert.Equal(t, contact.StateDispatched, out.State())
	assert.Equal(t, []string{
		"received", "rate_limit_checked", "token_verified", "sanitized", "validated", "dispatched",
	}, stateNames(out))
	assert.True(t, out.Results.Valid())
	assert.Equal(t, 2, out.Decision.Remaining)
	assert.Empty(t, f.events.Events())
	assert.Equal(t, contact.MessageSuccess, contact.PublicMessage(err))
}

func TestHandle_FourthSubmissionIsRateLimited(t *testing.T) {
	t.Parallel()

	n := &notifierMock{}
	n.On("Notify", mock.Anything, mock.Anything).Return(nil)
	f := newFixture(t, n)

	for range 3 {
		_, err := f.submit(t, f.token, validValues())
		require.NoError(t, err)
		f.clock = f.clock.Add(10 * time.Second)
	}

	out, err := f.submit(t, f.token, validValues())
	require.ErrorIs(t, err, contact.ErrRateLimitExceeded)
	n.AssertNumberOfCalls(t, "Notify", 3)

	assert.Equal(t, contact.StateRejected, out.State())
	assert.False(t, out.Reached(contact.StateTokenVerified))
	assert.Nil(t, out.Results)
	assert.Equal(t, 270*time.Second, out.Decision.RetryAfter)
	assert.Equal(t, 1, f.events.Count(audit.EventRateLimitExceeded))
	assert.Equal(t, contact.MessageRateLimited, contact.PublicMessage(err))

	// 300s after the first admission its slot leaves the window.
	f.clock = f.clock.Add(270 * time.Second)
	_, err = f.submit(t, f.token, validValues())
	require.NoError(t, err)
	n.AssertNumberOfCalls(t, "Notify", 4)
}

func TestHandle_InvalidToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token func(f *fixture) string
		sess  func(f *fixture) *session.Session
	}{
		{"tampered", func(f *fixture) string { return f.token + "x" }, nil},
		{"missing", func(*fixture) string { return "" }, nil},
		{"other session", func(*fixture) string {
			s, _ := session.New(time.Hour)
			tok, _ := csrf.NewIssuer(nil).Issue(context.Background(), s)
			return tok
		}, nil},
		{"no session", func(f *fixture) string { return f.token }, func(*fixture) *session.Session { return nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := &notifierMock{}
			f := newFixture(t, n)
			sess := f.sess
			if tt.sess != nil {
				sess = tt.sess(f)
			}

			out, err := f.handler.Handle(context.Background(), sess, contact.Submission{
				Identifier: "203.0.113.7",
				Token:      tt.token(f),
				Values:     validValues(),
			})
			require.ErrorIs(t, err, contact.ErrInvalidToken)
			n.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)

			assert.Equal(t, contact.StateRejected, out.State())
			assert.True(t, out.Reached(contact.StateRateLimitChecked))
			assert.False(t, out.Reached(contact.StateSanitized))
			assert.Nil(t, out.Results)
			assert.Equal(t, 1, f.events.Count(audit.EventInvalidToken))
			assert.Equal(t, contact.MessageInvalidToken, contact.PublicMessage(err))
		})
	}
}

func TestHandle_MessageTooLong(t *testing.T) {
	t.Parallel()

	n := &notifierMock{}
	f := newFixture(t, n)
	values := validValues()
	values["message"] = strings.Repeat("a", 1001)

	out, err := f.submit(t, f.token, values)
	require.ErrorIs(t, err, contact.ErrValidationFailed)
	n.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)

	reason, ok := out.Results.Reason("message")
	require.True(t, ok)
	assert.Equal(t, "too long", reason)

	ve := validator.ExtractValidationErrors(err)
	require.Len(t, ve, 1)
	assert.Equal(t, "message", ve[0].Field)
	assert.Equal(t, "too long", ve[0].Reason)

	assert.True(t, out.Reached(contact.StateValidated))
	assert.Equal(t, contact.StateRejected, out.State())
	assert.Empty(t, f.events.Events(), "validation failures are not security events")
}

func TestHandle_ReportsEveryInvalidField(t *testing.T) {
	t.Parallel()

	n := &notifierMock{}
	f := newFixture(t, n)
	values := validValues()
	values["name"] = "A"
	values["email"] = "invalid-email"
	values["phone"] = "123"

	out, err := f.submit(t, f.token, values)
	require.ErrorIs(t, err, contact.ErrValidationFailed)

	failures := out.Results.Failures()
	require.Len(t, failures, 3)
	assert.Equal(t, "name", failures[0].Field)
	assert.Equal(t, "too short", failures[0].Reason)
	assert.Equal(t, "email", failures[1].Field)
	assert.Equal(t, "invalid email address", failures[1].Reason)
	assert.Equal(t, "phone", failures[2].Field)
	assert.Equal(t, "invalid phone number", failures[2].Reason)

	assert.Equal(t, []string{
		"Name must be at least 2 characters long",
		"Please enter a valid email address",
		"Please enter a valid phone number",
	}, out.Results.Messages())
	assert.Len(t, out.Results, len(contact.Rules))
}

// A slot is consumed as soon as the rate check admits a request, so retries
// with a bad token still count against the client.
func TestHandle_ConsumesSlotBeforeTokenCheck(t *testing.T) {
	t.Parallel()

	n := &notifierMock{}
	f := newFixture(t, n)

	for range 3 {
		_, err := f.submit(t, "forged", validValues())
		require.ErrorIs(t, err, contact.ErrInvalidToken)
	}

	_, err := f.submit(t, f.token, validValues())
	require.ErrorIs(t, err, contact.ErrRateLimitExceeded)
	n.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestHandle_SanitizedValuesReachNotifier(t *testing.T) {
	t.Parallel()

	var got contact.Message
	f := newFixture(t, contact.NotifierFunc(func(_ context.Context, msg contact.Message) error {
		got = msg
		return nil
	}))
	values := validValues()
	values["name"] = "<b>Ali</b>"
	values["message"] = "<script>alert(1)</script>Hello there, team"
	values["company"] = "Tom & Jerry"

	out, err := f.submit(t, f.token, values)
	require.NoError(t, err)

	byLabel := map[string]string{}
	for _, fl := range got.Fields {
		byLabel[fl.Label] = fl.Value
	}
	assert.Equal(t, "Ali", byLabel["Name"])
	assert.Equal(t, "Hello there, team", byLabel["Message"])
	assert.Equal(t, "Tom &amp; Jerry", byLabel["Company"])
	assert.Equal(t, out.Sanitized["company"], byLabel["Company"])
}

func TestHandle_DispatchFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		notifier contact.Notifier
		opts     []contact.Option
		check    func(t *testing.T, err error)
	}{
		{
			name: "transport error",
			notifier: contact.NotifierFunc(func(context.Context, contact.Message) error {
				return errors.New("postmark: 500 internal error")
			}),
		},
		{
			name: "panic",
			notifier: contact.NotifierFunc(func(context.Context, contact.Message) error {
				panic("nil map write")
			}),
		},
		{
			name: "timeout",
			notifier: contact.NotifierFunc(func(ctx context.Context, _ contact.Message) error {
				<-ctx.Done()
				return ctx.Err()
			}),
			opts: []contact.Option{contact.WithDispatchTimeout(10 * time.Millisecond)},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, context.DeadlineExceeded)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, tt.notifier, tt.opts...)
			out, err := f.submit(t, f.token, validValues())
			require.ErrorIs(t, err, contact.ErrDispatchFailed)
			if tt.check != nil {
				tt.check(t, err)
			}

			assert.Equal(t, contact.StateRejected, out.State())
			assert.False(t, out.Reached(contact.StateDispatched))
			assert.Equal(t, 1, f.events.Count(audit.EventDispatchFailed))
			assert.Equal(t, "Oops, something went wrong. Please try again later", contact.PublicMessage(err))
		})
	}
}

func TestHandle_StoreFailure(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.NewLimiter(failingStore{}, ratelimit.DefaultPolicy())
	require.NoError(t, err)
	n := &notifierMock{}
	h := contact.NewHandler(limiter, n)

	out, err := h.Handle(context.Background(), nil, contact.Submission{Identifier: "x"})
	require.ErrorIs(t, err, contact.ErrUnavailable)
	assert.Equal(t, []string{"received", "rejected"}, stateNames(out))
	assert.Equal(t, contact.MessageTryLater, contact.PublicMessage(err))
	n.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestNewHandler_PanicsOnMissingDependencies(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.DefaultPolicy())
	require.NoError(t, err)
	assert.Panics(t, func() { contact.NewHandler(nil, &notifierMock{}) })
	assert.Panics(t, func() { contact.NewHandler(limiter, nil) })
}

func stateNames(out *contact.Outcome) []string {
	var names []string
	for _, s := range out.States() {
		names = append(names, s.String())
	}
	return names
}
