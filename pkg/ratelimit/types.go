package ratelimit

import (
	"context"
	"math"
	"strconv"
	"time"
)

// Decision is the outcome of one check.
type Decision struct {
	Allowed bool
	// Limit is the configured maximum per window.
	Limit int
	// Count is the number of recorded timestamps in the window after the check.
	Count int
	// Remaining admissions left in the window.
	Remaining int
	// RetryAfter is how long until the oldest timestamp leaves the window.
	// Zero when allowed.
	RetryAfter time.Duration
	// ResetAt is when the window would be empty if no further attempts arrive.
	ResetAt time.Time
}

// RetryAfterHeader renders RetryAfter as whole seconds, at least 1.
func (d Decision) RetryAfterHeader() string {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	return strconv.Itoa(max(secs, 1))
}

// Store persists timestamp records.
type Store interface {
	// CheckAndRecord prunes timestamps <= now-window for key, then records now
	// if fewer than limit remain. It returns whether now was recorded, the
	// count after the operation and the oldest timestamp still in the window
	// (now when the window is empty).
	CheckAndRecord(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (allowed bool, count int, oldest time.Time, err error)
	// Reset drops the record for key.
	Reset(ctx context.Context, key string) error
}

// Policy binds a window and maximum to an action name.
type Policy struct {
	Action string        `env:"RATE_LIMIT_ACTION" envDefault:"contact_form"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"300s"`
	Max    int           `env:"RATE_LIMIT_MAX" envDefault:"3"`
}

// DefaultPolicy admits 3 submissions per 5 minutes per client.
func DefaultPolicy() Policy {
	return Policy{Action: "contact_form", Window: 300 * time.Second, Max: 3}
}

func (p Policy) Validate() error {
	if p.Action == "" {
		return ErrKeyRequired
	}
	if p.Max <= 0 {
		return ErrInvalidLimit
	}
	if p.Window <= 0 {
		return ErrInvalidWindow
	}
	return nil
}
