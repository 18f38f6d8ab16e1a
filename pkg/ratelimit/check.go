package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Check runs one sliding-window admission check against store.
func Check(ctx context.Context, store Store, key Key, now time.Time, window time.Duration, limit int) (Decision, error) {
	if store == nil {
		return Decision{}, ErrStoreRequired
	}
	if !key.Valid() {
		return Decision{}, ErrKeyRequired
	}
	if limit <= 0 {
		return Decision{}, ErrInvalidLimit
	}
	if window <= 0 {
		return Decision{}, ErrInvalidWindow
	}

	allowed, count, oldest, err := store.CheckAndRecord(ctx, key.String(), now, window, limit)
	if err != nil {
		return Decision{}, errors.Join(ErrStore, err)
	}

	d := Decision{
		Allowed:   allowed,
		Limit:     limit,
		Count:     count,
		Remaining: max(limit-count, 0),
		ResetAt:   oldest.Add(window),
	}
	if !allowed {
		d.RetryAfter = max(oldest.Add(window).Sub(now), 0)
	}
	return d, nil
}

// Limiter applies a fixed Policy.
type Limiter struct {
	store  Store
	policy Policy
	now    func() time.Time
}

type LimiterOption func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

func NewLimiter(store Store, policy Policy, opts ...LimiterOption) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	l := &Limiter{store: store, policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Limiter) Policy() Policy {
	return l.policy
}

// Allow checks and, if admitted, records an attempt by client.
func (l *Limiter) Allow(ctx context.Context, client string) (Decision, error) {
	return Check(ctx, l.store, Key{Client: client, Action: l.policy.Action}, l.now(), l.policy.Window, l.policy.Max)
}

// Reset clears the record of client.
func (l *Limiter) Reset(ctx context.Context, client string) error {
	key := Key{Client: client, Action: l.policy.Action}
	if !key.Valid() {
		return ErrKeyRequired
	}
	return l.store.Reset(ctx, key.String())
}
