package formguard

import (
	"context"
	"time"

	"github.com/dmitrymomot/contactguard/pkg/ratelimit"
)

// Throttle is the local submission counter. It applies the same sliding
// window as the server to a single visitor and exists for UX feedback only.
type Throttle struct {
	store  *ratelimit.MemoryStore
	key    ratelimit.Key
	max    int
	window time.Duration
}

func NewThrottle(max int, window time.Duration) *Throttle {
	return &Throttle{
		store:  ratelimit.NewMemoryStore(),
		key:    ratelimit.Key{Client: "local", Action: "submit"},
		max:    max,
		window: window,
	}
}

// Allow records a submission attempt at now and reports whether it may
// proceed, with the wait until the next slot when it may not.
func (t *Throttle) Allow(now time.Time) (bool, time.Duration) {
	d, err := ratelimit.Check(context.Background(), t.store, t.key, now, t.window, t.max)
	if err != nil {
		// A broken local counter never blocks; the server decides.
		return true, 0
	}
	return d.Allowed, d.RetryAfter
}
