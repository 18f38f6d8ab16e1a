// Package ratelimit implements sliding-window admission control keyed by
// (client identifier, action).
//
// Every check prunes timestamps at or before now-window, denies without
// recording when the remaining count has reached the maximum, and otherwise
// appends now. Stores perform prune, count and append as one atomic unit so
// concurrent requests from one client cannot both be admitted at count max-1.
// Eviction is lazy: records are pruned only when their key is checked.
//
//	lim, err := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.DefaultPolicy())
//	dec, err := lim.Allow(ctx, clientIP)
//	if !dec.Allowed {
//		w.Header().Set("Retry-After", dec.RetryAfterHeader())
//	}
package ratelimit
