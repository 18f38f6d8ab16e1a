package ratelimit

import "errors"

var (
	ErrRateLimitExceeded = errors.New("ratelimit: rate limit exceeded")
	ErrInvalidLimit      = errors.New("ratelimit: max must be positive")
	ErrInvalidWindow     = errors.New("ratelimit: window must be positive")
	ErrKeyRequired       = errors.New("ratelimit: client and action are required")
	ErrStoreRequired     = errors.New("ratelimit: store is required")
	ErrStore             = errors.New("ratelimit: store failure")
)
