package audit

import (
	"context"
	"fmt"
	"time"
)

// EventType classifies a security event.
type EventType string

const (
	EventRateLimitExceeded EventType = "rate_limit_exceeded"
	EventInvalidToken      EventType = "invalid_token"
	EventDispatchFailed    EventType = "dispatch_failed"
)

// Event is a single security record.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Identifier string    `json:"identifier"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

func (e Event) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("%w: type is required", ErrEventValidation)
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrEventValidation)
	}
	return nil
}

// Storage persists events.
type Storage interface {
	Store(ctx context.Context, event Event) error
}
