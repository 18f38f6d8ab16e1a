package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Recorder builds events and writes them to a Storage.
type Recorder struct {
	storage   Storage
	now       func() time.Time
	requestID func(context.Context) string
	hashSalt  string
	hash      bool
}

type Option func(*Recorder)

// WithRequestIDExtractor sets how the request id is read from context.
func WithRequestIDExtractor(fn func(context.Context) string) Option {
	return func(r *Recorder) { r.requestID = fn }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIdentifierHashing stores sha256(salt+identifier)[:16] hex instead of
// the raw identifier.
func WithIdentifierHashing(salt string) Option {
	return func(r *Recorder) {
		r.hash = true
		r.hashSalt = salt
	}
}

// NewRecorder panics when storage is nil.
func NewRecorder(storage Storage, opts ...Option) *Recorder {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	r := &Recorder{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record stores an event of type t for identifier.
func (r *Recorder) Record(ctx context.Context, t EventType, identifier string) error {
	ev := Event{
		ID:         uuid.NewString(),
		Type:       t,
		Identifier: r.identifier(identifier),
		Timestamp:  r.now().UTC(),
	}
	if r.requestID != nil {
		ev.RequestID = r.requestID(ctx)
	}
	if err := ev.Validate(); err != nil {
		return err
	}
	return r.storage.Store(ctx, ev)
}

func (r *Recorder) identifier(id string) string {
	if !r.hash || id == "" {
		return id
	}
	sum := sha256.Sum256([]byte(r.hashSalt + id))
	return hex.EncodeToString(sum[:16])
}
