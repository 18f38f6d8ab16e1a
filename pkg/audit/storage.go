package audit

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/contactguard/pkg/logger"
)

// LogStorage writes every event as a WARN log record.
type LogStorage struct {
	log *slog.Logger
}

func NewLogStorage(log *slog.Logger) *LogStorage {
	if log == nil {
		log = slog.Default()
	}
	return &LogStorage{log: log}
}

func (s *LogStorage) Store(ctx context.Context, e Event) error {
	s.log.WarnContext(ctx, "security event",
		logger.Component("audit"),
		logger.EventType(string(e.Type)),
		logger.ClientID(e.Identifier),
		slog.String("event_id", e.ID),
		slog.Time("timestamp", e.Timestamp),
	)
	return nil
}

// MemoryStorage keeps events in a bounded in-memory ring.
type MemoryStorage struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// NewMemoryStorage keeps at most limit events; limit <= 0 means unbounded.
func NewMemoryStorage(limit int) *MemoryStorage {
	return &MemoryStorage{limit: limit}
}

func (s *MemoryStorage) Store(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	if s.limit > 0 && len(s.events) > s.limit {
		s.events = slices.Delete(s.events, 0, len(s.events)-s.limit)
	}
	return nil
}

// Events returns a copy of the stored events, oldest first.
func (s *MemoryStorage) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// Count returns how many stored events have type t.
func (s *MemoryStorage) Count(t EventType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// MultiStorage writes to every storage and joins their errors.
type MultiStorage []Storage

func (m MultiStorage) Store(ctx context.Context, e Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Store(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrStorage}, errs...)...)
	}
	return nil
}
