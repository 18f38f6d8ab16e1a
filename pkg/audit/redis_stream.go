package audit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStreamStorage appends events to a Redis stream trimmed to about maxLen
// entries.
type RedisStreamStorage struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

func NewRedisStreamStorage(client redis.UniversalClient, stream string, maxLen int64) *RedisStreamStorage {
	return &RedisStreamStorage{client: client, stream: stream, maxLen: maxLen}
}

func (s *RedisStreamStorage) Store(ctx context.Context, e Event) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"id":         e.ID,
			"type":       string(e.Type),
			"identifier": e.Identifier,
			"timestamp":  e.Timestamp.Format(time.RFC3339Nano),
			"request_id": e.RequestID,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}
