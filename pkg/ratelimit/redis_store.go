package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript prunes, counts and conditionally records in one
// server-side step. Scores are microseconds since the epoch, passed as
// strings so Lua never formats them as floats.
var slidingWindowScript = redis.NewScript(`
local key    = KEYS[1]
local now    = ARGV[1]
local cutoff = ARGV[2]
local limit  = tonumber(ARGV[3])
local member = ARGV[4]
local ttl_ms = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', cutoff)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, member)
  redis.call('PEXPIRE', key, ttl_ms)
  count = count + 1
  allowed = 1
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldest_score = now
if oldest[2] then
  oldest_score = oldest[2]
end
return {allowed, count, oldest_score}
`)

// RedisStore keeps each record as a sorted set of timestamps. The key
// expires one window after its newest entry.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix + "ratelimit:"}
}

func (s *RedisStore) CheckAndRecord(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int, time.Time, error) {
	ttlMs := max(window.Milliseconds(), 1)
	res, err := slidingWindowScript.Run(ctx, s.client,
		[]string{s.prefix + key},
		strconv.FormatInt(now.UnixMicro(), 10),
		strconv.FormatInt(now.Add(-window).UnixMicro(), 10),
		limit, uuid.NewString(), ttlMs,
	).Slice()
	if err != nil {
		return false, 0, time.Time{}, err
	}
	if len(res) != 3 {
		return false, 0, time.Time{}, fmt.Errorf("unexpected script reply length %d", len(res))
	}

	allowed, _ := res[0].(int64)
	count, _ := res[1].(int64)
	oldestStr, _ := res[2].(string)
	oldestMicros, err := strconv.ParseFloat(oldestStr, 64)
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("parse oldest score %q: %w", oldestStr, err)
	}
	return allowed == 1, int(count), time.UnixMicro(int64(oldestMicros)), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
