package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contactguard/pkg/audit"
	"github.com/dmitrymomot/contactguard/pkg/logger"
	"github.com/dmitrymomot/contactguard/pkg/requestid"
)

var fixed = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type storageMock struct {
	mock.Mock
}

func (m *storageMock) Store(ctx context.Context, e audit.Event) error {
	return m.Called(ctx, e).Error(0)
}

func TestRecorder_Record(t *testing.T) {
	t.Parallel()

	mem := audit.NewMemoryStorage(0)
	rec := audit.NewRecorder(mem,
		audit.WithClock(func() time.Time { return fixed }),
		audit.WithRequestIDExtractor(requestid.FromContext),
	)

	ctx := requestid.WithContext(context.Background(), "req-9")
	require.NoError(t, rec.Record(ctx, audit.EventInvalidToken, "192.0.2.1"))

	events := mem.Events()
	require.Len(t, events, 1)
	e := events[0]
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, audit.EventInvalidToken, e.Type)
	assert.Equal(t, "192.0.2.1", e.Identifier)
	assert.Equal(t, fixed, e.Timestamp)
	assert.Equal(t, "req-9", e.RequestID)
	assert.Equal(t, 1, mem.Count(audit.EventInvalidToken))
	assert.Equal(t, 0, mem.Count(audit.EventRateLimitExceeded))
}

func TestRecorder_HashesIdentifier(t *testing.T) {
	t.Parallel()

	mem := audit.NewMemoryStorage(0)
	rec := audit.NewRecorder(mem, audit.WithIdentifierHashing("pepper"))
	require.NoError(t, rec.Record(context.Background(), audit.EventRateLimitExceeded, "192.0.2.1"))
	require.NoError(t, rec.Record(context.Background(), audit.EventRateLimitExceeded, "192.0.2.1"))

	events := mem.Events()
	require.Len(t, events, 2)
	assert.Len(t, events[0].Identifier, 32)
	assert.NotContains(t, events[0].Identifier, "192")
	assert.Equal(t, events[0].Identifier, events[1].Identifier)
}

func TestRecorder_RejectsEmptyType(t *testing.T) {
	t.Parallel()
	err := audit.NewRecorder(audit.NewMemoryStorage(0)).Record(context.Background(), "", "x")
	assert.ErrorIs(t, err, audit.ErrEventValidation)
	assert.Panics(t, func() { audit.NewRecorder(nil) })
}

func TestMemoryStorage_Bounded(t *testing.T) {
	t.Parallel()
	mem := audit.NewMemoryStorage(2)
	rec := audit.NewRecorder(mem)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, rec.Record(context.Background(), audit.EventDispatchFailed, id))
	}
	events := mem.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].Identifier)
	assert.Equal(t, "c", events[1].Identifier)
}

func TestLogStorage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatJSON))
	rec := audit.NewRecorder(audit.NewLogStorage(log))
	require.NoError(t, rec.Record(context.Background(), audit.EventRateLimitExceeded, "192.0.2.1"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "rate_limit_exceeded", line["event_type"])
	assert.Equal(t, "192.0.2.1", line["client_id"])
}

func TestMultiStorage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	failing := &storageMock{}
	failing.On("Store", ctx, mock.Anything).Return(errors.New("disk full"))
	mem := audit.NewMemoryStorage(0)

	err := audit.NewRecorder(audit.MultiStorage{failing, mem}).Record(ctx, audit.EventDispatchFailed, "x")
	assert.ErrorIs(t, err, audit.ErrStorage)
	assert.Len(t, mem.Events(), 1)
	failing.AssertExpectations(t)
}

func TestRedisStreamStorage(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rec := audit.NewRecorder(
		audit.NewRedisStreamStorage(client, "security_events", 100),
		audit.WithClock(func() time.Time { return fixed }),
	)
	ctx := context.Background()
	require.NoError(t, rec.Record(ctx, audit.EventInvalidToken, "192.0.2.1"))
	require.NoError(t, rec.Record(ctx, audit.EventRateLimitExceeded, "192.0.2.2"))

	msgs, err := client.XRange(ctx, "security_events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "invalid_token", msgs[0].Values["type"])
	assert.Equal(t, "192.0.2.2", msgs[1].Values["identifier"])
	assert.Equal(t, fixed.Format(time.RFC3339Nano), msgs[0].Values["timestamp"])

	mr.Close()
	assert.ErrorIs(t, rec.Record(ctx, audit.EventInvalidToken, "x"), audit.ErrStorage)
}
