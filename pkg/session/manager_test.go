package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contactguard/pkg/cookie"
	"github.com/dmitrymomot/contactguard/pkg/session"
)

func newManager(t *testing.T) (*session.Manager, *session.MemoryStore) {
	t.Helper()
	cm, err := cookie.New([]string{strings.Repeat("k", 32)})
	require.NoError(t, err)
	store := session.NewMemoryStore()
	return session.NewManager(store, cm, session.DefaultConfig()), store
}

func withCookies(req *http.Request, rec *httptest.ResponseRecorder) *http.Request {
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestManager_EnsureReusesSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, store := newManager(t)

	rec := httptest.NewRecorder()
	first, err := m.Ensure(ctx, rec, httptest.NewRequest(http.MethodGet, "/contact", nil))
	require.NoError(t, err)
	require.Len(t, rec.Result().Cookies(), 1)

	req := withCookies(httptest.NewRequest(http.MethodGet, "/contact", nil), rec)
	second, err := m.Ensure(ctx, httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.Len())

	second.Set("k", "v")
	require.NoError(t, m.Save(ctx, second))
	third, err := m.Get(ctx, req)
	require.NoError(t, err)
	v, _ := third.Get("k")
	assert.Equal(t, "v", v)

	require.NoError(t, m.Destroy(ctx, httptest.NewRecorder(), req))
	_, err = m.Get(ctx, req)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestManager_GetWithoutCookie(t *testing.T) {
	t.Parallel()
	m, _ := newManager(t)
	_, err := m.Get(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	m, store := newManager(t)

	var got *session.Session
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = session.FromContext(r.Context())
	}))

	t.Run("post without cookie does not create session", func(t *testing.T) {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/contact", nil))
		assert.Nil(t, got)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("get creates and post reuses", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contact", nil))
		require.NotNil(t, got)
		id := got.ID

		h.ServeHTTP(httptest.NewRecorder(), withCookies(httptest.NewRequest(http.MethodPost, "/contact", nil), rec))
		require.NotNil(t, got)
		assert.Equal(t, id, got.ID)
	})
}
