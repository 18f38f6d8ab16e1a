package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/contactguard/pkg/cookie"
	"github.com/dmitrymomot/contactguard/pkg/logger"
)

// Manager ties a Store to the session cookie.
type Manager struct {
	store   Store
	cookies *cookie.Manager
	cfg     Config
	log     *slog.Logger
}

type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewManager panics when store or cookies is nil.
func NewManager(store Store, cookies *cookie.Manager, cfg Config, opts ...Option) *Manager {
	if store == nil || cookies == nil {
		panic("session: store and cookie manager are required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultConfig().CookieName
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	m := &Manager{store: store, cookies: cookies, cfg: cfg, log: logger.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get loads the session referenced by the request cookie.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.cookies.GetEncrypted(r, m.cfg.CookieName)
	if err != nil {
		if errors.Is(err, cookie.ErrNotFound) {
			return nil, ErrNoToken
		}
		return nil, errors.Join(ErrNoToken, err)
	}
	return m.store.Get(ctx, token)
}

// Ensure returns the request's session, creating one and setting the cookie
// when none is usable.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	s, err := m.Get(ctx, r)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNoToken) && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrExpired) {
		return nil, err
	}

	s, err = New(m.cfg.TTL)
	if err != nil {
		return nil, err
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, err
	}
	if err := m.cookies.SetEncrypted(w, m.cfg.CookieName, s.Token, cookie.WithMaxAge(int(m.cfg.TTL/time.Second))); err != nil {
		_ = m.store.Delete(ctx, s.Token)
		return nil, err
	}
	m.log.DebugContext(ctx, "session created", logger.Component("session"))
	return s, nil
}

// Save persists changes made to s.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	return m.store.Update(ctx, s)
}

// Destroy removes the session and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if token, err := m.cookies.GetEncrypted(r, m.cfg.CookieName); err == nil {
		if err := m.store.Delete(ctx, token); err != nil {
			return err
		}
	}
	m.cookies.Delete(w, m.cfg.CookieName)
	return nil
}
