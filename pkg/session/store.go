package session

import "context"

// Store persists sessions by token.
type Store interface {
	Create(ctx context.Context, s *Session) error
	// Get returns ErrNotFound or ErrExpired when the session is not usable.
	Get(ctx context.Context, token string) (*Session, error)
	// Update replaces an existing session; ErrNotFound if it is gone.
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
}
