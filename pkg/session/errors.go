package session

import "errors"

var (
	ErrNotFound       = errors.New("session: not found")
	ErrExpired        = errors.New("session: expired")
	ErrInvalidSession = errors.New("session: invalid session")
	ErrNoToken        = errors.New("session: no token in request")
	ErrStore          = errors.New("session: store failure")
)
