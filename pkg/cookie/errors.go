package cookie

import "errors"

var (
	ErrNoSecret       = errors.New("cookie: at least one secret is required")
	ErrSecretTooShort = errors.New("cookie: secret is too short")
	ErrNotFound       = errors.New("cookie: not found")
	ErrInvalidFormat  = errors.New("cookie: invalid format")
	ErrDecryption     = errors.New("cookie: decryption failed")
	ErrTooLarge       = errors.New("cookie: encoded value exceeds browser limit")
)
