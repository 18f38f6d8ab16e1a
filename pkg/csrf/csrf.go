// Package csrf issues and verifies anti-forgery tokens bound to a visitor
// session.
//
// One token is issued per session lifetime and embedded in every rendered
// form under FieldName. Verification is an exact constant-time comparison
// against the session-bound value; an absent session, an absent token and a
// mismatch all yield false, so callers cannot tell them apart.
package csrf

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/contactguard/pkg/session"
)

const (
	// FieldName is the form field carrying the token.
	FieldName = "csrf_token"
	// HeaderName is read by FromRequest for script-driven submissions.
	HeaderName = "X-CSRF-Token"

	sessionKey = "csrf_token"
	tokenBytes = 32
)

var (
	ErrNoSession = errors.New("csrf: no session")
	ErrGenerate  = errors.New("csrf: failed to generate token")
	ErrPersist   = errors.New("csrf: failed to persist token")
)

// SessionSaver persists session changes. *session.Manager satisfies it.
type SessionSaver interface {
	Save(ctx context.Context, s *session.Session) error
}

// Issuer hands out session-bound tokens.
type Issuer struct {
	saver SessionSaver
}

func NewIssuer(saver SessionSaver) *Issuer {
	return &Issuer{saver: saver}
}

// Issue returns the token bound to sess, creating and persisting one on the
// first call for the session.
func (i *Issuer) Issue(ctx context.Context, sess *session.Session) (string, error) {
	if sess == nil {
		return "", ErrNoSession
	}
	if tok, ok := sess.Get(sessionKey); ok && tok != "" {
		return tok, nil
	}
	return i.Rotate(ctx, sess)
}

// Rotate replaces the session's token with a new one.
func (i *Issuer) Rotate(ctx context.Context, sess *session.Session) (string, error) {
	if sess == nil {
		return "", ErrNoSession
	}
	tok, err := Generate()
	if err != nil {
		return "", err
	}
	sess.Set(sessionKey, tok)
	if i.saver != nil {
		if err := i.saver.Save(ctx, sess); err != nil {
			sess.Delete(sessionKey)
			return "", errors.Join(ErrPersist, err)
		}
	}
	return tok, nil
}

// Verify reports whether presented exactly matches the token bound to sess.
func Verify(sess *session.Session, presented string) bool {
	bound, ok := sess.Get(sessionKey)
	if !ok || bound == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(bound), []byte(presented)) == 1
}

// Generate returns 256 bits of randomness encoded as unpadded base64url.
func Generate() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// FromRequest returns the presented token from the form field, falling back
// to HeaderName.
func FromRequest(r *http.Request) string {
	if tok := r.PostFormValue(FieldName); tok != "" {
		return tok
	}
	return r.Header.Get(HeaderName)
}
