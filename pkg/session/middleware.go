package session

import (
	"net/http"

	"github.com/dmitrymomot/contactguard/pkg/logger"
)

// Middleware attaches the visitor session to the request context. Safe
// methods get a session created if needed; other methods only look one up and
// proceed with a nil session when there is none.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var (
			s   *Session
			err error
		)
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			s, err = m.Ensure(ctx, w, r)
			if err != nil {
				m.log.ErrorContext(ctx, "failed to ensure session", logger.Component("session"), logger.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		default:
			s, _ = m.Get(ctx, r)
		}

		next.ServeHTTP(w, r.WithContext(WithContext(ctx, s)))
	})
}
