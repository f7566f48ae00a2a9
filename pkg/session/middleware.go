package session

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/cyberdas/backend/pkg/cookie"
	"github.com/cyberdas/backend/pkg/logger"
	"github.com/cyberdas/backend/pkg/pg"
)

// CSRFHeader carries the double-submit token on state-changing requests.
const CSRFHeader = "XCSRF-Token"

// RequireAuth gates a route behind a valid SESSIONID cookie. On success the
// identity lands in the request context; every failure answers 401 without
// detail. State-changing methods additionally have to echo the session's
// csrf token in the XCSRF-Token header.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tx, err := pg.TxFromContext(r.Context())
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		id, err := m.Authorize(r.Context(), tx, cookie.Extract(r, cookie.SessionName))
		if err != nil {
			if errors.Is(err, ErrBadAuth) {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if !isSafeMethod(r.Method) && !csrfMatches(id.CSRFToken, r.Header.Get(CSRFHeader)) {
			m.log.WarnContext(r.Context(), "csrf token mismatch",
				logger.SessionID(id.SID), logger.UserID(id.UID))
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Authenticate resolves the SESSIONID cookie when present but never rejects
// the request; anonymous callers pass through without an identity.
func (m *Manager) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tx, err := pg.TxFromContext(r.Context())
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		id, err := m.Authorize(r.Context(), tx, cookie.Extract(r, cookie.SessionName))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func csrfMatches(expected, presented string) bool {
	if presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}
