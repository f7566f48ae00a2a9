package ott_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberdas/backend/pkg/ott"
	"github.com/cyberdas/backend/pkg/session"
)

func newService(t *testing.T) *ott.Service {
	t.Helper()
	return ott.New(ott.Config{
		Secret: "test-ott-secret",
		TTL:    5 * time.Minute,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_IssueConfirm(t *testing.T) {
	svc := newService(t)

	grant, err := svc.Issue(42)
	require.NoError(t, err)
	assert.NotEmpty(t, grant.Token)
	assert.Equal(t, "Bearer", grant.TokenType)
	assert.Equal(t, 300, grant.ExpiresIn)

	claims, ok := svc.Confirm(grant.Token)
	require.True(t, ok)
	assert.Equal(t, int64(42), claims.UID)

	t.Run("rejects tampered tokens", func(t *testing.T) {
		_, ok := svc.Confirm(grant.Token + "x")
		assert.False(t, ok)
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		other := ott.New(ott.Config{Secret: "other-secret", TTL: 5 * time.Minute}, slog.New(slog.NewTextHandler(io.Discard, nil)))
		foreign, err := other.Issue(42)
		require.NoError(t, err)

		_, ok := svc.Confirm(foreign.Token)
		assert.False(t, ok)
	})
}

func TestService_RequireBearer(t *testing.T) {
	svc := newService(t)

	handler := func(uid *int64) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := session.FromContext(r.Context())
			require.True(t, ok)
			*uid = id.UID
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("accepts a valid bearer token", func(t *testing.T) {
		grant, err := svc.Issue(7)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Authorization", "Bearer "+grant.Token)
		w := httptest.NewRecorder()

		var uid int64
		svc.RequireBearer(handler(&uid)).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(7), uid)
	})

	t.Run("prefers an identity already in context", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r = r.WithContext(session.WithIdentity(r.Context(), session.Identity{UID: 99}))
		w := httptest.NewRecorder()

		var uid int64
		svc.RequireBearer(handler(&uid)).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(99), uid)
	})

	t.Run("rejects bad headers", func(t *testing.T) {
		grant, err := svc.Issue(7)
		require.NoError(t, err)

		for name, header := range map[string]string{
			"missing header":  "",
			"wrong scheme":    "Basic " + grant.Token,
			"malformed split": "Bearer",
			"extra parts":     "Bearer " + grant.Token + " trailing",
			"invalid token":   "Bearer not-a-token",
		} {
			t.Run(name, func(t *testing.T) {
				r := httptest.NewRequest(http.MethodPost, "/", nil)
				if header != "" {
					r.Header.Set("Authorization", header)
				}
				w := httptest.NewRecorder()

				svc.RequireBearer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
					t.Fatal("handler must not run")
				})).ServeHTTP(w, r)

				assert.Equal(t, http.StatusUnauthorized, w.Code)
			})
		}
	})
}
