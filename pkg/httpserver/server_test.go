package httpserver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cyberdas/backend/pkg/httpserver"
)

func TestHealthHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("liveness without checks", func(t *testing.T) {
		w := httptest.NewRecorder()
		httpserver.HealthHandler(log).ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ALIVE", w.Body.String())
	})

	t.Run("ready when all checks pass", func(t *testing.T) {
		ok := func(context.Context) error { return nil }

		w := httptest.NewRecorder()
		httpserver.HealthHandler(log, ok, ok).ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "READY", w.Body.String())
	})

	t.Run("not ready when any check fails", func(t *testing.T) {
		ok := func(context.Context) error { return nil }
		bad := func(context.Context) error { return errors.New("db down") }

		w := httptest.NewRecorder()
		httpserver.HealthHandler(log, ok, bad).ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "NOT_READY", w.Body.String())
	})
}
