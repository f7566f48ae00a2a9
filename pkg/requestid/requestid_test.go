package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberdas/backend/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	echo := func(seen *string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*seen = requestid.FromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	}

	t.Run("generates an id when absent", func(t *testing.T) {
		var seen string
		w := httptest.NewRecorder()
		requestid.Middleware(echo(&seen)).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		require.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(requestid.Header))
	})

	t.Run("reuses a valid client id", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set(requestid.Header, "client-id_123")

		var seen string
		w := httptest.NewRecorder()
		requestid.Middleware(echo(&seen)).ServeHTTP(w, r)

		assert.Equal(t, "client-id_123", seen)
		assert.Equal(t, "client-id_123", w.Header().Get(requestid.Header))
	})

	t.Run("replaces invalid client ids", func(t *testing.T) {
		for _, bad := range []string{"has spaces", "slash/ed", "<script>", string(make([]byte, 129))} {
			r := httptest.NewRequest("GET", "/", nil)
			r.Header.Set(requestid.Header, bad)

			var seen string
			w := httptest.NewRecorder()
			requestid.Middleware(echo(&seen)).ServeHTTP(w, r)

			assert.NotEmpty(t, seen)
			assert.NotEqual(t, bad, seen)
		}
	})
}

func TestContext(t *testing.T) {
	ctx := requestid.WithContext(context.Background(), "abc")
	assert.Equal(t, "abc", requestid.FromContext(ctx))
	assert.Empty(t, requestid.FromContext(context.Background()))

	attr, ok := requestid.LogAttr(ctx)
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)

	_, ok = requestid.LogAttr(context.Background())
	assert.False(t, ok)
}
