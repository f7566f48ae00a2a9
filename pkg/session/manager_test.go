package session_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberdas/backend/pkg/cookie"
	"github.com/cyberdas/backend/pkg/session"
)

type testEnv struct {
	mgr    *session.Manager
	shorts *session.MemShortStore
	longs  *session.MemLongStore
}

func setupManager(t *testing.T) testEnv {
	t.Helper()

	cfg := session.Config{
		SessionTTL:  15 * time.Minute,
		RememberTTL: 720 * time.Hour,
	}
	shorts := session.NewMemShortStore(cfg.SessionTTL)
	longs := session.NewMemLongStore(cfg.RememberTTL)

	return testEnv{
		mgr:    session.NewManager(shorts, longs, cfg, session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))),
		shorts: shorts,
		longs:  longs,
	}
}

func TestManager_StartSession(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()

	c, csrf, err := env.mgr.StartSession(ctx, nil, 42, "test-agent", "1.2.3.4", false)
	require.NoError(t, err)

	assert.Equal(t, cookie.SessionName, c.Name)
	assert.Len(t, c.Value, 43)
	assert.Len(t, csrf, 43)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, int((15 * time.Minute).Seconds()), c.MaxAge)

	id, err := env.mgr.Authorize(ctx, nil, c.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id.UID)
	assert.Equal(t, c.Value, id.SID)
	assert.Equal(t, csrf, id.CSRFToken)
}

func TestManager_Authorize(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()

	c, _, err := env.mgr.StartSession(ctx, nil, 1, "ua", "ip", false)
	require.NoError(t, err)

	t.Run("rejects malformed values", func(t *testing.T) {
		for _, sid := range []string{
			"",
			"short",
			strings.Repeat("a", 44),
			strings.Repeat("a", 42) + "\x00",
		} {
			_, err := env.mgr.Authorize(ctx, nil, sid)
			assert.ErrorIs(t, err, session.ErrBadAuth)
		}
	})

	t.Run("rejects unknown sid", func(t *testing.T) {
		_, err := env.mgr.Authorize(ctx, nil, strings.Repeat("x", 43))
		assert.ErrorIs(t, err, session.ErrBadAuth)
	})

	t.Run("rejects expired session", func(t *testing.T) {
		env.shorts.Expire(c.Value)
		_, err := env.mgr.Authorize(ctx, nil, c.Value)
		assert.ErrorIs(t, err, session.ErrBadAuth)
	})
}

func TestManager_StartLongToken(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()

	sc, _, err := env.mgr.StartSession(ctx, nil, 7, "ua", "ip", false)
	require.NoError(t, err)

	rc, err := env.mgr.StartLongToken(ctx, nil, 7, "ua", "ip", sc.Value, "")
	require.NoError(t, err)

	assert.Equal(t, cookie.RememberName, rc.Name)
	selector, validator, err := cookie.SplitPair(rc.Value)
	require.NoError(t, err)
	assert.Len(t, selector, 16)
	assert.Len(t, validator, 43)

	// The store holds the validator's digest, never the plaintext.
	rec, err := env.longs.Get(ctx, nil, selector, validator)
	require.NoError(t, err)
	assert.NotEqual(t, validator, rec.Validator.String())
	assert.True(t, rec.Validator.Matches(validator))
	require.NotNil(t, rec.AssociatedSID)
	assert.Equal(t, sc.Value, *rec.AssociatedSID)

	t.Run("rotating an unknown series fails", func(t *testing.T) {
		_, err := env.mgr.StartLongToken(ctx, nil, 7, "ua", "ip", sc.Value, "nosuchselector")
		assert.ErrorIs(t, err, session.ErrNoSession)
	})
}

func TestManager_ContinueSession(t *testing.T) {
	ctx := context.Background()

	// login issues both credentials, then the short session expires so the
	// long token becomes redeemable.
	login := func(t *testing.T, env testEnv, uid int64) (sessionValue, rememberValue string) {
		t.Helper()
		sc, _, err := env.mgr.StartSession(ctx, nil, uid, "ua", "ip", false)
		require.NoError(t, err)
		rc, err := env.mgr.StartLongToken(ctx, nil, uid, "ua", "ip", sc.Value, "")
		require.NoError(t, err)
		return sc.Value, rc.Value
	}

	t.Run("redeems into a fresh session and rotates the validator", func(t *testing.T) {
		env := setupManager(t)
		oldSID, oldRemember := login(t, env, 9)
		env.shorts.Expire(oldSID)

		cont, err := env.mgr.ContinueSession(ctx, nil, oldRemember, "ua2", "5.6.7.8")
		require.NoError(t, err)

		assert.Equal(t, int64(9), cont.UID)
		assert.NotEqual(t, oldSID, cont.SessionCookie.Value)
		assert.Len(t, cont.CSRFToken, 43)

		id, err := env.mgr.Authorize(ctx, nil, cont.SessionCookie.Value)
		require.NoError(t, err)
		assert.Equal(t, cont.CSRFToken, id.CSRFToken)

		// Selector survives rotation, validator does not.
		oldSel, oldVal, _ := cookie.SplitPair(oldRemember)
		newSel, newVal, err := cookie.SplitPair(cont.RememberCookie.Value)
		require.NoError(t, err)
		assert.Equal(t, oldSel, newSel)
		assert.NotEqual(t, oldVal, newVal)

		// The series now chains to the new session.
		rec, err := env.longs.FindByAssociatedSID(ctx, nil, cont.SessionCookie.Value)
		require.NoError(t, err)
		assert.Equal(t, newSel, rec.Selector)
	})

	t.Run("rotated token redeems again once the chained session ends", func(t *testing.T) {
		env := setupManager(t)
		oldSID, oldRemember := login(t, env, 9)
		env.shorts.Expire(oldSID)

		first, err := env.mgr.ContinueSession(ctx, nil, oldRemember, "ua", "ip")
		require.NoError(t, err)
		env.shorts.Expire(first.SessionCookie.Value)

		second, err := env.mgr.ContinueSession(ctx, nil, first.RememberCookie.Value, "ua", "ip")
		require.NoError(t, err)
		assert.Equal(t, int64(9), second.UID)
		assert.NotEqual(t, first.SessionCookie.Value, second.SessionCookie.Value)

		// Every redemption rotates the validator again.
		_, firstVal, _ := cookie.SplitPair(first.RememberCookie.Value)
		_, secondVal, err := cookie.SplitPair(second.RememberCookie.Value)
		require.NoError(t, err)
		assert.NotEqual(t, firstVal, secondVal)

		_, err = env.mgr.Authorize(ctx, nil, second.SessionCookie.Value)
		assert.NoError(t, err)
	})

	t.Run("replay of the pre-rotation token burns the series", func(t *testing.T) {
		env := setupManager(t)
		oldSID, oldRemember := login(t, env, 9)
		env.shorts.Expire(oldSID)

		cont, err := env.mgr.ContinueSession(ctx, nil, oldRemember, "ua", "ip")
		require.NoError(t, err)
		env.shorts.Expire(cont.SessionCookie.Value)

		_, err = env.mgr.ContinueSession(ctx, nil, oldRemember, "ua", "ip")
		assert.ErrorIs(t, err, session.ErrTokenTheft)

		// The whole series is gone; even the rotated token is now dead.
		_, err = env.mgr.ContinueSession(ctx, nil, cont.RememberCookie.Value, "ua", "ip")
		assert.ErrorIs(t, err, session.ErrNoSession)
	})

	t.Run("rejects redemption while the chained session is alive", func(t *testing.T) {
		env := setupManager(t)
		_, remember := login(t, env, 9)

		_, err := env.mgr.ContinueSession(ctx, nil, remember, "ua", "ip")
		assert.ErrorIs(t, err, session.ErrSessionStillActive)
	})

	t.Run("rejects an expired series", func(t *testing.T) {
		env := setupManager(t)
		oldSID, remember := login(t, env, 9)
		env.shorts.Expire(oldSID)

		selector, _, _ := cookie.SplitPair(remember)
		env.longs.Expire(selector)

		_, err := env.mgr.ContinueSession(ctx, nil, remember, "ua", "ip")
		assert.ErrorIs(t, err, session.ErrLongTokenExpired)
	})

	t.Run("rejects malformed and unknown tokens", func(t *testing.T) {
		env := setupManager(t)

		for _, value := range []string{"", "lol", "a:b:c", ":validator"} {
			_, err := env.mgr.ContinueSession(ctx, nil, value, "ua", "ip")
			assert.ErrorIs(t, err, session.ErrNoSession)
		}

		_, err := env.mgr.ContinueSession(ctx, nil, "unknownselector:"+strings.Repeat("v", 43), "ua", "ip")
		assert.ErrorIs(t, err, session.ErrNoSession)
	})
}

func TestManager_EndSession(t *testing.T) {
	ctx := context.Background()

	t.Run("plain session expires one cookie", func(t *testing.T) {
		env := setupManager(t)
		sc, _, err := env.mgr.StartSession(ctx, nil, 3, "ua", "ip", false)
		require.NoError(t, err)

		cookies, err := env.mgr.EndSession(ctx, nil, sc.Value)
		require.NoError(t, err)
		require.Len(t, cookies, 1)
		assert.Equal(t, cookie.SessionName, cookies[0].Name)
		assert.Equal(t, -1, cookies[0].MaxAge)

		_, err = env.mgr.Authorize(ctx, nil, sc.Value)
		assert.ErrorIs(t, err, session.ErrBadAuth)
	})

	t.Run("chained series is torn down with the session", func(t *testing.T) {
		env := setupManager(t)
		sc, _, err := env.mgr.StartSession(ctx, nil, 3, "ua", "ip", false)
		require.NoError(t, err)
		rc, err := env.mgr.StartLongToken(ctx, nil, 3, "ua", "ip", sc.Value, "")
		require.NoError(t, err)

		cookies, err := env.mgr.EndSession(ctx, nil, sc.Value)
		require.NoError(t, err)
		require.Len(t, cookies, 2)
		assert.Equal(t, cookie.SessionName, cookies[0].Name)
		assert.Equal(t, cookie.RememberName, cookies[1].Name)

		_, err = env.mgr.ContinueSession(ctx, nil, rc.Value, "ua", "ip")
		assert.ErrorIs(t, err, session.ErrNoSession)
	})

	t.Run("unknown sid fails", func(t *testing.T) {
		env := setupManager(t)
		_, err := env.mgr.EndSession(ctx, nil, "nosuchsid")
		assert.ErrorIs(t, err, session.ErrNoSession)
	})
}

func TestManager_RefreshSession(t *testing.T) {
	env := setupManager(t)
	ctx := context.Background()

	sc, _, err := env.mgr.StartSession(ctx, nil, 5, "ua", "ip", false)
	require.NoError(t, err)

	c, err := env.mgr.RefreshSession(ctx, nil, sc.Value)
	require.NoError(t, err)
	assert.Equal(t, cookie.SessionName, c.Name)
	assert.Equal(t, sc.Value, c.Value)

	_, err = env.mgr.RefreshSession(ctx, nil, "unknown")
	assert.ErrorIs(t, err, session.ErrNoSession)
}
