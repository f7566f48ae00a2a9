package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cyberdas/backend/pkg/cookie"
	"github.com/cyberdas/backend/pkg/pg"
)

const (
	// tokenBytes of entropy encode to exactly tokenLength urlsafe characters.
	tokenBytes  = 32
	tokenLength = 43

	// selectorBytes encode to 16 characters; the selector only needs to be
	// unique, not unguessable on its own.
	selectorBytes = 12
)

// Manager drives the full session lifecycle: minting short sessions, issuing
// and redeeming long-token series, authorization and teardown. All writes go
// through the caller's transaction; nothing is committed here.
type Manager struct {
	shorts ShortStore
	longs  LongStore
	cfg    Config
	log    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for security-relevant events.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager wires a Manager over the given stores.
func NewManager(shorts ShortStore, longs LongStore, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		shorts: shorts,
		longs:  longs,
		cfg:    cfg,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// generateToken draws a fresh urlsafe token from the system entropy source.
func generateToken(nbytes int) (string, error) {
	buf := make([]byte, nbytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// StartSession mints a short session for uid and returns the SESSIONID cookie
// together with the csrf token the client must echo on unsafe requests.
func (m *Manager) StartSession(ctx context.Context, tx pg.DBTX, uid int64, userAgent, ip string, continued bool) (*http.Cookie, string, error) {
	sid, err := generateToken(tokenBytes)
	if err != nil {
		return nil, "", err
	}
	csrf, err := generateToken(tokenBytes)
	if err != nil {
		return nil, "", err
	}

	_, err = m.shorts.Create(ctx, tx, ShortSession{
		SID:       sid,
		UID:       uid,
		CSRFToken: csrf,
		UserAgent: userAgent,
		IP:        ip,
		Continued: continued,
	})
	if err != nil {
		return nil, "", err
	}

	c := cookie.New(cookie.SessionName, sid, int(m.cfg.SessionTTL.Seconds()))
	return c, csrf, nil
}

// StartLongToken opens or rotates a remember-me series for uid and returns
// the REMEMBER cookie carrying the selector:validator pair. An empty selector
// starts a fresh series; a known selector rotates the existing one in place.
// Only the validator's digest is ever persisted.
func (m *Manager) StartLongToken(ctx context.Context, tx pg.DBTX, uid int64, userAgent, ip, associatedSID, selector string) (*http.Cookie, error) {
	validator, err := generateToken(tokenBytes)
	if err != nil {
		return nil, err
	}

	if selector == "" {
		selector, err = generateToken(selectorBytes)
		if err != nil {
			return nil, err
		}
		_, err = m.longs.Create(ctx, tx, LongSession{
			Selector:      selector,
			Validator:     HashToken(validator),
			AssociatedSID: &associatedSID,
			UID:           uid,
			UserAgent:     userAgent,
			IP:            ip,
		})
		if err != nil {
			return nil, err
		}
	} else {
		if err := m.longs.Rotate(ctx, tx, selector, HashToken(validator), associatedSID); err != nil {
			return nil, err
		}
		if _, err := m.longs.Prolong(ctx, tx, selector); err != nil {
			return nil, err
		}
	}

	return cookie.New(cookie.RememberName, cookie.JoinPair(selector, validator), int(m.cfg.RememberTTL.Seconds())), nil
}

// Continuation is the result of a successful long-token redemption: both
// refreshed cookies plus the identity material of the new short session.
type Continuation struct {
	SessionCookie  *http.Cookie
	RememberCookie *http.Cookie
	CSRFToken      string
	UID            int64
}

// ContinueSession redeems a REMEMBER cookie value into a fresh short session
// and rotates the series validator, so the presented token is single-use.
//
// A malformed or unknown token yields ErrNoSession. A known selector with a
// wrong validator yields ErrTokenTheft and terminates the series. An expired
// series yields ErrLongTokenExpired. A series whose chained short session is
// still alive yields ErrSessionStillActive.
func (m *Manager) ContinueSession(ctx context.Context, tx pg.DBTX, rememberValue, userAgent, ip string) (Continuation, error) {
	selector, validator, err := cookie.SplitPair(rememberValue)
	if err != nil {
		return Continuation{}, ErrNoSession
	}

	series, err := m.longs.Get(ctx, tx, selector, validator)
	if err != nil {
		if errors.Is(err, ErrTokenTheft) {
			m.log.ErrorContext(ctx, "long token theft detected, terminating series",
				slog.String("selector", selector),
				slog.String("ip", ip),
				slog.String("user_agent", userAgent))
			if termErr := m.longs.Terminate(ctx, tx, selector); termErr != nil && !errors.Is(termErr, ErrNoSession) {
				return Continuation{}, termErr
			}
		}
		return Continuation{}, err
	}

	if series.IsExpired() {
		return Continuation{}, ErrLongTokenExpired
	}

	if series.AssociatedSID != nil {
		prev, err := m.shorts.Get(ctx, tx, *series.AssociatedSID)
		switch {
		case err == nil && !prev.IsExpired():
			return Continuation{}, ErrSessionStillActive
		case err != nil && !errors.Is(err, ErrNoSession):
			return Continuation{}, err
		}
	}

	sessionCookie, csrf, err := m.StartSession(ctx, tx, series.UID, userAgent, ip, true)
	if err != nil {
		return Continuation{}, err
	}

	rememberCookie, err := m.StartLongToken(ctx, tx, series.UID, userAgent, ip, sessionCookie.Value, selector)
	if err != nil {
		return Continuation{}, err
	}

	return Continuation{
		SessionCookie:  sessionCookie,
		RememberCookie: rememberCookie,
		CSRFToken:      csrf,
		UID:            series.UID,
	}, nil
}

// EndSession terminates the short session and, when a long-token series is
// chained to it, that series too. Returns the expiring cookies to send: one
// for a plain session, two when a series was torn down as well.
func (m *Manager) EndSession(ctx context.Context, tx pg.DBTX, sid string) ([]*http.Cookie, error) {
	if err := m.shorts.Terminate(ctx, tx, sid); err != nil {
		return nil, err
	}
	cookies := []*http.Cookie{cookie.Expire(cookie.SessionName)}

	series, err := m.longs.FindByAssociatedSID(ctx, tx, sid)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return cookies, nil
		}
		return nil, err
	}
	if err := m.longs.Terminate(ctx, tx, series.Selector); err != nil && !errors.Is(err, ErrNoSession) {
		return nil, err
	}
	return append(cookies, cookie.Expire(cookie.RememberName)), nil
}

// RefreshSession pushes the session expiry forward and returns the reissued
// SESSIONID cookie. Unknown sessions yield ErrNoSession.
func (m *Manager) RefreshSession(ctx context.Context, tx pg.DBTX, sid string) (*http.Cookie, error) {
	if _, err := m.shorts.Prolong(ctx, tx, sid); err != nil {
		return nil, err
	}
	return cookie.New(cookie.SessionName, sid, int(m.cfg.SessionTTL.Seconds())), nil
}

// Authorize resolves a SESSIONID cookie value into the caller's identity.
// Every failure mode collapses into ErrBadAuth so responses do not reveal
// which check rejected the credential; infrastructure errors pass through.
func (m *Manager) Authorize(ctx context.Context, tx pg.DBTX, sidValue string) (Identity, error) {
	if sidValue == "" || len(sidValue) != tokenLength || strings.ContainsRune(sidValue, 0) {
		return Identity{}, ErrBadAuth
	}

	rec, err := m.shorts.Get(ctx, tx, sidValue)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return Identity{}, ErrBadAuth
		}
		return Identity{}, err
	}
	if rec.IsExpired() {
		return Identity{}, ErrBadAuth
	}

	return Identity{UID: rec.UID, SID: rec.SID, CSRFToken: rec.CSRFToken}, nil
}
