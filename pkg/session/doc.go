// Package session implements the credential lifecycle behind cookie
// authentication: short-lived sessions, remember-me token series and the
// authorization checks tying them together.
//
// # Model
//
// A ShortSession is the primary credential. Its sid travels in the SESSIONID
// cookie; a csrf token minted alongside it must be echoed in the XCSRF-Token
// header on state-changing requests. Sessions are short-lived and prolonged
// explicitly, never on access.
//
// A LongSession is one remember-me series, delivered as selector:validator in
// the REMEMBER cookie. The selector is a stable public handle; the validator
// is a single-use secret stored only as a SHA-256 digest and rotated on every
// redemption. Presenting a known selector with a stale validator is treated
// as theft: the series is terminated and the event logged.
//
// # Usage
//
//	mgr := session.NewManager(
//	    session.NewPGShortStore(cfg.SessionTTL),
//	    session.NewPGLongStore(cfg.RememberTTL),
//	    cfg,
//	    session.WithLogger(log),
//	)
//
//	// after verifying credentials
//	sessionCookie, csrf, err := mgr.StartSession(ctx, tx, uid, ua, ip, false)
//	rememberCookie, err := mgr.StartLongToken(ctx, tx, uid, ua, ip, sessionCookie.Value, "")
//
//	// later, silently re-authenticating from the REMEMBER cookie
//	cont, err := mgr.ContinueSession(ctx, tx, rememberValue, ua, ip)
//
// All operations run inside the caller's transaction, so a failed request
// rolls back every credential mutation it made.
//
// # Errors
//
//   - ErrNoSession          - keyed lookup found nothing
//   - ErrBadAuth            - cookie authorization failed, deliberately coarse
//   - ErrTokenTheft         - validator mismatch within a known series
//   - ErrLongTokenExpired   - series past its expiry
//   - ErrSessionStillActive - redemption attempted while the chained session lives
package session
