package session

import "errors"

var (
	// ErrNoSession indicates a keyed lookup found nothing. Recoverable; the
	// caller decides the response code.
	ErrNoSession = errors.New("session.not_found")

	// ErrBadAuth indicates cookie-based authorization failed. Deliberately
	// coarse: absent, malformed, unknown and expired all collapse here so the
	// response does not reveal which check failed.
	ErrBadAuth = errors.New("session.bad_auth")

	// ErrTokenTheft indicates a long-token validator mismatch within a known
	// series: the presented secret was already rotated away, or someone is
	// guessing. Must be logged at elevated severity.
	ErrTokenTheft = errors.New("session.token_theft")

	// ErrLongTokenExpired indicates the long token exists but is past its
	// expiry. Benign; the client has to log in with credentials again.
	ErrLongTokenExpired = errors.New("session.long_token_expired")

	// ErrSessionStillActive indicates a long token was presented while the
	// short session it previously minted is still alive. Benign; bounds
	// replay to the window after logout or expiry.
	ErrSessionStillActive = errors.New("session.still_active")

	// ErrTokenGeneration indicates the system's entropy source failed.
	ErrTokenGeneration = errors.New("session.token_generation_failed")
)
