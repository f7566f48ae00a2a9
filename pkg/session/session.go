package session

import "time"

// ShortSession is the primary authenticated-request credential. Exactly one
// row exists per active sid; expiry is checked lazily at authorization time,
// never swept in the background.
type ShortSession struct {
	SID       string    `db:"sid"`
	UID       int64     `db:"uid"`
	CSRFToken string    `db:"csrf_token"`
	UserAgent string    `db:"user_agent"`
	IP        string    `db:"ip"`
	Continued bool      `db:"continued"`
	Expires   time.Time `db:"expires"`
	CreatedAt time.Time `db:"created_at"`
}

// IsExpired reports whether the session is past its expiry.
func (s ShortSession) IsExpired() bool {
	return time.Now().After(s.Expires)
}

// LongSession is one row of a remember-me token series. The selector is
// stable across rotations; the validator is overwritten in place on every
// redemption, so a series has at most one live row.
type LongSession struct {
	ID            int64     `db:"id"`
	Selector      string    `db:"selector"`
	Validator     Digest    `db:"validator"`
	AssociatedSID *string   `db:"associated_sid"`
	UID           int64     `db:"uid"`
	UserAgent     string    `db:"user_agent"`
	IP            string    `db:"ip"`
	Expires       time.Time `db:"expires"`
}

// IsExpired reports whether the token series is past its expiry.
func (s LongSession) IsExpired() bool {
	return time.Now().After(s.Expires)
}

// Identity is the request-scoped result of successful cookie authorization.
type Identity struct {
	UID       int64
	SID       string
	CSRFToken string
}
