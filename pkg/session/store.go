package session

import (
	"context"
	"time"

	"github.com/cyberdas/backend/pkg/pg"
)

// ShortStore owns the lifecycle of ShortSession rows. Every operation takes
// the request transaction explicitly; the store holds no connection of its
// own.
type ShortStore interface {
	// Get returns the session for sid or ErrNoSession.
	Get(ctx context.Context, tx pg.DBTX, sid string) (ShortSession, error)
	// Create inserts the session with expires = now + TTL and returns the
	// computed expiry.
	Create(ctx context.Context, tx pg.DBTX, s ShortSession) (time.Time, error)
	// Prolong resets expires to now + TTL and returns the new expiry, or
	// ErrNoSession when the row is absent.
	Prolong(ctx context.Context, tx pg.DBTX, sid string) (time.Time, error)
	// Terminate deletes the session or fails with ErrNoSession.
	Terminate(ctx context.Context, tx pg.DBTX, sid string) error
}

// LongStore owns the lifecycle of LongSession rows (remember-me series).
type LongStore interface {
	// Get returns the series row matching both selector and validator.
	// A known selector with a non-matching validator is the theft signal and
	// yields ErrTokenTheft; an unknown selector yields ErrNoSession.
	Get(ctx context.Context, tx pg.DBTX, selector, validator string) (LongSession, error)
	// FindByAssociatedSID returns the series chained to the given short
	// session, or ErrNoSession.
	FindByAssociatedSID(ctx context.Context, tx pg.DBTX, sid string) (LongSession, error)
	// Create inserts a fresh series row with expires = now + TTL and returns
	// the computed expiry.
	Create(ctx context.Context, tx pg.DBTX, s LongSession) (time.Time, error)
	// Prolong resets the series expiry to now + TTL.
	Prolong(ctx context.Context, tx pg.DBTX, selector string) (time.Time, error)
	// Rotate overwrites the series validator and associated sid in place.
	// The selector never changes; a series has at most one live row.
	Rotate(ctx context.Context, tx pg.DBTX, selector string, validator Digest, associatedSID string) error
	// Terminate deletes the series or fails with ErrNoSession.
	Terminate(ctx context.Context, tx pg.DBTX, selector string) error
}
