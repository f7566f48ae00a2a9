package quickauth

import (
	"context"
	"log/slog"
	"net/mail"

	"github.com/cyberdas/backend/pkg/logger"
	"github.com/cyberdas/backend/pkg/pg"
)

// Profile is the identity payload a client supplies instead of a session:
// either just an email for a returning user, or the full signup field set.
type Profile struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Patronymic string `json:"patronymic"`
	Faculty    string `json:"faculty"`
}

// complete reports whether the profile carries everything needed to register
// a new user. Patronymic stays optional.
func (p Profile) complete() bool {
	return p.Name != "" && p.Surname != "" && p.Faculty != ""
}

// UserDirectory is the slice of user storage quick authentication needs.
type UserDirectory interface {
	// LookupByEmail returns the uid for email, or found=false.
	LookupByEmail(ctx context.Context, tx pg.DBTX, email string) (uid int64, found bool, err error)
	// CreateQuick registers a new user from the profile with the quick flag
	// set and returns the uid.
	CreateQuick(ctx context.Context, tx pg.DBTX, p Profile) (int64, error)
	// RefreshProfile overwrites the user's mutable fields with the non-empty
	// values from the profile.
	RefreshProfile(ctx context.Context, tx pg.DBTX, uid int64, p Profile) error
}

// Resolver turns identity payloads into user ids, registering users on the
// fly when they are unknown.
type Resolver struct {
	users UserDirectory
	log   *slog.Logger
}

// New creates a Resolver over the given user directory.
func New(users UserDirectory, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{users: users, log: log}
}

// Resolve maps a profile to a uid. A known email logs the user in and
// refreshes their stored profile; an unknown email with a complete profile
// registers a quick user. Anything less yields ErrIdentityRejected.
//
// This is not a true proof of identity: knowing someone's email is enough to
// act as them. Callers must keep it off anything security-critical.
func (r *Resolver) Resolve(ctx context.Context, tx pg.DBTX, p Profile) (int64, error) {
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return 0, ErrIdentityRejected
	}

	uid, found, err := r.users.LookupByEmail(ctx, tx, p.Email)
	if err != nil {
		return 0, err
	}
	if found {
		if err := r.users.RefreshProfile(ctx, tx, uid, p); err != nil {
			return 0, err
		}
		r.log.InfoContext(ctx, "quick login", logger.Email(p.Email), logger.UserID(uid))
		return uid, nil
	}

	if !p.complete() {
		return 0, ErrIdentityRejected
	}

	uid, err = r.users.CreateQuick(ctx, tx, p)
	if err != nil {
		return 0, err
	}
	r.log.InfoContext(ctx, "quick user registered", logger.Email(p.Email), logger.UserID(uid))
	return uid, nil
}
