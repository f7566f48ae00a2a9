package auth

import "errors"

var (
	// ErrUserNotFound indicates no user matched the lookup.
	ErrUserNotFound = errors.New("auth.user_not_found")

	// ErrEmailTaken indicates a signup collided with an existing account.
	ErrEmailTaken = errors.New("auth.email_taken")

	// ErrBadCredentials masks both an unknown email and a wrong password so
	// login responses do not reveal which one it was.
	ErrBadCredentials = errors.New("auth.bad_credentials")
)
