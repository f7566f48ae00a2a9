// Package auth is the account module: registration with email verification,
// credential login with optional remember-me, session logout/refresh/restore
// and one-time token issuance for quick actions.
package auth
