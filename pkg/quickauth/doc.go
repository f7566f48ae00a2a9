// Package quickauth resolves best-effort identities from request payloads:
// an email alone logs a known user in, a full profile registers an unknown
// one with the quick flag set. It exists so low-stakes endpoints can accept
// submissions from users who never created a password.
package quickauth
