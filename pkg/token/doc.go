// Package token implements stateless signed bearer tokens: an HMAC-SHA256
// signature over a JSON payload plus its issue time, rendered URL-safe. The
// token itself is the state; nothing is persisted.
//
// Tokens back the email confirmation links, login-by-link flow and one-time
// authorization headers.
package token
