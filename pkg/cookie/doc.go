// Package cookie renders and parses the authentication cookies. It is a pure
// codec: no state, no I/O. Every rendered cookie carries Secure, HttpOnly and
// SameSite=Strict; relaxing those attributes is deliberately not possible.
package cookie
