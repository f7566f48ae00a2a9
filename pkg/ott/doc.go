// Package ott issues and redeems one-time bearer tokens: short-lived signed
// tokens that let a client perform a single action without a session cookie.
// A token carries the user id it was issued for and is redeemed through the
// Authorization: Bearer header.
package ott
