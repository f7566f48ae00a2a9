package quickauth

import "errors"

// ErrIdentityRejected indicates the supplied payload is not enough to log in
// or register anyone: missing or invalid email, or an unknown email without
// the full signup field set.
var ErrIdentityRejected = errors.New("quickauth.identity_rejected")
