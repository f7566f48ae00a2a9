package cookie

import "errors"

// ErrMalformedPair indicates a REMEMBER cookie value that is not a valid
// selector:validator pair.
var ErrMalformedPair = errors.New("cookie: malformed selector:validator pair")
