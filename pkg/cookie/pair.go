package cookie

import "strings"

const pairSeparator = ":"

// JoinPair serializes a long-token selector/validator pair into the REMEMBER
// cookie value.
func JoinPair(selector, validator string) string {
	return selector + pairSeparator + validator
}

// SplitPair parses a REMEMBER cookie value back into its selector and
// validator halves. Returns ErrMalformedPair when the value does not contain
// exactly one separator or either half is empty.
func SplitPair(value string) (selector, validator string, err error) {
	parts := strings.Split(value, pairSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrMalformedPair
	}
	return parts[0], parts[1], nil
}
