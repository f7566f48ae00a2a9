package session

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Digest stores the SHA-256 of a secret token. Only digests touch the
// database; the plaintext validator exists solely in the client's cookie.
// Comparison is explicit via Matches, never through operator equality.
type Digest []byte

// HashToken digests a plaintext token for storage or lookup.
func HashToken(plaintext string) Digest {
	sum := sha256.Sum256([]byte(plaintext))
	return Digest(sum[:])
}

// Matches reports whether the digest belongs to the given plaintext, in
// constant time.
func (d Digest) Matches(plaintext string) bool {
	if len(d) == 0 {
		return false
	}
	other := HashToken(plaintext)
	return subtle.ConstantTimeCompare(d, other) == 1
}

func (d Digest) String() string {
	return hex.EncodeToString(d)
}
