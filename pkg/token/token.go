package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Codec signs and verifies opaque bearer tokens. Each mail purpose (signup,
// login, notify, ott) owns a Codec with its own secret and salt, so a token
// minted for one purpose never verifies for another.
type Codec struct {
	key []byte
}

// New derives a signing key from the secret and salt. The salt namespaces
// the secret: two codecs sharing a secret but not a salt produce mutually
// invalid signatures.
func New(secret, salt string) Codec {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(salt))
	return Codec{key: mac.Sum(nil)}
}

// envelope wraps the payload with its issue time so age can be checked at
// confirmation without any server-side state.
type envelope[T any] struct {
	Data     T     `json:"d"`
	IssuedAt int64 `json:"iat"`
}

// Generate signs the payload into a URL-safe token embedding the current
// time. The payload may be any JSON-marshalable value, structured payloads
// included.
func Generate[T any](c Codec, payload T) (string, error) {
	data, err := json.Marshal(envelope[T]{Data: payload, IssuedAt: time.Now().Unix()})
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, c.key)
	mac.Write(data)
	sig := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(data) + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Confirm verifies the token's signature and, when maxAge is positive, its
// age. Failures return ok=false rather than an error: the caller decides the
// response code and log level.
func Confirm[T any](c Codec, tok string, maxAge time.Duration) (payload T, ok bool) {
	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		return payload, false
	}

	data, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return payload, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return payload, false
	}

	mac := hmac.New(sha256.New, c.key)
	mac.Write(data)
	if subtle.ConstantTimeCompare(sig, mac.Sum(nil)) != 1 {
		return payload, false
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return payload, false
	}

	if maxAge > 0 {
		issued := time.Unix(env.IssuedAt, 0)
		if time.Since(issued) > maxAge {
			return payload, false
		}
	}

	return env.Data, true
}
