package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cyberdas/backend/pkg/session"
)

func TestDigest(t *testing.T) {
	d := session.HashToken("some-secret-token")

	assert.True(t, d.Matches("some-secret-token"))
	assert.False(t, d.Matches("some-other-token"))
	assert.False(t, d.Matches(""))
	assert.Len(t, d, 32)

	// Hashing is deterministic and hex rendering is stable.
	assert.Equal(t, session.HashToken("some-secret-token").String(), d.String())
	assert.NotEqual(t, session.HashToken("x").String(), d.String())
}
