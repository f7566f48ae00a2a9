package mail_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberdas/backend/pkg/mail"
	"github.com/cyberdas/backend/pkg/token"
)

type captureSender struct {
	last mail.SendEmailParams
}

func (s *captureSender) SendEmail(_ context.Context, params mail.SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.last = params
	return nil
}

type verifyPayload struct {
	Email string `json:"email"`
}

func newTransaction(sender mail.EmailSender) *mail.Transaction[verifyPayload] {
	return mail.NewTransaction[verifyPayload](sender, token.New("mail-secret", "signup"), mail.TransactionConfig{
		Subject:     "Confirm your email",
		Intro:       "Follow the link to confirm your address",
		FrontendURL: "https://app.example.com",
		BackendPath: "auth/verify",
		MaxAge:      24 * time.Hour,
	})
}

func TestTransaction_Send(t *testing.T) {
	t.Run("links straight to the backend by default", func(t *testing.T) {
		sender := &captureSender{}
		tm := newTransaction(sender)

		r := httptest.NewRequest("POST", "https://api.example.com/auth/signup", nil)
		link, err := tm.Send(context.Background(), r, "user@example.com", verifyPayload{Email: "user@example.com"})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(link, "https://api.example.com/auth/verify?token="), link)
		assert.Equal(t, "user@example.com", sender.last.SendTo)
		assert.Equal(t, "Confirm your email", sender.last.Subject)
		assert.Contains(t, sender.last.BodyHTML, link)
	})

	t.Run("redirects through the frontend when next is set", func(t *testing.T) {
		sender := &captureSender{}
		tm := newTransaction(sender)

		r := httptest.NewRequest("POST", "https://api.example.com/auth/signup?next=confirm", nil)
		link, err := tm.Send(context.Background(), r, "user@example.com", verifyPayload{Email: "user@example.com"})
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(link, "https://app.example.com/confirm?token="), link)
		assert.Contains(t, link, "backend=auth%2Fverify")
	})

	t.Run("honors proxy headers", func(t *testing.T) {
		sender := &captureSender{}
		tm := newTransaction(sender)

		r := httptest.NewRequest("POST", "http://internal:8080/auth/signup", nil)
		r.Header.Set("X-Forwarded-Proto", "https")
		r.Header.Set("X-Forwarded-Host", "api.example.com")

		link, err := tm.Send(context.Background(), r, "user@example.com", verifyPayload{})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(link, "https://api.example.com/auth/verify?token="), link)
	})

	t.Run("rejects invalid recipients", func(t *testing.T) {
		sender := &captureSender{}
		tm := newTransaction(sender)

		r := httptest.NewRequest("POST", "https://api.example.com/auth/signup", nil)
		_, err := tm.Send(context.Background(), r, "not-an-address", verifyPayload{})
		assert.ErrorIs(t, err, mail.ErrInvalidRecipient)
	})
}

func TestTransaction_Confirm(t *testing.T) {
	sender := &captureSender{}
	tm := newTransaction(sender)

	r := httptest.NewRequest("POST", "https://api.example.com/auth/signup", nil)
	link, err := tm.Send(context.Background(), r, "user@example.com", verifyPayload{Email: "user@example.com"})
	require.NoError(t, err)

	_, rawToken, found := strings.Cut(link, "token=")
	require.True(t, found)

	payload, ok := tm.Confirm(rawToken)
	require.True(t, ok)
	assert.Equal(t, "user@example.com", payload.Email)

	t.Run("rejects tokens for another purpose", func(t *testing.T) {
		other := mail.NewTransaction[verifyPayload](sender, token.New("mail-secret", "login"), mail.TransactionConfig{
			Subject: "x", BackendPath: "auth/login-link",
		})
		_, ok := other.Confirm(rawToken)
		assert.False(t, ok)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, ok := tm.Confirm("garbage")
		assert.False(t, ok)
	})
}
