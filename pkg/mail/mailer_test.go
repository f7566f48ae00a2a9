package mail_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cyberdas/backend/pkg/mail"
)

func TestSendEmailParams_Validate(t *testing.T) {
	base := mail.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Hello",
		BodyHTML: "<p>hi</p>",
	}

	t.Run("accepts a complete set of params", func(t *testing.T) {
		assert.NoError(t, base.Validate())
	})

	t.Run("rejects a bad recipient", func(t *testing.T) {
		p := base
		p.SendTo = "not-an-address"
		assert.ErrorIs(t, p.Validate(), mail.ErrInvalidRecipient)
	})

	t.Run("rejects an empty subject", func(t *testing.T) {
		p := base
		p.Subject = ""
		assert.ErrorIs(t, p.Validate(), mail.ErrEmptySubject)
	})
}
