package mail

import (
	"context"
	"fmt"
	netmail "net/mail"
)

// EmailSender delivers a single transactional email.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams describes one outbound email.
type SendEmailParams struct {
	SendTo   string
	Subject  string
	BodyHTML string
	Tag      string
}

// Validate checks the minimal delivery requirements.
func (p SendEmailParams) Validate() error {
	if _, err := netmail.ParseAddress(p.SendTo); err != nil {
		return fmt.Errorf("%w: recipient %q", ErrInvalidRecipient, p.SendTo)
	}
	if p.Subject == "" {
		return ErrEmptySubject
	}
	return nil
}
