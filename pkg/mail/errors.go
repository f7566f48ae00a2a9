package mail

import "errors"

var (
	ErrFailedToSend     = errors.New("mail.failed_to_send")
	ErrInvalidConfig    = errors.New("mail.invalid_config")
	ErrInvalidRecipient = errors.New("mail.invalid_recipient")
	ErrEmptySubject     = errors.New("mail.empty_subject")
)
