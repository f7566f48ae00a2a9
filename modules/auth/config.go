package auth

import "time"

// Config holds the signing secrets for the module's email tokens. Each mail
// purpose gets its own secret so a token issued for one flow can never be
// replayed against another.
type Config struct {
	SignupSecret string        `env:"SIGNUP_SECRET,required"`
	MailTokenTTL time.Duration `env:"MAIL_TOKEN_LENGTH" envDefault:"24h"`
}
