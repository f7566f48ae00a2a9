package session

import "time"

// Config holds the two token lifetimes. SESSION_LENGTH governs short
// sessions and the SESSIONID cookie Max-Age; REMEMBER_LENGTH governs the
// long-token series and the REMEMBER cookie Max-Age.
type Config struct {
	SessionTTL  time.Duration `env:"SESSION_LENGTH" envDefault:"15m"`
	RememberTTL time.Duration `env:"REMEMBER_LENGTH" envDefault:"720h"`
}

// DefaultConfig returns the default token lifetimes.
func DefaultConfig() Config {
	return Config{
		SessionTTL:  15 * time.Minute,
		RememberTTL: 720 * time.Hour,
	}
}
