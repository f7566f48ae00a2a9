package mail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DevSender writes emails to a local directory instead of delivering them.
type DevSender struct {
	dir string
}

// NewDevSender creates a file-based sender for local development.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir}
}

func (s *DevSender) SendEmail(_ context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToSend, err)
	}

	name := fmt.Sprintf("%s_%s.html", time.Now().Format("2006_01_02_150405"), safeName(params.Subject))
	body := fmt.Sprintf("<!-- to: %s, tag: %s -->\n%s", params.SendTo, params.Tag, params.BodyHTML)
	if err := os.WriteFile(filepath.Join(s.dir, name), []byte(body), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToSend, err)
	}
	return nil
}

func safeName(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, s)
	if mapped == "" {
		mapped = "email"
	}
	if len(mapped) > 80 {
		mapped = mapped[:80]
	}
	return strings.ToLower(mapped)
}
