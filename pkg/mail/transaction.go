package mail

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cyberdas/backend/pkg/token"
)

// TransactionConfig shapes one kind of transactional email.
type TransactionConfig struct {
	// Subject and Intro fill the email itself.
	Subject string
	Intro   string
	// FrontendURL is the base the client is redirected to when it asked for
	// a frontend flow via the next query parameter.
	FrontendURL string
	// BackendPath is the confirmation endpoint the token is redeemed at,
	// relative to the API root.
	BackendPath string
	// MaxAge bounds token validity; zero means the token never expires.
	MaxAge time.Duration
}

// Transaction sends emails whose call-to-action link carries a signed
// payload, and later redeems that payload from the link's token.
type Transaction[T any] struct {
	sender EmailSender
	codec  token.Codec
	cfg    TransactionConfig
}

// NewTransaction wires one transactional email kind over a sender and the
// signing codec for its purpose.
func NewTransaction[T any](sender EmailSender, codec token.Codec, cfg TransactionConfig) *Transaction[T] {
	return &Transaction[T]{sender: sender, codec: codec, cfg: cfg}
}

// Send signs the payload, composes the confirmation link and emails it.
// Returns the composed URL.
//
// When the request carries a next query parameter the link points at the
// frontend, which receives both the token and the backend path to redeem it
// at. Otherwise the link hits the confirmation endpoint directly.
func (t *Transaction[T]) Send(ctx context.Context, r *http.Request, to string, payload T) (string, error) {
	tok, err := token.Generate(t.codec, payload)
	if err != nil {
		return "", err
	}

	var link string
	if next := r.URL.Query().Get("next"); next != "" {
		link = fmt.Sprintf("%s/%s?token=%s&backend=%s",
			t.cfg.FrontendURL, next, url.QueryEscape(tok), url.QueryEscape(t.cfg.BackendPath))
	} else {
		link = fmt.Sprintf("%s/%s?token=%s", forwardedPrefix(r), t.cfg.BackendPath, url.QueryEscape(tok))
	}

	body := fmt.Sprintf("<p>%s</p>\n<p><a href=%q>%s</a></p>", t.cfg.Intro, link, link)
	err = t.sender.SendEmail(ctx, SendEmailParams{
		SendTo:   to,
		Subject:  t.cfg.Subject,
		BodyHTML: body,
		Tag:      t.cfg.BackendPath,
	})
	if err != nil {
		return "", err
	}
	return link, nil
}

// Confirm validates a token from the confirmation link and returns its
// payload. Sentinel style: ok=false on any signature or age failure.
func (t *Transaction[T]) Confirm(tok string) (T, bool) {
	return token.Confirm[T](t.codec, tok, t.cfg.MaxAge)
}

// forwardedPrefix reconstructs the externally visible base URL of the
// request, honoring the proxy headers set by the deployment's ingress.
func forwardedPrefix(r *http.Request) string {
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		if r.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return proto + "://" + host
}
