package ott

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cyberdas/backend/pkg/logger"
	"github.com/cyberdas/backend/pkg/session"
	"github.com/cyberdas/backend/pkg/token"
)

const tokenSalt = "ott"

// Config holds the one-time token secret and lifetime.
type Config struct {
	Secret string        `env:"OTT_SECRET,required"`
	TTL    time.Duration `env:"OTT_LENGTH" envDefault:"5m"`
}

// Claims is the payload carried inside a one-time token. It is merged
// directly into the request identity on redemption.
type Claims struct {
	UID int64 `json:"uid"`
}

// Grant is the issue response body, shaped like an OAuth token response.
type Grant struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

// Service issues and redeems short-lived bearer tokens for single actions.
type Service struct {
	codec token.Codec
	ttl   time.Duration
	log   *slog.Logger
}

// New creates the one-time token service.
func New(cfg Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		codec: token.New(cfg.Secret, tokenSalt),
		ttl:   cfg.TTL,
		log:   log,
	}
}

// Issue signs a one-time token for uid.
func (s *Service) Issue(uid int64) (Grant, error) {
	tok, err := token.Generate(s.codec, Claims{UID: uid})
	if err != nil {
		return Grant{}, err
	}
	return Grant{
		Token:     tok,
		TokenType: "Bearer",
		ExpiresIn: int(s.ttl.Seconds()),
	}, nil
}

// Confirm validates a token and returns its claims. Sentinel style: any
// signature or age failure yields ok=false.
func (s *Service) Confirm(tok string) (Claims, bool) {
	return token.Confirm[Claims](s.codec, tok, s.ttl)
}

// RequireBearer authenticates the request from an Authorization: Bearer
// header carrying a one-time token. An identity already present in the
// context wins and the header is ignored.
//
// The token is not a true proof of identity: anyone able to obtain a signed
// token, for example from an intercepted link, can present it. Mount this
// only on endpoints where that trade-off is acceptable.
func (s *Service) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.FromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		claims, ok := s.Confirm(raw)
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		s.log.InfoContext(r.Context(), "one-time token redeemed",
			logger.UserID(claims.UID),
			slog.String("path", r.URL.Path))

		ctx := session.WithIdentity(r.Context(), session.Identity{UID: claims.UID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from an Authorization header value. The
// header must be exactly two space-separated parts with the Bearer scheme.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
