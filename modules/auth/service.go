package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cyberdas/backend/pkg/mail"
	"github.com/cyberdas/backend/pkg/ott"
	"github.com/cyberdas/backend/pkg/quickauth"
	"github.com/cyberdas/backend/pkg/session"
)

// VerifyClaims is the payload inside an email verification token. Redirect,
// when set, sends the user somewhere after confirmation.
type VerifyClaims struct {
	Email    string `json:"email"`
	Redirect string `json:"redirect,omitempty"`
}

// Service bundles the account endpoints: registration, credential login,
// session maintenance, email verification and one-time tokens.
type Service struct {
	users    UserStorage
	sessions *session.Manager
	verify   *mail.Transaction[VerifyClaims]
	tokens   *ott.Service
	quick    *quickauth.Resolver
	log      *slog.Logger
}

// NewService wires the account endpoints over their dependencies.
func NewService(
	users UserStorage,
	sessions *session.Manager,
	verify *mail.Transaction[VerifyClaims],
	tokens *ott.Service,
	quick *quickauth.Resolver,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		users:    users,
		sessions: sessions,
		verify:   verify,
		tokens:   tokens,
		quick:    quick,
		log:      log,
	}
}

// Router mounts the module's routes. The caller is expected to have the
// request transaction and request id middlewares above this router.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", s.handleSignup)
	r.Post("/login", s.handleLogin)
	r.Get("/restore", s.handleRestore)
	r.Get("/verify", s.handleVerify)
	r.Post("/resend", s.handleResend)
	r.Post("/ott", s.handleOTT)

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.RequireAuth)
		r.Get("/logout", s.handleLogout)
		r.Get("/refresh", s.handleRefresh)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
