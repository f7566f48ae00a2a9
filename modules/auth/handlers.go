package auth

import (
	"errors"
	"log/slog"
	"net/http"
	netmail "net/mail"
	"strconv"
	"strings"

	"github.com/cyberdas/backend/pkg/clientip"
	"github.com/cyberdas/backend/pkg/cookie"
	"github.com/cyberdas/backend/pkg/logger"
	"github.com/cyberdas/backend/pkg/pg"
	"github.com/cyberdas/backend/pkg/quickauth"
	"github.com/cyberdas/backend/pkg/session"
)

type signupRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Patronymic string `json:"patronymic"`
	Faculty    string `json:"faculty"`
}

func (s *Service) handleSignup(w http.ResponseWriter, r *http.Request) {
	tx, err := pg.TxFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if _, err := netmail.ParseAddress(req.Email); err != nil ||
		req.Password == "" || req.Name == "" || req.Surname == "" || req.Faculty == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	_, err = s.users.Create(r.Context(), tx, User{
		Email:        req.Email,
		PasswordHash: &hash,
		Name:         req.Name,
		Surname:      req.Surname,
		Patronymic:   optional(req.Patronymic),
		Faculty:      req.Faculty,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			http.Error(w, "email already registered", http.StatusForbidden)
			return
		}
		s.fail(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "user registered", logger.Email(req.Email))

	link, err := s.verify.Send(r.Context(), r, req.Email, VerifyClaims{Email: req.Email})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.DebugContext(r.Context(), "verification email sent",
		logger.Email(req.Email), slog.String("link", link))

	w.WriteHeader(http.StatusOK)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	tx, err := pg.TxFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	// An unknown email and a wrong password answer identically.
	user, err := s.users.GetByEmail(r.Context(), tx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		s.fail(w, r, err)
		return
	}
	if !checkPassword(user.PasswordHash, req.Password) {
		s.log.WarnContext(r.Context(), "wrong password", logger.Email(req.Email))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	ip, ua := clientip.FromRequest(r), r.UserAgent()
	sessionCookie, csrf, err := s.sessions.StartSession(r.Context(), tx, user.ID, ua, ip, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.SetCookie(w, sessionCookie)
	w.Header().Set(session.CSRFHeader, csrf)

	if remember, _ := strconv.ParseBool(r.URL.Query().Get("remember")); remember {
		rememberCookie, err := s.sessions.StartLongToken(r.Context(), tx, user.ID, ua, ip, sessionCookie.Value, "")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		http.SetCookie(w, rememberCookie)
	}

	s.log.InfoContext(r.Context(), "user logged in", logger.UserID(user.ID))
	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	tx, err := pg.TxFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id := session.MustFromContext(r.Context())

	cookies, err := s.sessions.EndSession(r.Context(), tx, id.SID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	for _, c := range cookies {
		http.SetCookie(w, c)
	}

	s.log.InfoContext(r.Context(), "user logged out", logger.UserID(id.UID))
	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleRefresh(w http.ResponseWriter, r *http.Request) {
	tx, err := pg.TxFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id := session.MustFromContext(r.Context())

	c, err := s.sessions.RefreshSession(r.Context(), tx, id.SID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	http.SetCookie(w, c)

	s.log.DebugContext(r.Context(), "session prolonged", logger.SessionID(id.SID), logger.UserID(id.UID))
	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleRestore(w http.ResponseWriter, r *http.Request) {
	tx, err := pg.TxFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	remember := cookie.Extract(r, cookie.RememberName)
	cont, err := s.sessions.ContinueSession(r.Context(), tx, remember, r.UserAgent(), clientip.FromRequest(r))
	if err != nil {
		// Theft is already logged at error level inside the manager; the
		// client sees the same rejection either way.
		if !errors.Is(err, session.ErrTokenTheft) {
			s.log.InfoContext(r.Context(), "long token rejected", logger.Error(err))
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	http.SetCookie(w, cont.RememberCookie)
	http.SetCookie(w, cont.SessionCookie)
	w.Header().Set(session.CSRFHeader, cont.CSRFToken)

	s.log.InfoContext(r.Context(), "session restored from long token", logger.UserID(cont.UID))
	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleVerify(w http.ResponseWriter, r *http.Request) {
	tx, err := pg.TxFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	claims, ok := s.verify.Confirm(token)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := s.users.MarkEmailVerified(r.Context(), tx, claims.Email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		s.fail(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "email verified", logger.Email(claims.Email))

	if claims.Redirect != "" {
		http.Redirect(w, r, claims.Redirect, http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type resendRequest struct {
	Email string `json:"email"`
}

func (s *Service) handleResend(w http.ResponseWriter, r *http.Request) {
	tx, err := pg.TxFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req resendRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	// Whether the account exists is never revealed: the response promises a
	// letter either way.
	user, err := s.users.GetByEmail(r.Context(), tx, req.Email)
	if err == nil && !user.EmailVerified {
		link, err := s.verify.Send(r.Context(), r, req.Email, VerifyClaims{Email: req.Email})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.log.DebugContext(r.Context(), "verification email re-sent",
			logger.Email(req.Email), slog.String("link", link))
	} else if err != nil && !errors.Is(err, ErrUserNotFound) {
		s.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleOTT(w http.ResponseWriter, r *http.Request) {
	tx, err := pg.TxFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var uid int64
	if id, ok := session.FromContext(r.Context()); ok {
		uid = id.UID
	} else {
		var profile quickauth.Profile
		if err := decodeJSON(r, &profile); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		trimProfile(&profile)

		uid, err = s.quick.Resolve(r.Context(), tx, profile)
		if err != nil {
			if errors.Is(err, quickauth.ErrIdentityRejected) {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			s.fail(w, r, err)
			return
		}
	}

	grant, err := s.tokens.Issue(uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.log.InfoContext(r.Context(), "one-time token issued", logger.UserID(uid))
	writeJSON(w, http.StatusCreated, grant)
}

// fail answers 500 and logs the cause; the body stays generic.
func (s *Service) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "request failed", logger.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// trimProfile strips the whitespace web forms love to sneak in.
func trimProfile(p *quickauth.Profile) {
	p.Email = strings.TrimSpace(p.Email)
	p.Name = strings.TrimSpace(p.Name)
	p.Surname = strings.TrimSpace(p.Surname)
	p.Patronymic = strings.TrimSpace(p.Patronymic)
	p.Faculty = strings.TrimSpace(p.Faculty)
}
