package maintenance

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cyberdas/backend/pkg/logger"
	"github.com/cyberdas/backend/pkg/ott"
	"github.com/cyberdas/backend/pkg/pg"
	"github.com/cyberdas/backend/pkg/session"
)

// Service serves the maintenance endpoints.
type Service struct {
	storage  Storage
	sessions *session.Manager
	tokens   *ott.Service
	log      *slog.Logger
}

// NewService wires the maintenance endpoints.
func NewService(storage Storage, sessions *session.Manager, tokens *ott.Service, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{storage: storage, sessions: sessions, tokens: tokens, log: log}
}

// Router mounts the module's routes. A session cookie wins when present;
// otherwise a one-time bearer token is required.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.sessions.Authenticate, s.tokens.RequireBearer)
	r.Post("/", s.handleCreate)
	r.Get("/", s.handleList)
	return r
}

type createRequest struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	tx, err := pg.TxFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	uid, ok := session.UIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Category == "" || req.Text == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	building, room, err := s.storage.Residence(r.Context(), tx, uid)
	if err != nil {
		if errors.Is(err, ErrNoResidence) {
			http.Error(w, "building and room are required in the profile", http.StatusBadRequest)
			return
		}
		s.fail(w, r, err)
		return
	}

	reqID, err := s.storage.Create(r.Context(), tx, Request{
		UID:      uid,
		Category: req.Category,
		Text:     req.Text,
		Building: building,
		Room:     room,
	})
	if err != nil {
		if errors.Is(err, ErrUnknownCategory) {
			http.Error(w, "unknown category", http.StatusBadRequest)
			return
		}
		s.fail(w, r, err)
		return
	}

	s.log.InfoContext(r.Context(), "maintenance request filed",
		logger.UserID(uid),
		slog.String("category", req.Category),
		slog.Int64("request_id", reqID))
	w.WriteHeader(http.StatusCreated)
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	tx, err := pg.TxFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	uid, ok := session.UIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	requests, err := s.storage.ListByUID(r.Context(), tx, uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if requests == nil {
		requests = []Request{}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(requests)
}

func (s *Service) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "request failed", logger.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
