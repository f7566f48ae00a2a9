package feedback

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cyberdas/backend/pkg/logger"
	"github.com/cyberdas/backend/pkg/pg"
)

// Service serves the public feedback endpoints.
type Service struct {
	storage Storage
	log     *slog.Logger
}

// NewService wires the feedback endpoints.
func NewService(storage Storage, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{storage: storage, log: log}
}

// Router mounts the module's routes.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleList)
	r.Get("/{recipient}", s.handleGet)
	r.Post("/{recipient}", s.handleCreate)
	return r
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	tx, err := pg.TxFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	recipients, err := s.storage.ListRecipients(r.Context(), tx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipients)
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	tx, err := pg.TxFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	rec, err := s.storage.GetRecipient(r.Context(), tx, chi.URLParam(r, "recipient"))
	if err != nil {
		if errors.Is(err, ErrRecipientNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type createRequest struct {
	Category string  `json:"category"`
	Text     string  `json:"text"`
	Email    *string `json:"email"`
}

func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	tx, err := pg.TxFromContext(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	recipient := chi.URLParam(r, "recipient")
	if _, err := s.storage.GetRecipient(r.Context(), tx, recipient); err != nil {
		if errors.Is(err, ErrRecipientNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		s.fail(w, r, err)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Category == "" || req.Text == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	id, err := s.storage.CreateAppeal(r.Context(), tx, Appeal{
		Recipient: recipient,
		Category:  req.Category,
		Text:      req.Text,
		Email:     req.Email,
	})
	if err != nil {
		if errors.Is(err, ErrUnknownCategory) {
			http.Error(w, "unknown category", http.StatusBadRequest)
			return
		}
		s.fail(w, r, err)
		return
	}

	s.log.InfoContext(r.Context(), "appeal filed",
		slog.String("recipient", recipient),
		slog.String("category", req.Category),
		slog.Int64("appeal_id", id))
	w.WriteHeader(http.StatusCreated)
}

func (s *Service) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "request failed", logger.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
