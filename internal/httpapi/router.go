package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/amishk599/vacancywatch/internal/model"
	"github.com/amishk599/vacancywatch/internal/poller"
)

// Watcher is the part of the poller the status API needs.
type Watcher interface {
	Known() model.KnownSet
	TryPoll(ctx context.Context) (poller.CycleResult, error)
}

type Handler struct {
	watcher Watcher
	logger  *slog.Logger
}

func NewHandler(watcher Watcher, logger *slog.Logger) *Handler {
	return &Handler{watcher: watcher, logger: logger}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", h.handleHealth)
	r.Get("/vacancies", h.handleVacancies)
	r.Post("/check", h.handleCheck)
	return r
}

// NewServer wraps the router in an http.Server listening on addr.
func NewServer(addr string, h *Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type vacanciesResponse struct {
	Count     int      `json:"count"`
	Vacancies []string `json:"vacancies"`
}

func (h *Handler) handleVacancies(w http.ResponseWriter, _ *http.Request) {
	known := h.watcher.Known()
	writeJSON(w, http.StatusOK, vacanciesResponse{Count: known.Len(), Vacancies: known.Sorted()})
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	res, err := h.watcher.TryPoll(r.Context())
	switch {
	case errors.Is(err, poller.ErrCycleInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case err != nil:
		h.logger.Error("manual check failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		if res.New == nil {
			res.New = []string{}
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
