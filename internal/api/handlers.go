package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"wilhelm/internal/apperr"
	"wilhelm/internal/health"
	"wilhelm/internal/vocab"
)

// HealthSource is what the health endpoints read.
type HealthSource interface {
	Ready() bool
	Status(ctx context.Context) health.Status
}

// Handler holds API route handlers.
type Handler struct {
	svc    *vocab.Service
	health HealthSource
}

func NewHandler(svc *vocab.Service, health HealthSource) *Handler {
	return &Handler{svc: svc, health: health}
}

// Healthcheck handles GET /data/healthcheck.
func (h *Handler) Healthcheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready; it follows the background store probe.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.health != nil && !h.health.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Status handles GET /data/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.health.Status(r.Context()))
}

// CountByLanguage handles GET /neo4j/languages/{language}/count.
func (h *Handler) CountByLanguage(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.CountByLanguage(r.Context(), languageFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// VocabularyPage handles GET /neo4j/languages/{language}?perPage=&page=.
func (h *Handler) VocabularyPage(w http.ResponseWriter, r *http.Request) {
	perPage, err := requiredInt(r, "perPage")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := requiredInt(r, "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.svc.VocabularyPage(r.Context(), languageFrom(r.Context()), perPage, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Search handles GET /neo4j/search/{keyword}.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Search(r.Context(), chi.URLParam(r, "keyword"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Expand handles GET /neo4j/expand/{word}.
func (h *Handler) Expand(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Expand(r.Context(), chi.URLParam(r, "word"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g.View())
}

// ExpandApoc handles GET /neo4j/expandApoc/{word}?maxHops=.
func (h *Handler) ExpandApoc(w http.ResponseWriter, r *http.Request) {
	maxHops := h.svc.Settings().ApocMaxHops
	if raw := r.URL.Query().Get("maxHops"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: maxHops must be an integer, got %q", apperr.ErrInvalidArgument, raw))
			return
		}
		maxHops = n
	}
	g, err := h.svc.ExpandApoc(r.Context(), chi.URLParam(r, "word"), maxHops)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g.View())
}

// ExpandRecursive handles GET /neo4j/expandDfs/{word}.
func (h *Handler) ExpandRecursive(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.ExpandRecursive(r.Context(), chi.URLParam(r, "word"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g.View())
}

// History handles GET /neo4j/history?seed=&limit=.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := optionalInt(r, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	runs, err := h.svc.History(r.Context(), r.URL.Query().Get("seed"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func requiredInt(r *http.Request, name string) (int, error) {
	if r.URL.Query().Get(name) == "" {
		return 0, fmt.Errorf("%w: query parameter %s is required", apperr.ErrInvalidArgument, name)
	}
	return optionalInt(r, name)
}

// optionalInt parses an integer query parameter; an absent one reads as zero.
func optionalInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", apperr.ErrInvalidArgument, name, raw)
	}
	return n, nil
}
