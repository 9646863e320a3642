package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/folio/internal/catalog"
)

// Handlers provides HTTP handlers for the api feature.
type Handlers struct {
	source catalog.Source
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(source catalog.Source, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{source: source, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Modules returns the catalog document, loaded fresh on every request.
func (h *Handlers) Modules(w http.ResponseWriter, r *http.Request) {
	cat, err := h.source.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load catalog", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, cat.Document())
}

// Health reports whether the catalog can be loaded.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if _, err := h.source.Load(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
