package appearance

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/folio/internal/theme"
)

// ToggleSignals carries the state of the theme switch.
type ToggleSignals struct {
	Dark bool `json:"dark"`
}

// Handlers provides HTTP handlers for the appearance feature.
type Handlers struct {
	themes *theme.Store
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(themes *theme.Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{themes: themes, logger: logger}
}

// Toggle stores the chosen theme and applies it to the page.
func (h *Handlers) Toggle(w http.ResponseWriter, r *http.Request) {
	var signals ToggleSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "failed to read signals: "+err.Error(), http.StatusBadRequest)
		return
	}

	t := theme.Light
	if signals.Dark {
		t = theme.Dark
	}

	// The cookie must be set before the SSE stream starts.
	if err := h.themes.Save(w, r, t); err != nil {
		h.logger.Error("failed to save theme", "theme", t, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	_ = sse.ExecuteScript(ApplyScript(t))
}

// ApplyScript returns the script that switches the page to t.
func ApplyScript(t theme.Theme) string {
	return fmt.Sprintf(
		"document.body.classList.toggle('dark-theme', %t); document.body.dataset.themeSource = 'store'",
		t == theme.Dark,
	)
}
