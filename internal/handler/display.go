package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"text/tabwriter"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/httputil"
)

// DisplayHandler renders the operator status board
type DisplayHandler struct {
	status services.StatusService
	logger *slog.Logger
}

// NewDisplayHandler creates a new display handler
func NewDisplayHandler(status services.StatusService, logger *slog.Logger) *DisplayHandler {
	return &DisplayHandler{status: status, logger: logger}
}

// Display writes the status board as an aligned text table, or JSON with ?format=json
// GET /api/display
func (h *DisplayHandler) Display(w http.ResponseWriter, r *http.Request) {
	rows, err := h.status.Status(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		httputil.RespondJSON(w, http.StatusOK, rows)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPONENT\tSTATE\tDETAIL")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Component, row.State, row.Detail)
	}
	if err := tw.Flush(); err != nil {
		h.logger.Warn("write status display", "error", err)
	}
}

// Badges returns the presentation table for every status and type value
// GET /api/badges
func (h *DisplayHandler) Badges(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, models.Badges())
}
