package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/httputil"
)

// SearchHandler serves free-text search
type SearchHandler struct {
	searcher services.Searcher
	logger   *slog.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searcher services.Searcher, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{searcher: searcher, logger: logger}
}

// Search matches templates, documents and queries
// GET /api/search?q=&type=&limit=&offset=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.URL.Query().Get("q"))
	if text == "" {
		handleError(w, h.logger, domain.NewValidation("q is required"))
		return
	}

	typ := models.SearchResultType(r.URL.Query().Get("type"))
	switch typ {
	case "", models.SearchTypeTemplate, models.SearchTypeDocument, models.SearchTypeQuery, models.SearchTypeAlert:
	default:
		handleError(w, h.logger, domain.NewValidation("unknown search type %q", typ))
		return
	}

	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	offset, err := httputil.QueryInt(r, "offset", 0)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	results, err := h.searcher.Search(r.Context(), models.SearchQuery{
		Text:   text,
		Type:   typ,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, results)
}
