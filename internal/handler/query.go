package handler

import (
	"log/slog"
	"net/http"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/httputil"
)

// QueryHandler handles legal query HTTP requests
type QueryHandler struct {
	queryService services.QueryService
	logger       *slog.Logger
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queryService services.QueryService, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{queryService: queryService, logger: logger}
}

// SubmitQuery stores a pending query; analysis continues in the background
// POST /api/queries
func (h *QueryHandler) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitQueryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	q, err := h.queryService.SubmitQuery(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/queries/"+q.ID)
	httputil.RespondVersioned(w, http.StatusAccepted, q.VersionStamp, q)
}

// GetQuery returns a query and, once completed, its analysis
// GET /api/queries/{id}
func (h *QueryHandler) GetQuery(w http.ResponseWriter, r *http.Request) {
	q, err := h.queryService.GetQuery(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusOK, q.VersionStamp, q)
}

// ListQueries returns queries, optionally filtered
// GET /api/queries?clientId=&status=
func (h *QueryHandler) ListQueries(w http.ResponseWriter, r *http.Request) {
	filter := models.QueryFilter{
		ClientID: r.URL.Query().Get("clientId"),
		Status:   models.QueryStatus(r.URL.Query().Get("status")),
	}

	queries, err := h.queryService.ListQueries(r.Context(), filter)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, orEmpty(queries))
}

// AnalyzeQuery runs analysis synchronously; 504 when the analyzer times out
// POST /api/queries/{id}/analyze
func (h *QueryHandler) AnalyzeQuery(w http.ResponseWriter, r *http.Request) {
	q, err := h.queryService.AnalyzeQuery(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusOK, q.VersionStamp, q)
}

// ArchiveQuery moves a query to archived
// POST /api/queries/{id}/archive
func (h *QueryHandler) ArchiveQuery(w http.ResponseWriter, r *http.Request) {
	ifMatch, err := httputil.IfMatch(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	q, err := h.queryService.ArchiveQuery(r.Context(), r.PathValue("id"), ifMatch)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusOK, q.VersionStamp, q)
}

// ListModels returns the selectable analysis models
// GET /api/models
func (h *QueryHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.queryService.ListModels())
}
