package handler

import (
	"log/slog"
	"net/http"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/httputil"
)

// TemplateHandler handles template library HTTP requests
type TemplateHandler struct {
	templateService services.TemplateService
	logger          *slog.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService services.TemplateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		logger:          logger,
	}
}

// ListTemplates returns template summaries
// GET /api/templates?category=&source=&clientId=
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.TemplateFilter{
		Category: q.Get("category"),
		Source:   models.TemplateSource(q.Get("source")),
		ClientID: q.Get("clientId"),
	}

	templates, err := h.templateService.ListTemplates(r.Context(), filter)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, orEmpty(templates))
}

// CreateTemplate creates a template at version 1
// POST /api/templates
func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTemplateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	template, err := h.templateService.CreateTemplate(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusCreated, template.VersionStamp, template)
}

// GetTemplate returns a template with its full version chain
// GET /api/templates/{id}
func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	template, err := h.templateService.GetTemplate(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusOK, template.VersionStamp, template)
}

// ListVersions returns a template's versions, oldest first
// GET /api/templates/{id}/versions
func (h *TemplateHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := h.templateService.ListVersions(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, orEmpty(versions))
}

// AppendVersion adds the next template version
// POST /api/templates/{id}/versions
func (h *TemplateHandler) AppendVersion(w http.ResponseWriter, r *http.Request) {
	ifMatch, err := httputil.IfMatch(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req services.AppendTemplateVersionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.TemplateID = r.PathValue("id")
	req.IfMatch = ifMatch

	template, err := h.templateService.AppendVersion(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusCreated, template.VersionStamp, template)
}

// ShareTemplate adds clients to the template's audience
// POST /api/templates/{id}/share
func (h *TemplateHandler) ShareTemplate(w http.ResponseWriter, r *http.Request) {
	req, ok := parseShareRequest(w, r, h.logger)
	if !ok {
		return
	}

	template, err := h.templateService.Share(r.Context(), req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusOK, template.VersionStamp, template)
}

// parseShareRequest reads a share body plus path ID and If-Match.
// On failure the error response is already written.
func parseShareRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*services.ShareRequest, bool) {
	ifMatch, err := httputil.IfMatch(r)
	if err != nil {
		handleError(w, logger, err)
		return nil, false
	}

	var req services.ShareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, logger, err)
		return nil, false
	}
	req.ID = r.PathValue("id")
	req.IfMatch = ifMatch
	return &req, true
}
