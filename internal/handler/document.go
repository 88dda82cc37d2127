package handler

import (
	"log/slog"
	"net/http"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/httputil"
)

// DocumentHandler handles negotiated document HTTP requests
type DocumentHandler struct {
	docService services.DocumentService
	archiver   services.Archiver // nil when no object storage is configured
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler. archiver may be nil.
func NewDocumentHandler(docService services.DocumentService, archiver services.Archiver, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		archiver:   archiver,
		logger:     logger,
	}
}

// ListDocuments returns documents, optionally filtered
// GET /api/documents?clientId=&templateId=&status=
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.DocumentFilter{
		ClientID:   q.Get("clientId"),
		TemplateID: q.Get("templateId"),
		Status:     models.DocumentStatus(q.Get("status")),
	}

	docs, err := h.docService.ListDocuments(r.Context(), filter)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, orEmpty(docs))
}

// CreateDocument instantiates a draft from a template
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req services.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.Author = authorOr(r, req.Author)

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusCreated, doc.VersionStamp, doc)
}

// GetDocument retrieves a document by ID
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docService.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusOK, doc.VersionStamp, doc)
}

// AppendVersion appends the next revision
// POST /api/documents/{id}/versions
func (h *DocumentHandler) AppendVersion(w http.ResponseWriter, r *http.Request) {
	ifMatch, err := httputil.IfMatch(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req services.AppendVersionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.DocumentID = r.PathValue("id")
	req.Author = authorOr(r, req.Author)
	req.IfMatch = ifMatch

	doc, err := h.docService.AppendVersion(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusCreated, doc.VersionStamp, doc)
}

// CancelDocument moves a document to cancelled
// POST /api/documents/{id}/cancel
func (h *DocumentHandler) CancelDocument(w http.ResponseWriter, r *http.Request) {
	ifMatch, err := httputil.IfMatch(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var req services.CancelDocumentRequest
	if err := httputil.ParseOptionalJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.DocumentID = r.PathValue("id")
	req.Author = authorOr(r, req.Author)
	req.IfMatch = ifMatch

	doc, err := h.docService.CancelDocument(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusOK, doc.VersionStamp, doc)
}

// CompareVersions returns a line diff between two revisions
// GET /api/documents/{id}/compare?from=&to=
func (h *DocumentHandler) CompareVersions(w http.ResponseWriter, r *http.Request) {
	from, err := httputil.QueryInt(r, "from", 0)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	to, err := httputil.QueryInt(r, "to", 0)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	cmp, err := h.docService.CompareVersions(r.Context(), r.PathValue("id"), from, to)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, cmp)
}

// GetArchiveLink returns a presigned download URL for an executed document
// GET /api/documents/{id}/archive
func (h *DocumentHandler) GetArchiveLink(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		httputil.RespondError(w, http.StatusNotImplemented, "document archive is not configured")
		return
	}

	link, err := h.archiver.ArchiveLink(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, link)
}
