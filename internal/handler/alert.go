package handler

import (
	"context"
	"log/slog"
	"net/http"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/httputil"
)

// AlertHandler handles client alert HTTP requests
type AlertHandler struct {
	alertService services.AlertService
	logger       *slog.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alertService services.AlertService, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{alertService: alertService, logger: logger}
}

// CreateAlert stores a draft alert
// POST /api/alerts
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req services.CreateAlertRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	alert, err := h.alertService.CreateAlert(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusCreated, alert.VersionStamp, alert)
}

// GetAlert retrieves an alert by ID
// GET /api/alerts/{id}
func (h *AlertHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := h.alertService.GetAlert(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusOK, alert.VersionStamp, alert)
}

// ListAlerts returns alerts, optionally filtered
// GET /api/alerts?status=&clientId=
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	filter := models.AlertFilter{
		Status:   models.AlertStatus(r.URL.Query().Get("status")),
		ClientID: r.URL.Query().Get("clientId"),
	}

	alerts, err := h.alertService.ListAlerts(r.Context(), filter)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, orEmpty(alerts))
}

// SetAudience adds clients to the alert's audience
// POST /api/alerts/{id}/audience
func (h *AlertHandler) SetAudience(w http.ResponseWriter, r *http.Request) {
	req, ok := parseShareRequest(w, r, h.logger)
	if !ok {
		return
	}

	alert, err := h.alertService.SetAudience(r.Context(), req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusOK, alert.VersionStamp, alert)
}

// PublishAlert moves a draft to published
// POST /api/alerts/{id}/publish
func (h *AlertHandler) PublishAlert(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.alertService.PublishAlert)
}

// ArchiveAlert moves an alert to archived
// POST /api/alerts/{id}/archive
func (h *AlertHandler) ArchiveAlert(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.alertService.ArchiveAlert)
}

func (h *AlertHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id string, ifMatch *int64) (*models.ClientAlert, error),
) {
	ifMatch, err := httputil.IfMatch(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	alert, err := fn(r.Context(), r.PathValue("id"), ifMatch)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusOK, alert.VersionStamp, alert)
}

type engagementRequest struct {
	Kind models.EngagementKind `json:"kind"`
}

// RecordEngagement counts a view or an interaction on a published alert
// POST /api/alerts/{id}/engagement
func (h *AlertHandler) RecordEngagement(w http.ResponseWriter, r *http.Request) {
	var req engagementRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	alert, err := h.alertService.RecordEngagement(r.Context(), r.PathValue("id"), req.Kind)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusOK, alert.VersionStamp, alert)
}
