package handler

import (
	"log/slog"
	"net/http"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/httputil"
)

// PracticeHandler serves the lawyer profile, client directory and dashboard insights
type PracticeHandler struct {
	profiles services.ProfileService
	clients  services.ClientService
	insights services.InsightsService
	logger   *slog.Logger
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(
	profiles services.ProfileService,
	clients services.ClientService,
	insights services.InsightsService,
	logger *slog.Logger,
) *PracticeHandler {
	return &PracticeHandler{
		profiles: profiles,
		clients:  clients,
		insights: insights,
		logger:   logger,
	}
}

// GetProfile returns the lawyer profile
// GET /api/profile
func (h *PracticeHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.GetProfile(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusOK, profile.VersionStamp, profile)
}

// updateProfileBody is the PATCH body. Absent fields are left alone; null clears.
type updateProfileBody struct {
	Name     httputil.OptionalString `json:"name"`
	Title    httputil.OptionalString `json:"title"`
	Email    httputil.OptionalString `json:"email"`
	Phone    httputil.OptionalString `json:"phone"`
	FirmName httputil.OptionalString `json:"firm_name"`

	FirmNameAlt httputil.OptionalString `json:"firmName"`
}

// UpdateProfile applies a partial update
// PATCH /api/profile
func (h *PracticeHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ifMatch, err := httputil.IfMatch(r)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	var body updateProfileBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if !body.FirmName.Present {
		body.FirmName = body.FirmNameAlt
	}

	profile, err := h.profiles.UpdateProfile(r.Context(), &models.UpdateProfileRequest{
		Name:     body.Name.Field(),
		Title:    body.Title.Field(),
		Email:    body.Email.Field(),
		Phone:    body.Phone.Field(),
		FirmName: body.FirmName.Field(),
		IfMatch:  ifMatch,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondVersioned(w, http.StatusOK, profile.VersionStamp, profile)
}

// ListClients returns the client directory
// GET /api/clients
func (h *PracticeHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.ListClients(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, orEmpty(clients))
}

// GetInsights returns the dashboard summary
// GET /api/insights
func (h *PracticeHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.insights.GetInsights(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, insights)
}
