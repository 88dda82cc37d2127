package handler

import (
	"log/slog"
	"net/http"

	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/httputil"
)

// ActivityHandler serves the activity feed
type ActivityHandler struct {
	activity services.ActivityService
	logger   *slog.Logger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activity services.ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{activity: activity, logger: logger}
}

// ListFeed returns posts newest-first
// GET /api/activity?clientId=&documentId=&limit=
func (h *ActivityHandler) ListFeed(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	filter := models.FeedFilter{
		ClientID:   r.URL.Query().Get("clientId"),
		DocumentID: r.URL.Query().Get("documentId"),
		Limit:      limit,
	}

	posts := []models.ActivityPost{}
	for post, err := range h.activity.ListFeed(r.Context(), filter) {
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		posts = append(posts, post)
	}

	httputil.RespondJSON(w, http.StatusOK, posts)
}

// AttachThread appends a reply to a feed post
// POST /api/activity/{id}/thread
func (h *ActivityHandler) AttachThread(w http.ResponseWriter, r *http.Request) {
	var req services.AttachThreadRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.ParentID = r.PathValue("id")
	req.Author = authorOr(r, req.Author)

	post, err := h.activity.AttachThread(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, post)
}
