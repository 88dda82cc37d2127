package handler

import (
	"net/http"

	"lexdesk/internal/httputil"
)

// HealthCheck reports liveness
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authorOr returns the given author, or the authenticated user's display name when blank
func authorOr(r *http.Request, author string) string {
	if author != "" {
		return author
	}
	return httputil.GetUserName(r)
}

// orEmpty keeps list responses as [] rather than null
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
