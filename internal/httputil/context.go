package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey   contextKey = "userID"
	userNameKey contextKey = "userName"
)

// WithUser adds the authenticated user's ID and display name to the request context
func WithUser(r *http.Request, userID, name string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, userNameKey, name)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// GetUserName returns the display name recorded as version author, falling back to the user ID
func GetUserName(r *http.Request) string {
	if name, _ := r.Context().Value(userNameKey).(string); name != "" {
		return name
	}
	return GetUserID(r)
}
