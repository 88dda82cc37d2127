package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"lexdesk/internal/auth"
	"lexdesk/internal/httputil"
)

// DevUser is the identity injected when no verifier is configured
type DevUser struct {
	ID   string
	Name string
}

// publicPaths skip authentication
var publicPaths = map[string]bool{
	"/health":      true,
	"/api/display": true,
}

// Auth validates the bearer token and puts the caller into the request context.
// With a nil verifier every request runs as dev.
func Auth(verifier auth.JWTVerifier, dev DevUser, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			if verifier == nil {
				next.ServeHTTP(w, httputil.WithUser(r, dev.ID, dev.Name))
				return
			}

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithUser(r, claims.GetUserID(), claims.DisplayName()))
		})
	}
}
