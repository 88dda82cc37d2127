package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"lexdesk/internal/domain"
	"lexdesk/internal/httputil"
)

// handleError converts domain errors to problem+json responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		conflictErr *domain.ConflictError
		versionErr  *domain.VersionConflictError
		staleErr    *domain.StaleVersionError
	)

	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidVersionType):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrParentNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &staleErr):
		httputil.RespondErrorWithExtras(w, http.StatusPreconditionFailed, staleErr.Error(), map[string]interface{}{
			"current_version_stamp": staleErr.Current,
		})
	case errors.As(err, &versionErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, versionErr.Error(), map[string]interface{}{
			"expected_version": versionErr.Expected,
			"got_version":      versionErr.Got,
		})
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrDocumentClosed), errors.Is(err, domain.ErrInvalidTransition):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrQueryTimeout):
		httputil.RespondError(w, http.StatusGatewayTimeout, err.Error())
	default:
		logger.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
