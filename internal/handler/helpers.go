package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"storyloom/internal/domain"
	"storyloom/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError

	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, httputil.ErrEmptyBody):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resourceType": conflictErr.ResourceType,
		})
	case errors.Is(err, domain.ErrVersionConflict):
		httputil.RespondError(w, http.StatusConflict, "the project was changed by another request; reload and try again")
	case errors.Is(err, domain.ErrUpstreamTimeout):
		httputil.RespondError(w, http.StatusGatewayTimeout, domain.ErrUpstreamTimeout.Error())
	case errors.Is(err, domain.ErrUpstream):
		slog.Warn("completion failed", "error", err)
		httputil.RespondError(w, http.StatusBadGateway, domain.ErrUpstream.Error())
	default:
		slog.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseBody decodes the request body, writing a 400 on failure
func parseBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// requireUserID reads the authenticated user, writing a 401 when absent.
// The auth middleware normally guarantees one.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

// messageResponse is the body of routes that only confirm an action
type messageResponse struct {
	Message string `json:"message"`
}
