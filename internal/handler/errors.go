package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"terraai/internal/domain"
	"terraai/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var (
		quotaErr    *domain.QuotaExceededError
		conflictErr *domain.ConflictError
		genErr      *domain.GenerationError
	)

	switch {
	case errors.As(err, &quotaErr):
		httputil.RespondErrorWithExtras(w, http.StatusForbidden, quotaErr.Error(), map[string]interface{}{
			"code":  "quota_exceeded",
			"plan":  quotaErr.Plan,
			"limit": quotaErr.Limit,
		})
	case errors.Is(err, domain.ErrUpgradeRequired):
		httputil.RespondErrorWithExtras(w, http.StatusForbidden, err.Error(), map[string]interface{}{
			"code": "upgrade_required",
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &genErr):
		if errors.Is(err, domain.ErrServiceUnavailable) {
			httputil.RespondError(w, http.StatusServiceUnavailable, "generation temporarily unavailable")
			return
		}
		httputil.RespondError(w, http.StatusBadGateway, "generation failed")
	case errors.Is(err, domain.ErrServiceUnavailable):
		httputil.RespondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		slog.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
