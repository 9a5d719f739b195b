package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"terraai/internal/httputil"
)

// GenerationLimit caps generation requests per user per minute. Requests
// without claims fall back to the client IP. A limit <= 0 disables it.
func GenerationLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		perMinute,
		time.Minute,
		httprate.WithKeyFuncs(userOrIPKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httputil.RespondError(w, http.StatusTooManyRequests, "too many generation requests, slow down")
		}),
	)
}

func userOrIPKey(r *http.Request) (string, error) {
	if id := httputil.GetUserID(r); id != "" {
		return "user:" + id, nil
	}
	return httprate.KeyByIP(r)
}
