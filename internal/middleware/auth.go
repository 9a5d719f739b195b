package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"terraai/internal/auth"
	"terraai/internal/httputil"
)

// PublicRoutes returns a matcher for routes reachable without a token.
// Each entry is "METHOD /path"; a trailing "*" matches any suffix.
func PublicRoutes(routes ...string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if r.Method == http.MethodOptions {
			return true
		}
		key := r.Method + " " + r.URL.Path
		for _, route := range routes {
			if prefix, ok := strings.CutSuffix(route, "*"); ok {
				if strings.HasPrefix(key, prefix) {
					return true
				}
				continue
			}
			if key == route {
				return true
			}
		}
		return false
	}
}

// Auth verifies the bearer token and stores its claims on the request.
// Public routes pass through without claims when no valid token is sent.
func Auth(verifier auth.TokenVerifier, isPublic func(*http.Request) bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			public := isPublic != nil && isPublic(r)

			token, ok := bearerToken(r)
			if !ok {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				if public {
					next.ServeHTTP(w, r)
					return
				}
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithClaims(r, claims))
		})
	}
}

// RequireAdmin rejects requests whose token was not issued by the admin login.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httputil.GetClaims(r) == nil {
			httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if !httputil.IsAdmin(r) {
			httputil.RespondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
