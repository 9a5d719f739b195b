package httputil

import (
	"context"
	"net/http"

	"terraai/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	claimsKey contextKey = "claims"
)

// WithClaims stores the verified token claims on the request context.
func WithClaims(r *http.Request, claims *models.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), claimsKey, claims)
	return r.WithContext(ctx)
}

// GetClaims returns the verified claims, or nil on public routes.
func GetClaims(r *http.Request) *models.Claims {
	claims, _ := r.Context().Value(claimsKey).(*models.Claims)
	return claims
}

// GetUserID retrieves the user ID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	if claims := GetClaims(r); claims != nil {
		return claims.GetUserID()
	}
	return ""
}

// IsAdmin reports whether the request carries an admin token.
func IsAdmin(r *http.Request) bool {
	claims := GetClaims(r)
	return claims != nil && claims.IsAdmin()
}
