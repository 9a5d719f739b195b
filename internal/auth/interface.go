package auth

import "terraai/internal/domain/models"

// TokenVerifier validates bearer tokens for the auth middleware.
type TokenVerifier interface {
	// VerifyToken validates a token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is invalid or expired.
	VerifyToken(tokenString string) (*models.Claims, error)
}

// TokenIssuer signs tokens for authenticated principals.
type TokenIssuer interface {
	IssueUser(user *models.User) (string, error)
	IssueAdmin(email string) (string, error)
}
