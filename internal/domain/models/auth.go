package models

import "github.com/golang-jwt/jwt/v5"

const (
	ClaimRoleUser  = "user"
	ClaimRoleAdmin = "admin"
)

// Claims are carried by tokens this server issues.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"` // "user" or "admin"
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}

// IsAdmin reports whether the token was issued by the admin login.
func (c *Claims) IsAdmin() bool {
	return c.Role == ClaimRoleAdmin
}

// GoogleIDClaims are the claims of a Google-issued ID token.
type GoogleIDClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
