package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"terraai/internal/domain"
)

// AdminAuthenticator checks the single admin account configured through
// ADMIN_EMAIL and ADMIN_PASSWORD_HASH (bcrypt).
type AdminAuthenticator struct {
	email string
	hash  []byte
}

func NewAdminAuthenticator(email, passwordHash string) *AdminAuthenticator {
	return &AdminAuthenticator{
		email: strings.ToLower(strings.TrimSpace(email)),
		hash:  []byte(passwordHash),
	}
}

// Configured reports whether admin login is possible at all.
func (a *AdminAuthenticator) Configured() bool {
	return a.email != "" && len(a.hash) > 0
}

// Authenticate returns domain.ErrUnauthorized for any mismatch.
func (a *AdminAuthenticator) Authenticate(email, password string) error {
	if !a.Configured() {
		return domain.ErrServiceUnavailable
	}

	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(a.email)) == 1
	// always run bcrypt so timing does not reveal the email
	passErr := bcrypt.CompareHashAndPassword(a.hash, []byte(password))

	if !emailOK || passErr != nil {
		return domain.ErrUnauthorized
	}
	return nil
}
