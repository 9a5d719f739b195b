package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"terraai/internal/domain"
	"terraai/internal/domain/models"
)

const issuer = "terraai"

// AdminSubject is the subject of admin tokens; admins have no user row.
const AdminSubject = "admin"

// TokenService issues and verifies HS256 tokens signed with the server
// secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewTokenService creates a token service. An empty secret is rejected.
func NewTokenService(secret string, ttl time.Duration, logger *slog.Logger) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET cannot be empty")
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}, nil
}

func (s *TokenService) IssueUser(user *models.User) (string, error) {
	return s.issue(user.ID, user.Email, user.Name, models.ClaimRoleUser)
}

func (s *TokenService) IssueAdmin(email string) (string, error) {
	return s.issue(AdminSubject, email, "Admin", models.ClaimRoleAdmin)
}

func (s *TokenService) issue(subject, email, name, role string) (string, error) {
	now := s.now()
	claims := &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: email,
		Name:  name,
		Role:  role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates signature, expiry and issuer.
func (s *TokenService) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{},
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		s.logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	switch claims.Role {
	case models.ClaimRoleUser, models.ClaimRoleAdmin:
	default:
		s.logger.Warn("token has unknown role", "role", claims.Role, "subject", claims.Subject)
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}
