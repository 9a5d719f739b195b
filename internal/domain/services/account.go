package services

import (
	"context"

	"terraai/internal/domain/models"
)

// AccountService manages user accounts
type AccountService interface {
	// SignIn creates or refreshes the account for a verified Google identity
	SignIn(ctx context.Context, profile *models.GoogleProfile) (*models.User, error)

	// GetUser returns the profile, downgrading an expired plan first
	GetUser(ctx context.Context, userID string) (*models.User, error)

	UpdateTheme(ctx context.Context, userID, theme string) (*models.User, error)
}
