package repositories

import (
	"context"
	"time"

	"terraai/internal/domain/models"
)

// UserRepository defines data access operations for user accounts
type UserRepository interface {
	// UpsertGoogle creates the user on first sign-in, or refreshes the
	// profile fields of an existing one matched by google_id
	UpsertGoogle(ctx context.Context, profile *models.GoogleProfile) (*models.User, error)

	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByIDForUpdate reads the user and locks the row until the
	// surrounding transaction ends. Must be called inside ExecTx.
	GetByIDForUpdate(ctx context.Context, id string) (*models.User, error)

	UpdateTheme(ctx context.Context, id string, theme models.Theme) (*models.User, error)

	// UpdatePlan sets tier and expiry (nil clears it)
	UpdatePlan(ctx context.Context, id string, plan models.Plan, expiry *time.Time) error

	// List returns all users with their project counts, newest first
	List(ctx context.Context) ([]models.UserSummary, error)
}
