package repositories

import (
	"context"
	"time"

	"terraai/internal/domain/models"
)

// ProjectRepository defines data access operations for projects
type ProjectRepository interface {
	// Create inserts a project and fills in its ID and timestamps
	Create(ctx context.Context, project *models.Project) error

	// GetByID retrieves a project owned by userID
	GetByID(ctx context.Context, id, userID string) (*models.Project, error)

	// List retrieves all projects for a user, ordered by updated_at DESC
	List(ctx context.Context, userID string) ([]models.Project, error)

	// Update replaces title, files and messages and bumps updated_at
	Update(ctx context.Context, project *models.Project) error

	// SetFavorite flags or unflags a project
	SetFavorite(ctx context.Context, id, userID string, favorite bool) (*models.Project, error)

	// Delete permanently removes a project
	Delete(ctx context.Context, id, userID string) error

	// CountCreatedBetween counts the user's projects created in [from, to).
	// When titleContains is non-empty only titles containing it are counted.
	CountCreatedBetween(ctx context.Context, userID string, from, to time.Time, titleContains string) (int, error)

	// ListAll returns every project with its owner, newest activity first
	ListAll(ctx context.Context) ([]models.ProjectSummary, error)
}
