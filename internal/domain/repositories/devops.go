package repositories

import (
	"context"

	"terraai/internal/domain/models"
)

// DevOpsProjectRepository defines data access operations for the catalog
type DevOpsProjectRepository interface {
	List(ctx context.Context) ([]models.DevOpsProject, error)
	GetByID(ctx context.Context, id string) (*models.DevOpsProject, error)
	Create(ctx context.Context, p *models.DevOpsProject) error
	Update(ctx context.Context, p *models.DevOpsProject) error
	Delete(ctx context.Context, id string) error
}
