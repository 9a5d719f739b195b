package services

import (
	"context"

	"terraai/internal/domain/models"
)

// DevOpsProjectInput carries the editable fields of a catalog entry
type DevOpsProjectInput struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	GithubURL   string   `json:"github_url" yaml:"github_url"`
	Tags        []string `json:"tags" yaml:"tags"`
	Icon        string   `json:"icon" yaml:"icon"`
	Difficulty  string   `json:"difficulty" yaml:"difficulty"`
}

// DevOpsImport tells the client where to go after an import was allowed
type DevOpsImport struct {
	Title     string `json:"title"`
	GithubURL string `json:"github_url"`
}

// CatalogService manages the DevOps project catalog
type CatalogService interface {
	List(ctx context.Context) ([]models.DevOpsProject, error)
	Get(ctx context.Context, id string) (*models.DevOpsProject, error)
	Create(ctx context.Context, in *DevOpsProjectInput) (*models.DevOpsProject, error)
	Update(ctx context.Context, id string, in *DevOpsProjectInput) (*models.DevOpsProject, error)
	Delete(ctx context.Context, id string) error

	// Import checks the user's plan allowance for catalog imports
	Import(ctx context.Context, userID, id string) (*DevOpsImport, error)
}
