package services

import (
	"context"

	"terraai/internal/domain/models"
)

// CreateProjectRequest represents a request to save a new project
type CreateProjectRequest struct {
	UserID   string                       `json:"-"`
	Title    string                       `json:"title"`
	Files    models.FileSet               `json:"files"`
	Messages []models.ConversationMessage `json:"messages"`
}

// UpdateProjectRequest replaces a project's content. Nil fields are left
// unchanged.
type UpdateProjectRequest struct {
	Title    *string                      `json:"title"`
	Files    models.FileSet               `json:"files"`
	Messages []models.ConversationMessage `json:"messages"`
}

// ProjectService defines business logic operations for projects
type ProjectService interface {
	// CreateProject saves a new project, enforcing the owner's daily plan
	// quota. Returns *domain.QuotaExceededError when the quota is used up.
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)

	GetProject(ctx context.Context, id, userID string) (*models.Project, error)

	// ListProjects returns the user's projects, most recently updated first
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)

	UpdateProject(ctx context.Context, id, userID string, req *UpdateProjectRequest) (*models.Project, error)

	SetFavorite(ctx context.Context, id, userID string, favorite bool) (*models.Project, error)

	// DeleteProject permanently removes a project
	DeleteProject(ctx context.Context, id, userID string) error
}
