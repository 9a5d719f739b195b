package services

import (
	"context"

	"terraai/internal/domain/models"
)

// AdminService backs the admin dashboard
type AdminService interface {
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
	ListProjects(ctx context.Context) ([]models.ProjectSummary, error)
	Stats(ctx context.Context) (*models.AdminStats, error)
}
