// Package admin backs the admin dashboard's read APIs.
package admin

import (
	"context"
	"log/slog"

	"terraai/internal/domain/models"
	"terraai/internal/domain/repositories"
	"terraai/internal/domain/services"
)

type adminService struct {
	userRepo    repositories.UserRepository
	projectRepo repositories.ProjectRepository
	statsRepo   repositories.StatsRepository
	logger      *slog.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	userRepo repositories.UserRepository,
	projectRepo repositories.ProjectRepository,
	statsRepo repositories.StatsRepository,
	logger *slog.Logger,
) services.AdminService {
	return &adminService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		statsRepo:   statsRepo,
		logger:      logger,
	}
}

func (s *adminService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	return s.userRepo.List(ctx)
}

func (s *adminService) ListProjects(ctx context.Context) ([]models.ProjectSummary, error) {
	return s.projectRepo.ListAll(ctx)
}

func (s *adminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	stats, err := s.statsRepo.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("admin stats computed",
		"users", stats.TotalUsers,
		"projects", stats.TotalProjects,
	)
	return stats, nil
}
