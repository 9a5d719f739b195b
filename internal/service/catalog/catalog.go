// Package catalog manages the curated DevOps project gallery.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"terraai/internal/config"
	"terraai/internal/domain"
	"terraai/internal/domain/models"
	"terraai/internal/domain/repositories"
	"terraai/internal/domain/services"
	"terraai/internal/metrics"
	"terraai/internal/service/plan"
)

// ImportTitleMarker is the title substring that identifies projects
// started from the catalog when counting daily imports.
const ImportTitleMarker = "DevOps"

var difficulties = []interface{}{"Beginner", "Intermediate", "Advanced"}

type catalogService struct {
	repo        repositories.DevOpsProjectRepository
	userRepo    repositories.UserRepository
	projectRepo repositories.ProjectRepository
	plans       *plan.Service
	logger      *slog.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	repo repositories.DevOpsProjectRepository,
	userRepo repositories.UserRepository,
	projectRepo repositories.ProjectRepository,
	plans *plan.Service,
	logger *slog.Logger,
) services.CatalogService {
	return &catalogService{
		repo:        repo,
		userRepo:    userRepo,
		projectRepo: projectRepo,
		plans:       plans,
		logger:      logger,
	}
}

func (s *catalogService) List(ctx context.Context) ([]models.DevOpsProject, error) {
	return s.repo.List(ctx)
}

func (s *catalogService) Get(ctx context.Context, id string) (*models.DevOpsProject, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *catalogService) Create(ctx context.Context, in *services.DevOpsProjectInput) (*models.DevOpsProject, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	p := fromInput(in)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("devops project created", "id", p.ID, "title", p.Title)
	return p, nil
}

func (s *catalogService) Update(ctx context.Context, id string, in *services.DevOpsProjectInput) (*models.DevOpsProject, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	p := fromInput(in)
	p.ID = id
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("devops project updated", "id", p.ID)
	return p, nil
}

func (s *catalogService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("devops project deleted", "id", id)
	return nil
}

// Import enforces the catalog allowance: FREE users must upgrade, MONTHLY
// users get a few imports per day, longer plans are unbounded.
func (s *catalogService) Import(ctx context.Context, userID, id string) (*services.DevOpsImport, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.plans.EnsureCurrent(ctx, user); err != nil {
		return nil, err
	}

	switch user.Plan {
	case models.PlanFree:
		return nil, fmt.Errorf("%w: DevOps projects require a paid plan", domain.ErrUpgradeRequired)
	case models.PlanMonthly:
		from, to := s.plans.Today()
		n, err := s.projectRepo.CountCreatedBetween(ctx, userID, from, to, ImportTitleMarker)
		if err != nil {
			return nil, err
		}
		if n >= config.DevOpsDailyImportLimit {
			metrics.QuotaRejectionsTotal.WithLabelValues(string(user.Plan), "devops_imports").Inc()
			return nil, &domain.QuotaExceededError{
				Plan:  string(user.Plan),
				Limit: config.DevOpsDailyImportLimit,
				Kind:  "devops_imports",
			}
		}
	}

	s.logger.Info("devops project imported", "id", id, "user_id", userID)
	return &services.DevOpsImport{Title: item.Title, GithubURL: item.GithubURL}, nil
}

func fromInput(in *services.DevOpsProjectInput) *models.DevOpsProject {
	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return &models.DevOpsProject{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		GithubURL:   strings.TrimSpace(in.GithubURL),
		Tags:        tags,
		Icon:        in.Icon,
		Difficulty:  in.Difficulty,
	}
}

func validateInput(in *services.DevOpsProjectInput) error {
	err := validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(1, config.MaxCatalogTitleLength)),
		validation.Field(&in.GithubURL, validation.Required, is.URL),
		validation.Field(&in.Difficulty, validation.In(difficulties...)),
		validation.Field(&in.Tags, validation.Length(0, 20)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
