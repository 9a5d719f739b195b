// Package project implements saved projects and the daily creation quota.
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"terraai/internal/config"
	"terraai/internal/domain"
	"terraai/internal/domain/models"
	"terraai/internal/domain/repositories"
	"terraai/internal/domain/services"
	"terraai/internal/metrics"
	"terraai/internal/service/blueprint"
	"terraai/internal/service/plan"
)

// DefaultTitle is used when a project is saved without one.
const DefaultTitle = models.DefaultTitle

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo repositories.ProjectRepository
	userRepo    repositories.UserRepository
	txManager   repositories.TransactionManager
	plans       *plan.Service
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	txManager repositories.TransactionManager,
	plans *plan.Service,
	logger *slog.Logger,
) services.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		plans:       plans,
		logger:      logger,
	}
}

// CreateProject saves a project if the owner's plan allows another one
// today. The owner row is locked for the whole check-then-insert, so
// concurrent saves by one user are serialized and cannot overshoot the
// quota. A plan downgrade found along the way is committed even when the
// quota then rejects the insert.
func (s *projectService) CreateProject(ctx context.Context, req *services.CreateProjectRequest) (*models.Project, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		req.Title = DefaultTitle
	}
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var (
		project  *models.Project
		quotaErr *domain.QuotaExceededError
	)

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByIDForUpdate(ctx, req.UserID)
		if err != nil {
			return err
		}
		if _, err := s.plans.EnsureCurrent(ctx, user); err != nil {
			return err
		}

		if limit := user.Plan.DailyProjectLimit(); limit != models.Unlimited {
			from, to := s.plans.Today()
			count, err := s.projectRepo.CountCreatedBetween(ctx, user.ID, from, to, "")
			if err != nil {
				return err
			}
			if count >= limit {
				quotaErr = &domain.QuotaExceededError{Plan: string(user.Plan), Limit: limit, Kind: "projects"}
				return nil
			}
		}

		project = &models.Project{
			UserID:    user.ID,
			Title:     req.Title,
			Files:     req.Files.Clone(),
			Messages:  finalizedMessages(req.Messages),
			CreatedAt: s.plans.Now(),
		}
		return s.projectRepo.Create(ctx, project)
	})
	if err != nil {
		return nil, err
	}
	if quotaErr != nil {
		metrics.QuotaRejectionsTotal.WithLabelValues(quotaErr.Plan, quotaErr.Kind).Inc()
		s.logger.Info("project quota reached",
			"user_id", req.UserID,
			"plan", quotaErr.Plan,
			"limit", quotaErr.Limit,
		)
		return nil, quotaErr
	}

	s.logger.Info("project created",
		"id", project.ID,
		"title", project.Title,
		"user_id", req.UserID,
		"files", len(project.Files),
	)
	return project, nil
}

// GetProject retrieves a project by ID
func (s *projectService) GetProject(ctx context.Context, id, userID string) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, id, userID)
}

// ListProjects retrieves all projects for a user
func (s *projectService) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	return s.projectRepo.List(ctx, userID)
}

// UpdateProject replaces title, files and messages. Concurrent updates to
// the same project are last-write-wins.
func (s *projectService) UpdateProject(ctx context.Context, id, userID string, req *services.UpdateProjectRequest) (*models.Project, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.projectRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Files != nil {
		project.Files = req.Files.Clone()
	}
	if req.Messages != nil {
		project.Messages = finalizedMessages(req.Messages)
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project updated",
		"id", project.ID,
		"user_id", userID,
		"files", len(project.Files),
	)
	return project, nil
}

// SetFavorite flags or unflags a project
func (s *projectService) SetFavorite(ctx context.Context, id, userID string, favorite bool) (*models.Project, error) {
	project, err := s.projectRepo.SetFavorite(ctx, id, userID, favorite)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("project favorite toggled", "id", id, "favorite", favorite)
	return project, nil
}

// DeleteProject permanently removes a project
func (s *projectService) DeleteProject(ctx context.Context, id, userID string) error {
	if err := s.projectRepo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("project deleted",
		"id", id,
		"user_id", userID,
	)
	return nil
}

// finalizedMessages copies messages, clearing any streaming flag: a saved
// project never contains an in-flight reply.
func finalizedMessages(in []models.ConversationMessage) []models.ConversationMessage {
	out := make([]models.ConversationMessage, len(in))
	for i, m := range in {
		m.Streaming = false
		out[i] = m
	}
	return out
}

func (s *projectService) validateCreateRequest(req *services.CreateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.RuneLength(1, config.MaxProjectTitleLength),
		),
		validation.Field(&req.Files, validation.By(validateFiles)),
		validation.Field(&req.Messages, validation.By(validateMessages)),
	)
}

func (s *projectService) validateUpdateRequest(req *services.UpdateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.NilOrNotEmpty,
			validation.RuneLength(1, config.MaxProjectTitleLength),
		),
		validation.Field(&req.Files, validation.By(validateFiles)),
		validation.Field(&req.Messages, validation.By(validateMessages)),
	)
}

// validateFiles checks count and names of a FileSet
func validateFiles(value interface{}) error {
	files, ok := value.(models.FileSet)
	if !ok {
		return errors.New("files must be an object of name to content")
	}
	if len(files) > config.MaxFilesPerProject {
		return fmt.Errorf("at most %d files are allowed", config.MaxFilesPerProject)
	}
	for name := range files {
		if len(name) > config.MaxFileNameLength || !blueprint.FileNamePattern.MatchString(name) {
			return fmt.Errorf("invalid file name %q", name)
		}
	}
	return nil
}

// validateMessages checks message roles
func validateMessages(value interface{}) error {
	msgs, ok := value.([]models.ConversationMessage)
	if !ok {
		return errors.New("messages must be a list")
	}
	for i, m := range msgs {
		if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
			return fmt.Errorf("message %d: unknown role %q", i, m.Role)
		}
	}
	return nil
}
