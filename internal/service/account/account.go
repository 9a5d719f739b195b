// Package account manages user profiles.
package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"terraai/internal/domain"
	"terraai/internal/domain/models"
	"terraai/internal/domain/repositories"
	"terraai/internal/domain/services"
	"terraai/internal/service/plan"
)

type accountService struct {
	userRepo repositories.UserRepository
	plans    *plan.Service
	logger   *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(userRepo repositories.UserRepository, plans *plan.Service, logger *slog.Logger) services.AccountService {
	return &accountService{
		userRepo: userRepo,
		plans:    plans,
		logger:   logger,
	}
}

// SignIn upserts the user behind a verified Google identity
func (s *accountService) SignIn(ctx context.Context, p *models.GoogleProfile) (*models.User, error) {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	err := validation.ValidateStruct(p,
		validation.Field(&p.GoogleID, validation.Required),
		validation.Field(&p.Email, validation.Required, is.EmailFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if p.Name == "" {
		p.Name = strings.Split(p.Email, "@")[0]
	}

	user, err := s.userRepo.UpsertGoogle(ctx, p)
	if err != nil {
		return nil, err
	}
	if _, err := s.plans.EnsureCurrent(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed in", "user_id", user.ID, "plan", user.Plan)
	return user, nil
}

// GetUser returns the profile with an up-to-date plan
func (s *accountService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.plans.EnsureCurrent(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateTheme switches between dark and light
func (s *accountService) UpdateTheme(ctx context.Context, userID, theme string) (*models.User, error) {
	err := validation.Validate(theme,
		validation.Required,
		validation.In(string(models.ThemeDark), string(models.ThemeLight)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: theme %v", domain.ErrValidation, err)
	}
	return s.userRepo.UpdateTheme(ctx, userID, models.Theme(theme))
}
