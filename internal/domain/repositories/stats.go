package repositories

import (
	"context"

	"terraai/internal/domain/models"
)

// StatsRepository computes admin dashboard aggregates
type StatsRepository interface {
	GetStats(ctx context.Context) (*models.AdminStats, error)
}
