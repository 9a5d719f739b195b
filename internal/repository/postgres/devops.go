package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"terraai/internal/domain"
	"terraai/internal/domain/models"
	"terraai/internal/domain/repositories"
)

const devopsColumns = "id, title, description, github_url, tags, icon, difficulty, created_at, updated_at"

// PostgresDevOpsProjectRepository implements DevOpsProjectRepository
type PostgresDevOpsProjectRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewDevOpsProjectRepository creates a new catalog repository
func NewDevOpsProjectRepository(config *RepositoryConfig) repositories.DevOpsProjectRepository {
	return &PostgresDevOpsProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanDevOps(row interface{ Scan(...any) error }, p *models.DevOpsProject) error {
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.GithubURL,
		&p.Tags,
		&p.Icon,
		&p.Difficulty,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == nil && p.Tags == nil {
		p.Tags = []string{}
	}
	return err
}

// List returns the whole catalog, oldest first
func (r *PostgresDevOpsProjectRepository) List(ctx context.Context) ([]models.DevOpsProject, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at ASC`, devopsColumns, r.tables.DevOpsProjects)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list devops projects: %w", err)
	}
	defer rows.Close()

	out := []models.DevOpsProject{}
	for rows.Next() {
		var p models.DevOpsProject
		if err := scanDevOps(rows, &p); err != nil {
			return nil, fmt.Errorf("scan devops project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate devops projects: %w", err)
	}
	return out, nil
}

// GetByID retrieves one catalog entry
func (r *PostgresDevOpsProjectRepository) GetByID(ctx context.Context, id string) (*models.DevOpsProject, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, devopsColumns, r.tables.DevOpsProjects)

	var p models.DevOpsProject
	executor := GetExecutor(ctx, r.pool)
	if err := scanDevOps(executor.QueryRow(ctx, query, id), &p); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("devops project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get devops project: %w", err)
	}
	return &p, nil
}

// Create inserts a catalog entry
func (r *PostgresDevOpsProjectRepository) Create(ctx context.Context, p *models.DevOpsProject) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	if p.Tags == nil {
		p.Tags = []string{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, description, github_url, tags, icon, difficulty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.DevOpsProjects)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.GithubURL,
		p.Tags,
		p.Icon,
		p.Difficulty,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("devops project %s already exists", p.ID),
				ResourceType: "devops_project",
				ResourceID:   p.ID,
			}
		}
		return fmt.Errorf("create devops project: %w", err)
	}
	return nil
}

// Update replaces a catalog entry's fields
func (r *PostgresDevOpsProjectRepository) Update(ctx context.Context, p *models.DevOpsProject) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $2, description = $3, github_url = $4, tags = $5, icon = $6, difficulty = $7, updated_at = $8
		WHERE id = $1
		RETURNING created_at, updated_at
	`, r.tables.DevOpsProjects)

	if p.Tags == nil {
		p.Tags = []string{}
	}

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.GithubURL,
		p.Tags,
		p.Icon,
		p.Difficulty,
		time.Now(),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("devops project %s: %w", p.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update devops project: %w", err)
	}
	return nil
}

// Delete removes a catalog entry
func (r *PostgresDevOpsProjectRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.DevOpsProjects)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		if IsPgInvalidTextError(err) {
			return fmt.Errorf("devops project %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete devops project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("devops project %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
