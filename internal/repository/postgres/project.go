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

const projectColumns = "id, user_id, title, files, messages, is_favorite, created_at, updated_at"

// PostgresProjectRepository implements the ProjectRepository interface
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *RepositoryConfig) repositories.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanProject(row interface{ Scan(...any) error }, p *models.Project) error {
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Title,
		&p.Files,
		&p.Messages,
		&p.IsFavorite,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if p.Files == nil {
		p.Files = models.FileSet{}
	}
	if p.Messages == nil {
		p.Messages = []models.ConversationMessage{}
	}
	return nil
}

// Create creates a new project
func (r *PostgresProjectRepository) Create(ctx context.Context, p *models.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
	if p.Files == nil {
		p.Files = models.FileSet{}
	}
	if p.Messages == nil {
		p.Messages = []models.ConversationMessage{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, title, files, messages, is_favorite, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.Title,
		p.Files,
		p.Messages,
		p.IsFavorite,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("project %s already exists", p.ID),
				ResourceType: "project",
				ResourceID:   p.ID,
			}
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// GetByID retrieves a project by ID
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE id = $1 AND user_id = $2
	`, projectColumns, r.tables.Projects)

	var p models.Project
	executor := GetExecutor(ctx, r.pool)
	if err := scanProject(executor.QueryRow(ctx, query, id, userID), &p); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// List retrieves all projects for a user, ordered by updated_at DESC
func (r *PostgresProjectRepository) List(ctx context.Context, userID string) ([]models.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, projectColumns, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := scanProject(rows, &p); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// Update replaces a project's content
func (r *PostgresProjectRepository) Update(ctx context.Context, p *models.Project) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $3, files = $4, messages = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
		RETURNING is_favorite, created_at, updated_at
	`, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		p.ID,
		p.UserID,
		p.Title,
		p.Files,
		p.Messages,
		time.Now(),
	).Scan(&p.IsFavorite, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("project %s: %w", p.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// SetFavorite updates the favorite flag without touching updated_at
func (r *PostgresProjectRepository) SetFavorite(ctx context.Context, id, userID string, favorite bool) (*models.Project, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET is_favorite = $3
		WHERE id = $1 AND user_id = $2
		RETURNING %s
	`, r.tables.Projects, projectColumns)

	var p models.Project
	executor := GetExecutor(ctx, r.pool)
	if err := scanProject(executor.QueryRow(ctx, query, id, userID, favorite), &p); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("set favorite: %w", err)
	}
	return &p, nil
}

// Delete permanently removes a project
func (r *PostgresProjectRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		if IsPgInvalidTextError(err) {
			return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// CountCreatedBetween counts projects created by a user in [from, to)
func (r *PostgresProjectRepository) CountCreatedBetween(ctx context.Context, userID string, from, to time.Time, titleContains string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		AND ($4::text = '' OR strpos(title, $4::text) > 0)
	`, r.tables.Projects)

	var n int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID, from, to, titleContains).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// ListAll returns every project joined with its owner
func (r *PostgresProjectRepository) ListAll(ctx context.Context) ([]models.ProjectSummary, error) {
	query := fmt.Sprintf(`
		SELECT p.id, p.user_id, p.title, p.files, p.messages, p.is_favorite, p.created_at, p.updated_at,
			COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM %s p
		LEFT JOIN %s u ON u.id = p.user_id
		ORDER BY p.updated_at DESC
	`, r.tables.Projects, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all projects: %w", err)
	}
	defer rows.Close()

	projects := []models.ProjectSummary{}
	for rows.Next() {
		var s models.ProjectSummary
		err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Title,
			&s.Files,
			&s.Messages,
			&s.IsFavorite,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.UserName,
			&s.UserEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}
