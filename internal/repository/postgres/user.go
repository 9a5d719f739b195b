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

const userColumns = "id, google_id, email, name, picture, theme, plan, plan_expiry, created_at"

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanUser(row interface{ Scan(...any) error }, u *models.User) error {
	return row.Scan(
		&u.ID,
		&u.GoogleID,
		&u.Email,
		&u.Name,
		&u.Picture,
		&u.Theme,
		&u.Plan,
		&u.PlanExpiry,
		&u.CreatedAt,
	)
}

// UpsertGoogle creates or refreshes a user keyed by Google subject
func (r *PostgresUserRepository) UpsertGoogle(ctx context.Context, p *models.GoogleProfile) (*models.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, google_id, email, name, picture, theme, plan, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (google_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			picture = EXCLUDED.picture
		RETURNING %s
	`, r.tables.Users, userColumns)

	var u models.User
	executor := GetExecutor(ctx, r.pool)
	err := scanUser(executor.QueryRow(ctx, query,
		uuid.NewString(),
		p.GoogleID,
		p.Email,
		p.Name,
		p.Picture,
		models.ThemeDark,
		models.PlanFree,
		time.Now(),
	), &u)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &u, nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.get(ctx, id, "")
}

// GetByIDForUpdate retrieves a user and holds a row lock for the transaction
func (r *PostgresUserRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	if repositories.GetTx(ctx) == nil {
		return nil, fmt.Errorf("lock user %s: no transaction in context", id)
	}
	return r.get(ctx, id, "FOR UPDATE")
}

func (r *PostgresUserRepository) get(ctx context.Context, id, lock string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 %s`, userColumns, r.tables.Users, lock)

	var u models.User
	executor := GetExecutor(ctx, r.pool)
	if err := scanUser(executor.QueryRow(ctx, query, id), &u); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// UpdateTheme sets the UI theme
func (r *PostgresUserRepository) UpdateTheme(ctx context.Context, id string, theme models.Theme) (*models.User, error) {
	query := fmt.Sprintf(`UPDATE %s SET theme = $2 WHERE id = $1 RETURNING %s`, r.tables.Users, userColumns)

	var u models.User
	executor := GetExecutor(ctx, r.pool)
	if err := scanUser(executor.QueryRow(ctx, query, id, theme), &u); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update theme: %w", err)
	}
	return &u, nil
}

// UpdatePlan sets the plan tier and expiry
func (r *PostgresUserRepository) UpdatePlan(ctx context.Context, id string, plan models.Plan, expiry *time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET plan = $2, plan_expiry = $3 WHERE id = $1`, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, plan, expiry)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List returns all users with their project counts
func (r *PostgresUserRepository) List(ctx context.Context) ([]models.UserSummary, error) {
	query := fmt.Sprintf(`
		SELECT u.id, u.google_id, u.email, u.name, u.picture, u.theme, u.plan, u.plan_expiry, u.created_at,
			(SELECT COUNT(*) FROM %s p WHERE p.user_id = u.id)
		FROM %s u
		ORDER BY u.created_at DESC
	`, r.tables.Projects, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var s models.UserSummary
		err := rows.Scan(
			&s.ID,
			&s.GoogleID,
			&s.Email,
			&s.Name,
			&s.Picture,
			&s.Theme,
			&s.Plan,
			&s.PlanExpiry,
			&s.CreatedAt,
			&s.ProjectCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
