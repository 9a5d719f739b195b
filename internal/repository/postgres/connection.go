package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"terraai/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names
type TableNames struct {
	Users           string
	Projects        string
	PaymentRequests string
	DevOpsProjects  string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Users:           fmt.Sprintf("%susers", prefix),
		Projects:        fmt.Sprintf("%sprojects", prefix),
		PaymentRequests: fmt.Sprintf("%spayment_requests", prefix),
		DevOpsProjects:  fmt.Sprintf("%sdevops_projects", prefix),
	}
}

// All lists tables in dependency order (referenced tables first).
func (t *TableNames) All() []string {
	return []string{t.Users, t.Projects, t.PaymentRequests, t.DevOpsProjects}
}

// CreateConnectionPool opens and pings a pgx pool.
//
// Transaction poolers (PgBouncer, port 6543 on hosted Postgres) reject
// prepared statements, so for that port the pool falls back to
// QueryExecModeCacheDescribe unless the connection string already chose a
// mode. CacheDescribe still uses the extended protocol, which the JSONB
// columns need for encoding maps and slices.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx, or the pool when
// there is none, so repositories join an enclosing ExecTx automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
