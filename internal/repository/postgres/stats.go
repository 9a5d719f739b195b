package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"terraai/internal/domain/models"
	"terraai/internal/domain/repositories"
)

// awsServiceNeedles maps a dashboard bucket to the substrings that count a
// project toward it. Matching is case-insensitive over the files JSON.
var awsServiceNeedles = []struct {
	Service string
	Needles [2]string
}{
	{"EC2", [2]string{"aws_instance", "ec2"}},
	{"RDS", [2]string{"aws_db", "rds"}},
	{"S3", [2]string{"aws_s3", "bucket"}},
	{"VPC", [2]string{"aws_vpc", "vpc"}},
}

// PostgresStatsRepository implements StatsRepository
type PostgresStatsRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(config *RepositoryConfig) repositories.StatsRepository {
	return &PostgresStatsRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetStats aggregates dashboard counters in a few queries
func (r *PostgresStatsRepository) GetStats(ctx context.Context) (*models.AdminStats, error) {
	executor := GetExecutor(ctx, r.pool)
	stats := &models.AdminStats{
		PlanCounts:  map[models.Plan]int{},
		AWSServices: map[string]int{},
	}

	userQuery := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE EXISTS (SELECT 1 FROM %s p WHERE p.user_id = u.id)),
			COUNT(*) FILTER (WHERE u.plan <> 'FREE')
		FROM %s u
	`, r.tables.Projects, r.tables.Users)
	if err := executor.QueryRow(ctx, userQuery).Scan(&stats.TotalUsers, &stats.ActiveUsers, &stats.PaidUsers); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	planQuery := fmt.Sprintf(`SELECT plan, COUNT(*) FROM %s GROUP BY plan`, r.tables.Users)
	rows, err := executor.Query(ctx, planQuery)
	if err != nil {
		return nil, fmt.Errorf("count plans: %w", err)
	}
	for rows.Next() {
		var plan models.Plan
		var n int
		if err := rows.Scan(&plan, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan plan count: %w", err)
		}
		stats.PlanCounts[plan] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plan counts: %w", err)
	}

	pendingQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE status = 'PENDING'`, r.tables.PaymentRequests)
	if err := executor.QueryRow(ctx, pendingQuery).Scan(&stats.PendingPayments); err != nil {
		return nil, fmt.Errorf("count pending payments: %w", err)
	}

	// one pass over projects for the total and each service bucket
	args := make([]any, 0, len(awsServiceNeedles)*2)
	filters := ""
	for i, svc := range awsServiceNeedles {
		filters += fmt.Sprintf(",\n\t\t\tCOUNT(*) FILTER (WHERE lower(files::text) LIKE '%%' || $%d::text || '%%' OR lower(files::text) LIKE '%%' || $%d::text || '%%')",
			i*2+1, i*2+2)
		args = append(args, svc.Needles[0], svc.Needles[1])
	}
	projectQuery := fmt.Sprintf(`SELECT COUNT(*)%s FROM %s`, filters, r.tables.Projects)

	counts := make([]int, len(awsServiceNeedles))
	dest := []any{&stats.TotalProjects}
	for i := range counts {
		dest = append(dest, &counts[i])
	}
	if err := executor.QueryRow(ctx, projectQuery, args...).Scan(dest...); err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	for i, svc := range awsServiceNeedles {
		stats.AWSServices[svc.Service] = counts[i]
	}

	return stats, nil
}
