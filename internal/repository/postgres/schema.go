package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates missing tables and indexes. Safe to run repeatedly.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, t *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				google_id TEXT NOT NULL UNIQUE,
				email TEXT NOT NULL,
				name TEXT NOT NULL DEFAULT '',
				picture TEXT NOT NULL DEFAULT '',
				theme TEXT NOT NULL DEFAULT 'dark',
				plan TEXT NOT NULL DEFAULT 'FREE',
				plan_expiry TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, t.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				title VARCHAR(255) NOT NULL,
				files JSONB NOT NULL DEFAULT '{}'::jsonb,
				messages JSONB NOT NULL DEFAULT '[]'::jsonb,
				is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, t.Projects, t.Users),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_user_created_idx ON %s (user_id, created_at)`, t.Projects, t.Projects),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				user_name TEXT NOT NULL DEFAULT '',
				user_email TEXT NOT NULL DEFAULT '',
				plan TEXT NOT NULL,
				amount NUMERIC(12,2) NOT NULL,
				transaction_id TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'PENDING',
				rejection_reason TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				approved_at TIMESTAMPTZ,
				rejected_at TIMESTAMPTZ
			)`, t.PaymentRequests, t.Users),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_status_idx ON %s (status, created_at)`, t.PaymentRequests, t.PaymentRequests),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				github_url TEXT NOT NULL,
				tags TEXT[] NOT NULL DEFAULT '{}',
				icon TEXT NOT NULL DEFAULT '',
				difficulty TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, t.DevOpsProjects),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// DropTables removes every table for the prefix.
func DropTables(ctx context.Context, pool *pgxpool.Pool, t *TableNames) error {
	all := t.All()
	for i := len(all) - 1; i >= 0; i-- {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", all[i])); err != nil {
			return fmt.Errorf("drop %s: %w", all[i], err)
		}
	}
	return nil
}
