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

const paymentColumns = "id, user_id, user_name, user_email, plan, amount::float8, transaction_id, status, rejection_reason, created_at, approved_at, rejected_at"

// PostgresPaymentRequestRepository implements PaymentRequestRepository
type PostgresPaymentRequestRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewPaymentRequestRepository creates a new payment request repository
func NewPaymentRequestRepository(config *RepositoryConfig) repositories.PaymentRequestRepository {
	return &PostgresPaymentRequestRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanPayment(row interface{ Scan(...any) error }, p *models.PaymentRequest) error {
	return row.Scan(
		&p.ID,
		&p.UserID,
		&p.UserName,
		&p.UserEmail,
		&p.Plan,
		&p.Amount,
		&p.TransactionID,
		&p.Status,
		&p.RejectionReason,
		&p.CreatedAt,
		&p.ApprovedAt,
		&p.RejectedAt,
	)
}

// Create inserts a pending payment request
func (r *PostgresPaymentRequestRepository) Create(ctx context.Context, p *models.PaymentRequest) error {
	p.ID = uuid.NewString()
	p.Status = models.PaymentPending
	p.CreatedAt = time.Now()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, user_name, user_email, plan, amount, transaction_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.PaymentRequests)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		p.ID,
		p.UserID,
		p.UserName,
		p.UserEmail,
		p.Plan,
		p.Amount,
		p.TransactionID,
		p.Status,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create payment request: %w", err)
	}
	return nil
}

// GetByIDForUpdate reads and locks a payment request
func (r *PostgresPaymentRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.PaymentRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, paymentColumns, r.tables.PaymentRequests)

	var p models.PaymentRequest
	executor := GetExecutor(ctx, r.pool)
	if err := scanPayment(executor.QueryRow(ctx, query, id), &p); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("payment request %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get payment request: %w", err)
	}
	return &p, nil
}

// List returns payment requests newest first
func (r *PostgresPaymentRequestRepository) List(ctx context.Context, status *models.PaymentStatus) ([]models.PaymentRequest, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
	`, paymentColumns, r.tables.PaymentRequests)

	var filter *string
	if status != nil {
		s := string(*status)
		filter = &s
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, filter)
	if err != nil {
		return nil, fmt.Errorf("list payment requests: %w", err)
	}
	defer rows.Close()

	out := []models.PaymentRequest{}
	for rows.Next() {
		var p models.PaymentRequest
		if err := scanPayment(rows, &p); err != nil {
			return nil, fmt.Errorf("scan payment request: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment requests: %w", err)
	}
	return out, nil
}

// UpdateStatus persists a review decision
func (r *PostgresPaymentRequestRepository) UpdateStatus(ctx context.Context, p *models.PaymentRequest) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, approved_at = $3, rejected_at = $4, rejection_reason = $5
		WHERE id = $1
	`, r.tables.PaymentRequests)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, p.ID, p.Status, p.ApprovedAt, p.RejectedAt, p.RejectionReason)
	if err != nil {
		return fmt.Errorf("update payment request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment request %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}
