package repositories

import (
	"context"

	"terraai/internal/domain/models"
)

// PaymentRequestRepository defines data access operations for payment requests
type PaymentRequestRepository interface {
	Create(ctx context.Context, req *models.PaymentRequest) error

	// GetByIDForUpdate locks the request row. Must be called inside ExecTx.
	GetByIDForUpdate(ctx context.Context, id string) (*models.PaymentRequest, error)

	// List returns requests newest first, optionally filtered by status
	List(ctx context.Context, status *models.PaymentStatus) ([]models.PaymentRequest, error)

	// UpdateStatus persists status, approved_at, rejected_at and rejection_reason
	UpdateStatus(ctx context.Context, req *models.PaymentRequest) error
}
