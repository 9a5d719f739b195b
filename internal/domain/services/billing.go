package services

import (
	"context"

	"terraai/internal/domain/models"
)

// SubmitPaymentRequest is a user's claim of a manual payment
type SubmitPaymentRequest struct {
	Plan          string  `json:"plan"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transaction_id"`
}

// BillingService handles plan purchases through admin-reviewed payments
type BillingService interface {
	SubmitPayment(ctx context.Context, userID string, req *SubmitPaymentRequest) (*models.PaymentRequest, error)

	// ListPayments returns requests, optionally filtered by status ("" = all)
	ListPayments(ctx context.Context, status string) ([]models.PaymentRequest, error)

	// ApprovePayment upgrades the user's plan and sets its expiry
	ApprovePayment(ctx context.Context, id string) (*models.PaymentRequest, error)

	RejectPayment(ctx context.Context, id, reason string) (*models.PaymentRequest, error)
}
