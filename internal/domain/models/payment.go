package models

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentRejected PaymentStatus = "REJECTED"
)

// PaymentRequest is a user's claim of a manual payment for a plan,
// awaiting admin review.
type PaymentRequest struct {
	ID              string        `json:"id" db:"id"`
	UserID          string        `json:"user_id" db:"user_id"`
	UserName        string        `json:"user_name" db:"user_name"`
	UserEmail       string        `json:"user_email" db:"user_email"`
	Plan            Plan          `json:"plan" db:"plan"`
	Amount          float64       `json:"amount" db:"amount"`
	TransactionID   string        `json:"transaction_id" db:"transaction_id"`
	Status          PaymentStatus `json:"status" db:"status"`
	RejectionReason *string       `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	ApprovedAt      *time.Time    `json:"approved_at,omitempty" db:"approved_at"`
	RejectedAt      *time.Time    `json:"rejected_at,omitempty" db:"rejected_at"`
}
