// Package billing handles plan purchases. Payments happen outside the
// system; users submit a transaction reference and an admin approves or
// rejects it.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"terraai/internal/config"
	"terraai/internal/domain"
	"terraai/internal/domain/models"
	"terraai/internal/domain/repositories"
	"terraai/internal/domain/services"
)

type billingService struct {
	paymentRepo repositories.PaymentRequestRepository
	userRepo    repositories.UserRepository
	txManager   repositories.TransactionManager
	now         func() time.Time
	logger      *slog.Logger
}

// NewBillingService creates a new billing service
func NewBillingService(
	paymentRepo repositories.PaymentRequestRepository,
	userRepo repositories.UserRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.BillingService {
	return &billingService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		now:         time.Now,
		logger:      logger,
	}
}

// SubmitPayment records a pending payment for a paid plan
func (s *billingService) SubmitPayment(ctx context.Context, userID string, req *services.SubmitPaymentRequest) (*models.PaymentRequest, error) {
	req.TransactionID = strings.TrimSpace(req.TransactionID)
	err := validation.ValidateStruct(req,
		validation.Field(&req.Plan,
			validation.Required,
			validation.In(string(models.PlanMonthly), string(models.PlanSixMonths), string(models.PlanYearly)),
		),
		validation.Field(&req.Amount, validation.Required, validation.Min(0.01)),
		validation.Field(&req.TransactionID, validation.Required, validation.Length(1, 255)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &models.PaymentRequest{
		UserID:        user.ID,
		UserName:      user.Name,
		UserEmail:     user.Email,
		Plan:          models.Plan(req.Plan),
		Amount:        req.Amount,
		TransactionID: req.TransactionID,
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("payment request submitted",
		"id", p.ID,
		"user_id", userID,
		"plan", p.Plan,
	)
	return p, nil
}

// ListPayments returns payment requests
func (s *billingService) ListPayments(ctx context.Context, status string) ([]models.PaymentRequest, error) {
	if status == "" {
		return s.paymentRepo.List(ctx, nil)
	}
	st := models.PaymentStatus(strings.ToUpper(status))
	switch st {
	case models.PaymentPending, models.PaymentApproved, models.PaymentRejected:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return s.paymentRepo.List(ctx, &st)
}

// ApprovePayment marks the request approved and upgrades the user. The
// new expiry counts from approval time.
func (s *billingService) ApprovePayment(ctx context.Context, id string) (*models.PaymentRequest, error) {
	var p *models.PaymentRequest

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.pendingForUpdate(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.userRepo.UpdatePlan(ctx, p.UserID, p.Plan, p.Plan.ExpiryFrom(now)); err != nil {
			return err
		}

		p.Status = models.PaymentApproved
		p.ApprovedAt = &now
		return s.paymentRepo.UpdateStatus(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment approved",
		"id", id,
		"user_id", p.UserID,
		"plan", p.Plan,
	)
	return p, nil
}

// RejectPayment marks the request rejected with an optional reason
func (s *billingService) RejectPayment(ctx context.Context, id, reason string) (*models.PaymentRequest, error) {
	reason = strings.TrimSpace(reason)
	if err := validation.Validate(reason, validation.RuneLength(0, config.MaxRejectionReasonLength)); err != nil {
		return nil, fmt.Errorf("%w: reason %v", domain.ErrValidation, err)
	}

	var p *models.PaymentRequest
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.pendingForUpdate(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		p.Status = models.PaymentRejected
		p.RejectedAt = &now
		if reason != "" {
			p.RejectionReason = &reason
		}
		return s.paymentRepo.UpdateStatus(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment rejected", "id", id, "user_id", p.UserID)
	return p, nil
}

func (s *billingService) pendingForUpdate(ctx context.Context, id string) (*models.PaymentRequest, error) {
	p, err := s.paymentRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PaymentPending {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("payment request already %s", strings.ToLower(string(p.Status))),
			ResourceType: "payment_request",
			ResourceID:   p.ID,
		}
	}
	return p, nil
}
