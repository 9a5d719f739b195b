package billing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"terraai/internal/domain"
	"terraai/internal/domain/models"
	"terraai/internal/domain/repositories"
	"terraai/internal/domain/services"
)

type mockTxManager struct{}

func (mockTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error { return fn(ctx) }

type mockPaymentRepo struct {
	items map[string]*models.PaymentRequest
}

func (m *mockPaymentRepo) Create(ctx context.Context, p *models.PaymentRequest) error {
	p.ID = "pay-1"
	p.Status = models.PaymentPending
	cp := *p
	m.items[p.ID] = &cp
	return nil
}
func (m *mockPaymentRepo) GetByIDForUpdate(ctx context.Context, id string) (*models.PaymentRequest, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}
func (m *mockPaymentRepo) List(ctx context.Context, status *models.PaymentStatus) ([]models.PaymentRequest, error) {
	var out []models.PaymentRequest
	for _, p := range m.items {
		if status == nil || p.Status == *status {
			out = append(out, *p)
		}
	}
	return out, nil
}
func (m *mockPaymentRepo) UpdateStatus(ctx context.Context, p *models.PaymentRequest) error {
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

type mockUserRepo struct {
	user *models.User
}

func (m *mockUserRepo) UpsertGoogle(ctx context.Context, p *models.GoogleProfile) (*models.User, error) {
	return nil, nil
}
func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, domain.ErrNotFound
	}
	cp := *m.user
	return &cp, nil
}
func (m *mockUserRepo) GetByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	return m.GetByID(ctx, id)
}
func (m *mockUserRepo) UpdateTheme(ctx context.Context, id string, theme models.Theme) (*models.User, error) {
	return nil, nil
}
func (m *mockUserRepo) UpdatePlan(ctx context.Context, id string, p models.Plan, expiry *time.Time) error {
	m.user.Plan = p
	m.user.PlanExpiry = expiry
	return nil
}
func (m *mockUserRepo) List(ctx context.Context) ([]models.UserSummary, error) { return nil, nil }

func newTestService(now time.Time) (*billingService, *mockUserRepo, *mockPaymentRepo) {
	users := &mockUserRepo{user: &models.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Plan: models.PlanFree}}
	payments := &mockPaymentRepo{items: map[string]*models.PaymentRequest{}}
	svc := NewBillingService(payments, users, mockTxManager{}, slog.New(slog.NewTextHandler(io.Discard, nil))).(*billingService)
	svc.now = func() time.Time { return now }
	return svc, users, payments
}

func TestSubmitPayment(t *testing.T) {
	svc, _, _ := newTestService(time.Now())
	ctx := context.Background()

	p, err := svc.SubmitPayment(ctx, "u1", &services.SubmitPaymentRequest{Plan: "MONTHLY", Amount: 9.99, TransactionID: " tx-42 "})
	if err != nil {
		t.Fatalf("SubmitPayment: %v", err)
	}
	if p.Status != models.PaymentPending || p.UserEmail != "ada@example.com" || p.TransactionID != "tx-42" {
		t.Errorf("payment = %+v", p)
	}

	invalid := []*services.SubmitPaymentRequest{
		{Plan: "FREE", Amount: 1, TransactionID: "x"},
		{Plan: "MONTHLY", Amount: 0, TransactionID: "x"},
		{Plan: "MONTHLY", Amount: 1, TransactionID: "  "},
	}
	for _, req := range invalid {
		if _, err := svc.SubmitPayment(ctx, "u1", req); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("SubmitPayment(%+v) err = %v, want validation", req, err)
		}
	}
}

func TestApprovePayment(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	svc, users, _ := newTestService(now)
	ctx := context.Background()

	p, err := svc.SubmitPayment(ctx, "u1", &services.SubmitPaymentRequest{Plan: "SIXMONTHS", Amount: 49, TransactionID: "tx"})
	if err != nil {
		t.Fatal(err)
	}

	approved, err := svc.ApprovePayment(ctx, p.ID)
	if err != nil {
		t.Fatalf("ApprovePayment: %v", err)
	}
	if approved.Status != models.PaymentApproved || approved.ApprovedAt == nil {
		t.Errorf("approved = %+v", approved)
	}
	if users.user.Plan != models.PlanSixMonths {
		t.Errorf("plan = %s, want SIXMONTHS", users.user.Plan)
	}
	wantExpiry := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)
	if users.user.PlanExpiry == nil || !users.user.PlanExpiry.Equal(wantExpiry) {
		t.Errorf("expiry = %v, want %v", users.user.PlanExpiry, wantExpiry)
	}

	if _, err := svc.ApprovePayment(ctx, p.ID); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("second approval err = %v, want conflict", err)
	}
	if _, err := svc.RejectPayment(ctx, p.ID, "late"); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("reject after approval err = %v, want conflict", err)
	}
}

func TestRejectPayment(t *testing.T) {
	svc, users, _ := newTestService(time.Now())
	ctx := context.Background()

	p, err := svc.SubmitPayment(ctx, "u1", &services.SubmitPaymentRequest{Plan: "YEARLY", Amount: 99, TransactionID: "tx"})
	if err != nil {
		t.Fatal(err)
	}

	rejected, err := svc.RejectPayment(ctx, p.ID, " no such transfer ")
	if err != nil {
		t.Fatalf("RejectPayment: %v", err)
	}
	if rejected.Status != models.PaymentRejected || rejected.RejectedAt == nil {
		t.Errorf("rejected = %+v", rejected)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "no such transfer" {
		t.Errorf("reason = %v", rejected.RejectionReason)
	}
	if users.user.Plan != models.PlanFree {
		t.Error("rejection must not change the plan")
	}

	if _, err := svc.RejectPayment(ctx, "missing", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing err = %v, want not found", err)
	}
}

func TestListPayments_StatusFilter(t *testing.T) {
	svc, _, _ := newTestService(time.Now())
	ctx := context.Background()

	if _, err := svc.ListPayments(ctx, "pending"); err != nil {
		t.Errorf("lowercase status should be accepted: %v", err)
	}
	if _, err := svc.ListPayments(ctx, "REFUNDED"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("unknown status err = %v, want validation", err)
	}
}
