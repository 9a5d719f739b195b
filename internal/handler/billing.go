package handler

import (
	"log/slog"
	"net/http"

	"terraai/internal/domain/services"
	"terraai/internal/httputil"
)

// BillingHandler handles manual payment requests
type BillingHandler struct {
	billing services.BillingService
	logger  *slog.Logger
}

func NewBillingHandler(billing services.BillingService, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{billing: billing, logger: logger}
}

// SubmitPayment records a payment claim for admin review
// POST /api/payment-request
func (h *BillingHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req services.SubmitPaymentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, err)
		return
	}

	payment, err := h.billing.SubmitPayment(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, payment)
}

// ListPayments lists payment requests, optionally by ?status=
// GET /api/admin/payment-requests
func (h *BillingHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.billing.ListPayments(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, payments)
}

// ApprovePayment upgrades the requesting user
// POST /api/admin/approve-payment/{id}
func (h *BillingHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	payment, err := h.billing.ApprovePayment(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("payment approved", "payment_id", id, "user_id", payment.UserID, "plan", payment.Plan)
	httputil.RespondJSON(w, http.StatusOK, payment)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// RejectPayment marks a request rejected with an optional reason
// POST /api/admin/reject-payment/{id}
func (h *BillingHandler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req rejectRequest
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			handleError(w, err)
			return
		}
	}

	payment, err := h.billing.RejectPayment(r.Context(), id, req.Reason)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("payment rejected", "payment_id", id)
	httputil.RespondJSON(w, http.StatusOK, payment)
}
