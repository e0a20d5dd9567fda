package api

import (
	"encoding/json"
	"net/http"

	"github.com/fkhayef/splitledger/internal/money"
	"github.com/fkhayef/splitledger/pkg/response"
)

// CreatePayment handles POST /groups/{id}/payments
// @Summary      Record a settlement payment
// @Description  Reduces what the payer owes the payee; over-paying a single expense is fine, only the aggregate net matters
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body CreatePaymentRequest true "Payment"
// @Success      201 {object} response.APIResponse{data=PaymentResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /groups/{id}/payments [post]
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	p, err := h.registry.AddPayment(r.Context(), groupID, req.PayerID, req.PayeeID,
		money.Money(req.AmountMinor), req.Note)
	if err != nil {
		response.FromError(w, err)
		return
	}

	l, err := h.registry.Ledger(r.Context(), groupID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, toPaymentResponse(p, l.Group().Currency))
}

// ListPayments handles GET /groups/{id}/payments
// @Summary      List a group's recorded payments
// @Tags         payments
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]PaymentResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/payments [get]
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	l, err := h.registry.Ledger(r.Context(), groupID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	currency := l.Group().Currency
	payments := l.Payments()
	out := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toPaymentResponse(p, currency)
	}
	response.JSON(w, http.StatusOK, out)
}
