package api

import (
	"encoding/json"
	"net/http"

	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/money"
	"github.com/fkhayef/splitledger/pkg/response"
)

// CreateExpense handles POST /groups/{id}/expenses
// @Summary      Record an expense
// @Description  Resolve the split with the chosen strategy and append the expense to the group's ledger
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body CreateExpenseRequest true "Expense with split parameters"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /groups/{id}/expenses [post]
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	participants := make([]split.SplitInput, len(req.Participants))
	for i, p := range req.Participants {
		in := split.SplitInput{
			MemberID:   p.MemberID,
			PercentBps: p.PercentBps,
			Shares:     p.Shares,
		}
		if p.AmountMinor != nil {
			amount := money.Money(*p.AmountMinor)
			in.Amount = &amount
		}
		participants[i] = in
	}

	e, err := h.registry.AddExpense(r.Context(), groupID, req.PayerID, req.Description,
		money.Money(req.AmountMinor), req.SplitType, participants)
	if err != nil {
		response.FromError(w, err)
		return
	}

	l, err := h.registry.Ledger(r.Context(), groupID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, toExpenseResponse(e, l.Group().Currency))
}

// ListExpenses handles GET /groups/{id}/expenses
// @Summary      List a group's expense history
// @Description  Append-only history including reversing entries, in record order
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/expenses [get]
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
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
	expenses := l.Expenses()
	out := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(e, currency)
	}
	response.JSON(w, http.StatusOK, out)
}

// ReverseExpense handles POST /groups/{id}/expenses/{expenseId}/reverse
// @Summary      Reverse an expense
// @Description  Appends a reversing entry; the original expense stays in the history
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        expenseId path string true "Expense ID"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/expenses/{expenseId}/reverse [post]
func (h *Handler) ReverseExpense(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	expenseID, ok := pathID(w, r, "expenseId")
	if !ok {
		return
	}

	rev, err := h.registry.ReverseExpense(r.Context(), groupID, expenseID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	l, err := h.registry.Ledger(r.Context(), groupID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, toExpenseResponse(rev, l.Group().Currency))
}
