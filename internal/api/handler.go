// Package api is the presentation boundary: chi handlers that translate
// HTTP requests into core operations and core results (or errors) back into
// the standard JSON envelope.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/registry"
	"github.com/fkhayef/splitledger/internal/settlement"
	"github.com/fkhayef/splitledger/pkg/response"
)

// Handler handles HTTP requests for all group accounting operations
type Handler struct {
	registry *registry.Registry
	planner  *settlement.Planner
}

// NewHandler creates a new API handler
func NewHandler(reg *registry.Registry, planner *settlement.Planner) *Handler {
	return &Handler{registry: reg, planner: planner}
}

// Routes returns the router for group accounting endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateGroup)
	r.Get("/", h.ListGroups)
	r.Get("/{id}", h.GetGroup)
	r.Get("/{id}/summary", h.GetSummary)

	r.Get("/{id}/balances", h.GetBalances)
	r.Get("/{id}/balances/{memberId}", h.GetMemberBalance)

	r.Post("/{id}/expenses", h.CreateExpense)
	r.Get("/{id}/expenses", h.ListExpenses)
	r.Post("/{id}/expenses/{expenseId}/reverse", h.ReverseExpense)

	r.Post("/{id}/payments", h.CreatePayment)
	r.Get("/{id}/payments", h.ListPayments)

	r.Get("/{id}/settle-up", h.GetSettlementPlan)

	return r
}

// pathID parses a uuid path parameter, writing a 400 response on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.BadRequest(w, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
