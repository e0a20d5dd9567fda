package api

import (
	"net/http"

	"github.com/fkhayef/splitledger/pkg/response"
)

// GetSettlementPlan handles GET /groups/{id}/settle-up
// @Summary      Get the settlement plan for a group
// @Description  Ordered payments that bring every member's position to zero, at most members-1 transactions. Nothing is recorded until a payment is actually posted
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=SettlementPlanResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/settle-up [get]
func (h *Handler) GetSettlementPlan(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	l, err := h.registry.Ledger(r.Context(), groupID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	plan, err := h.planner.PlanForLedger(l)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, &SettlementPlanResponse{
		GroupID:      groupID,
		Currency:     l.Group().Currency,
		Transactions: toTransactionResponses(plan),
	})
}
