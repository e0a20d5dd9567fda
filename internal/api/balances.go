package api

import (
	"net/http"

	"github.com/fkhayef/splitledger/pkg/response"
)

// GetBalances handles GET /groups/{id}/balances
// @Summary      Get net pairwise balances
// @Description  Canonical snapshot: each indebted member pair once, debtor to creditor, positive amount
// @Tags         balances
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]BalanceResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/balances [get]
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	l, err := h.registry.Ledger(r.Context(), groupID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, toBalanceResponses(l.NetBalances(), l.Group().Currency))
}

// GetMemberBalance handles GET /groups/{id}/balances/{memberId}
// @Summary      Get one member's net position
// @Description  Aggregate position plus the net balance against each counterparty, from the member's perspective
// @Tags         balances
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        memberId path string true "Member ID"
// @Success      200 {object} response.APIResponse{data=MemberBalanceResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /groups/{id}/balances/{memberId} [get]
func (h *Handler) GetMemberBalance(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(w, r, "memberId")
	if !ok {
		return
	}

	l, err := h.registry.Ledger(r.Context(), groupID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	net, err := l.BalanceOf(memberID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	counterparties, err := l.CounterpartyBalances(memberID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, &MemberBalanceResponse{
		MemberID:       memberID,
		NetMinor:       int64(net),
		Currency:       l.Group().Currency,
		Counterparties: toPositionResponses(counterparties),
	})
}
