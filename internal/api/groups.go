package api

import (
	"encoding/json"
	"net/http"

	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/money"
	"github.com/fkhayef/splitledger/pkg/response"
	"github.com/google/uuid"
)

// CreateGroup handles POST /groups
// @Summary      Create a new group
// @Description  Create a group with its members; member order is frozen and drives all deterministic tie-breaking
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	members := make([]group.Member, len(req.Members))
	for i, name := range req.Members {
		members[i] = group.Member{ID: uuid.New(), Name: name}
	}

	g, err := h.registry.CreateGroup(r.Context(), req.Name, req.Currency, members)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, toGroupResponse(g))
}

// ListGroups handles GET /groups
// @Summary      List group ids
// @Tags         groups
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]string}
// @Router       /groups [get]
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	ids, err := h.registry.GroupIDs(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ids)
}

// GetGroup handles GET /groups/{id}
// @Summary      Get group by ID
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [get]
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	l, err := h.registry.Ledger(r.Context(), groupID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, toGroupResponse(l.Group()))
}

// GetSummary handles GET /groups/{id}/summary
// @Summary      Get dashboard totals for a group
// @Description  Total spent, total outstanding and every member's net position
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=SummaryResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	l, err := h.registry.Ledger(r.Context(), groupID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	var spent money.Money
	for _, e := range l.Expenses() {
		if e.IsReversal() {
			spent -= e.Amount
		} else {
			spent += e.Amount
		}
	}

	positions := l.Positions()
	var owed money.Money
	for _, p := range positions {
		if p.Net.IsPositive() {
			owed += p.Net
		}
	}

	response.JSON(w, http.StatusOK, &SummaryResponse{
		GroupID:         groupID,
		Currency:        l.Group().Currency,
		TotalSpentMinor: int64(spent),
		TotalOwedMinor:  int64(owed),
		Positions:       toPositionResponses(positions),
	})
}
