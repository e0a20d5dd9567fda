package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/ledger"
	"github.com/fkhayef/splitledger/internal/money"
	"github.com/fkhayef/splitledger/internal/registry"
	"github.com/fkhayef/splitledger/internal/snapshot"
)

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON sends a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	json.NewEncoder(w).Encode(response)
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// Common error responses
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, "NOT_FOUND", message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, "CONFLICT", message)
}

func UnprocessableEntity(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", message)
}

// FromError maps a core error to its HTTP representation. The error message
// is passed through as-is; the core never formats user-facing text, so
// presentation-layer wording stays the API consumer's concern.
func FromError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrGroupNotFound),
		errors.Is(err, ledger.ErrExpenseNotFound):
		Error(w, http.StatusNotFound, "NOT_FOUND", err.Error())

	case errors.Is(err, snapshot.ErrCorrupt):
		// A corrupt snapshot makes the group's session unusable.
		Error(w, http.StatusInternalServerError, "SNAPSHOT_CORRUPT", err.Error())

	case errors.Is(err, ledger.ErrAlreadyReversed),
		errors.Is(err, ledger.ErrReverseOfReverse):
		Error(w, http.StatusConflict, "CONFLICT", err.Error())

	case errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrOverflow),
		errors.Is(err, group.ErrUnknownMember),
		errors.Is(err, group.ErrEmptyName),
		errors.Is(err, group.ErrEmptyCurrency),
		errors.Is(err, group.ErrNoMembers),
		errors.Is(err, group.ErrDuplicateMember),
		errors.Is(err, group.ErrEmptyMemberName),
		errors.Is(err, split.ErrNoParticipants),
		errors.Is(err, split.ErrDuplicateParticipant),
		errors.Is(err, split.ErrShareMismatch),
		errors.Is(err, split.ErrInvalidPercentage),
		errors.Is(err, split.ErrPercentageOutOfRange),
		errors.Is(err, split.ErrInvalidShares),
		errors.Is(err, split.ErrMissingExactAmount),
		errors.Is(err, split.ErrMissingPercentage),
		errors.Is(err, split.ErrMissingShares),
		errors.Is(err, ledger.ErrInvalidExpense),
		errors.Is(err, ledger.ErrInvalidPayment),
		errors.Is(err, ledger.ErrSelfPayment):
		UnprocessableEntity(w, err.Error())

	default:
		InternalError(w, err.Error())
	}
}
