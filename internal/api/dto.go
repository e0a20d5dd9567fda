package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/ledger"
	"github.com/fkhayef/splitledger/internal/settlement"
)

// Amounts cross this boundary as exact integer minor units plus the group's
// currency code; formatting is the consumer's concern.

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name     string   `json:"name"`
	Currency string   `json:"currency"`
	Members  []string `json:"members"` // display names, declared order is kept
}

// GroupResponse represents a group with its members
type GroupResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Currency  string           `json:"currency"`
	Members   []MemberResponse `json:"members"`
	CreatedAt string           `json:"created_at"`
}

// MemberResponse represents a single group member
type MemberResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ParticipantRequest is one participant of an expense with the
// strategy-dependent parameter for the chosen split type
type ParticipantRequest struct {
	MemberID    uuid.UUID `json:"member_id"`
	AmountMinor *int64    `json:"amount_minor,omitempty"` // EXACT
	PercentBps  *int64    `json:"percent_bps,omitempty"`  // PERCENTAGE, basis points
	Shares      *int64    `json:"shares,omitempty"`       // SHARES
}

// CreateExpenseRequest represents the request to record an expense
type CreateExpenseRequest struct {
	PayerID      uuid.UUID            `json:"payer_id"`
	Description  string               `json:"description"`
	AmountMinor  int64                `json:"amount_minor"`
	SplitType    string               `json:"split_type"` // EQUAL, EXACT, PERCENTAGE, SHARES
	Participants []ParticipantRequest `json:"participants"`
}

// ShareResponse is one resolved participant share
type ShareResponse struct {
	MemberID    uuid.UUID `json:"member_id"`
	AmountMinor int64     `json:"amount_minor"`
}

// ExpenseResponse represents a recorded expense with its resolved shares
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	PayerID     uuid.UUID       `json:"payer_id"`
	Description string          `json:"description"`
	AmountMinor int64           `json:"amount_minor"`
	Currency    string          `json:"currency"`
	SplitType   string          `json:"split_type"`
	Shares      []ShareResponse `json:"shares"`
	Reverses    *uuid.UUID      `json:"reverses,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

// CreatePaymentRequest represents the request to record a settlement payment
type CreatePaymentRequest struct {
	PayerID     uuid.UUID `json:"payer_id"`
	PayeeID     uuid.UUID `json:"payee_id"`
	AmountMinor int64     `json:"amount_minor"`
	Note        string    `json:"note,omitempty"`
}

// PaymentResponse represents a recorded payment
type PaymentResponse struct {
	ID          uuid.UUID `json:"id"`
	PayerID     uuid.UUID `json:"payer_id"`
	PayeeID     uuid.UUID `json:"payee_id"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   string    `json:"created_at"`
}

// BalanceResponse is one canonical pairwise balance: debtor owes creditor
type BalanceResponse struct {
	DebtorID    uuid.UUID `json:"debtor_id"`
	CreditorID  uuid.UUID `json:"creditor_id"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
}

// PositionResponse is one member's aggregate net position; positive means
// the member is owed money
type PositionResponse struct {
	MemberID uuid.UUID `json:"member_id"`
	NetMinor int64     `json:"net_minor"`
}

// MemberBalanceResponse is one member's position plus the per-counterparty
// breakdown from that member's perspective
type MemberBalanceResponse struct {
	MemberID       uuid.UUID          `json:"member_id"`
	NetMinor       int64              `json:"net_minor"`
	Currency       string             `json:"currency"`
	Counterparties []PositionResponse `json:"counterparties"`
}

// SummaryResponse carries the dashboard aggregates for a group
type SummaryResponse struct {
	GroupID         uuid.UUID          `json:"group_id"`
	Currency        string             `json:"currency"`
	TotalSpentMinor int64              `json:"total_spent_minor"`
	TotalOwedMinor  int64              `json:"total_owed_minor"` // sum of positive positions
	Positions       []PositionResponse `json:"positions"`
}

// TransactionResponse is one proposed settlement payment
type TransactionResponse struct {
	PayerID     uuid.UUID `json:"payer_id"`
	PayeeID     uuid.UUID `json:"payee_id"`
	AmountMinor int64     `json:"amount_minor"`
}

// SettlementPlanResponse is the ordered plan that settles the whole group
type SettlementPlanResponse struct {
	GroupID      uuid.UUID             `json:"group_id"`
	Currency     string                `json:"currency"`
	Transactions []TransactionResponse `json:"transactions"`
}

const timeFormat = time.RFC3339

func toGroupResponse(g *group.Group) *GroupResponse {
	members := make([]MemberResponse, len(g.Members))
	for i, m := range g.Members {
		members[i] = MemberResponse{ID: m.ID, Name: m.Name}
	}
	return &GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		Currency:  g.Currency,
		Members:   members,
		CreatedAt: g.CreatedAt.Format(timeFormat),
	}
}

func toExpenseResponse(e *expense.Expense, currency string) *ExpenseResponse {
	shares := make([]ShareResponse, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = ShareResponse{MemberID: s.MemberID, AmountMinor: int64(s.Amount)}
	}
	return &ExpenseResponse{
		ID:          e.ID,
		PayerID:     e.PayerID,
		Description: e.Description,
		AmountMinor: int64(e.Amount),
		Currency:    currency,
		SplitType:   string(e.SplitType),
		Shares:      shares,
		Reverses:    e.Reverses,
		CreatedAt:   e.CreatedAt.Format(timeFormat),
	}
}

func toPaymentResponse(p *ledger.Payment, currency string) *PaymentResponse {
	return &PaymentResponse{
		ID:          p.ID,
		PayerID:     p.PayerID,
		PayeeID:     p.PayeeID,
		AmountMinor: int64(p.Amount),
		Currency:    currency,
		Note:        p.Note,
		CreatedAt:   p.CreatedAt.Format(timeFormat),
	}
}

func toBalanceResponses(balances []ledger.Balance, currency string) []BalanceResponse {
	out := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		out[i] = BalanceResponse{
			DebtorID:    b.DebtorID,
			CreditorID:  b.CreditorID,
			AmountMinor: int64(b.Amount),
			Currency:    currency,
		}
	}
	return out
}

func toPositionResponses(positions []ledger.Position) []PositionResponse {
	out := make([]PositionResponse, len(positions))
	for i, p := range positions {
		out[i] = PositionResponse{MemberID: p.MemberID, NetMinor: int64(p.Net)}
	}
	return out
}

func toTransactionResponses(plan []settlement.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(plan))
	for i, t := range plan {
		out[i] = TransactionResponse{
			PayerID:     t.PayerID,
			PayeeID:     t.PayeeID,
			AmountMinor: int64(t.Amount),
		}
	}
	return out
}
