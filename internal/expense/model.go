package expense

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/money"
)

// Share is one participant's resolved owed portion of an expense.
type Share struct {
	MemberID uuid.UUID   `json:"member_id"`
	Amount   money.Money `json:"amount"`
}

// Expense is an immutable record of one spending event plus its resolved
// per-participant shares. It is only created through strategy resolution in
// New, and "deleting" one means appending the entry Reversal returns; the
// original is never mutated or removed.
type Expense struct {
	ID          uuid.UUID       `json:"id"`
	GroupID     uuid.UUID       `json:"group_id"`
	PayerID     uuid.UUID       `json:"payer_id"`
	Description string          `json:"description"`
	Amount      money.Money     `json:"amount"`
	SplitType   split.SplitType `json:"split_type"`
	Shares      []Share         `json:"shares"` // participant declared order
	Reverses    *uuid.UUID      `json:"reverses,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// New resolves the participants' shares with the given strategy and returns
// the expense. It enforces the construction invariants: positive total, payer
// and every participant a group member, and resolved shares summing to the
// total with no minor unit lost or duplicated.
func New(g *group.Group, payerID uuid.UUID, description string, amount money.Money, strategy split.Strategy, participants []split.SplitInput) (*Expense, error) {
	if !amount.IsPositive() {
		return nil, money.ErrInvalidAmount
	}
	if !g.IsMember(payerID) {
		return nil, fmt.Errorf("payer %s: %w", payerID, group.ErrUnknownMember)
	}
	for _, p := range participants {
		if !g.IsMember(p.MemberID) {
			return nil, fmt.Errorf("participant %s: %w", p.MemberID, group.ErrUnknownMember)
		}
	}

	outputs, err := strategy.Calculate(amount, participants)
	if err != nil {
		return nil, err
	}

	shares := make([]Share, len(outputs))
	var sum money.Money
	for i, out := range outputs {
		shares[i] = Share{MemberID: out.MemberID, Amount: out.AmountOwed}
		if sum, err = sum.Add(out.AmountOwed); err != nil {
			return nil, err
		}
	}
	if sum != amount {
		return nil, split.ErrShareMismatch
	}

	return &Expense{
		ID:          uuid.New(),
		GroupID:     g.ID,
		PayerID:     payerID,
		Description: description,
		Amount:      amount,
		SplitType:   strategy.Type(),
		Shares:      shares,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Reversal returns a new entry that cancels this expense share for share.
// The ledger applies entries with a non-nil Reverses with the opposite sign,
// keeping history append-only.
func (e *Expense) Reversal() *Expense {
	orig := e.ID
	shares := append([]Share(nil), e.Shares...)
	return &Expense{
		ID:          uuid.New(),
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Description: "Reversal: " + e.Description,
		Amount:      e.Amount,
		SplitType:   e.SplitType,
		Shares:      shares,
		Reverses:    &orig,
		CreatedAt:   time.Now().UTC(),
	}
}

// IsReversal reports whether this entry cancels an earlier expense.
func (e *Expense) IsReversal() bool {
	return e.Reverses != nil
}

// ShareOf returns the resolved share for the given participant.
func (e *Expense) ShareOf(memberID uuid.UUID) (money.Money, bool) {
	for _, s := range e.Shares {
		if s.MemberID == memberID {
			return s.Amount, true
		}
	}
	return 0, false
}
