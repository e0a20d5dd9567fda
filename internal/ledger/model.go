package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/money"
)

// Payment is a settlement actually executed between two members. Like
// expenses, payments are immutable once recorded.
type Payment struct {
	ID        uuid.UUID   `json:"id"`
	GroupID   uuid.UUID   `json:"group_id"`
	PayerID   uuid.UUID   `json:"payer_id"`
	PayeeID   uuid.UUID   `json:"payee_id"`
	Amount    money.Money `json:"amount"`
	Note      string      `json:"note,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewPayment validates and creates a payment within the given group.
func NewPayment(g *group.Group, payerID, payeeID uuid.UUID, amount money.Money, note string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayment, money.ErrInvalidAmount)
	}
	if payerID == payeeID {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayment, ErrSelfPayment)
	}
	if !g.IsMember(payerID) {
		return nil, fmt.Errorf("%w: payer %s: %w", ErrInvalidPayment, payerID, group.ErrUnknownMember)
	}
	if !g.IsMember(payeeID) {
		return nil, fmt.Errorf("%w: payee %s: %w", ErrInvalidPayment, payeeID, group.ErrUnknownMember)
	}
	return &Payment{
		ID:        uuid.New(),
		GroupID:   g.ID,
		PayerID:   payerID,
		PayeeID:   payeeID,
		Amount:    amount,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Balance is a net pairwise debt in canonical direction: the debtor owes the
// creditor Amount, and Amount is always positive. Each unordered member pair
// appears at most once.
type Balance struct {
	DebtorID   uuid.UUID   `json:"debtor_id"`
	CreditorID uuid.UUID   `json:"creditor_id"`
	Amount     money.Money `json:"amount"`
}

// Position is one member's aggregate net balance across the whole group.
// Positive means the member is owed money, negative means the member owes.
type Position struct {
	MemberID uuid.UUID   `json:"member_id"`
	Net      money.Money `json:"net"`
}
