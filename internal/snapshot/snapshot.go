// Package snapshot is the persistence boundary of the accounting core. A
// Snapshot is a plain-data copy of one group's full state: members, the
// append-only expense history and the payment history, with every amount an
// exact integer count of minor units. The core defines no file format; it
// only requires that stores round-trip a snapshot losslessly.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/ledger"
	"github.com/fkhayef/splitledger/internal/money"
)

// Common errors
var (
	ErrCorrupt  = errors.New("snapshot violates ledger invariants")
	ErrNotFound = errors.New("snapshot not found")
)

// Snapshot is one group's complete persisted state.
type Snapshot struct {
	Group    GroupState     `json:"group"`
	Expenses []ExpenseState `json:"expenses"`
	Payments []PaymentState `json:"payments"`
}

// GroupState mirrors group.Group as plain data.
type GroupState struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Currency  string        `json:"currency"`
	Members   []MemberState `json:"members"`
	CreatedAt time.Time     `json:"created_at"`
}

// MemberState mirrors group.Member as plain data.
type MemberState struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ExpenseState mirrors expense.Expense; amounts are minor units.
type ExpenseState struct {
	ID          uuid.UUID    `json:"id"`
	PayerID     uuid.UUID    `json:"payer_id"`
	Description string       `json:"description"`
	AmountMinor int64        `json:"amount_minor"`
	SplitType   string       `json:"split_type"`
	Shares      []ShareState `json:"shares"`
	Reverses    *uuid.UUID   `json:"reverses,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ShareState is one resolved participant share; amounts are minor units.
type ShareState struct {
	MemberID    uuid.UUID `json:"member_id"`
	AmountMinor int64     `json:"amount_minor"`
}

// PaymentState mirrors ledger.Payment; amounts are minor units.
type PaymentState struct {
	ID          uuid.UUID `json:"id"`
	PayerID     uuid.UUID `json:"payer_id"`
	PayeeID     uuid.UUID `json:"payee_id"`
	AmountMinor int64     `json:"amount_minor"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Capture copies the ledger's group and full history into a snapshot.
func Capture(l *ledger.Ledger) *Snapshot {
	g := l.Group()

	gs := GroupState{
		ID:        g.ID,
		Name:      g.Name,
		Currency:  g.Currency,
		Members:   make([]MemberState, len(g.Members)),
		CreatedAt: g.CreatedAt,
	}
	for i, m := range g.Members {
		gs.Members[i] = MemberState{ID: m.ID, Name: m.Name}
	}

	expenses := l.Expenses()
	es := make([]ExpenseState, len(expenses))
	for i, e := range expenses {
		shares := make([]ShareState, len(e.Shares))
		for j, s := range e.Shares {
			shares[j] = ShareState{MemberID: s.MemberID, AmountMinor: int64(s.Amount)}
		}
		es[i] = ExpenseState{
			ID:          e.ID,
			PayerID:     e.PayerID,
			Description: e.Description,
			AmountMinor: int64(e.Amount),
			SplitType:   string(e.SplitType),
			Shares:      shares,
			Reverses:    e.Reverses,
			CreatedAt:   e.CreatedAt,
		}
	}

	payments := l.Payments()
	ps := make([]PaymentState, len(payments))
	for i, p := range payments {
		ps[i] = PaymentState{
			ID:          p.ID,
			PayerID:     p.PayerID,
			PayeeID:     p.PayeeID,
			AmountMinor: int64(p.Amount),
			Note:        p.Note,
			CreatedAt:   p.CreatedAt,
		}
	}

	return &Snapshot{Group: gs, Expenses: es, Payments: ps}
}

// Restore rebuilds a ledger from a snapshot, re-validating every invariant
// along the way. Any violation means the persisted data cannot be trusted
// and the whole restore fails with ErrCorrupt; there is no auto-repair.
func Restore(s *Snapshot, factory *split.Factory) (*ledger.Ledger, error) {
	g, err := restoreGroup(&s.Group)
	if err != nil {
		return nil, fmt.Errorf("%w: group: %w", ErrCorrupt, err)
	}

	l := ledger.New(g)
	for _, es := range s.Expenses {
		if _, err := factory.CreateFromString(es.SplitType); err != nil {
			return nil, fmt.Errorf("%w: expense %s: %w", ErrCorrupt, es.ID, err)
		}
		e := &expense.Expense{
			ID:          es.ID,
			GroupID:     g.ID,
			PayerID:     es.PayerID,
			Description: es.Description,
			Amount:      money.Money(es.AmountMinor),
			SplitType:   split.SplitType(es.SplitType),
			Reverses:    es.Reverses,
			CreatedAt:   es.CreatedAt,
			Shares:      make([]expense.Share, len(es.Shares)),
		}
		for j, sh := range es.Shares {
			e.Shares[j] = expense.Share{MemberID: sh.MemberID, Amount: money.Money(sh.AmountMinor)}
		}
		if err := l.RecordExpense(e); err != nil {
			return nil, fmt.Errorf("%w: expense %s: %w", ErrCorrupt, es.ID, err)
		}
	}
	for _, ps := range s.Payments {
		p := &ledger.Payment{
			ID:        ps.ID,
			GroupID:   g.ID,
			PayerID:   ps.PayerID,
			PayeeID:   ps.PayeeID,
			Amount:    money.Money(ps.AmountMinor),
			Note:      ps.Note,
			CreatedAt: ps.CreatedAt,
		}
		if err := l.RecordPayment(p); err != nil {
			return nil, fmt.Errorf("%w: payment %s: %w", ErrCorrupt, ps.ID, err)
		}
	}

	return l, nil
}

// restoreGroup rebuilds the group literally (ids must survive the round
// trip) while re-running the membership checks group.New performs.
func restoreGroup(gs *GroupState) (*group.Group, error) {
	if gs.Name == "" {
		return nil, group.ErrEmptyName
	}
	if gs.Currency == "" {
		return nil, group.ErrEmptyCurrency
	}
	if len(gs.Members) == 0 {
		return nil, group.ErrNoMembers
	}

	members := make([]group.Member, len(gs.Members))
	seen := make(map[uuid.UUID]struct{}, len(gs.Members))
	for i, m := range gs.Members {
		if m.Name == "" {
			return nil, group.ErrEmptyMemberName
		}
		if _, dup := seen[m.ID]; dup {
			return nil, group.ErrDuplicateMember
		}
		seen[m.ID] = struct{}{}
		members[i] = group.Member{ID: m.ID, Name: m.Name}
	}

	return &group.Group{
		ID:        gs.ID,
		Name:      gs.Name,
		Currency:  gs.Currency,
		Members:   members,
		CreatedAt: gs.CreatedAt,
	}, nil
}
