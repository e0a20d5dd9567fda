// Package settlement reduces a group's member positions to a short, ordered
// list of proposed payments that settles everyone. The planner is stateless;
// it owns nothing and computes over a snapshot of positions.
package settlement

import (
	"errors"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/ledger"
	"github.com/fkhayef/splitledger/internal/money"
)

// Common errors
var (
	ErrUnbalancedPositions = errors.New("positions do not sum to zero")
)

// Transaction is a proposed payment. It is not persisted unless the caller
// records it as an actual ledger payment.
type Transaction struct {
	PayerID uuid.UUID   `json:"payer_id"`
	PayeeID uuid.UUID   `json:"payee_id"`
	Amount  money.Money `json:"amount"`
}

// Planner produces settlement plans from member positions.
type Planner struct{}

// NewPlanner creates a new settlement planner
func NewPlanner() *Planner {
	return &Planner{}
}

// party is one outstanding side of the matching: a debtor's remaining debt
// or a creditor's remaining credit, always a positive magnitude.
type party struct {
	memberID uuid.UUID
	order    int // position in the group's declared member order
	amount   money.Money
}

// Plan matches the largest outstanding debtor with the largest outstanding
// creditor until every position is zero, transferring min(debt, credit) per
// step. Ties on magnitude go to the member earliest in declared order, so
// identical inputs always produce the identical plan. The greedy matching
// settles a group of n members in at most n-1 transactions; it does not
// chase the theoretical minimum transaction count, which would require
// solving an NP-hard partition problem.
//
// Positions must sum to zero, which every ledger snapshot guarantees.
func (p *Planner) Plan(positions []ledger.Position) ([]Transaction, error) {
	var sum money.Money
	var err error
	for _, pos := range positions {
		if sum, err = sum.Add(pos.Net); err != nil {
			return nil, err
		}
	}
	if !sum.IsZero() {
		return nil, ErrUnbalancedPositions
	}

	var debtors, creditors []party
	for i, pos := range positions {
		switch {
		case pos.Net < 0:
			debtors = append(debtors, party{pos.MemberID, i, pos.Net.Neg()})
		case pos.Net > 0:
			creditors = append(creditors, party{pos.MemberID, i, pos.Net})
		}
	}

	var plan []Transaction
	for len(debtors) > 0 && len(creditors) > 0 {
		d := maxParty(debtors)
		c := maxParty(creditors)

		amount := money.Min(debtors[d].amount, creditors[c].amount)
		plan = append(plan, Transaction{
			PayerID: debtors[d].memberID,
			PayeeID: creditors[c].memberID,
			Amount:  amount,
		})

		debtors[d].amount -= amount
		creditors[c].amount -= amount
		if debtors[d].amount.IsZero() {
			debtors = append(debtors[:d], debtors[d+1:]...)
		}
		if creditors[c].amount.IsZero() {
			creditors = append(creditors[:c], creditors[c+1:]...)
		}
	}

	return plan, nil
}

// PlanForLedger plans a settlement for the ledger's current positions.
func (p *Planner) PlanForLedger(l *ledger.Ledger) ([]Transaction, error) {
	return p.Plan(l.Positions())
}

// maxParty returns the index of the party with the largest outstanding
// amount, preferring the earliest declared member on ties.
func maxParty(parties []party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		if parties[i].amount > parties[best].amount ||
			(parties[i].amount == parties[best].amount && parties[i].order < parties[best].order) {
			best = i
		}
	}
	return best
}
