// Package ledger aggregates a group's expenses and recorded payments into
// net pairwise balances. The ledger is the single source of truth; split
// strategies and the settlement planner are pure functions over the data it
// holds.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/money"
)

// Common errors
var (
	ErrInvalidExpense   = errors.New("invalid expense")
	ErrInvalidPayment   = errors.New("invalid payment")
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrAlreadyReversed  = errors.New("expense already reversed")
	ErrReverseOfReverse = errors.New("cannot reverse a reversing entry")
	ErrSelfPayment      = errors.New("payer and payee must differ")
	ErrWrongGroup       = errors.New("entry belongs to a different group")
)

// pair keys a net balance by the two members' positions in the group's
// declared order, lo < hi. The stored amount is signed: positive means
// Members[lo] owes Members[hi].
type pair struct {
	lo, hi int
}

// Ledger holds a group's append-only expense and payment history and the
// incrementally maintained net balance per member pair. Mutations are
// serialized by a single writer lock; reads take a shared lock so they never
// observe a half-applied append.
type Ledger struct {
	mu       sync.RWMutex
	group    *group.Group
	expenses []*expense.Expense
	payments []*Payment
	net      map[pair]money.Money
}

// New creates an empty ledger over the given group.
func New(g *group.Group) *Ledger {
	return &Ledger{
		group: g,
		net:   make(map[pair]money.Money),
	}
}

// Group returns the group this ledger derives balances for.
func (l *Ledger) Group() *group.Group {
	return l.group
}

// RecordExpense validates the expense against the group, appends it and
// updates the net balances. The append is all-or-nothing: on any validation
// or overflow failure the ledger is left untouched.
func (l *Ledger) RecordExpense(e *expense.Expense) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.validateExpense(e); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidExpense, err)
	}

	deltas, err := l.expenseDeltas(l.net, e)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidExpense, err)
	}

	l.commit(deltas)
	l.expenses = append(l.expenses, e)
	return nil
}

// ReverseExpense appends a reversing entry for the given expense and returns
// it. The original stays in the history untouched; an expense can be
// reversed at most once and reversals themselves cannot be reversed.
func (l *Ledger) ReverseExpense(expenseID uuid.UUID) (*expense.Expense, error) {
	l.mu.Lock()
	original := l.findExpense(expenseID)
	l.mu.Unlock()

	if original == nil {
		return nil, ErrExpenseNotFound
	}

	rev := original.Reversal()
	if err := l.RecordExpense(rev); err != nil {
		return nil, err
	}
	return rev, nil
}

// RecordPayment validates the payment against the group, appends it and
// reduces what the payer owes the payee. Over-paying relative to any single
// expense is fine; only the aggregate net matters.
func (l *Ledger) RecordPayment(p *Payment) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.validatePayment(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayment, err)
	}

	deltas := make(map[pair]money.Money, 1)
	if err := l.addDebt(l.net, deltas, p.PayerID, p.PayeeID, p.Amount.Neg()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayment, err)
	}

	l.commit(deltas)
	l.payments = append(l.payments, p)
	return nil
}

// NetBalances returns the canonical pairwise balance snapshot: each indebted
// member pair once, debtor-to-creditor, positive amount, ordered by the
// group's declared member order.
func (l *Ledger) NetBalances() []Balance {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.netBalancesLocked()
}

func (l *Ledger) netBalancesLocked() []Balance {
	balances := make([]Balance, 0, len(l.net))
	for lo := 0; lo < len(l.group.Members); lo++ {
		for hi := lo + 1; hi < len(l.group.Members); hi++ {
			v, ok := l.net[pair{lo, hi}]
			if !ok || v.IsZero() {
				continue
			}
			b := Balance{
				DebtorID:   l.group.Members[lo].ID,
				CreditorID: l.group.Members[hi].ID,
				Amount:     v,
			}
			if v < 0 {
				b.DebtorID, b.CreditorID = b.CreditorID, b.DebtorID
				b.Amount = v.Neg()
			}
			balances = append(balances, b)
		}
	}
	return balances
}

// BalanceOf returns the member's aggregate position: the sum of their signed
// balances across all counterparties. Positive means the member is owed
// money.
func (l *Ledger) BalanceOf(memberID uuid.UUID) (money.Money, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.group.MemberIndex(memberID)
	if idx < 0 {
		return 0, group.ErrUnknownMember
	}
	return l.positionLocked(idx), nil
}

func (l *Ledger) positionLocked(idx int) money.Money {
	var net money.Money
	for k, v := range l.net {
		switch idx {
		case k.lo:
			// positive v means Members[lo] owes, so it reduces the position
			net -= v
		case k.hi:
			net += v
		}
	}
	return net
}

// Positions returns every member's aggregate position in declared member
// order. The positions always sum to zero.
func (l *Ledger) Positions() []Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	positions := make([]Position, len(l.group.Members))
	for i, m := range l.group.Members {
		positions[i] = Position{MemberID: m.ID, Net: l.positionLocked(i)}
	}
	return positions
}

// CounterpartyBalances returns the member's net balance against each
// counterparty it is not settled with, in declared member order. Positive
// means the counterparty owes the member.
func (l *Ledger) CounterpartyBalances(memberID uuid.UUID) ([]Position, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.group.MemberIndex(memberID)
	if idx < 0 {
		return nil, group.ErrUnknownMember
	}

	out := make([]Position, 0, len(l.group.Members)-1)
	for i, m := range l.group.Members {
		if i == idx {
			continue
		}
		lo, hi := i, idx
		sign := money.Money(1) // counterparty at lo owes the member at hi
		if idx < i {
			lo, hi = idx, i
			sign = -1
		}
		v := l.net[pair{lo, hi}] * sign
		if !v.IsZero() {
			out = append(out, Position{MemberID: m.ID, Net: v})
		}
	}
	return out, nil
}

// Expenses returns the recorded expense history in append order.
func (l *Ledger) Expenses() []*expense.Expense {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*expense.Expense(nil), l.expenses...)
}

// Payments returns the recorded payment history in append order.
func (l *Ledger) Payments() []*Payment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*Payment(nil), l.payments...)
}

// validateExpense re-checks the construction invariants at append time so a
// ledger never accepts an entry it could not have produced itself.
func (l *Ledger) validateExpense(e *expense.Expense) error {
	if e.GroupID != l.group.ID {
		return ErrWrongGroup
	}
	if !e.Amount.IsPositive() {
		return money.ErrInvalidAmount
	}
	if !l.group.IsMember(e.PayerID) {
		return fmt.Errorf("payer %s: %w", e.PayerID, group.ErrUnknownMember)
	}
	if len(e.Shares) == 0 {
		return errors.New("expense has no participants")
	}

	var sum money.Money
	var err error
	seen := make(map[uuid.UUID]struct{}, len(e.Shares))
	for _, s := range e.Shares {
		if !l.group.IsMember(s.MemberID) {
			return fmt.Errorf("participant %s: %w", s.MemberID, group.ErrUnknownMember)
		}
		if _, dup := seen[s.MemberID]; dup {
			return fmt.Errorf("participant %s listed twice", s.MemberID)
		}
		seen[s.MemberID] = struct{}{}
		if s.Amount < 0 {
			return money.ErrInvalidAmount
		}
		if sum, err = sum.Add(s.Amount); err != nil {
			return err
		}
	}
	if sum != e.Amount {
		return fmt.Errorf("shares sum to %d, expense total is %d", sum, e.Amount)
	}

	if e.IsReversal() {
		target := l.findExpense(*e.Reverses)
		if target == nil {
			return ErrExpenseNotFound
		}
		if target.IsReversal() {
			return ErrReverseOfReverse
		}
		for _, prev := range l.expenses {
			if prev.IsReversal() && *prev.Reverses == *e.Reverses {
				return ErrAlreadyReversed
			}
		}
	}
	return nil
}

func (l *Ledger) validatePayment(p *Payment) error {
	if p.GroupID != l.group.ID {
		return ErrWrongGroup
	}
	if !p.Amount.IsPositive() {
		return money.ErrInvalidAmount
	}
	if p.PayerID == p.PayeeID {
		return ErrSelfPayment
	}
	if !l.group.IsMember(p.PayerID) {
		return fmt.Errorf("payer %s: %w", p.PayerID, group.ErrUnknownMember)
	}
	if !l.group.IsMember(p.PayeeID) {
		return fmt.Errorf("payee %s: %w", p.PayeeID, group.ErrUnknownMember)
	}
	return nil
}

// expenseDeltas computes the balance changes one expense entry causes over
// the given base map: every participant except the payer owes the payer
// their share, negated for reversing entries. Nothing is mutated until
// commit.
func (l *Ledger) expenseDeltas(base map[pair]money.Money, e *expense.Expense) (map[pair]money.Money, error) {
	sign := int64(1)
	if e.IsReversal() {
		sign = -1
	}
	deltas := make(map[pair]money.Money, len(e.Shares))
	for _, s := range e.Shares {
		if s.MemberID == e.PayerID {
			continue
		}
		delta, err := s.Amount.Mul(sign)
		if err != nil {
			return nil, err
		}
		if err := l.addDebt(base, deltas, s.MemberID, e.PayerID, delta); err != nil {
			return nil, err
		}
	}
	return deltas, nil
}

// addDebt stages "debtor owes creditor delta more" into deltas, canonicalized
// by member order and checked against the base values for overflow.
func (l *Ledger) addDebt(base, deltas map[pair]money.Money, debtorID, creditorID uuid.UUID, delta money.Money) error {
	di := l.group.MemberIndex(debtorID)
	ci := l.group.MemberIndex(creditorID)

	k := pair{di, ci}
	if di > ci {
		k = pair{ci, di}
		delta = delta.Neg()
	}

	staged, ok := deltas[k]
	if !ok {
		staged = base[k]
	}
	next, err := staged.Add(delta)
	if err != nil {
		return err
	}
	deltas[k] = next
	return nil
}

// commit applies fully staged balances; zero entries are dropped so the map
// only holds indebted pairs.
func (l *Ledger) commit(deltas map[pair]money.Money) {
	for k, v := range deltas {
		if v.IsZero() {
			delete(l.net, k)
		} else {
			l.net[k] = v
		}
	}
}

func (l *Ledger) findExpense(id uuid.UUID) *expense.Expense {
	for _, e := range l.expenses {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// replay recomputes the balance map from the full history. The incremental
// map must always equal this; tests hold the ledger to that property.
func (l *Ledger) replay() (map[pair]money.Money, error) {
	fresh := make(map[pair]money.Money)
	for _, e := range l.expenses {
		deltas, err := l.expenseDeltas(fresh, e)
		if err != nil {
			return nil, err
		}
		mergeInto(fresh, deltas)
	}
	for _, p := range l.payments {
		deltas := make(map[pair]money.Money, 1)
		if err := l.addDebt(fresh, deltas, p.PayerID, p.PayeeID, p.Amount.Neg()); err != nil {
			return nil, err
		}
		mergeInto(fresh, deltas)
	}
	return fresh, nil
}

func mergeInto(dst, deltas map[pair]money.Money) {
	for k, v := range deltas {
		if v.IsZero() {
			delete(dst, k)
		} else {
			dst[k] = v
		}
	}
}
