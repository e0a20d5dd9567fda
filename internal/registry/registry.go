// Package registry orchestrates the accounting core for callers: it keeps
// one live ledger per group, loads them from the snapshot store on first
// touch and writes a fresh snapshot after every mutation.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/ledger"
	"github.com/fkhayef/splitledger/internal/money"
	"github.com/fkhayef/splitledger/internal/snapshot"
)

// Common errors
var (
	ErrGroupNotFound = errors.New("group not found")
)

// Registry is the single entry point callers use to reach a group's ledger.
// Loads are cached; a group whose persisted snapshot fails validation is
// refused entirely rather than repaired.
type Registry struct {
	store   snapshot.Store
	factory *split.Factory

	mu      sync.Mutex
	ledgers map[uuid.UUID]*ledger.Ledger
}

// New creates a registry over the given snapshot store.
func New(store snapshot.Store, factory *split.Factory) *Registry {
	return &Registry{
		store:   store,
		factory: factory,
		ledgers: make(map[uuid.UUID]*ledger.Ledger),
	}
}

// CreateGroup validates the member list, creates the group with its declared
// member order and persists the initial empty snapshot.
func (r *Registry) CreateGroup(ctx context.Context, name, currency string, members []group.Member) (*group.Group, error) {
	g, err := group.New(name, currency, members)
	if err != nil {
		return nil, err
	}

	l := ledger.New(g)
	if err := r.store.Save(ctx, snapshot.Capture(l)); err != nil {
		return nil, fmt.Errorf("persist group: %w", err)
	}

	r.mu.Lock()
	r.ledgers[g.ID] = l
	r.mu.Unlock()

	slog.Info("group created", "group_id", g.ID, "members", len(g.Members), "currency", currency)
	return g, nil
}

// Ledger returns the live ledger for a group, restoring it from the store
// on first access. A snapshot that fails invariant validation makes the
// group unusable for the session; the error carries snapshot.ErrCorrupt.
func (r *Registry) Ledger(ctx context.Context, groupID uuid.UUID) (*ledger.Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ledgerLocked(ctx, groupID)
}

func (r *Registry) ledgerLocked(ctx context.Context, groupID uuid.UUID) (*ledger.Ledger, error) {
	if l, ok := r.ledgers[groupID]; ok {
		return l, nil
	}

	snap, err := r.store.Load(ctx, groupID)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	l, err := snapshot.Restore(snap, r.factory)
	if err != nil {
		slog.Error("snapshot rejected", "group_id", groupID, "error", err)
		return nil, err
	}

	r.ledgers[groupID] = l
	return l, nil
}

// GroupIDs lists all known groups.
func (r *Registry) GroupIDs(ctx context.Context) ([]uuid.UUID, error) {
	return r.store.ListGroupIDs(ctx)
}

// AddExpense resolves the split, records the expense and persists the
// updated snapshot.
func (r *Registry) AddExpense(ctx context.Context, groupID, payerID uuid.UUID, description string, amount money.Money, splitType string, participants []split.SplitInput) (*expense.Expense, error) {
	l, err := r.Ledger(ctx, groupID)
	if err != nil {
		return nil, err
	}

	strategy, err := r.factory.CreateFromString(splitType)
	if err != nil {
		return nil, err
	}

	e, err := expense.New(l.Group(), payerID, description, amount, strategy, participants)
	if err != nil {
		return nil, err
	}
	if err := l.RecordExpense(e); err != nil {
		return nil, err
	}

	if err := r.persist(ctx, l); err != nil {
		return nil, err
	}
	slog.Info("expense recorded", "group_id", groupID, "expense_id", e.ID,
		"amount_minor", int64(e.Amount), "split_type", splitType)
	return e, nil
}

// ReverseExpense appends a reversing entry for the expense and persists the
// updated snapshot.
func (r *Registry) ReverseExpense(ctx context.Context, groupID, expenseID uuid.UUID) (*expense.Expense, error) {
	l, err := r.Ledger(ctx, groupID)
	if err != nil {
		return nil, err
	}

	rev, err := l.ReverseExpense(expenseID)
	if err != nil {
		return nil, err
	}

	if err := r.persist(ctx, l); err != nil {
		return nil, err
	}
	slog.Info("expense reversed", "group_id", groupID, "expense_id", expenseID, "reversal_id", rev.ID)
	return rev, nil
}

// AddPayment records a settlement payment and persists the updated snapshot.
func (r *Registry) AddPayment(ctx context.Context, groupID, payerID, payeeID uuid.UUID, amount money.Money, note string) (*ledger.Payment, error) {
	l, err := r.Ledger(ctx, groupID)
	if err != nil {
		return nil, err
	}

	p, err := ledger.NewPayment(l.Group(), payerID, payeeID, amount, note)
	if err != nil {
		return nil, err
	}
	if err := l.RecordPayment(p); err != nil {
		return nil, err
	}

	if err := r.persist(ctx, l); err != nil {
		return nil, err
	}
	slog.Info("payment recorded", "group_id", groupID, "payment_id", p.ID,
		"amount_minor", int64(p.Amount))
	return p, nil
}

func (r *Registry) persist(ctx context.Context, l *ledger.Ledger) error {
	if err := r.store.Save(ctx, snapshot.Capture(l)); err != nil {
		// The in-memory ledger stays consistent; the caller decides whether
		// a failed save is fatal.
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}
