package registry

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/snapshot"
)

func newTestRegistry() (*Registry, *snapshot.MemoryStore) {
	store := snapshot.NewMemoryStore()
	return New(store, split.NewSplitStrategyFactory()), store
}

func testMembers(names ...string) []group.Member {
	members := make([]group.Member, len(names))
	for i, n := range names {
		members[i] = group.Member{ID: uuid.New(), Name: n}
	}
	return members
}

func TestCreateGroupAndReload(t *testing.T) {
	ctx := context.Background()
	reg, store := newTestRegistry()

	g, err := reg.CreateGroup(ctx, "Trip", "USD", testMembers("Alice", "Bob", "Carol"))
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	participants := []split.SplitInput{
		{MemberID: g.Members[0].ID},
		{MemberID: g.Members[1].ID},
		{MemberID: g.Members[2].ID},
	}
	if _, err := reg.AddExpense(ctx, g.ID, g.Members[0].ID, "Dinner", 3000, "EQUAL", participants); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	if _, err := reg.AddPayment(ctx, g.ID, g.Members[1].ID, g.Members[0].ID, 1000, ""); err != nil {
		t.Fatalf("AddPayment() error = %v", err)
	}

	l, err := reg.Ledger(ctx, g.ID)
	if err != nil {
		t.Fatalf("Ledger() error = %v", err)
	}

	// A fresh registry over the same store must restore identical state.
	fresh := New(store, split.NewSplitStrategyFactory())
	reloaded, err := fresh.Ledger(ctx, g.ID)
	if err != nil {
		t.Fatalf("fresh Ledger() error = %v", err)
	}
	if !reflect.DeepEqual(reloaded.NetBalances(), l.NetBalances()) {
		t.Errorf("reloaded balances %+v, want %+v", reloaded.NetBalances(), l.NetBalances())
	}
	if !reflect.DeepEqual(reloaded.Group(), l.Group()) {
		t.Error("reloaded group differs")
	}
}

func TestUnknownGroup(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry()

	if _, err := reg.Ledger(ctx, uuid.New()); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("Ledger(unknown) error = %v, want ErrGroupNotFound", err)
	}
	if _, err := reg.AddPayment(ctx, uuid.New(), uuid.New(), uuid.New(), 100, ""); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("AddPayment(unknown group) error = %v, want ErrGroupNotFound", err)
	}
}

func TestAddExpenseValidation(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry()

	g, err := reg.CreateGroup(ctx, "Flat", "EUR", testMembers("Alice", "Bob"))
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}

	// Unknown split type never touches the ledger.
	if _, err := reg.AddExpense(ctx, g.ID, g.Members[0].ID, "x", 100, "VIBES", nil); err == nil {
		t.Error("AddExpense() with unknown split type expected error")
	}

	// Percentages that do not sum to 100% are rejected.
	bps := []int64{3300, 3300}
	participants := []split.SplitInput{
		{MemberID: g.Members[0].ID, PercentBps: &bps[0]},
		{MemberID: g.Members[1].ID, PercentBps: &bps[1]},
	}
	_, err = reg.AddExpense(ctx, g.ID, g.Members[0].ID, "x", 1000, "PERCENTAGE", participants)
	if !errors.Is(err, split.ErrInvalidPercentage) {
		t.Fatalf("AddExpense() error = %v, want ErrInvalidPercentage", err)
	}

	l, err := reg.Ledger(ctx, g.ID)
	if err != nil {
		t.Fatalf("Ledger() error = %v", err)
	}
	if len(l.Expenses()) != 0 {
		t.Error("rejected expense was recorded")
	}
}

func TestReverseExpensePersists(t *testing.T) {
	ctx := context.Background()
	reg, store := newTestRegistry()

	g, err := reg.CreateGroup(ctx, "Trip", "USD", testMembers("Alice", "Bob"))
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	participants := []split.SplitInput{
		{MemberID: g.Members[0].ID},
		{MemberID: g.Members[1].ID},
	}
	e, err := reg.AddExpense(ctx, g.ID, g.Members[0].ID, "Taxi", 900, "EQUAL", participants)
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	if _, err := reg.ReverseExpense(ctx, g.ID, e.ID); err != nil {
		t.Fatalf("ReverseExpense() error = %v", err)
	}

	fresh := New(store, split.NewSplitStrategyFactory())
	reloaded, err := fresh.Ledger(ctx, g.ID)
	if err != nil {
		t.Fatalf("fresh Ledger() error = %v", err)
	}
	if got := len(reloaded.NetBalances()); got != 0 {
		t.Errorf("reversed expense still shows %d balances after reload", got)
	}
	if got := len(reloaded.Expenses()); got != 2 {
		t.Errorf("history has %d entries after reload, want 2", got)
	}
}

// A store that hands back tampered data must make the group unusable.
func TestCorruptSnapshotIsFatal(t *testing.T) {
	ctx := context.Background()
	reg, store := newTestRegistry()

	g, err := reg.CreateGroup(ctx, "Trip", "USD", testMembers("Alice", "Bob"))
	if err != nil {
		t.Fatalf("CreateGroup() error = %v", err)
	}
	participants := []split.SplitInput{
		{MemberID: g.Members[0].ID},
		{MemberID: g.Members[1].ID},
	}
	if _, err := reg.AddExpense(ctx, g.ID, g.Members[0].ID, "Dinner", 3000, "EQUAL", participants); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	snap, err := store.Load(ctx, g.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	snap.Expenses[0].Shares[0].AmountMinor += 7
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	fresh := New(store, split.NewSplitStrategyFactory())
	if _, err := fresh.Ledger(ctx, g.ID); !errors.Is(err, snapshot.ErrCorrupt) {
		t.Errorf("Ledger() error = %v, want snapshot.ErrCorrupt", err)
	}
}
