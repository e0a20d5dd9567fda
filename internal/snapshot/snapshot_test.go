package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/ledger"
	"github.com/fkhayef/splitledger/internal/money"
)

var factory = split.NewSplitStrategyFactory()

func populatedLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	members := []group.Member{
		{ID: uuid.New(), Name: "Alice"},
		{ID: uuid.New(), Name: "Bob"},
		{ID: uuid.New(), Name: "Carol"},
	}
	g, err := group.New("Trip", "EUR", members)
	if err != nil {
		t.Fatalf("group.New() error = %v", err)
	}
	l := ledger.New(g)

	in := make([]split.SplitInput, len(members))
	for i, m := range members {
		in[i] = split.SplitInput{MemberID: m.ID}
	}
	e, err := expense.New(g, members[0].ID, "Hotel", 10000, &split.EqualStrategy{}, in)
	if err != nil {
		t.Fatalf("expense.New() error = %v", err)
	}
	if err := l.RecordExpense(e); err != nil {
		t.Fatalf("RecordExpense() error = %v", err)
	}
	if _, err := l.ReverseExpense(e.ID); err != nil {
		t.Fatalf("ReverseExpense() error = %v", err)
	}

	weights := []int64{2, 1, 1}
	for i := range in {
		in[i].Shares = &weights[i]
	}
	e2, err := expense.New(g, members[1].ID, "Fuel", 4321, &split.SharesStrategy{}, in)
	if err != nil {
		t.Fatalf("expense.New() error = %v", err)
	}
	if err := l.RecordExpense(e2); err != nil {
		t.Fatalf("RecordExpense() error = %v", err)
	}

	p, err := ledger.NewPayment(g, members[2].ID, members[1].ID, 500, "partial")
	if err != nil {
		t.Fatalf("NewPayment() error = %v", err)
	}
	if err := l.RecordPayment(p); err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	return l
}

// A snapshot must survive capture -> JSON -> restore with every balance and
// every history entry intact, amounts exact.
func TestRoundTrip(t *testing.T) {
	l := populatedLedger(t)
	snap := Capture(l)

	blob, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal error = %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(blob, &decoded); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}

	restored, err := Restore(&decoded, factory)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	if !reflect.DeepEqual(restored.Group(), l.Group()) {
		t.Error("group did not round-trip")
	}
	if !reflect.DeepEqual(restored.NetBalances(), l.NetBalances()) {
		t.Errorf("balances: %+v, want %+v", restored.NetBalances(), l.NetBalances())
	}
	if !reflect.DeepEqual(restored.Positions(), l.Positions()) {
		t.Errorf("positions: %+v, want %+v", restored.Positions(), l.Positions())
	}
	if len(restored.Expenses()) != len(l.Expenses()) || len(restored.Payments()) != len(l.Payments()) {
		t.Error("history length changed across round-trip")
	}
}

func TestRestoreRejectsCorruption(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{
			name: "tampered share sum",
			mutate: func(s *Snapshot) {
				s.Expenses[0].Shares[0].AmountMinor += 1
			},
		},
		{
			name: "unknown participant",
			mutate: func(s *Snapshot) {
				s.Expenses[0].Shares[0].MemberID = uuid.New()
			},
		},
		{
			name: "unknown payment payee",
			mutate: func(s *Snapshot) {
				s.Payments[0].PayeeID = uuid.New()
			},
		},
		{
			name: "negative payment",
			mutate: func(s *Snapshot) {
				s.Payments[0].AmountMinor = -500
			},
		},
		{
			name: "duplicate member",
			mutate: func(s *Snapshot) {
				s.Group.Members[1].ID = s.Group.Members[0].ID
			},
		},
		{
			name: "nameless group",
			mutate: func(s *Snapshot) {
				s.Group.Name = ""
			},
		},
		{
			name: "missing currency",
			mutate: func(s *Snapshot) {
				s.Group.Currency = ""
			},
		},
		{
			name: "unknown split type",
			mutate: func(s *Snapshot) {
				s.Expenses[0].SplitType = "VIBES"
			},
		},
		{
			name: "dangling reversal",
			mutate: func(s *Snapshot) {
				bogus := uuid.New()
				s.Expenses[1].Reverses = &bogus
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Capture(populatedLedger(t))
			tt.mutate(snap)
			if _, err := Restore(snap, factory); !errors.Is(err, ErrCorrupt) {
				t.Errorf("Restore() error = %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	l := populatedLedger(t)
	snap := Capture(l)

	if _, err := store.Load(ctx, snap.Group.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load(missing) error = %v, want ErrNotFound", err)
	}

	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := store.Load(ctx, snap.Group.ID)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	restored, err := Restore(loaded, factory)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !reflect.DeepEqual(restored.NetBalances(), l.NetBalances()) {
		t.Error("balances changed across store round-trip")
	}

	ids, err := store.ListGroupIDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != snap.Group.ID {
		t.Errorf("ListGroupIDs() = %v, %v", ids, err)
	}
}

// Money must survive as exact integers even for amounts that have no exact
// float64 representation in major units.
func TestMoneyStaysExact(t *testing.T) {
	members := []group.Member{
		{ID: uuid.New(), Name: "Alice"},
		{ID: uuid.New(), Name: "Bob"},
	}
	g, err := group.New("Precision", "USD", members)
	if err != nil {
		t.Fatalf("group.New() error = %v", err)
	}
	l := ledger.New(g)

	// 90071992547409.93 in cents: not representable as a float64 of cents.
	const awkward = money.Money(9007199254740993)
	in := []split.SplitInput{{MemberID: members[0].ID}, {MemberID: members[1].ID}}
	e, err := expense.New(g, members[0].ID, "big", awkward, &split.EqualStrategy{}, in)
	if err != nil {
		t.Fatalf("expense.New() error = %v", err)
	}
	if err := l.RecordExpense(e); err != nil {
		t.Fatalf("RecordExpense() error = %v", err)
	}

	blob, err := json.Marshal(Capture(l))
	if err != nil {
		t.Fatalf("marshal error = %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(blob, &decoded); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}
	if decoded.Expenses[0].AmountMinor != int64(awkward) {
		t.Errorf("amount = %d, want %d", decoded.Expenses[0].AmountMinor, int64(awkward))
	}
}
