package ledger

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/group"
	"github.com/fkhayef/splitledger/internal/money"
)

func testGroup(t *testing.T, names ...string) *group.Group {
	t.Helper()
	members := make([]group.Member, len(names))
	for i, n := range names {
		members[i] = group.Member{ID: uuid.New(), Name: n}
	}
	g, err := group.New("Flat", "USD", members)
	if err != nil {
		t.Fatalf("group.New() error = %v", err)
	}
	return g
}

// addEqualExpense records an expense paid by member payerIdx, split equally
// among the members at participantIdxs.
func addEqualExpense(t *testing.T, l *Ledger, payerIdx int, amount money.Money, participantIdxs ...int) *expense.Expense {
	t.Helper()
	g := l.Group()
	in := make([]split.SplitInput, len(participantIdxs))
	for i, idx := range participantIdxs {
		in[i] = split.SplitInput{MemberID: g.Members[idx].ID}
	}
	e, err := expense.New(g, g.Members[payerIdx].ID, "expense", amount, &split.EqualStrategy{}, in)
	if err != nil {
		t.Fatalf("expense.New() error = %v", err)
	}
	if err := l.RecordExpense(e); err != nil {
		t.Fatalf("RecordExpense() error = %v", err)
	}
	return e
}

func addPayment(t *testing.T, l *Ledger, payerIdx, payeeIdx int, amount money.Money) {
	t.Helper()
	g := l.Group()
	p, err := NewPayment(g, g.Members[payerIdx].ID, g.Members[payeeIdx].ID, amount, "")
	if err != nil {
		t.Fatalf("NewPayment() error = %v", err)
	}
	if err := l.RecordPayment(p); err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
}

func position(t *testing.T, l *Ledger, idx int) money.Money {
	t.Helper()
	net, err := l.BalanceOf(l.Group().Members[idx].ID)
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}
	return net
}

// The dinner-party scenario: Alice pays 30.00 split three ways, then Bob
// pays 15.00 split between Bob and Carol.
func TestScenario(t *testing.T) {
	g := testGroup(t, "Alice", "Bob", "Carol")
	l := New(g)
	alice, bob, carol := g.Members[0].ID, g.Members[1].ID, g.Members[2].ID

	addEqualExpense(t, l, 0, 3000, 0, 1, 2)

	balances := l.NetBalances()
	want := []Balance{
		{DebtorID: bob, CreditorID: alice, Amount: 1000},
		{DebtorID: carol, CreditorID: alice, Amount: 1000},
	}
	if !reflect.DeepEqual(balances, want) {
		t.Fatalf("NetBalances() = %+v, want %+v", balances, want)
	}

	addEqualExpense(t, l, 1, 1500, 1, 2)

	balances = l.NetBalances()
	want = []Balance{
		{DebtorID: bob, CreditorID: alice, Amount: 1000},
		{DebtorID: carol, CreditorID: alice, Amount: 1000},
		{DebtorID: carol, CreditorID: bob, Amount: 750},
	}
	if !reflect.DeepEqual(balances, want) {
		t.Fatalf("NetBalances() = %+v, want %+v", balances, want)
	}

	// Alice is owed 20.00; Bob owes 10.00 but is owed 7.50; Carol owes both.
	if got := position(t, l, 0); got != 2000 {
		t.Errorf("Alice position = %d, want 2000", got)
	}
	if got := position(t, l, 1); got != -250 {
		t.Errorf("Bob position = %d, want -250", got)
	}
	if got := position(t, l, 2); got != -1750 {
		t.Errorf("Carol position = %d, want -1750", got)
	}
}

func TestPaymentReducesAndFlips(t *testing.T) {
	g := testGroup(t, "Alice", "Bob")
	l := New(g)

	addEqualExpense(t, l, 0, 2000, 0, 1) // Bob owes Alice 10.00
	addPayment(t, l, 1, 0, 400)          // partial

	balances := l.NetBalances()
	if len(balances) != 1 || balances[0].Amount != 600 ||
		balances[0].DebtorID != g.Members[1].ID {
		t.Fatalf("after partial payment: %+v", balances)
	}

	// Over-paying the remaining debt flips the direction.
	addPayment(t, l, 1, 0, 1000)
	balances = l.NetBalances()
	if len(balances) != 1 || balances[0].Amount != 400 ||
		balances[0].DebtorID != g.Members[0].ID {
		t.Fatalf("after over-payment: %+v", balances)
	}

	// Settling exactly clears the pair entirely.
	addPayment(t, l, 0, 1, 400)
	if balances = l.NetBalances(); len(balances) != 0 {
		t.Fatalf("after settling: %+v", balances)
	}
}

func TestRecordExpenseValidation(t *testing.T) {
	g := testGroup(t, "Alice", "Bob")
	other := testGroup(t, "Mallory")
	l := New(g)
	alice := g.Members[0].ID

	tests := []struct {
		name    string
		expense *expense.Expense
		cause   error
	}{
		{
			name:    "no participants",
			expense: &expense.Expense{ID: uuid.New(), GroupID: g.ID, PayerID: alice, Amount: 1000},
		},
		{
			name: "unknown participant",
			expense: &expense.Expense{ID: uuid.New(), GroupID: g.ID, PayerID: alice, Amount: 1000,
				Shares: []expense.Share{{MemberID: other.Members[0].ID, Amount: 1000}}},
			cause: group.ErrUnknownMember,
		},
		{
			name: "unknown payer",
			expense: &expense.Expense{ID: uuid.New(), GroupID: g.ID, PayerID: other.Members[0].ID, Amount: 1000,
				Shares: []expense.Share{{MemberID: alice, Amount: 1000}}},
			cause: group.ErrUnknownMember,
		},
		{
			name: "share sum mismatch",
			expense: &expense.Expense{ID: uuid.New(), GroupID: g.ID, PayerID: alice, Amount: 1000,
				Shares: []expense.Share{{MemberID: alice, Amount: 400}, {MemberID: g.Members[1].ID, Amount: 400}}},
		},
		{
			name: "non-positive amount",
			expense: &expense.Expense{ID: uuid.New(), GroupID: g.ID, PayerID: alice, Amount: 0,
				Shares: []expense.Share{{MemberID: alice, Amount: 0}}},
			cause: money.ErrInvalidAmount,
		},
		{
			name: "wrong group",
			expense: &expense.Expense{ID: uuid.New(), GroupID: other.ID, PayerID: alice, Amount: 1000,
				Shares: []expense.Share{{MemberID: alice, Amount: 1000}}},
			cause: ErrWrongGroup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.RecordExpense(tt.expense)
			if !errors.Is(err, ErrInvalidExpense) {
				t.Fatalf("RecordExpense() error = %v, want ErrInvalidExpense", err)
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Errorf("RecordExpense() error = %v, want cause %v", err, tt.cause)
			}
			// Rejected appends must leave no trace.
			if len(l.Expenses()) != 0 || len(l.NetBalances()) != 0 {
				t.Error("rejected expense mutated the ledger")
			}
		})
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	g := testGroup(t, "Alice", "Bob")
	l := New(g)
	alice, bob := g.Members[0].ID, g.Members[1].ID

	tests := []struct {
		name    string
		payment *Payment
		cause   error
	}{
		{
			name:    "zero amount",
			payment: &Payment{ID: uuid.New(), GroupID: g.ID, PayerID: alice, PayeeID: bob, Amount: 0},
			cause:   money.ErrInvalidAmount,
		},
		{
			name:    "self payment",
			payment: &Payment{ID: uuid.New(), GroupID: g.ID, PayerID: alice, PayeeID: alice, Amount: 100},
			cause:   ErrSelfPayment,
		},
		{
			name:    "unknown payee",
			payment: &Payment{ID: uuid.New(), GroupID: g.ID, PayerID: alice, PayeeID: uuid.New(), Amount: 100},
			cause:   group.ErrUnknownMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.RecordPayment(tt.payment)
			if !errors.Is(err, ErrInvalidPayment) || !errors.Is(err, tt.cause) {
				t.Errorf("RecordPayment() error = %v, want ErrInvalidPayment with cause %v", err, tt.cause)
			}
		})
	}

	// NewPayment enforces the same rules up front.
	if _, err := NewPayment(g, alice, alice, 100, ""); !errors.Is(err, ErrInvalidPayment) {
		t.Errorf("NewPayment(self) error = %v", err)
	}
}

func TestReverseExpense(t *testing.T) {
	g := testGroup(t, "Alice", "Bob", "Carol")
	l := New(g)

	e := addEqualExpense(t, l, 0, 3000, 0, 1, 2)
	keep := addEqualExpense(t, l, 1, 900, 0, 1, 2)

	rev, err := l.ReverseExpense(e.ID)
	if err != nil {
		t.Fatalf("ReverseExpense() error = %v", err)
	}
	if !rev.IsReversal() {
		t.Fatal("reversal not flagged")
	}

	// Only the second expense's debts remain.
	fresh := New(g)
	if err := fresh.RecordExpense(keep); err != nil {
		t.Fatalf("RecordExpense() error = %v", err)
	}
	if !reflect.DeepEqual(l.NetBalances(), fresh.NetBalances()) {
		t.Errorf("after reversal: %+v, want %+v", l.NetBalances(), fresh.NetBalances())
	}

	// History keeps all three entries.
	if got := len(l.Expenses()); got != 3 {
		t.Errorf("history has %d entries, want 3", got)
	}

	if _, err := l.ReverseExpense(e.ID); !errors.Is(err, ErrAlreadyReversed) {
		t.Errorf("second ReverseExpense() error = %v, want ErrAlreadyReversed", err)
	}
	if _, err := l.ReverseExpense(rev.ID); !errors.Is(err, ErrReverseOfReverse) {
		t.Errorf("ReverseExpense(reversal) error = %v, want ErrReverseOfReverse", err)
	}
	if _, err := l.ReverseExpense(uuid.New()); !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("ReverseExpense(unknown) error = %v, want ErrExpenseNotFound", err)
	}
}

func TestCounterpartyBalances(t *testing.T) {
	g := testGroup(t, "Alice", "Bob", "Carol")
	l := New(g)

	addEqualExpense(t, l, 0, 3000, 0, 1, 2)
	addEqualExpense(t, l, 1, 1500, 1, 2)

	// From Bob's perspective: Alice is owed 10.00 by him, Carol owes him 7.50.
	got, err := l.CounterpartyBalances(g.Members[1].ID)
	if err != nil {
		t.Fatalf("CounterpartyBalances() error = %v", err)
	}
	want := []Position{
		{MemberID: g.Members[0].ID, Net: -1000},
		{MemberID: g.Members[2].ID, Net: 750},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CounterpartyBalances(Bob) = %+v, want %+v", got, want)
	}

	if _, err := l.CounterpartyBalances(uuid.New()); !errors.Is(err, group.ErrUnknownMember) {
		t.Errorf("CounterpartyBalances(unknown) error = %v", err)
	}
}

// The incremental balance map must equal a full replay of the history, and
// the signed positions must sum to zero, for any sequence of operations.
func TestIncrementalEqualsReplay(t *testing.T) {
	g := testGroup(t, "Alice", "Bob", "Carol", "Dave", "Erin")
	l := New(g)
	rng := rand.New(rand.NewSource(7))

	for step := 0; step < 300; step++ {
		if rng.Intn(3) == 0 && step > 0 {
			payer := rng.Intn(len(g.Members))
			payee := rng.Intn(len(g.Members))
			if payer == payee {
				continue
			}
			addPayment(t, l, payer, payee, money.Money(1+rng.Intn(5000)))
		} else {
			payer := rng.Intn(len(g.Members))
			n := 1 + rng.Intn(len(g.Members))
			idxs := rng.Perm(len(g.Members))[:n]
			addEqualExpense(t, l, payer, money.Money(1+rng.Intn(10000)), idxs...)
		}

		replayed, err := l.replay()
		if err != nil {
			t.Fatalf("step %d: replay() error = %v", step, err)
		}
		normalize := func(m map[pair]money.Money) map[pair]money.Money {
			out := make(map[pair]money.Money, len(m))
			for k, v := range m {
				if !v.IsZero() {
					out[k] = v
				}
			}
			return out
		}
		if !reflect.DeepEqual(normalize(l.net), normalize(replayed)) {
			t.Fatalf("step %d: incremental %+v != replay %+v", step, l.net, replayed)
		}

		var sum money.Money
		for _, p := range l.Positions() {
			sum += p.Net
		}
		if !sum.IsZero() {
			t.Fatalf("step %d: positions sum to %d", step, sum)
		}
	}
}

func TestBalanceOfMatchesNetBalances(t *testing.T) {
	g := testGroup(t, "Alice", "Bob", "Carol", "Dave")
	l := New(g)

	addEqualExpense(t, l, 0, 4000, 0, 1, 2, 3)
	addEqualExpense(t, l, 2, 999, 1, 2, 3)
	addPayment(t, l, 1, 0, 500)

	// Aggregating the canonical pairwise snapshot per member must equal
	// BalanceOf for every member.
	agg := make(map[uuid.UUID]money.Money)
	for _, b := range l.NetBalances() {
		agg[b.DebtorID] -= b.Amount
		agg[b.CreditorID] += b.Amount
	}
	for _, m := range g.Members {
		want := agg[m.ID]
		got, err := l.BalanceOf(m.ID)
		if err != nil {
			t.Fatalf("BalanceOf() error = %v", err)
		}
		if got != want {
			t.Errorf("BalanceOf(%s) = %d, aggregated %d", m.Name, got, want)
		}
	}

	if _, err := l.BalanceOf(uuid.New()); !errors.Is(err, group.ErrUnknownMember) {
		t.Errorf("BalanceOf(unknown) error = %v", err)
	}
}

func TestNetBalancesDeterministic(t *testing.T) {
	g := testGroup(t, "Alice", "Bob", "Carol", "Dave")
	l := New(g)
	addEqualExpense(t, l, 0, 4001, 0, 1, 2, 3)
	addEqualExpense(t, l, 3, 2003, 0, 1, 2, 3)

	first := l.NetBalances()
	for i := 0; i < 20; i++ {
		if !reflect.DeepEqual(first, l.NetBalances()) {
			t.Fatal("NetBalances() order changed between calls")
		}
	}
}
