package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budget/internal/core"
)

func testClock() func() time.Time {
	fixed := time.Date(2025, 7, 15, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return fixed }
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{
		Path:  filepath.Join(t.TempDir(), "ledger.json"),
		Clock: testClock(),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func mustAdd(t *testing.T, s *Store, p AddParams) core.Transaction {
	t.Helper()
	tx, err := s.Add(context.Background(), p)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	return tx
}

func TestAddThenGetReturnsSuppliedFields(t *testing.T) {
	s := openTestStore(t)

	tx := mustAdd(t, s, AddParams{
		Name:        "dinner",
		Amount:      core.Money{Cents: 4250},
		Category:    core.Food,
		Type:        core.Expense,
		Description: "team dinner",
		Tags:        []string{"work", "food"},
		Date:        core.NewDate(2025, 7, 10),
	})

	if tx.ID == "" || len(tx.ID) != 8 {
		t.Fatalf("expected 8-char id, got %q", tx.ID)
	}
	got, ok := s.Get(tx.ID)
	if !ok {
		t.Fatalf("transaction %s not found", tx.ID)
	}
	if got.Name != "dinner" || got.Amount.Cents != 4250 || got.Category != core.Food ||
		got.Type != core.Expense || got.Description != "team dinner" {
		t.Fatalf("fields do not match: %+v", got)
	}
	if got.Date.String() != "2025-07-10" {
		t.Fatalf("expected supplied date, got %s", got.Date)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "work" || got.Tags[1] != "food" {
		t.Fatalf("tags do not match: %v", got.Tags)
	}
}

func TestAddDefaultsDateAndTags(t *testing.T) {
	s := openTestStore(t)

	tx := mustAdd(t, s, AddParams{
		Name:     "paycheck",
		Amount:   core.Money{Cents: 500000},
		Category: core.Salary,
		Type:     core.Income,
	})

	if tx.Date.String() != "2025-07-15" {
		t.Fatalf("expected clock date, got %s", tx.Date)
	}
	if tx.Tags == nil || len(tx.Tags) != 0 {
		t.Fatalf("expected empty non-nil tags, got %#v", tx.Tags)
	}
}

func TestAddRejectsInvalidInputWithoutMutation(t *testing.T) {
	s := openTestStore(t)

	bads := []AddParams{
		{Name: "x", Amount: core.Money{Cents: 0}, Category: core.Food, Type: core.Expense},
		{Name: "x", Amount: core.Money{Cents: -50}, Category: core.Food, Type: core.Expense},
		{Name: "", Amount: core.Money{Cents: 100}, Category: core.Food, Type: core.Expense},
		{Name: "x", Amount: core.Money{Cents: 100}, Category: "Misc", Type: core.Expense},
		{Name: "x", Amount: core.Money{Cents: 100}, Category: core.Food, Type: "transfer"},
	}
	for i, p := range bads {
		if _, err := s.Add(context.Background(), p); err == nil {
			t.Fatalf("case %d expected validation error", i)
		}
		if s.Len() != 0 {
			t.Fatalf("case %d mutated the collection", i)
		}
	}
	if !errors.Is(validationErr(s, bads[0]), core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for non-positive amount")
	}
}

func validationErr(s *Store, p AddParams) error {
	_, err := s.Add(context.Background(), p)
	return err
}

func TestRemove(t *testing.T) {
	s := openTestStore(t)
	tx := mustAdd(t, s, AddParams{Name: "a", Amount: core.Money{Cents: 100}, Category: core.Food, Type: core.Expense})

	ok, err := s.Remove(context.Background(), tx.ID)
	if err != nil || !ok {
		t.Fatalf("expected removal, got ok=%v err=%v", ok, err)
	}
	if _, found := s.Get(tx.ID); found {
		t.Fatalf("transaction still present after removal")
	}

	ok, err = s.Remove(context.Background(), "nope1234")
	if err != nil || ok {
		t.Fatalf("expected false for unknown id, got ok=%v err=%v", ok, err)
	}
	if s.Len() != 0 {
		t.Fatalf("unexpected size change")
	}
}

func TestRemovedIDNeverReissued(t *testing.T) {
	s := openTestStore(t)
	tx := mustAdd(t, s, AddParams{Name: "a", Amount: core.Money{Cents: 100}, Category: core.Food, Type: core.Expense})
	if _, err := s.Remove(context.Background(), tx.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	for i := 0; i < 100; i++ {
		next := mustAdd(t, s, AddParams{Name: "b", Amount: core.Money{Cents: 100}, Category: core.Food, Type: core.Expense})
		if next.ID == tx.ID {
			t.Fatalf("removed id %s was reissued", tx.ID)
		}
	}
}

func TestBalanceIdentity(t *testing.T) {
	s := openTestStore(t)

	mustAdd(t, s, AddParams{Name: "salary", Amount: core.Money{Cents: 500000}, Category: core.Salary, Type: core.Income})
	mustAdd(t, s, AddParams{Name: "lunch", Amount: core.Money{Cents: 15000}, Category: core.Food, Type: core.Expense})
	mustAdd(t, s, AddParams{Name: "bus", Amount: core.Money{Cents: 250}, Category: core.Transportation, Type: core.Expense})
	removed := mustAdd(t, s, AddParams{Name: "refunded", Amount: core.Money{Cents: 999}, Category: core.Shopping, Type: core.Expense})
	if _, err := s.Remove(context.Background(), removed.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	income := s.TotalIncome()
	expenses := s.TotalExpenses()
	balance := s.Balance()
	if balance.Cents != income.Cents-expenses.Cents {
		t.Fatalf("balance %d != income %d - expenses %d", balance.Cents, income.Cents, expenses.Cents)
	}
	if income.Cents != 500000 || expenses.Cents != 15250 {
		t.Fatalf("unexpected totals: income=%d expenses=%d", income.Cents, expenses.Cents)
	}
}

func TestConcreteBalanceScenario(t *testing.T) {
	s := openTestStore(t)

	mustAdd(t, s, AddParams{Name: "monthly salary", Amount: core.Money{Cents: 500000}, Category: core.Salary, Type: core.Income})
	mustAdd(t, s, AddParams{Name: "groceries", Amount: core.Money{Cents: 15000}, Category: core.Food, Type: core.Expense})

	if got := s.TotalIncome(); got.String() != "5000.00" {
		t.Fatalf("total income = %s, want 5000.00", got)
	}
	if got := s.TotalExpenses(); got.String() != "150.00" {
		t.Fatalf("total expenses = %s, want 150.00", got)
	}
	if got := s.Balance(); got.String() != "4850.00" {
		t.Fatalf("balance = %s, want 4850.00", got)
	}

	// Both transactions default to the clock date, July 2025.
	summary, err := s.MonthlySummary(2025, 7)
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}
	if summary.TransactionCount != 2 {
		t.Fatalf("transaction count = %d, want 2", summary.TransactionCount)
	}
}

func TestByCategoryPreservesInsertionOrder(t *testing.T) {
	s := openTestStore(t)

	first := mustAdd(t, s, AddParams{Name: "breakfast", Amount: core.Money{Cents: 800}, Category: core.Food, Type: core.Expense})
	mustAdd(t, s, AddParams{Name: "train", Amount: core.Money{Cents: 1200}, Category: core.Transportation, Type: core.Expense})
	second := mustAdd(t, s, AddParams{Name: "dinner", Amount: core.Money{Cents: 3000}, Category: core.Food, Type: core.Expense})

	got := s.ByCategory(core.Food)
	if len(got) != 2 {
		t.Fatalf("expected 2 food transactions, got %d", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatalf("insertion order not preserved: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestByDateRangeInclusive(t *testing.T) {
	s := openTestStore(t)

	edges := []core.Date{
		core.NewDate(2025, 6, 1),
		core.NewDate(2025, 6, 30),
		core.NewDate(2025, 5, 31),
		core.NewDate(2025, 7, 1),
	}
	for _, d := range edges {
		mustAdd(t, s, AddParams{Name: "tx", Amount: core.Money{Cents: 100}, Category: core.Food, Type: core.Expense, Date: d})
	}

	got := s.ByDateRange(core.NewDate(2025, 6, 1), core.NewDate(2025, 6, 30))
	if len(got) != 2 {
		t.Fatalf("expected both boundary dates included, got %d transactions", len(got))
	}
}

func TestMonthlySummaryWindows(t *testing.T) {
	s := openTestStore(t)

	// December window must end on Dec 31, not roll into January.
	mustAdd(t, s, AddParams{Name: "nye", Amount: core.Money{Cents: 5000}, Category: core.Entertainment, Type: core.Expense, Date: core.NewDate(2025, 12, 31)})
	mustAdd(t, s, AddParams{Name: "nyd", Amount: core.Money{Cents: 7000}, Category: core.Entertainment, Type: core.Expense, Date: core.NewDate(2026, 1, 1)})

	dec, err := s.MonthlySummary(2025, 12)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if dec.TransactionCount != 1 || dec.Expenses.Cents != 5000 {
		t.Fatalf("december window wrong: count=%d expenses=%d", dec.TransactionCount, dec.Expenses.Cents)
	}

	// A 30-day month must not include the 1st of the next month.
	mustAdd(t, s, AddParams{Name: "apr", Amount: core.Money{Cents: 100}, Category: core.Food, Type: core.Expense, Date: core.NewDate(2025, 4, 30)})
	mustAdd(t, s, AddParams{Name: "may", Amount: core.Money{Cents: 200}, Category: core.Food, Type: core.Expense, Date: core.NewDate(2025, 5, 1)})
	apr, err := s.MonthlySummary(2025, 4)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if apr.TransactionCount != 1 || apr.Expenses.Cents != 100 {
		t.Fatalf("april window wrong: count=%d expenses=%d", apr.TransactionCount, apr.Expenses.Cents)
	}

	if _, err := s.MonthlySummary(2025, 13); err == nil {
		t.Fatalf("expected error for month 13")
	}
	if _, err := s.MonthlySummary(2025, 0); err == nil {
		t.Fatalf("expected error for month 0")
	}
}

func TestMonthlySummaryCategoryBreakdownExcludesIncome(t *testing.T) {
	s := openTestStore(t)
	date := core.NewDate(2025, 7, 10)

	mustAdd(t, s, AddParams{Name: "salary", Amount: core.Money{Cents: 500000}, Category: core.Salary, Type: core.Income, Date: date})
	mustAdd(t, s, AddParams{Name: "lunch", Amount: core.Money{Cents: 1500}, Category: core.Food, Type: core.Expense, Date: date})
	mustAdd(t, s, AddParams{Name: "dinner", Amount: core.Money{Cents: 2500}, Category: core.Food, Type: core.Expense, Date: date})
	mustAdd(t, s, AddParams{Name: "bus", Amount: core.Money{Cents: 250}, Category: core.Transportation, Type: core.Expense, Date: date})

	summary, err := s.MonthlySummary(2025, 7)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Income.Cents != 500000 || summary.Expenses.Cents != 4250 {
		t.Fatalf("totals wrong: %+v", summary)
	}
	if summary.Balance.Cents != 495750 {
		t.Fatalf("balance = %d, want 495750", summary.Balance.Cents)
	}
	if len(summary.CategoryTotals) != 2 {
		t.Fatalf("expected 2 expense categories, got %d", len(summary.CategoryTotals))
	}
	if summary.CategoryTotals[0].Category != core.Food || summary.CategoryTotals[0].Amount.Cents != 4000 {
		t.Fatalf("food total wrong: %+v", summary.CategoryTotals[0])
	}
	if summary.CategoryTotals[1].Category != core.Transportation || summary.CategoryTotals[1].Amount.Cents != 250 {
		t.Fatalf("transportation total wrong: %+v", summary.CategoryTotals[1])
	}
}
