// Package ledger implements the transaction store: an in-memory,
// insertion-ordered collection persisted to a single JSON file after
// every mutation, plus the read-side aggregations derived from it.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"budget/internal/core"

	"github.com/google/uuid"
)

// Options configures a Store.
type Options struct {
	// Path of the backing JSON file.
	Path string
	// StrictLoad makes construction fail on a corrupt backing file
	// instead of renaming it aside and starting empty.
	StrictLoad bool
	// Clock overrides the process clock, for tests. Defaults to time.Now.
	Clock func() time.Time
}

// Store owns the ledger. One instance per process; all operations are
// guarded by a single mutex so concurrent HTTP handlers can share it.
type Store struct {
	mu     sync.Mutex
	path   string
	now    func() time.Time
	items  []core.Transaction
	issued map[string]struct{} // every id ever seen; removed ids stay
}

// AddParams carries the caller-supplied fields of a new transaction.
type AddParams struct {
	Name        string
	Amount      core.Money
	Category    core.Category
	Type        core.TransactionType
	Description string
	Tags        []string
	Date        core.Date // zero value defaults to today
}

// Open loads the ledger from opts.Path. A missing file yields an empty
// ledger; a corrupt one is renamed aside with a warning unless
// StrictLoad is set.
func Open(opts Options) (*Store, error) {
	s := &Store{
		path:   opts.Path,
		now:    opts.Clock,
		issued: make(map[string]struct{}),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if err := s.load(opts.StrictLoad); err != nil {
		return nil, err
	}
	return s, nil
}

// Add validates, assigns an id and date default, appends and persists.
// No mutation happens when validation fails. On a persistence failure
// the in-memory append is kept and the error is returned alongside the
// already-recorded transaction.
func (s *Store) Add(ctx context.Context, p AddParams) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := p.Date
	if date.IsZero() {
		date = core.DateOf(s.now())
	}
	tags := make([]string, len(p.Tags))
	copy(tags, p.Tags)

	tx := core.Transaction{
		Name:        p.Name,
		Amount:      p.Amount,
		Category:    p.Category,
		Type:        p.Type,
		Date:        date,
		Description: p.Description,
		Tags:        tags,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.ID = s.newID()

	s.items = append(s.items, tx)
	if err := s.persist(); err != nil {
		return tx, fmt.Errorf("persist ledger: %w", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", tx.ID,
		"name", tx.Name,
		"amount", tx.Amount.String(),
		"category", string(tx.Category),
		"type", string(tx.Type),
		"date", tx.Date.String())

	return tx, nil
}

// Remove deletes a transaction by id and persists. Returns false, with
// no mutation and no file write, when the id is unknown.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, tx := range s.items {
		if tx.ID != id {
			continue
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		if err := s.persist(); err != nil {
			return true, fmt.Errorf("persist ledger: %w", err)
		}
		slog.InfoContext(ctx, "Transaction removed", "id", id)
		return true, nil
	}
	return false, nil
}

// Get looks up a transaction by id.
func (s *Store) Get(id string) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range s.items {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

// Transactions returns a copy of the full ledger in insertion order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports the number of recorded transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TotalIncome sums all income amounts.
func (s *Store) TotalIncome() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalByType(core.Income)
}

// TotalExpenses sums all expense amounts.
func (s *Store) TotalExpenses() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalByType(core.Expense)
}

// Balance is total income minus total expenses. It may be negative.
func (s *Store) Balance() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Money{Cents: s.totalByType(core.Income).Cents - s.totalByType(core.Expense).Cents}
}

func (s *Store) totalByType(tt core.TransactionType) core.Money {
	var cents int64
	for _, tx := range s.items {
		if tx.Type == tt {
			cents += tx.Amount.Cents
		}
	}
	return core.Money{Cents: cents}
}

// ByCategory returns all transactions with the given category, in
// insertion order.
func (s *Store) ByCategory(c core.Category) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, tx := range s.items {
		if tx.Category == c {
			out = append(out, tx)
		}
	}
	return out
}

// ByDateRange returns all transactions dated within [start, end],
// inclusive on both ends.
func (s *Store) ByDateRange(start, end core.Date) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byDateRange(start, end)
}

func (s *Store) byDateRange(start, end core.Date) []core.Transaction {
	var out []core.Transaction
	for _, tx := range s.items {
		if tx.Date.Between(start, end) {
			out = append(out, tx)
		}
	}
	return out
}

// MonthlySummary aggregates one calendar month. The window runs from the
// first to the last day of the month; time.Date normalizes month+1 in
// December to January of the next year.
func (s *Store) MonthlySummary(year, month int) (core.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return core.MonthlySummary{}, fmt.Errorf("invalid month %d: must be between 1 and 12", month)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := core.NewDate(year, month, 1)
	end := core.DateOf(core.NewDate(year, month+1, 1).AddDate(0, 0, -1))

	window := s.byDateRange(start, end)
	summary := core.MonthlySummary{
		Year:             year,
		Month:            month,
		TransactionCount: len(window),
	}

	index := make(map[core.Category]int)
	for _, tx := range window {
		switch tx.Type {
		case core.Income:
			summary.Income.Cents += tx.Amount.Cents
		case core.Expense:
			summary.Expenses.Cents += tx.Amount.Cents
			i, ok := index[tx.Category]
			if !ok {
				i = len(summary.CategoryTotals)
				index[tx.Category] = i
				summary.CategoryTotals = append(summary.CategoryTotals, core.CategoryAmount{Category: tx.Category})
			}
			summary.CategoryTotals[i].Amount.Cents += tx.Amount.Cents
		}
	}
	summary.Balance = core.Money{Cents: summary.Income.Cents - summary.Expenses.Cents}
	return summary, nil
}

// newID issues a fresh 8-character id. Ids of removed transactions stay
// in the issued set, so an id is never handed out twice in a store's
// lifetime.
func (s *Store) newID() string {
	for {
		id := uuid.NewString()[:8]
		if _, dup := s.issued[id]; dup {
			continue
		}
		s.issued[id] = struct{}{}
		return id
	}
}
