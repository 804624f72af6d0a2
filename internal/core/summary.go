package core

// CategoryAmount is a summed expense amount for one category label.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// MonthlySummary aggregates one calendar month of ledger activity.
// CategoryTotals covers expenses only, in first-seen order; front-ends
// sort for display.
type MonthlySummary struct {
	Year             int
	Month            int // 1-12
	Income           Money
	Expenses         Money
	Balance          Money
	CategoryTotals   []CategoryAmount
	TransactionCount int
}
