package http

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"budget/internal/core"
	"budget/internal/ledger"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	txs := s.ledger.Transactions()
	// Newest first on the dashboard
	recent := make([]core.Transaction, 0, len(txs))
	for i := len(txs) - 1; i >= 0 && len(recent) < 20; i-- {
		recent = append(recent, txs[i])
	}

	type txRow struct {
		ID       string
		Name     string
		Amount   string
		Category string
		Type     string
		Date     string
		Tags     string
	}
	rows := make([]txRow, 0, len(recent))
	for _, tx := range recent {
		rows = append(rows, txRow{
			ID:       tx.ID,
			Name:     tx.Name,
			Amount:   formatDollars(tx.Amount.Cents),
			Category: string(tx.Category),
			Type:     string(tx.Type),
			Date:     tx.Date.String(),
			Tags:     strings.Join(tx.Tags, ", "),
		})
	}

	now := time.Now()
	data := struct {
		Today      string
		Year       int
		Month      int
		Balance    string
		Income     string
		Expenses   string
		Count      int
		Categories []core.Category
		Recent     []txRow
	}{
		Today:      now.Format(time.DateOnly),
		Year:       now.Year(),
		Month:      int(now.Month()),
		Balance:    formatDollars(s.ledger.Balance().Cents),
		Income:     formatDollars(s.ledger.TotalIncome().Cents),
		Expenses:   formatDollars(s.ledger.TotalExpenses().Cents),
		Count:      len(txs),
		Categories: core.Categories(),
		Recent:     rows,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	name := sanitizeInput(r.Form.Get("name"))
	amountStr := strings.TrimSpace(r.Form.Get("amount"))
	description := sanitizeInput(r.Form.Get("description"))

	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Invalid amount</div>`))
		return
	}

	category, err := core.ParseCategory(sanitizeInput(r.Form.Get("category")))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Unknown category</div>`))
		return
	}

	txType, err := core.ParseTransactionType(sanitizeInput(r.Form.Get("transaction_type")))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Unknown transaction type</div>`))
		return
	}

	var date core.Date
	if v := strings.TrimSpace(r.Form.Get("date")); v != "" {
		date, err = core.ParseDate(v)
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`<div class="error">Invalid date, use YYYY-MM-DD</div>`))
			return
		}
	}

	var tags []string
	if v := strings.TrimSpace(r.Form.Get("tags")); v != "" {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	tx, err := s.ledger.AddTransaction(r.Context(), ledger.AddParams{
		Name:        name,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Type:        txType,
		Description: description,
		Tags:        tags,
		Date:        date,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Add transaction error", "error", err, "name", name, "amount", amountStr)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Could not record transaction: ` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	s.invalidateSummary(tx.Date.Year(), tx.Date.Month())
	w.Header().Set("HX-Trigger", `{"transaction:created": {"year": `+strconv.Itoa(tx.Date.Year())+`, "month": `+strconv.Itoa(tx.Date.Month())+`}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Recorded #` + template.HTMLEscapeString(tx.ID) + `: ` +
		template.HTMLEscapeString(tx.Name) +
		` $` + template.HTMLEscapeString(tx.Amount.String()) +
		` (` + template.HTMLEscapeString(string(tx.Category)) + `)</div>`))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if id == "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Missing transaction id</div>`))
		return
	}

	removed, err := s.ledger.RemoveTransaction(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "Remove transaction error", "error", err, "id", id)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Could not remove transaction</div>`))
		return
	}
	if !removed {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<div class="error">No transaction with id ` + template.HTMLEscapeString(id) + `</div>`))
		return
	}

	// Month unknown after deletion, drop the whole summary cache window
	now := time.Now()
	s.invalidateSummary(now.Year(), int(now.Month()))
	w.Header().Set("HX-Trigger", `{"transaction:removed": {"id": "`+template.JSEscapeString(id)+`"}}`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Removed transaction ` + template.HTMLEscapeString(id) + `</div>`))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)

	if err := ledger.WriteCSV(w, s.ledger.Transactions()); err != nil {
		slog.ErrorContext(r.Context(), "CSV export error", "error", err)
	}
}

// handleMonthSummary renders the monthly summary partial.
func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	if month < 1 || month > 12 {
		slog.WarnContext(r.Context(), "Invalid month parameter", "year", year, "month", month, "corrected_to", int(now.Month()))
		month = int(now.Month())
	}

	summary, err := s.getSummary(year, month)
	if err != nil {
		slog.ErrorContext(r.Context(), "Month summary error", "error", err, "year", year, "month", month)
		_, _ = w.Write([]byte(`<section id="month-summary" class="month-summary"><div class="placeholder">Could not load summary</div></section>`))
		return
	}
	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="month-summary" class="month-summary"><div class="placeholder">Balance: ` + formatDollars(summary.Balance.Cents) + `</div></section>`))
		return
	}

	// Scale category bars against the largest expense bucket
	var maxCents int64
	for _, ca := range summary.CategoryTotals {
		if ca.Amount.Cents > maxCents {
			maxCents = ca.Amount.Cents
		}
	}
	type row struct {
		Name, Amount string
		Width        int
	}
	data := struct {
		Year     int
		Month    int
		Income   string
		Expenses string
		Balance  string
		Count    int
		Rows     []row
	}{
		Year:     summary.Year,
		Month:    summary.Month,
		Income:   formatDollars(summary.Income.Cents),
		Expenses: formatDollars(summary.Expenses.Cents),
		Balance:  formatDollars(summary.Balance.Cents),
		Count:    summary.TransactionCount,
	}
	for _, ca := range summary.CategoryTotals {
		width := 0
		if maxCents > 0 && ca.Amount.Cents > 0 {
			width = int((ca.Amount.Cents*100 + maxCents/2) / maxCents)
			if width > 0 && width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		data.Rows = append(data.Rows, row{Name: string(ca.Category), Amount: formatDollars(ca.Amount.Cents), Width: width})
	}

	if err := s.templates.ExecuteTemplate(w, "month_summary.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "month_summary.html", "year", year, "month", month)
		_, _ = w.Write([]byte(`<section id="month-summary" class="month-summary"><div class="placeholder">Could not render summary</div></section>`))
	}
}

func (s *Server) cacheKey(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

func (s *Server) invalidateSummary(year, month int) {
	s.summaryCache.Delete(s.cacheKey(year, month))
}

func (s *Server) getSummary(year, month int) (core.MonthlySummary, error) {
	key := s.cacheKey(year, month)
	if data, found := s.summaryCache.Get(key); found {
		return data, nil
	}

	summary, err := s.ledger.MonthlySummary(year, month)
	if err != nil {
		return core.MonthlySummary{}, err
	}

	s.summaryCache.Set(key, summary)
	return summary, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func formatDollars(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-$" + s
	}
	return "$" + s
}
