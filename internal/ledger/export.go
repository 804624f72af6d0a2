package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"budget/internal/core"
)

var csvHeader = []string{"ID", "Name", "Amount", "Category", "Type", "Date", "Description", "Tags"}

// WriteCSV writes transactions as CSV to w: a header row, then one row
// per transaction in the given order. This is a one-way projection; no
// import path exists.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		row := []string{
			tx.ID,
			tx.Name,
			tx.Amount.String(),
			string(tx.Category),
			string(tx.Type),
			tx.Date.String(),
			tx.Description,
			strings.Join(tx.Tags, ", "),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %s: %w", tx.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the current ledger to a CSV file at path.
func (s *Store) ExportCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := WriteCSV(f, s.Transactions()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
