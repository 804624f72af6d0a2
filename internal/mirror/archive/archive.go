// Package archive mirrors ledger transactions into a SQLite database.
// The archive is a queryable replica; the JSON ledger file stays the
// source of truth.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"budget/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append upserts a transaction row. Replaying the same event twice, for
// example after a redelivered AMQP message, leaves a single row.
func (r *Repository) Append(ctx context.Context, tx core.Transaction) error {
	const q = `
INSERT INTO transactions (id, name, amount_cents, category, transaction_type, date, description, tags)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    amount_cents = excluded.amount_cents,
    category = excluded.category,
    transaction_type = excluded.transaction_type,
    date = excluded.date,
    description = excluded.description,
    tags = excluded.tags`

	_, err := r.db.ExecContext(ctx, q,
		tx.ID,
		tx.Name,
		tx.Amount.Cents,
		string(tx.Category),
		string(tx.Type),
		tx.Date.String(),
		tx.Description,
		strings.Join(tx.Tags, ","),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored to SQLite",
		"id", tx.ID,
		"name", tx.Name,
		"amount_cents", tx.Amount.Cents,
		"category", string(tx.Category))

	return nil
}

// Remove deletes the mirrored row. Removing an id that was never
// mirrored is not an error; the ledger may predate the archive.
func (r *Repository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.WarnContext(ctx, "Removed transaction was not in the archive", "id", id)
	}

	return nil
}

// Count reports the number of mirrored transactions.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// Get reads one mirrored transaction back, mostly for tests and the
// periodic report.
func (r *Repository) Get(ctx context.Context, id string) (core.Transaction, error) {
	const q = `
SELECT id, name, amount_cents, category, transaction_type, date, description, tags
FROM transactions WHERE id = ?`

	var (
		tx       core.Transaction
		cents    int64
		category string
		txType   string
		date     string
		tags     string
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&tx.ID, &tx.Name, &cents, &category, &txType, &date, &tx.Description, &tags)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}

	tx.Amount = core.Money{Cents: cents}
	tx.Category, err = core.ParseCategory(category)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("archived category: %w", err)
	}
	tx.Type, err = core.ParseTransactionType(txType)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("archived type: %w", err)
	}
	tx.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("archived date: %w", err)
	}
	if tags == "" {
		tx.Tags = []string{}
	} else {
		tx.Tags = strings.Split(tags, ",")
	}

	return tx, nil
}
