// Package services orchestrates ledger operations across the file store
// and the optional AMQP event pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/ledger"
)

// LedgerService wraps the ledger store and publishes mutation events.
// The AMQP client may be nil; the ledger then works standalone.
type LedgerService struct {
	store      *ledger.Store
	amqpClient *amqp.Client
}

func NewLedgerService(store *ledger.Store, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// AddTransaction records a transaction in the ledger and publishes a
// created event.
func (s *LedgerService) AddTransaction(ctx context.Context, params ledger.AddParams) (core.Transaction, error) {
	tx, err := s.store.Add(ctx, params)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	// Publish async mirror event. The ledger file is the source of
	// truth; a failed publish must not fail the request.
	if err := s.publishCreated(ctx, tx); err != nil {
		slog.ErrorContext(ctx, "Failed to publish created event",
			"id", tx.ID, "error", err)
	}

	return tx, nil
}

// RemoveTransaction deletes a transaction by id and publishes a removed
// event. Returns false when no transaction has that id.
func (s *LedgerService) RemoveTransaction(ctx context.Context, id string) (bool, error) {
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("remove transaction: %w", err)
	}
	if !removed {
		return false, nil
	}

	if err := s.publishRemoved(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish removed event",
			"id", id, "error", err)
	}

	return true, nil
}

func (s *LedgerService) publishCreated(ctx context.Context, tx core.Transaction) error {
	if s.amqpClient == nil {
		return nil
	}
	return s.amqpClient.PublishTransactionCreated(ctx, tx)
}

func (s *LedgerService) publishRemoved(ctx context.Context, id string) error {
	if s.amqpClient == nil {
		return nil
	}
	return s.amqpClient.PublishTransactionRemoved(ctx, id)
}

// Read operations delegate straight to the store.

func (s *LedgerService) Get(id string) (core.Transaction, bool) { return s.store.Get(id) }

func (s *LedgerService) Transactions() []core.Transaction { return s.store.Transactions() }

func (s *LedgerService) TotalIncome() core.Money { return s.store.TotalIncome() }

func (s *LedgerService) TotalExpenses() core.Money { return s.store.TotalExpenses() }

func (s *LedgerService) Balance() core.Money { return s.store.Balance() }

func (s *LedgerService) ByCategory(c core.Category) []core.Transaction {
	return s.store.ByCategory(c)
}

func (s *LedgerService) ByDateRange(start, end core.Date) []core.Transaction {
	return s.store.ByDateRange(start, end)
}

func (s *LedgerService) MonthlySummary(year, month int) (core.MonthlySummary, error) {
	return s.store.MonthlySummary(year, month)
}

// Close releases the AMQP connection if one was configured.
func (s *LedgerService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp client: %w", err)
		}
	}
	return nil
}
