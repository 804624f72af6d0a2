// Package worker consumes ledger events and applies them to a mirror
// backend.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/core"
	"budget/internal/mirror"
)

// MirrorWorker applies created and removed events to the mirror.
type MirrorWorker struct {
	appender mirror.TransactionAppender
	remover  mirror.TransactionRemover
}

func NewMirrorWorker(appender mirror.TransactionAppender, remover mirror.TransactionRemover) *MirrorWorker {
	return &MirrorWorker{
		appender: appender,
		remover:  remover,
	}
}

// HandleCreated mirrors a newly recorded transaction. Errors propagate
// so the AMQP consumer can nack and requeue the delivery.
func (w *MirrorWorker) HandleCreated(ctx context.Context, tx core.Transaction) error {
	slog.InfoContext(ctx, "Processing created event", "id", tx.ID, "name", tx.Name)

	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid transaction in event: %w", err)
	}
	if err := w.appender.Append(ctx, tx); err != nil {
		return fmt.Errorf("mirror transaction %s: %w", tx.ID, err)
	}
	return nil
}

// HandleRemoved deletes a mirrored transaction.
func (w *MirrorWorker) HandleRemoved(ctx context.Context, id string) error {
	slog.InfoContext(ctx, "Processing removed event", "id", id)

	if err := w.remover.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove mirrored transaction %s: %w", id, err)
	}
	return nil
}
