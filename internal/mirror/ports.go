// Package mirror defines the ports the mirror worker writes through and
// the factory that picks a concrete backend.
package mirror

import (
	"context"

	"budget/internal/core"
)

// Ports for outbound mirror adapters.
type (
	TransactionAppender interface {
		Append(ctx context.Context, tx core.Transaction) error
	}

	TransactionRemover interface {
		Remove(ctx context.Context, id string) error
	}
)

// Backend is a complete mirror target.
type Backend interface {
	TransactionAppender
	TransactionRemover
	Close() error
}
