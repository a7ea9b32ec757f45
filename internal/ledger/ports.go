package ledger

import (
	"context"

	"expensetracker/internal/core"
)

// Ports for transaction storage backends.
type (
	TransactionWriter interface {
		// Add stores the transaction as the newest entry.
		Add(ctx context.Context, tx core.Transaction) error
	}

	TransactionDeleter interface {
		// Delete removes the transaction with the given id. Unknown ids are a no-op.
		Delete(ctx context.Context, id string) error
	}

	TransactionLister interface {
		// List returns a snapshot of all transactions, newest first.
		List(ctx context.Context) ([]core.Transaction, error)
	}

	// Store combines every port a backend must provide.
	Store interface {
		TransactionWriter
		TransactionDeleter
		TransactionLister
	}
)
