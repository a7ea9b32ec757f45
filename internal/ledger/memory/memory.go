package memory

import (
	"context"
	"fmt"
	"sync"

	"expensetracker/internal/core"
)

// Store keeps transactions in a slice ordered newest first.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New() *Store {
	return &Store{}
}

// Add validates the transaction and prepends it.
func (s *Store) Add(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.ID == tx.ID {
			return fmt.Errorf("transaction %s already exists", tx.ID)
		}
	}
	s.items = append([]core.Transaction{tx}, s.items...)
	return nil
}

// Delete removes every entry with the given id, keeping the order of the rest.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, tx := range s.items {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	// Clear the tail so removed entries can be collected.
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = core.Transaction{}
	}
	s.items = kept
	return nil
}

// List returns a copy of the stored transactions.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...), nil
}
