// Package backend opens the transaction store named by DATA_BACKEND.
package backend

import (
	"fmt"
	"strings"

	"expensetracker/internal/config"
	"expensetracker/internal/ledger"
)

type Kind string

const (
	Memory Kind = "memory"
	SQLite Kind = "sqlite"
)

// Kinds lists the supported backends in documentation order.
func Kinds() []Kind { return []Kind{Memory, SQLite} }

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Memory, SQLite:
		return k, nil
	}
	return "", fmt.Errorf("unknown data backend %q", s)
}

// Options selects and parameterizes a store.
type Options struct {
	Kind      Kind
	SQLiteDSN string
}

// OptionsFromConfig picks the store options out of the application config.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	if cfg == nil {
		return Options{}, fmt.Errorf("nil application config")
	}
	kind, err := ParseKind(cfg.DataBackend)
	if err != nil {
		return Options{}, err
	}
	return Options{Kind: kind, SQLiteDSN: cfg.SQLiteDSN}, nil
}

func (o Options) Validate() error {
	if _, err := ParseKind(string(o.Kind)); err != nil {
		return err
	}
	if o.Kind == SQLite && !config.IsMemoryDSN(o.SQLiteDSN) {
		return fmt.Errorf("sqlite backend needs an in-memory DSN, got %q", o.SQLiteDSN)
	}
	return nil
}

// Store is an opened transaction store plus the hook that releases it.
type Store struct {
	ledger.Store
	close func() error
}

// Close releases the store. Safe on stores without resources.
func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}
