package backend

import (
	"context"
	"fmt"

	"expensetracker/internal/ledger/memory"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Open validates opts and returns the selected store.
func (f *Factory) Open(ctx context.Context, opts Options) (*Store, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	switch opts.Kind {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(opts.SQLiteDSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		f.logger.InfoContext(ctx, "Opened SQLite store", "dsn", opts.SQLiteDSN)
		return &Store{Store: repo, close: repo.Close}, nil
	default:
		f.logger.InfoContext(ctx, "Opened memory store")
		return &Store{Store: memory.New()}, nil
	}
}
