package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"saga/internal/cache"
	"saga/internal/store"
	"saga/internal/store/file"
	"saga/internal/store/gsheets"
	"saga/internal/store/memory"
	"saga/internal/store/sqlite"
)

// sessionKeys bounds the memory backend; one key per ledger scope is typical.
const sessionKeys = 64

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateChain opens every configured backend and assembles them into a chain.
// Backends that were opened are closed again when a later one fails.
func (f *DefaultFactory) CreateChain(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		members []store.Backend
		caches  []cache.Cleaner
		closers []store.Closer
	)
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		return errors.Join(errs...)
	}

	for _, bt := range config.Backends {
		var (
			s   store.Store
			err error
		)
		switch bt {
		case SQLiteBackend:
			var db *sqlite.Store
			db, err = sqlite.Open(config.SQLiteDBPath)
			if err == nil {
				closers = append(closers, db)
				s = db
				f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
			}
		case FileBackend:
			s, err = file.New(config.DataDirectory)
			if err == nil {
				f.logger.Info("Initialized file backend", "data_directory", config.DataDirectory)
			}
		case MemoryBackend:
			mem := memory.New(sessionKeys, config.SessionTTL)
			caches = append(caches, mem.Cache())
			s = mem
			f.logger.Info("Initialized memory backend", "session_ttl", config.SessionTTL)
		case SheetsBackend:
			s, err = gsheets.New(ctx, gsheets.Config{
				SpreadsheetID:   config.GoogleSpreadsheetID,
				SheetName:       config.GoogleSheetName,
				CredentialsJSON: config.GoogleServiceAccountJSON,
				CredentialsFile: config.GoogleServiceAccountFile,
			})
			if err == nil {
				f.logger.Info("Initialized Google Sheets backend", "sheet", config.GoogleSheetName)
			}
		default:
			err = fmt.Errorf("unsupported backend type: %s", bt)
		}
		if err != nil {
			_ = closeAll()
			return nil, fmt.Errorf("failed to initialize %s backend: %w", bt, err)
		}
		members = append(members, store.Backend{Name: bt.String(), Store: s, Durable: bt.Durable()})
	}

	chain := store.NewChain(f.logger, members...)
	return &Result{
		Chain:   chain,
		Cleanup: chain.Close,
		Caches:  caches,
	}, nil
}
