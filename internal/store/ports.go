// Package store defines the persistence port used by the ledger repository
// and the prioritized chain of backends that implements it.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when a key has never been written or was removed.
var ErrNotFound = errors.New("store: key not found")

// Ports for outbound adapters.
type (
	// Store is a whole-value key-value store.
	Store interface {
		Read(ctx context.Context, key string) ([]byte, error)
		Write(ctx context.Context, key string, value []byte) error
		Remove(ctx context.Context, key string) error
	}

	// Closer is implemented by backends holding connections or files.
	Closer interface {
		Close() error
	}
)
