package backend

import (
	"context"
	"time"

	"saga/internal/cache"
	"saga/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the assembled store chain and its cleanup function
type Result struct {
	Chain   *store.Chain
	Cleanup CleanupFunc
	// Caches lists session caches that need periodic expiry cleanup.
	Caches []cache.Cleaner
}

// Factory creates the store chain based on configuration
type Factory interface {
	CreateChain(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for chain creation
type Config struct {
	// Backends in read priority order
	Backends []BackendType

	// SQLite specific
	SQLiteDBPath string

	// File specific
	DataDirectory string

	// Memory specific
	SessionTTL time.Duration

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	FileBackend   BackendType = "file"
	MemoryBackend BackendType = "memory"
	SheetsBackend BackendType = "sheets"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, FileBackend, MemoryBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// Durable reports whether data written to the backend survives a restart.
func (bt BackendType) Durable() bool {
	return bt != MemoryBackend
}
