// Package ledger owns the single committed ledger snapshot and its persistence.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"saga/internal/core"
	"saga/internal/store"
)

// DefaultScope is the storage key shared by every process of one installation.
const DefaultScope = "savings-saga-global-data"

const notifyTimeout = 5 * time.Second

// ChangeNotifier announces a committed snapshot to other processes.
type ChangeNotifier interface {
	PublishLedgerChanged(ctx context.Context, scope, origin string, payload []byte) error
}

// Config wires a Repository. Zero values fall back to defaults.
type Config struct {
	Scope    string
	SeedDemo bool
	Now      func() time.Time
	Notifier ChangeNotifier
	Logger   *slog.Logger
}

type Repository struct {
	mu       sync.RWMutex
	store    store.Store
	scope    string
	origin   string
	seedDemo bool
	now      func() time.Time
	notifier ChangeNotifier
	logger   *slog.Logger
	current  *core.Ledger

	// committedAt is when current was written, locally or by the adopted writer.
	committedAt time.Time
}

func NewRepository(s store.Store, cfg Config) *Repository {
	r := &Repository{
		store:    s,
		scope:    cfg.Scope,
		origin:   uuid.NewString(),
		seedDemo: cfg.SeedDemo,
		now:      cfg.Now,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
	}
	if r.scope == "" {
		r.scope = DefaultScope
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Scope is the storage key of this repository.
func (r *Repository) Scope() string { return r.scope }

// Origin identifies this process in change notifications.
func (r *Repository) Origin() string { return r.origin }

// SetNotifier attaches the change notifier once messaging is connected.
func (r *Repository) SetNotifier(n ChangeNotifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifier = n
}

func (r *Repository) seed() *core.Ledger {
	return core.SeedLedger(r.now(), r.seedDemo)
}

// Load reads the stored ledger and makes it current. It always yields a usable
// ledger; a returned error is a *core.PersistenceError describing what could
// not be read or written.
func (r *Repository) Load(ctx context.Context) (*core.Ledger, error) {
	raw, err := r.store.Read(ctx, r.scope)
	switch {
	case errors.Is(err, store.ErrNotFound):
		r.logger.InfoContext(ctx, "No stored ledger, seeding", "scope", r.scope, "demo", r.seedDemo)
		seed := r.seed()
		return seed.Clone(), r.commit(ctx, seed, false)
	case err != nil:
		// The stored copy may still exist, so the seed is kept in memory only.
		r.logger.ErrorContext(ctx, "Failed to read stored ledger, using seed in memory", "scope", r.scope, "error", err)
		seed := r.seed()
		r.setCurrent(seed, time.Time{})
		return seed.Clone(), &core.PersistenceError{Op: "load", Err: err}
	}

	l, err := Decode(raw)
	if err != nil {
		r.logger.ErrorContext(ctx, "Stored ledger is unreadable, using seed", "scope", r.scope, "error", err)
		seed := r.seed()
		r.setCurrent(seed, time.Time{})
		return seed.Clone(), nil
	}

	if r.refresh(l) {
		r.logger.InfoContext(ctx, "Stored ledger re-aggregated", "scope", r.scope)
		return l.Clone(), r.commit(ctx, l, false)
	}
	r.setCurrent(l, time.Time{})
	return l.Clone(), nil
}

// refresh re-aggregates l for the tracked year and reports whether anything changed.
func (r *Repository) refresh(l *core.Ledger) bool {
	now := r.now()
	year := core.TrackedYear(now)
	changed := false

	monthly := core.Recompute(l.Transactions, year)
	if !core.MonthlyEqual(monthly, l.MonthlyData) {
		l.MonthlyData = monthly
		changed = true
	}
	if core.MonthIndex(year, l.SelectedMonth) < 0 {
		l.SelectedMonth = core.MonthLabel(year, now.Month())
		changed = true
	}
	if len(l.Categories) == 0 {
		l.Categories = core.DefaultCategories()
		changed = true
	}
	return changed
}

// Save commits l as the current snapshot and writes it to the store. The
// snapshot stays committed when the write fails; the failure is returned as a
// *core.PersistenceError.
func (r *Repository) Save(ctx context.Context, l *core.Ledger) error {
	return r.commit(ctx, l, true)
}

func (r *Repository) commit(ctx context.Context, l *core.Ledger, notify bool) error {
	snapshot := l.Clone()
	snapshot.Normalize()
	r.setCurrent(snapshot, r.now())

	payload, err := Encode(snapshot)
	if err != nil {
		return &core.PersistenceError{Op: "save", Err: err}
	}
	if err := r.store.Write(ctx, r.scope, payload); err != nil {
		r.logger.ErrorContext(ctx, "Failed to persist ledger", "scope", r.scope, "error", err)
		return &core.PersistenceError{Op: "save", Err: err}
	}
	r.logger.DebugContext(ctx, "Ledger persisted", "scope", r.scope, "bytes", len(payload))

	if notify {
		r.publish(ctx, payload)
	}
	return nil
}

func (r *Repository) publish(ctx context.Context, payload []byte) {
	r.mu.RLock()
	n := r.notifier
	r.mu.RUnlock()
	if n == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := n.PublishLedgerChanged(ctx, r.scope, r.origin, payload); err != nil {
		r.logger.WarnContext(ctx, "Failed to publish ledger change", "scope", r.scope, "error", err)
	}
}

// Current returns a copy of the latest committed snapshot, or nil before Load.
func (r *Repository) Current() *core.Ledger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current.Clone()
}

// Adopt replaces the current snapshot with one another process wrote at
// writtenAt. Last writer wins: a snapshot older than the current one is
// ignored and reported as not adopted. Nothing is merged or written back.
func (r *Repository) Adopt(payload []byte, writtenAt time.Time) (bool, error) {
	l, err := Decode(payload)
	if err != nil {
		return false, err
	}
	r.refresh(l)

	r.mu.Lock()
	defer r.mu.Unlock()
	if writtenAt.Before(r.committedAt) {
		return false, nil
	}
	r.current = l
	r.committedAt = writtenAt
	return true, nil
}

// Reset removes the stored ledger and starts over from the seed.
func (r *Repository) Reset(ctx context.Context) (*core.Ledger, error) {
	if err := r.store.Remove(ctx, r.scope); err != nil {
		r.logger.WarnContext(ctx, "Failed to remove stored ledger", "scope", r.scope, "error", err)
	}
	seed := r.seed()
	return seed.Clone(), r.commit(ctx, seed, true)
}

func (r *Repository) setCurrent(l *core.Ledger, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = l
	r.committedAt = at
}
