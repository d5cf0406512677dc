package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Backend is one member of a Chain.
type Backend struct {
	Name    string
	Store   Store
	Durable bool // survives a process restart
}

// Chain is a prioritized list of backends. Reads fall back in priority order;
// writes fan out to every backend.
type Chain struct {
	backends []Backend
	logger   *slog.Logger
}

var _ Store = (*Chain)(nil)

// ErrNoDurableWrite is returned when no durable backend accepted a write.
var ErrNoDurableWrite = errors.New("no durable backend accepted the write")

// NewChain orders backends from highest to lowest priority.
func NewChain(logger *slog.Logger, backends ...Backend) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{backends: backends, logger: logger}
}

// Backends returns the members in priority order.
func (c *Chain) Backends() []Backend {
	return append([]Backend(nil), c.backends...)
}

// Read returns the value from the highest-priority backend that has it, and
// back-fills every other backend with it.
func (c *Chain) Read(ctx context.Context, key string) ([]byte, error) {
	var errs []error
	for i, b := range c.backends {
		value, err := b.Store.Read(ctx, key)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				c.logger.WarnContext(ctx, "Store read failed, trying next backend",
					"backend", b.Name, "key", key, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", b.Name, err))
			}
			continue
		}
		c.backfill(ctx, key, value, i)
		return value, nil
	}
	// A backend that failed may still hold the value, so absence cannot be claimed.
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, ErrNotFound
}

// backfill copies value into every backend except the source, best-effort.
func (c *Chain) backfill(ctx context.Context, key string, value []byte, source int) {
	for i, b := range c.backends {
		if i == source {
			continue
		}
		if err := b.Store.Write(ctx, key, value); err != nil {
			c.logger.WarnContext(ctx, "Store back-fill failed", "backend", b.Name, "key", key, "error", err)
			continue
		}
		c.logger.DebugContext(ctx, "Store back-filled", "backend", b.Name, "key", key)
	}
}

// Write stores value in every backend concurrently. A failing backend never
// prevents the others from being written. The write fails only when no durable
// backend accepted it.
func (c *Chain) Write(ctx context.Context, key string, value []byte) error {
	results := make([]error, len(c.backends))
	var g errgroup.Group
	for i, b := range c.backends {
		g.Go(func() error {
			results[i] = b.Store.Write(ctx, key, value)
			return nil
		})
	}
	_ = g.Wait()

	durable, anyDurable := false, false
	var errs []error
	for i, b := range c.backends {
		if b.Durable {
			anyDurable = true
		}
		if err := results[i]; err != nil {
			c.logger.WarnContext(ctx, "Store write failed", "backend", b.Name, "key", key, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name, err))
			continue
		}
		if b.Durable {
			durable = true
		}
	}
	if durable || (!anyDurable && len(errs) < len(c.backends)) {
		return nil
	}
	return errors.Join(append([]error{ErrNoDurableWrite}, errs...)...)
}

// Remove deletes key from every backend.
func (c *Chain) Remove(ctx context.Context, key string) error {
	var errs []error
	for _, b := range c.backends {
		if err := b.Store.Remove(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("%s: %w", b.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every backend that holds resources.
func (c *Chain) Close() error {
	var errs []error
	for _, b := range c.backends {
		if closer, ok := b.Store.(Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", b.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}
