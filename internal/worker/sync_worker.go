package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"saga/internal/amqp"
	"saga/internal/log"
)

// ChangeSource delivers ledger change notifications.
type ChangeSource interface {
	ConsumeLedgerChanges(ctx context.Context, handler func(context.Context, *amqp.LedgerChangedMessage) error) error
}

// Adopter is the repository side of cross-process synchronization.
type Adopter interface {
	Scope() string
	Origin() string
	Adopt(payload []byte, writtenAt time.Time) (bool, error)
}

// SyncWorker keeps this process's ledger in step with snapshots written by
// other processes sharing the same store. The most recent writer wins; no
// merge is attempted.
type SyncWorker struct {
	source ChangeSource
	repo   Adopter
	logger *slog.Logger
}

func NewSyncWorker(source ChangeSource, repo Adopter, logger *slog.Logger) *SyncWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncWorker{source: source, repo: repo, logger: logger}
}

// Run consumes change notifications until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Starting ledger sync worker", log.FieldScope, w.repo.Scope(), log.FieldOrigin, w.repo.Origin())
	return w.source.ConsumeLedgerChanges(ctx, w.HandleLedgerChanged)
}

// HandleLedgerChanged adopts a snapshot published by another process.
// Messages from this process, for other scopes, or older than the current
// snapshot are ignored.
func (w *SyncWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	if msg.Origin == w.repo.Origin() {
		return nil
	}
	if msg.Scope != w.repo.Scope() {
		w.logger.DebugContext(ctx, "Ignoring change for another scope", log.FieldScope, msg.Scope)
		return nil
	}

	adopted, err := w.repo.Adopt(msg.Payload, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("adopt ledger from %s: %w", msg.Origin, err)
	}
	if !adopted {
		w.logger.InfoContext(ctx, "Ignoring stale ledger change",
			log.FieldOrigin, msg.Origin,
			"timestamp", msg.Timestamp)
		return nil
	}

	w.logger.InfoContext(ctx, "Adopted ledger change",
		log.FieldOrigin, msg.Origin,
		"timestamp", msg.Timestamp,
		"bytes", len(msg.Payload))
	return nil
}
