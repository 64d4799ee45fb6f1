package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/spendlog/internal/ledger"
	"github.com/roach88/spendlog/internal/retry"
)

// triggerCapacity bounds the trigger queue. Overflow is dropped, not
// blocked on: a missed trigger is not data loss because the next
// successful write triggers again.
const triggerCapacity = 32

// Store is the slice of the ledger store the worker needs.
type Store interface {
	Unsynced(ctx context.Context) ([]ledger.Record, error)
	MarkSynced(ctx context.Context, ids []int64, at time.Time) (int64, error)
}

// Sink is the remote append target. Any non-nil error from AppendRows
// is treated as retryable.
type Sink interface {
	AppendRows(ctx context.Context, rows [][]any) error
}

// Worker is the single consumer of sync triggers. One consumer means at
// most one push to the sink is ever in flight, with no separate lock.
type Worker struct {
	store    Store
	sink     Sink
	policy   retry.Policy
	triggers chan struct{}

	// now stamps the watermark after a confirmed push.
	// Defaults to time.Now; overridden in tests.
	now func() time.Time
}

// NewWorker creates a worker pushing store rows to sink, retrying each
// push per policy.
func NewWorker(store Store, sink Sink, policy retry.Policy) *Worker {
	return &Worker{
		store:    store,
		sink:     sink,
		policy:   policy,
		triggers: make(chan struct{}, triggerCapacity),
		now:      time.Now,
	}
}

// Notify requests a sync pass. Never blocks: with the queue full the
// trigger is dropped and logged, and the rows ride along with the next
// trigger's drain.
func (w *Worker) Notify() {
	select {
	case w.triggers <- struct{}{}:
	default:
		slog.Warn("sync trigger dropped: queue full")
	}
}

// Run consumes triggers until the context is cancelled. Failed passes
// are logged and deferred, never fatal: the rows stay unsynced and the
// next trigger retries them.
func (w *Worker) Run(ctx context.Context) error {
	slog.Debug("sync worker starting")

	for {
		select {
		case <-ctx.Done():
			slog.Debug("sync worker stopping: context cancelled")
			return ctx.Err()
		case <-w.triggers:
			if err := w.SyncOnce(ctx); err != nil {
				slog.Error("sync pass failed", "error", err)
			}
		}
	}
}

// SyncOnce performs one read-push-mark pass: read the unsynced tail,
// push it in one call (retried per policy), then advance the watermark
// for exactly the pushed ids. Also invoked directly by the manual sync
// command.
func (w *Worker) SyncOnce(ctx context.Context) error {
	records, err := w.store.Unsynced(ctx)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if len(records) == 0 {
		slog.Debug("no unsynced rows")
		return nil
	}

	rows, ids := buildBatch(records)
	if len(rows) == 0 {
		// Every unsynced row was malformed; nothing pushable.
		return nil
	}

	err = retry.Do(ctx, w.policy, func(ctx context.Context) error {
		return w.sink.AppendRows(ctx, rows)
	})
	if err != nil {
		return fmt.Errorf("sync: push %d rows: %w", len(rows), err)
	}

	updated, err := w.store.MarkSynced(ctx, ids, w.now())
	if err != nil {
		return fmt.Errorf("sync: advance watermark: %w", err)
	}

	slog.Info("synced rows to sheet", "pushed", len(ids), "marked", updated)
	return nil
}
