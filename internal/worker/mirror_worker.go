// Package worker mirrors ledger changes to an external sheet. It consumes
// AMQP events and, as a safety net for lost messages, periodically sweeps
// transactions still marked pending.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"forgeledger/internal/amqp"
	"forgeledger/internal/core"
	"forgeledger/internal/sheets"
)

// TransactionSource is the slice of storage the worker reads and marks.
type TransactionSource interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	GetPendingSync(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// EventStream delivers ledger events until the context is canceled.
// Satisfied by the AMQP client.
type EventStream interface {
	ConsumeEvents(ctx context.Context, handler func(*amqp.LedgerEventMessage) error) error
}

// MirrorWorker pushes ledger changes to the mirror sheet.
type MirrorWorker struct {
	source    TransactionSource
	mirror    sheets.MirrorWriter
	batchSize int
}

func NewMirrorWorker(source TransactionSource, mirror sheets.MirrorWriter, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		source:    source,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// Run consumes events and sweeps pending transactions until ctx ends.
func (w *MirrorWorker) Run(ctx context.Context, events EventStream, sweepInterval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return events.ConsumeEvents(ctx, func(msg *amqp.LedgerEventMessage) error {
			return w.HandleEvent(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil {
					slog.ErrorContext(ctx, "Pending sweep failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

// HandleEvent mirrors a single ledger event.
func (w *MirrorWorker) HandleEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"action", msg.Action,
		"id", msg.ID)

	if msg.Action == amqp.ActionDeleted {
		return w.mirrorDeleted(ctx, msg)
	}

	tx, err := w.source.GetTransaction(ctx, msg.ID)
	if err != nil {
		var nf *core.NotFoundError
		if errors.As(err, &nf) {
			// Already deleted again; the delete event will cover it.
			slog.WarnContext(ctx, "Transaction gone before mirroring, skipping", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	return w.mirrorTransaction(ctx, msg.Action, tx)
}

// ProcessPending mirrors transactions still marked pending. This is the
// catchup path for lost queue messages or worker downtime.
func (w *MirrorWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.source.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))
	for _, tx := range pending {
		if err := w.mirrorTransaction(ctx, amqp.ActionCreated, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror pending transaction",
				"id", tx.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck sweeps a larger pending batch once, so a restarted worker
// recovers anything missed while it was down.
func (w *MirrorWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.source.GetPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup", "count", len(pending))
	synced, failed := 0, 0
	for _, tx := range pending {
		if err := w.mirrorTransaction(ctx, amqp.ActionCreated, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror transaction during startup",
				"id", tx.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup mirror check completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *MirrorWorker) mirrorTransaction(ctx context.Context, action string, tx core.Transaction) error {
	categoryName := ""
	if cat, err := w.source.GetCategory(ctx, tx.CategoryID); err == nil {
		categoryName = cat.Name
	}

	entry := sheets.MirrorEntry{
		Action:        action,
		TransactionID: tx.ID,
		Date:          tx.Date.String(),
		Type:          string(tx.Type),
		Amount:        tx.Amount.String(),
		Category:      categoryName,
		Description:   tx.Description,
		RecordedAt:    time.Now(),
	}

	ref, err := w.mirror.Append(ctx, entry)
	if err != nil {
		if markErr := w.source.MarkSyncError(ctx, tx.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", tx.ID, "error", markErr)
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	if err := w.source.MarkSynced(ctx, tx.ID); err != nil {
		// The mirror write itself succeeded; log and move on.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", tx.ID, "error", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"id", tx.ID,
		"action", action,
		"sheets_ref", ref)
	return nil
}

func (w *MirrorWorker) mirrorDeleted(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if msg.Snapshot == nil {
		slog.WarnContext(ctx, "Delete event without snapshot, skipping", "id", msg.ID)
		return nil
	}

	entry := sheets.MirrorEntry{
		Action:        amqp.ActionDeleted,
		TransactionID: msg.ID,
		Date:          msg.Snapshot.Date,
		Type:          msg.Snapshot.Type,
		Amount:        core.Money{Cents: msg.Snapshot.AmountCents}.String(),
		Category:      msg.Snapshot.CategoryName,
		Description:   msg.Snapshot.Description,
		RecordedAt:    time.Now(),
	}

	if _, err := w.mirror.Append(ctx, entry); err != nil {
		return fmt.Errorf("append delete row: %w", err)
	}
	return nil
}
