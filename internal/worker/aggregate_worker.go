// Package worker maintains the monthly per-category aggregates that back the
// analytics summary endpoint. It reacts to expense events from AMQP and runs
// a periodic reconcile pass as a backup in case messages are lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vittrack/internal/core"
	"vittrack/internal/events"
	"vittrack/internal/storage"
)

// AggregateStore is the slice of the repository the worker needs.
type AggregateStore interface {
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	RecomputeMonthlyTotals(ctx context.Context, userID int64, year int, month time.Month) error
	ListExpenseUserIDs(ctx context.Context) ([]int64, error)
}

// AggregateWorker rebuilds monthly totals for the user-months touched by
// incoming expense batches. Recomputation is idempotent, so redeliveries and
// overlapping reconcile runs are safe.
type AggregateWorker struct {
	storage AggregateStore

	now func() time.Time // injectable for tests
}

func NewAggregateWorker(storage AggregateStore) *AggregateWorker {
	return &AggregateWorker{
		storage: storage,
		now:     time.Now,
	}
}

type yearMonth struct {
	year  int
	month time.Month
}

// HandleExpensesCreated processes a single expenses-created message. It looks
// up each expense to find which months the batch touched and recomputes the
// totals for those user-months. Expenses deleted between publish and delivery
// are skipped.
func (w *AggregateWorker) HandleExpensesCreated(ctx context.Context, msg *events.ExpensesCreatedMessage) error {
	slog.InfoContext(ctx, "Processing expenses created message",
		"user_id", msg.UserID,
		"expense_count", len(msg.ExpenseIDs),
		"source", msg.Source)

	months := make(map[yearMonth]struct{})
	for _, id := range msg.ExpenseIDs {
		expense, err := w.storage.GetExpense(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Expense gone before aggregation, skipping", "id", id)
			continue
		}
		if err != nil {
			return fmt.Errorf("get expense %d: %w", id, err)
		}
		months[yearMonth{expense.CreatedAt.Year(), expense.CreatedAt.Month()}] = struct{}{}
	}

	for ym := range months {
		if err := w.storage.RecomputeMonthlyTotals(ctx, msg.UserID, ym.year, ym.month); err != nil {
			return fmt.Errorf("recompute totals for user %d %d-%02d: %w", msg.UserID, ym.year, int(ym.month), err)
		}
	}

	return nil
}

// Reconcile rebuilds the current month's totals for every user that owns
// expenses. This is the backup path for lost or unprocessed messages.
func (w *AggregateWorker) Reconcile(ctx context.Context) error {
	userIDs, err := w.storage.ListExpenseUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users for reconcile: %w", err)
	}

	if len(userIDs) == 0 {
		return nil
	}

	now := w.now()
	year, month := now.Year(), now.Month()

	errorCount := 0
	for _, userID := range userIDs {
		if err := w.storage.RecomputeMonthlyTotals(ctx, userID, year, month); err != nil {
			slog.ErrorContext(ctx, "Reconcile failed for user", "user_id", userID, "error", err)
			errorCount++
		}
	}

	slog.InfoContext(ctx, "Reconcile pass completed",
		"users", len(userIDs),
		"errors", errorCount,
		"year", year,
		"month", int(month))

	if errorCount > 0 {
		return fmt.Errorf("reconcile failed for %d of %d users", errorCount, len(userIDs))
	}
	return nil
}
