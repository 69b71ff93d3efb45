// Package services orchestrates manual expense operations across the
// repository and the event publisher.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"vittrack/internal/core"
	"vittrack/internal/events"
	"vittrack/internal/storage"
)

// Publisher announces committed expense batches. The AMQP client satisfies
// it; a nil publisher disables events without changing call sites.
type Publisher interface {
	PublishExpensesCreated(ctx context.Context, userID int64, expenseIDs []int64, source string) error
}

// ExpenseService handles manual expense writes. Persistence is the source of
// truth; event publishing is best-effort and never fails a request.
type ExpenseService struct {
	storage   *storage.SQLiteRepository
	publisher Publisher

	now func() time.Time
}

func NewExpenseService(storage *storage.SQLiteRepository, publisher Publisher) *ExpenseService {
	return &ExpenseService{
		storage:   storage,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateExpense validates and persists a manually entered expense. A zero
// CreatedAt is stamped with the current time. Unknown users map to
// core.ErrInvalidUser and unknown categories to core.ErrInvalidCategory so
// handlers can reject them as bad input.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	exists, err := s.storage.UserExists(ctx, e.UserID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return core.Expense{}, fmt.Errorf("user %d: %w", e.UserID, core.ErrInvalidUser)
	}

	if _, err := s.storage.GetCategoryByID(ctx, e.CategoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.Expense{}, fmt.Errorf("category %d: %w", e.CategoryID, core.ErrInvalidCategory)
		}
		return core.Expense{}, fmt.Errorf("check category: %w", err)
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	created, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.publishCreated(ctx, created.UserID, []int64{created.ID})

	return created, nil
}

// UpdateExpense rewrites amount, description and category of an existing
// expense. storage.ErrNotFound passes through for missing rows.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, amount float64, description string, categoryID int64) (core.Expense, error) {
	existing, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}

	updated := existing
	updated.Amount = amount
	updated.Description = description
	updated.CategoryID = categoryID
	if err := updated.Validate(); err != nil {
		return core.Expense{}, err
	}

	if _, err := s.storage.GetCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.Expense{}, fmt.Errorf("category %d: %w", categoryID, core.ErrInvalidCategory)
		}
		return core.Expense{}, fmt.Errorf("check category: %w", err)
	}

	return s.storage.UpdateExpense(ctx, id, amount, description, categoryID)
}

// DeleteExpense removes an expense. storage.ErrNotFound passes through.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	return s.storage.DeleteExpense(ctx, id)
}

func (s *ExpenseService) publishCreated(ctx context.Context, userID int64, ids []int64) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping expense event")
		return
	}
	if err := s.publisher.PublishExpensesCreated(ctx, userID, ids, events.SourceManual); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"user_id", userID, "expense_ids", ids, "error", err)
		// The expense is saved; the reconcile pass will catch the aggregates.
	}
}

// Close closes the storage and, when the publisher owns a connection, the
// publisher too.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if closer, ok := s.publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
