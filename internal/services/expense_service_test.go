package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"vittrack/internal/core"
	"vittrack/internal/events"
	"vittrack/internal/storage"
)

type fakePublisher struct {
	published []publishedBatch
	err       error
}

type publishedBatch struct {
	userID int64
	ids    []int64
	source string
}

func (p *fakePublisher) PublishExpensesCreated(_ context.Context, userID int64, expenseIDs []int64, source string) error {
	p.published = append(p.published, publishedBatch{userID, expenseIDs, source})
	return p.err
}

func newTestService(t *testing.T) (*ExpenseService, *storage.SQLiteRepository, *fakePublisher) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	pub := &fakePublisher{}
	return NewExpenseService(repo, pub), repo, pub
}

func createTestUser(t *testing.T, repo *storage.SQLiteRepository) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), "Ada", "ada@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestCreateExpense(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()
	u := createTestUser(t, repo)
	transport, _ := repo.GetCategoryByName(ctx, "Transport")

	fixed := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	created, err := svc.CreateExpense(ctx, core.Expense{
		UserID:      u.ID,
		Amount:      12.5,
		Description: "train ticket",
		CategoryID:  transport.ID,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if created.ID == 0 {
		t.Error("created expense has zero id")
	}
	if !created.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want stamped %v", created.CreatedAt, fixed)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.published))
	}
	got := pub.published[0]
	if got.userID != u.ID || len(got.ids) != 1 || got.ids[0] != created.ID || got.source != events.SourceManual {
		t.Errorf("published event = %+v", got)
	}
}

func TestCreateExpense_KeepsClientTimestamp(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	u := createTestUser(t, repo)
	transport, _ := repo.GetCategoryByName(ctx, "Transport")

	when := time.Date(2026, time.January, 3, 8, 0, 0, 0, time.UTC)
	created, err := svc.CreateExpense(ctx, core.Expense{
		UserID:      u.ID,
		Amount:      4,
		Description: "bus",
		CategoryID:  transport.ID,
		CreatedAt:   when,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if !created.CreatedAt.Equal(when) {
		t.Errorf("CreatedAt = %v, want client-supplied %v", created.CreatedAt, when)
	}
}

func TestCreateExpense_Rejections(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()
	u := createTestUser(t, repo)
	transport, _ := repo.GetCategoryByName(ctx, "Transport")

	tests := []struct {
		name    string
		expense core.Expense
		wantErr error
	}{
		{
			name:    "unknown user",
			expense: core.Expense{UserID: 9999, Amount: 1, Description: "x", CategoryID: transport.ID},
			wantErr: core.ErrInvalidUser,
		},
		{
			name:    "unknown category",
			expense: core.Expense{UserID: u.ID, Amount: 1, Description: "x", CategoryID: 9999},
			wantErr: core.ErrInvalidCategory,
		},
		{
			name:    "negative amount",
			expense: core.Expense{UserID: u.ID, Amount: -1, Description: "x", CategoryID: transport.ID},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "empty description",
			expense: core.Expense{UserID: u.ID, Amount: 1, Description: "  ", CategoryID: transport.ID},
			wantErr: core.ErrEmptyDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExpense(ctx, tt.expense)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateExpense() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if len(pub.published) != 0 {
		t.Errorf("rejected creates published %d events", len(pub.published))
	}
}

func TestCreateExpense_PublishFailureDoesNotFail(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()
	u := createTestUser(t, repo)
	transport, _ := repo.GetCategoryByName(ctx, "Transport")
	pub.err = errors.New("broker down")

	created, err := svc.CreateExpense(ctx, core.Expense{
		UserID:      u.ID,
		Amount:      3,
		Description: "coffee",
		CategoryID:  transport.ID,
	})
	if err != nil {
		t.Fatalf("CreateExpense should succeed despite publish failure: %v", err)
	}

	if _, err := repo.GetExpense(ctx, created.ID); err != nil {
		t.Errorf("expense not persisted: %v", err)
	}
}

func TestCreateExpense_NilPublisher(t *testing.T) {
	_, repo, _ := newTestService(t)
	svc := NewExpenseService(repo, nil)
	ctx := context.Background()
	u := createTestUser(t, repo)
	transport, _ := repo.GetCategoryByName(ctx, "Transport")

	if _, err := svc.CreateExpense(ctx, core.Expense{
		UserID:      u.ID,
		Amount:      3,
		Description: "coffee",
		CategoryID:  transport.ID,
	}); err != nil {
		t.Fatalf("CreateExpense with nil publisher: %v", err)
	}
}

func TestUpdateExpense(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	u := createTestUser(t, repo)
	transport, _ := repo.GetCategoryByName(ctx, "Transport")
	bills, _ := repo.GetCategoryByName(ctx, "Bills")

	created, err := svc.CreateExpense(ctx, core.Expense{
		UserID:      u.ID,
		Amount:      10,
		Description: "metro",
		CategoryID:  transport.ID,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	updated, err := svc.UpdateExpense(ctx, created.ID, 22, "electricity", bills.ID)
	if err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	if updated.Amount != 22 || updated.Description != "electricity" || updated.CategoryID != bills.ID {
		t.Errorf("updated expense = %+v", updated)
	}

	if _, err := svc.UpdateExpense(ctx, 9999, 1, "x", bills.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateExpense(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := svc.UpdateExpense(ctx, created.ID, 1, "x", 9999); !errors.Is(err, core.ErrInvalidCategory) {
		t.Errorf("UpdateExpense(bad category) error = %v, want ErrInvalidCategory", err)
	}
}

func TestDeleteExpense(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	u := createTestUser(t, repo)
	transport, _ := repo.GetCategoryByName(ctx, "Transport")

	created, err := svc.CreateExpense(ctx, core.Expense{
		UserID:      u.ID,
		Amount:      10,
		Description: "metro",
		CategoryID:  transport.ID,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	if err := svc.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if _, err := repo.GetExpense(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetExpense after delete = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteExpense(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteExpense = %v, want ErrNotFound", err)
	}
}
