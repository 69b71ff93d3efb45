package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"vittrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createTestUser(t *testing.T, repo *SQLiteRepository) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), "Ada", "ada@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestMigrations_SeedCategories(t *testing.T) {
	repo := newTestRepo(t)

	categories, err := repo.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}

	want := []string{"Groceries", "Entertainment", "Transport", "Bills", "Shopping", "Miscellaneous"}
	if len(categories) != len(want) {
		t.Fatalf("seeded %d categories, want %d", len(categories), len(want))
	}
	for i, name := range want {
		if categories[i].Name != name {
			t.Errorf("category[%d] = %s, want %s", i, categories[i].Name, name)
		}
	}

	misc, err := repo.GetCategoryByName(context.Background(), core.DefaultCategoryName)
	if err != nil {
		t.Fatalf("default category missing: %v", err)
	}
	if misc.ID == 0 {
		t.Error("default category has zero id")
	}
}

func TestUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := createTestUser(t, repo)

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, "Other", "ada@example.com", "hash2")
		if !errors.Is(err, ErrDuplicateEmail) {
			t.Errorf("CreateUser duplicate = %v, want ErrDuplicateEmail", err)
		}
	})

	t.Run("lookup by id and email", func(t *testing.T) {
		got, err := repo.GetUserByID(ctx, u.ID)
		if err != nil || got.Email != "ada@example.com" {
			t.Errorf("GetUserByID = %+v, %v", got, err)
		}
		got, err = repo.GetUserByEmail(ctx, "ada@example.com")
		if err != nil || got.ID != u.ID {
			t.Errorf("GetUserByEmail = %+v, %v", got, err)
		}
	})

	t.Run("missing user", func(t *testing.T) {
		if _, err := repo.GetUserByID(ctx, 9999); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetUserByID missing = %v, want ErrNotFound", err)
		}
		exists, err := repo.UserExists(ctx, 9999)
		if err != nil || exists {
			t.Errorf("UserExists(9999) = %v, %v", exists, err)
		}
	})

	t.Run("search", func(t *testing.T) {
		users, err := repo.SearchUsers(ctx, "ad", "")
		if err != nil || len(users) != 1 {
			t.Errorf("SearchUsers by name = %d users, err %v", len(users), err)
		}
		users, err = repo.SearchUsers(ctx, "", "EXAMPLE.COM")
		if err != nil || len(users) != 1 {
			t.Errorf("SearchUsers by email = %d users, err %v", len(users), err)
		}
		users, err = repo.SearchUsers(ctx, "nobody", "")
		if err != nil || len(users) != 0 {
			t.Errorf("SearchUsers no match = %d users, err %v", len(users), err)
		}
	})
}

func TestCreateExpenseBatch_Atomicity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := createTestUser(t, repo)

	transport, err := repo.GetCategoryByName(ctx, "Transport")
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}

	now := time.Now()
	batch := []core.Expense{
		{UserID: u.ID, Amount: 12.5, Description: "bus", CategoryID: transport.ID, CreatedAt: now},
		// References a category that does not exist, so the FK constraint
		// fails after the first row was already added inside the tx.
		{UserID: u.ID, Amount: 3, Description: "ghost", CategoryID: 9999, CreatedAt: now},
	}

	if _, err := repo.CreateExpenseBatch(ctx, batch); err == nil {
		t.Fatal("CreateExpenseBatch succeeded with invalid category reference")
	}

	expenses, err := repo.ListExpensesByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListExpensesByUser: %v", err)
	}
	if len(expenses) != 0 {
		t.Errorf("batch failure left %d rows visible, want 0", len(expenses))
	}
}

func TestCreateExpenseBatch_Success(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := createTestUser(t, repo)

	transport, _ := repo.GetCategoryByName(ctx, "Transport")
	groceries, _ := repo.GetCategoryByName(ctx, "Groceries")

	now := time.Now()
	ids, err := repo.CreateExpenseBatch(ctx, []core.Expense{
		{UserID: u.ID, Amount: 12.5, Description: "bus", CategoryID: transport.ID, CreatedAt: now},
		{UserID: u.ID, Amount: 30, Description: "weekly shop", CategoryID: groceries.ID, CreatedAt: now},
	})
	if err != nil {
		t.Fatalf("CreateExpenseBatch: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %d ids, want 2", len(ids))
	}
	if ids[0] >= ids[1] {
		t.Errorf("ids not in insertion order: %v", ids)
	}

	expenses, err := repo.ListExpensesByUser(ctx, u.ID)
	if err != nil || len(expenses) != 2 {
		t.Fatalf("ListExpensesByUser = %d rows, err %v", len(expenses), err)
	}
	if expenses[0].Description != "bus" || expenses[1].Description != "weekly shop" {
		t.Errorf("unexpected rows: %+v", expenses)
	}
}

func TestExpenseCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := createTestUser(t, repo)
	bills, _ := repo.GetCategoryByName(ctx, "Bills")
	shopping, _ := repo.GetCategoryByName(ctx, "Shopping")

	created, err := repo.CreateExpense(ctx, core.Expense{
		UserID: u.ID, Amount: 55.2, Description: "electricity", CategoryID: bills.ID, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	updated, err := repo.UpdateExpense(ctx, created.ID, 60, "electricity march", shopping.ID)
	if err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	if updated.Amount != 60 || updated.Description != "electricity march" || updated.CategoryID != shopping.ID {
		t.Errorf("UpdateExpense result = %+v", updated)
	}

	if _, err := repo.UpdateExpense(ctx, 9999, 1, "x", bills.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateExpense missing = %v, want ErrNotFound", err)
	}

	if err := repo.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if err := repo.DeleteExpense(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteExpense twice = %v, want ErrNotFound", err)
	}
}

func TestMonthlyTotals(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u := createTestUser(t, repo)
	transport, _ := repo.GetCategoryByName(ctx, "Transport")
	groceries, _ := repo.GetCategoryByName(ctx, "Groceries")

	march := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	april := time.Date(2026, time.April, 2, 9, 0, 0, 0, time.UTC)

	_, err := repo.CreateExpenseBatch(ctx, []core.Expense{
		{UserID: u.ID, Amount: 10, Description: "bus", CategoryID: transport.ID, CreatedAt: march},
		{UserID: u.ID, Amount: 5, Description: "tram", CategoryID: transport.ID, CreatedAt: march},
		{UserID: u.ID, Amount: 40, Description: "shop", CategoryID: groceries.ID, CreatedAt: march},
		{UserID: u.ID, Amount: 99, Description: "other month", CategoryID: groceries.ID, CreatedAt: april},
	})
	if err != nil {
		t.Fatalf("CreateExpenseBatch: %v", err)
	}

	if err := repo.RecomputeMonthlyTotals(ctx, u.ID, 2026, time.March); err != nil {
		t.Fatalf("RecomputeMonthlyTotals: %v", err)
	}

	totals, err := repo.GetMonthlySummary(ctx, u.ID, 2026, time.March)
	if err != nil {
		t.Fatalf("GetMonthlySummary: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("got %d aggregate rows, want 2", len(totals))
	}
	// Ordered by total descending.
	if totals[0].CategoryName != "Groceries" || totals[0].Total != 40 || totals[0].Count != 1 {
		t.Errorf("totals[0] = %+v", totals[0])
	}
	if totals[1].CategoryName != "Transport" || totals[1].Total != 15 || totals[1].Count != 2 {
		t.Errorf("totals[1] = %+v", totals[1])
	}

	// Recomputing again must not double count.
	if err := repo.RecomputeMonthlyTotals(ctx, u.ID, 2026, time.March); err != nil {
		t.Fatalf("RecomputeMonthlyTotals (second run): %v", err)
	}
	totals, _ = repo.GetMonthlySummary(ctx, u.ID, 2026, time.March)
	if len(totals) != 2 || totals[1].Total != 15 {
		t.Errorf("recompute is not idempotent: %+v", totals)
	}
}

func TestListExpenseUserIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	ids, err := repo.ListExpenseUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListExpenseUserIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("empty database returned user ids %v", ids)
	}

	u1 := createTestUser(t, repo)
	u2, err := repo.CreateUser(ctx, "Grace", "grace@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	transport, _ := repo.GetCategoryByName(ctx, "Transport")
	now := time.Now().UTC()
	for _, e := range []core.Expense{
		{UserID: u1.ID, Amount: 3, Description: "bus", CategoryID: transport.ID, CreatedAt: now},
		{UserID: u1.ID, Amount: 4, Description: "tram", CategoryID: transport.ID, CreatedAt: now},
		{UserID: u2.ID, Amount: 7, Description: "taxi", CategoryID: transport.ID, CreatedAt: now},
	} {
		if _, err := repo.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
	}

	ids, err = repo.ListExpenseUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListExpenseUserIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != u1.ID || ids[1] != u2.ID {
		t.Errorf("ListExpenseUserIDs = %v, want [%d %d]", ids, u1.ID, u2.ID)
	}
}
