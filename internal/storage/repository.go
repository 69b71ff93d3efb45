package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"vittrack/internal/core"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when registering an already-known email.
	ErrDuplicateEmail = errors.New("email already registered")
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks database connectivity, used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// --- Users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, name, email, passwordHash string) (core.User, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, email).Scan(&exists)
	if err != nil {
		return core.User{}, fmt.Errorf("check existing email: %w", err)
	}
	if exists > 0 {
		return core.User{}, ErrDuplicateEmail
	}

	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		name, email, passwordHash, now)
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}

	slog.InfoContext(ctx, "User created", "id", id, "email", email)

	return core.User{ID: id, Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: now}, nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

// UserExists reports whether a user row exists for the given id.
func (r *SQLiteRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return n > 0, nil
}

// SearchUsers matches name and email as case-insensitive substrings.
// Empty criteria match everything.
func (r *SQLiteRepository) SearchUsers(ctx context.Context, name, email string) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users
		 WHERE name LIKE ? COLLATE NOCASE AND email LIKE ? COLLATE NOCASE
		 ORDER BY id`,
		"%"+name+"%", "%"+email+"%")
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// --- Categories ---

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) GetCategoryByName(ctx context.Context, name string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE name = ?`, name).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCategoryByID(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = ?`, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category by id: %w", err)
	}
	return c, nil
}

// --- Expenses ---

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount, description, category_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Amount, e.Description, e.CategoryID, e.CreatedAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense insert id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"user_id", e.UserID,
		"description", e.Description,
		"amount", e.Amount,
		"category_id", e.CategoryID)

	return e, nil
}

// CreateExpenseBatch inserts all expenses inside a single transaction.
// Either every row is persisted or none is.
func (r *SQLiteRepository) CreateExpenseBatch(ctx context.Context, expenses []core.Expense) ([]int64, error) {
	if len(expenses) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expenses (user_id, amount, description, category_id, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(expenses))
	for _, e := range expenses {
		res, err := stmt.ExecContext(ctx, e.UserID, e.Amount, e.Description, e.CategoryID, e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert expense %q: %w", e.Description, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("expense insert id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	slog.InfoContext(ctx, "Expense batch saved", "count", len(ids), "user_id", expenses[0].UserID)

	return ids, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	var e core.Expense
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount, description, category_id, created_at FROM expenses WHERE id = ?`, id).
		Scan(&e.ID, &e.UserID, &e.Amount, &e.Description, &e.CategoryID, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListExpensesByUser(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount, description, category_id, created_at
		 FROM expenses WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Description, &e.CategoryID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id int64, amount float64, description string, categoryID int64) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, description = ?, category_id = ? WHERE id = ?`,
		amount, description, categoryID, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense rows affected: %w", err)
	}
	if affected == 0 {
		return core.Expense{}, ErrNotFound
	}
	return r.GetExpense(ctx, id)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Monthly aggregates ---

// CategoryTotal is one row of a monthly per-category summary.
type CategoryTotal struct {
	CategoryID   int64
	CategoryName string
	Total        float64
	Count        int64
}

// RecomputeMonthlyTotals rebuilds the aggregate rows for one user-month from
// the expenses table. It is idempotent, so redelivered messages are harmless.
func (r *SQLiteRepository) RecomputeMonthlyTotals(ctx context.Context, userID int64, year int, month time.Month) error {
	expenses, err := r.ListExpensesByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load expenses for aggregation: %w", err)
	}

	type agg struct {
		total float64
		count int64
	}
	byCategory := make(map[int64]agg)
	for _, e := range expenses {
		if e.CreatedAt.Year() != year || e.CreatedAt.Month() != month {
			continue
		}
		a := byCategory[e.CategoryID]
		a.total += e.Amount
		a.count++
		byCategory[e.CategoryID] = a
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin aggregate transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM monthly_category_totals WHERE user_id = ? AND year = ? AND month = ?`,
		userID, year, int(month)); err != nil {
		return fmt.Errorf("clear aggregates: %w", err)
	}

	for categoryID, a := range byCategory {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO monthly_category_totals (user_id, year, month, category_id, total_amount, expense_count)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			userID, year, int(month), categoryID, a.total, a.count); err != nil {
			return fmt.Errorf("insert aggregate: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit aggregates: %w", err)
	}

	slog.InfoContext(ctx, "Monthly totals recomputed",
		"user_id", userID, "year", year, "month", int(month), "categories", len(byCategory))

	return nil
}

// ListExpenseUserIDs returns the distinct ids of users that own at least one
// expense. The reconcile pass uses it to bound the set of aggregates it
// rebuilds; month filtering happens in RecomputeMonthlyTotals.
func (r *SQLiteRepository) ListExpenseUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM expenses ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list expense user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) GetMonthlySummary(ctx context.Context, userID int64, year int, month time.Month) ([]CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.category_id, c.name, t.total_amount, t.expense_count
		 FROM monthly_category_totals t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = ? AND t.year = ? AND t.month = ?
		 ORDER BY t.total_amount DESC`,
		userID, year, int(month))
	if err != nil {
		return nil, fmt.Errorf("get monthly summary: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.CategoryID, &t.CategoryName, &t.Total, &t.Count); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
