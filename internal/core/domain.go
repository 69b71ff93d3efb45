package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

// DefaultCategoryName is the category every unmatched extraction result
// falls back to. It must exist in the seeded category set.
const DefaultCategoryName = "Miscellaneous"

type (
	// User is an account that owns expenses.
	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Category is immutable reference data seeded by migrations.
	Category struct {
		ID   int64
		Name string
	}

	// CandidateExpense is an unvalidated expense proposed by the
	// extraction step. The category is a free-text name, not an ID.
	CandidateExpense struct {
		Amount      float64
		Description string
		Category    string
	}

	// Expense is a persisted expense row.
	Expense struct {
		ID          int64
		UserID      int64
		Amount      float64
		Description string
		CategoryID  int64
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidUser      = errors.New("invalid user reference")
	ErrInvalidCategory  = errors.New("invalid category reference")
)

// ValidAmount reports whether a is a finite, non-negative number.
func ValidAmount(a float64) bool {
	return !math.IsNaN(a) && !math.IsInf(a, 0) && a >= 0
}

// Validate checks amount and description only. The category is free text
// from the extraction model; any name, including an empty one, resolves
// against the registry and falls back to the default category.
func (c CandidateExpense) Validate() error {
	if !ValidAmount(c.Amount) {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(c.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

func (e Expense) Validate() error {
	if e.UserID <= 0 {
		return ErrInvalidUser
	}
	if !ValidAmount(e.Amount) {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if e.CategoryID <= 0 {
		return ErrInvalidCategory
	}
	return nil
}
