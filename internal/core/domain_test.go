package core

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestCandidateExpense_Validate(t *testing.T) {
	tests := []struct {
		name      string
		candidate CandidateExpense
		wantErr   error
	}{
		{
			name:      "valid candidate",
			candidate: CandidateExpense{Amount: 12.5, Description: "bus", Category: "Transport"},
			wantErr:   nil,
		},
		{
			name:      "zero amount is allowed",
			candidate: CandidateExpense{Amount: 0, Description: "freebie", Category: "Shopping"},
			wantErr:   nil,
		},
		{
			name:      "negative amount",
			candidate: CandidateExpense{Amount: -3, Description: "refund", Category: "Shopping"},
			wantErr:   ErrInvalidAmount,
		},
		{
			name:      "NaN amount",
			candidate: CandidateExpense{Amount: math.NaN(), Description: "x", Category: "Bills"},
			wantErr:   ErrInvalidAmount,
		},
		{
			name:      "infinite amount",
			candidate: CandidateExpense{Amount: math.Inf(1), Description: "x", Category: "Bills"},
			wantErr:   ErrInvalidAmount,
		},
		{
			name:      "blank description",
			candidate: CandidateExpense{Amount: 5, Description: "   ", Category: "Bills"},
			wantErr:   ErrEmptyDescription,
		},
		{
			name:      "blank category is allowed, registry resolves it",
			candidate: CandidateExpense{Amount: 5, Description: "water", Category: ""},
			wantErr:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.candidate.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpense_Validate(t *testing.T) {
	valid := Expense{UserID: 1, Amount: 9.99, Description: "coffee", CategoryID: 1}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	t.Run("missing user", func(t *testing.T) {
		e := valid
		e.UserID = 0
		if err := e.Validate(); !errors.Is(err, ErrInvalidUser) {
			t.Errorf("Validate() = %v, want %v", err, ErrInvalidUser)
		}
	})

	t.Run("missing category", func(t *testing.T) {
		e := valid
		e.CategoryID = 0
		if err := e.Validate(); !errors.Is(err, ErrInvalidCategory) {
			t.Errorf("Validate() = %v, want %v", err, ErrInvalidCategory)
		}
	})

	t.Run("overlong description", func(t *testing.T) {
		e := valid
		e.Description = strings.Repeat("a", 201)
		if err := e.Validate(); err == nil {
			t.Error("Validate() accepted 201-char description")
		}
	})
}
