package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"vittrack/internal/core"
)

type expenseResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	CategoryID  int64     `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		Amount:      e.Amount,
		Description: e.Description,
		CategoryID:  e.CategoryID,
		CreatedAt:   e.CreatedAt,
	}
}

// handleExpenses dispatches the /expenses/ subtree: POST on the collection,
// PUT and DELETE on /expenses/{id}.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	id, hasID := pathID(r.URL.Path, "/expenses/")

	switch {
	case r.Method == http.MethodPost && !hasID:
		s.handleCreateExpense(w, r)
	case r.Method == http.MethodPut && hasID:
		s.handleUpdateExpense(w, r, id)
	case r.Method == http.MethodDelete && hasID:
		s.handleDeleteExpense(w, r, id)
	case !hasID:
		methodNotAllowed(w, "POST")
	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      int64      `json:"user_id"`
		Amount      float64    `json:"amount"`
		Description string     `json:"description"`
		CategoryID  int64      `json:"category_id"`
		CreatedAt   *time.Time `json:"created_at"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	expense := core.Expense{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Description: sanitizeInput(req.Description),
		CategoryID:  req.CategoryID,
	}
	if req.CreatedAt != nil {
		expense.CreatedAt = *req.CreatedAt
	}

	created, err := s.expenses.CreateExpense(r.Context(), expense)
	if err != nil {
		if errors.Is(err, core.ErrInvalidUser) || errors.Is(err, core.ErrInvalidCategory) ||
			errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrEmptyDescription) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Expense creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create expense")
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseResponse(created))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
		CategoryID  int64   `json:"category_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.expenses.UpdateExpense(r.Context(), id, req.Amount, sanitizeInput(req.Description), req.CategoryID)
	if err != nil {
		switch {
		case isNotFound(err):
			writeError(w, http.StatusNotFound, "expense not found")
		case errors.Is(err, core.ErrInvalidCategory) || errors.Is(err, core.ErrInvalidAmount) ||
			errors.Is(err, core.ErrEmptyDescription):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Expense update failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "could not update expense")
		}
		return
	}

	writeJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.expenses.DeleteExpense(r.Context(), id); err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Expense deletion failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete expense")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "expense deleted successfully"})
}

func (s *Server) handleGetExpenses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exists, err := s.storage.UserExists(r.Context(), req.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "User lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list expenses")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	expenses, err := s.storage.ListExpensesByUser(r.Context(), req.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Expense listing failed", "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not list expenses")
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}
