package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// handleAnalyticsSummary serves the monthly per-category totals maintained
// by the aggregate worker. Year and month default to the current month.
func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	q := r.URL.Query()
	userID, err := strconv.ParseInt(strings.TrimSpace(q.Get("user_id")), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "user_id must be a positive integer")
		return
	}

	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	exists, err := s.storage.UserExists(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "User lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load summary")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	totals, err := s.storage.GetMonthlySummary(r.Context(), userID, year, time.Month(month))
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary lookup failed",
			"user_id", userID, "year", year, "month", month, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load summary")
		return
	}

	type totalResponse struct {
		CategoryID   int64   `json:"category_id"`
		CategoryName string  `json:"category_name"`
		Total        float64 `json:"total"`
		Count        int64   `json:"count"`
	}
	out := make([]totalResponse, 0, len(totals))
	var grand float64
	for _, t := range totals {
		out = append(out, totalResponse{
			CategoryID:   t.CategoryID,
			CategoryName: t.CategoryName,
			Total:        t.Total,
			Count:        t.Count,
		})
		grand += t.Total
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"year":    year,
		"month":   month,
		"total":   grand,
		"totals":  out,
	})
}
