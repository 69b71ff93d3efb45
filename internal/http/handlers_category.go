package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	categories, err := s.storage.ListCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Category listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list categories")
		return
	}

	type categoryResponse struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, out)
}
