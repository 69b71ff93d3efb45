package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"vittrack/internal/ingest"
)

// maxUploadBytes caps the multipart form kept in memory before spilling to
// disk.
const maxUploadBytes = 32 << 20

// handleProcessAudio accepts a multipart voice recording plus a user_id form
// field and runs the full ingestion pipeline. The request either commits the
// whole extracted batch or nothing.
func (s *Server) handleProcessAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	userIDStr := strings.TrimSpace(r.FormValue("user_id"))
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "user_id must be a positive integer")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	result, err := s.pipeline.Run(r.Context(), ingest.Upload{
		Filename: header.Filename,
		UserID:   userID,
		Content:  file,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "Audio processing failed",
			"user_id", userID,
			"filename", header.Filename,
			"error", err)
		status, detail := statusForPipelineError(err)
		writeError(w, status, detail)
		return
	}

	ids := result.ExpenseIDs
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     fmt.Sprintf("%d expenses processed and stored successfully", result.Created),
		"expense_ids": ids,
	})
}
