package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"vittrack/internal/ingest"
	"vittrack/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError emits the single structured error shape every endpoint uses.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// statusForPipelineError maps a pipeline failure kind to an HTTP status.
// Client causes keep their message; internal failures get a generic one so
// upstream errors never leak to callers.
func statusForPipelineError(err error) (int, string) {
	switch ingest.KindOf(err) {
	case ingest.KindNotFound:
		return http.StatusNotFound, err.Error()
	case ingest.KindInvalidInput:
		return http.StatusBadRequest, err.Error()
	case ingest.KindUpstream:
		return http.StatusInternalServerError, "audio processing failed"
	case ingest.KindPersistence:
		return http.StatusInternalServerError, "could not store expenses"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

// pathID extracts the numeric trailing segment of a path like
// "/expenses/42". Returns false for the bare collection path.
func pathID(path, prefix string) (int64, bool) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decodeJSON reads a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
