package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vittrack/internal/core"
	"vittrack/internal/storage"
)

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/users/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := sanitizeInput(req.Name)
	if len(name) < 2 || len(name) > 50 {
		writeError(w, http.StatusBadRequest, "name must be between 2 and 50 characters")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	// bcrypt rejects passwords longer than 72 bytes.
	if len(req.Password) < 6 || len(req.Password) > 72 {
		writeError(w, http.StatusBadRequest, "password must be between 6 and 72 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.ErrorContext(r.Context(), "Password hashing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := s.storage.CreateUser(r.Context(), name, req.Email, string(hash))
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, "email already registered")
			return
		}
		slog.ErrorContext(r.Context(), "User creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not create user")
		return
	}

	slog.InfoContext(r.Context(), "User registered", "id", user.ID, "email", user.Email)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// handleLogin verifies email+password. Unknown email and wrong password get
// the same answer so the endpoint never confirms which one was wrong.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.storage.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !isNotFound(err) {
			slog.ErrorContext(r.Context(), "Login lookup failed", "error", err)
		}
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	slog.InfoContext(r.Context(), "User logged in", "id", user.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    toUserResponse(user),
	})
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	users, err := s.storage.SearchUsers(r.Context(), sanitizeInput(req.Name), sanitizeInput(req.Email))
	if err != nil {
		slog.ErrorContext(r.Context(), "User search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not search users")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}
