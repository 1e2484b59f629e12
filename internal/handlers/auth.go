package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/crucial707/notes-api/internal/auth"
	"github.com/crucial707/notes-api/internal/metrics"
	"github.com/crucial707/notes-api/internal/models"
	"github.com/crucial707/notes-api/internal/repo"
	"github.com/go-chi/render"
)

// ==========================
// AuthHandler
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Tokens   *auth.Service
}

type credentialsInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input credentialsInput
	if !decodeBody(w, r, &input) {
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	if !validateInput(w, &input) {
		metrics.IncAuthAttempt("register", "invalid")
		return
	}

	user, err := h.UserRepo.Create(r.Context(), input.Username, input.Password)
	switch {
	case errors.Is(err, repo.ErrConflict):
		metrics.IncAuthAttempt("register", "conflict")
		JSONError(w, "username already exists", http.StatusConflict)
		return
	case errors.Is(err, repo.ErrPasswordTooLong):
		metrics.IncAuthAttempt("register", "invalid")
		JSONValidationError(w, "missing or invalid fields: password",
			map[string]string{"password": "must be at most 72 bytes"}, http.StatusBadRequest)
		return
	case err != nil:
		metrics.IncAuthAttempt("register", "error")
		internalError(w, r, "register", err)
		return
	}

	metrics.IncAuthAttempt("register", "success")
	h.respondWithToken(w, r, user, http.StatusCreated)
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if !decodeBody(w, r, &input) {
		return
	}
	// Same normalization as Register, so the stored name matches.
	input.Username = strings.TrimSpace(input.Username)
	if !validateInput(w, &input) {
		metrics.IncAuthAttempt("login", "invalid")
		return
	}

	user, err := h.UserRepo.Verify(r.Context(), input.Username, input.Password)
	if errors.Is(err, repo.ErrInvalidCredentials) {
		metrics.IncAuthAttempt("login", "denied")
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		metrics.IncAuthAttempt("login", "error")
		internalError(w, r, "login", err)
		return
	}

	metrics.IncAuthAttempt("login", "success")
	h.respondWithToken(w, r, user, http.StatusOK)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	token, expiresAt, err := h.Tokens.IssueToken(user)
	if err != nil {
		internalError(w, r, "issue token", err)
		return
	}

	render.Status(r, status)
	render.JSON(w, r, authResponse{Token: token, ExpiresAt: expiresAt, User: user})
}
