package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/notes-api/internal/logging"
	"github.com/crucial707/notes-api/internal/models"
	"github.com/crucial707/notes-api/internal/repo"
	"github.com/go-chi/render"
)

// ==========================
// UserHandler
// ==========================

// UserHandler serves the account routes of the authenticated caller.
type UserHandler struct {
	Repo      *repo.UserRepo
	AuditRepo *repo.AuditRepo
}

type changePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

type deleteAccountInput struct {
	Password string `json:"password" validate:"required"`
}

// ==========================
// Profile
// ==========================
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.Repo.GetByID(r.Context(), userID)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, r, "get profile", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{"user": user})
}

// ==========================
// Change Password
// ==========================
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var input changePasswordInput
	if !decodeBody(w, r, &input) {
		return
	}
	if !validateInput(w, &input) {
		return
	}

	updated, err := h.Repo.UpdatePassword(r.Context(), userID, input.OldPassword, input.NewPassword)
	if errors.Is(err, repo.ErrPasswordTooLong) {
		JSONValidationError(w, "missing or invalid fields: newPassword",
			map[string]string{"newPassword": "must be at most 72 bytes"}, http.StatusBadRequest)
		return
	}
	if err != nil {
		internalError(w, r, "change password", err)
		return
	}
	if !updated {
		JSONError(w, "current password is incorrect", http.StatusUnauthorized)
		return
	}

	if h.AuditRepo != nil {
		if err := h.AuditRepo.Log(r.Context(), userID, models.ActionPasswordChange, models.ResourceUser, userID, ""); err != nil {
			slog.Warn("audit log failed", "action", models.ActionPasswordChange, "user_id", userID, logging.Err(err))
		}
	}

	render.JSON(w, r, map[string]string{"message": "password updated"})
}

// ==========================
// Delete Account
// ==========================

// DeleteAccount removes the caller with all notes and activity. Tokens already
// issued stay verifiable until expiry but no longer match any stored rows.
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var input deleteAccountInput
	if !decodeBody(w, r, &input) {
		return
	}
	if !validateInput(w, &input) {
		return
	}

	deleted, err := h.Repo.Delete(r.Context(), userID, input.Password)
	if err != nil {
		internalError(w, r, "delete account", err)
		return
	}
	if !deleted {
		JSONError(w, "password is incorrect", http.StatusUnauthorized)
		return
	}

	slog.Info("account deleted", "user_id", userID)
	render.JSON(w, r, map[string]string{"message": "account deleted"})
}
