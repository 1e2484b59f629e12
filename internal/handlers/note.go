package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/crucial707/notes-api/internal/logging"
	"github.com/crucial707/notes-api/internal/metrics"
	"github.com/crucial707/notes-api/internal/middleware"
	"github.com/crucial707/notes-api/internal/models"
	"github.com/crucial707/notes-api/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ==========================
// NoteHandler
// ==========================

// NoteHandler serves the owner-scoped note routes. Every store call is keyed
// by the caller's id, so foreign notes look exactly like missing ones.
type NoteHandler struct {
	Repo      *repo.NoteRepo
	AuditRepo *repo.AuditRepo
}

type noteInput struct {
	Title   string `json:"title" validate:"notblank,max=255"`
	Content string `json:"content" validate:"notblank"`
	Tags    string `json:"tags" validate:"max=500"`
}

func (in *noteInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Tags = strings.TrimSpace(in.Tags)
}

// ==========================
// List Notes
// ==========================
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	notes, err := h.Repo.ListByOwner(r.Context(), userID, strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		internalError(w, r, "list notes", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"notes": notes,
		"count": len(notes),
	})
}

// ==========================
// Get Note
// ==========================
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	note, err := h.Repo.GetOwned(r.Context(), id, userID)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, ErrMessageNoteNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, r, "get note", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{"note": note})
}

// ==========================
// Create Note
// ==========================
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var input noteInput
	if !decodeBody(w, r, &input) {
		return
	}
	input.normalize()
	if !validateInput(w, &input) {
		return
	}

	note, err := h.Repo.Create(r.Context(), userID, input.Title, input.Content, input.Tags)
	if err != nil {
		internalError(w, r, "create note", err)
		return
	}

	metrics.IncNoteMutation(models.ActionCreate)
	h.audit(r, userID, models.ActionCreate, note.ID, note.Title)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{"note": note})
}

// ==========================
// Update Note
// ==========================
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var input noteInput
	if !decodeBody(w, r, &input) {
		return
	}
	input.normalize()
	if !validateInput(w, &input) {
		return
	}

	note, err := h.Repo.Update(r.Context(), id, userID, input.Title, input.Content, input.Tags)
	if errors.Is(err, repo.ErrNotFound) {
		JSONError(w, ErrMessageNoteNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, r, "update note", err)
		return
	}

	metrics.IncNoteMutation(models.ActionUpdate)
	h.audit(r, userID, models.ActionUpdate, note.ID, note.Title)

	render.JSON(w, r, map[string]interface{}{"note": note})
}

// ==========================
// Delete Note
// ==========================
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	deleted, err := h.Repo.Delete(r.Context(), id, userID)
	if err != nil {
		internalError(w, r, "delete note", err)
		return
	}
	if !deleted {
		JSONError(w, ErrMessageNoteNotFound, http.StatusNotFound)
		return
	}

	metrics.IncNoteMutation(models.ActionDelete)
	h.audit(r, userID, models.ActionDelete, id, "")

	render.JSON(w, r, map[string]string{"message": "note deleted"})
}

// audit records a note mutation. A failed insert is logged and never fails the request.
func (h *NoteHandler) audit(r *http.Request, userID int, action string, noteID int, details string) {
	if h.AuditRepo == nil {
		return
	}
	if err := h.AuditRepo.Log(r.Context(), userID, action, models.ResourceNote, noteID, details); err != nil {
		slog.Warn("audit log failed", "action", action, "note_id", noteID, logging.Err(err))
	}
}

// requireUserID reads the identity set by JWTMiddleware. Routes mounted
// without the gate answer 401.
func requireUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		JSONError(w, "missing authorization token", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

func noteID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		JSONError(w, "invalid note id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
