package handlers

import (
	"net/http"
	"strconv"

	"github.com/crucial707/notes-api/internal/repo"
	"github.com/go-chi/render"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

// AuditHandler serves the caller's activity log.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// ListActivity returns the caller's recent activity, newest first. Query: limit (default 50, max 200), offset (default 0).
func (h *AuditHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit := defaultActivityLimit
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= maxActivityLimit {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	entries, err := h.Repo.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		internalError(w, r, "list activity", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"items":  entries,
		"limit":  limit,
		"offset": offset,
	})
}
