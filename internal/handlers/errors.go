package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crucial707/notes-api/internal/logging"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// ErrMessageNoteNotFound answers every note lookup that misses, whether the note
// does not exist or belongs to someone else.
const ErrMessageNoteNotFound = "note not found or unauthorized"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

// decodeBody decodes the JSON request body into v. A body cut off by the
// MaxBytes middleware answers 413, any other decode failure 400.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := render.DecodeJSON(r.Body, v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return false
	}
	JSONError(w, "invalid JSON", http.StatusBadRequest)
	return false
}

// internalError logs err with the request id and answers 500 without details.
func internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error("request failed",
		"op", op,
		"request_id", chimw.GetReqID(r.Context()),
		logging.Err(err))
	JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
}
