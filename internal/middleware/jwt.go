package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/notes-api/internal/auth"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type key string

const identityKey key = "identity"

// TokenVerifier is satisfied by *auth.Service.
type TokenVerifier interface {
	VerifyToken(token string) (auth.Identity, error)
}

// JWTMiddleware guards routes with a bearer token. A missing credential is 401,
// a credential that fails verification is 403. The user row is never re-read:
// the verified token payload is trusted until it expires.
func JWTMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, "missing authorization token", http.StatusUnauthorized)
				return
			}

			id, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				slog.Debug("token rejected",
					"request_id", chimw.GetReqID(r.Context()),
					"error", err.Error())
				writeError(w, "invalid or expired token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// bearerToken extracts the token from "Bearer <token>". The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WithIdentity stores id in ctx. Used by JWTMiddleware and by handler tests.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the identity attached by JWTMiddleware.
func GetIdentity(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// GetUserID returns the authenticated user's id.
func GetUserID(ctx context.Context) (int, bool) {
	id, ok := GetIdentity(ctx)
	return id.UserID, ok
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
