// Package middleware provides HTTP middlewares for authentication and
// request logging.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/akovalyov/deeptrace/internal/apperr"
	"github.com/akovalyov/deeptrace/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenVerifier resolves a raw bearer token to a subject identifier.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserSource loads a user by ID.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticator resolves the Authorization bearer token on each request into
// an active user and stores it in the request context. The result is not
// cached across requests.
//
// Failure modes: missing or invalid token 403, unknown subject 404, inactive
// account 400.
func Authenticator(tokens TokenVerifier, users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeDetail(w, http.StatusForbidden, apperr.ErrInvalidToken.Error())
				return
			}

			subject, err := tokens.Verify(raw)
			if err != nil {
				writeDetail(w, http.StatusForbidden, apperr.ErrInvalidToken.Error())
				return
			}

			user, err := users.GetByID(r.Context(), subject)
			if errors.Is(err, apperr.ErrNotFound) {
				writeDetail(w, http.StatusNotFound, "user not found")
				return
			}
			if err != nil {
				writeDetail(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !user.IsActive {
				writeDetail(w, http.StatusBadRequest, apperr.ErrInactiveUser.Error())
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSuperuser rejects requests whose authenticated user lacks the
// superuser flag. It must run after Authenticator.
func RequireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil || !user.IsSuperuser {
			writeDetail(w, http.StatusForbidden, apperr.ErrForbidden.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext extracts the authenticated user from the request
// context. Returns nil if the request did not pass the Authenticator.
func GetUserFromContext(ctx context.Context) *models.User {
	if u, ok := ctx.Value(userKey).(*models.User); ok {
		return u
	}
	return nil
}

// WithUser returns a context carrying user, for tests exercising handlers
// without the full middleware chain.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
