package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akovalyov/deeptrace/internal/apperr"
	"github.com/akovalyov/deeptrace/internal/middleware"
	"github.com/akovalyov/deeptrace/internal/models"
)

type fakeVerifier struct {
	subject string
	err     error
}

func (f *fakeVerifier) Verify(string) (string, error) {
	return f.subject, f.err
}

type fakeUserSource struct {
	user *models.User
	err  error
}

func (f *fakeUserSource) GetByID(context.Context, string) (*models.User, error) {
	return f.user, f.err
}

func TestAuthenticator(t *testing.T) {
	active := &models.User{ID: "u1", Email: "a@x.com", IsActive: true}
	inactive := &models.User{ID: "u2", Email: "b@x.com", IsActive: false}

	tests := []struct {
		name     string
		header   string
		verifier *fakeVerifier
		users    *fakeUserSource
		wantCode int
	}{
		{
			name:     "missing header",
			header:   "",
			verifier: &fakeVerifier{},
			users:    &fakeUserSource{},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "not a bearer scheme",
			header:   "Basic dXNlcjpwdw==",
			verifier: &fakeVerifier{},
			users:    &fakeUserSource{},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "invalid token",
			header:   "Bearer bad",
			verifier: &fakeVerifier{err: apperr.ErrInvalidToken},
			users:    &fakeUserSource{},
			wantCode: http.StatusForbidden,
		},
		{
			name:     "unknown subject",
			header:   "Bearer good",
			verifier: &fakeVerifier{subject: "ghost"},
			users:    &fakeUserSource{err: apperr.ErrNotFound},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "inactive user",
			header:   "Bearer good",
			verifier: &fakeVerifier{subject: "u2"},
			users:    &fakeUserSource{user: inactive},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "active user passes",
			header:   "Bearer good",
			verifier: &fakeVerifier{subject: "u1"},
			users:    &fakeUserSource{user: active},
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *models.User
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = middleware.GetUserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			middleware.Authenticator(tt.verifier, tt.users)(next).ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, "u1", seen.ID)
			} else {
				assert.Nil(t, seen, "handler must not run on auth failure")
			}
		})
	}
}

func TestRequireSuperuser(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("regular user rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/admin", nil)
		req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: "u1"}))

		middleware.RequireSuperuser(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no user rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/admin", nil)

		middleware.RequireSuperuser(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("superuser allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/admin", nil)
		req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: "u1", IsSuperuser: true}))

		middleware.RequireSuperuser(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGetUserFromContext_Empty(t *testing.T) {
	assert.Nil(t, middleware.GetUserFromContext(context.Background()))
}
