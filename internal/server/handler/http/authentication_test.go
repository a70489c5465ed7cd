package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/akovalyov/deeptrace/internal/apperr"
	"github.com/akovalyov/deeptrace/internal/middleware"
	"github.com/akovalyov/deeptrace/internal/models"
)

type fakeAuthenticator struct {
	user *models.User
	err  error
}

func (f *fakeAuthenticator) Authenticate(context.Context, string, string) (*models.User, error) {
	return f.user, f.err
}

type fakeIssuer struct {
	token string
	err   error
}

func (f *fakeIssuer) Issue(string, time.Duration) (string, error) {
	return f.token, f.err
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAccessToken(t *testing.T) {
	creds := url.Values{"username": {"a@x.com"}, "password": {"pw1"}}

	tests := []struct {
		name      string
		users     *fakeAuthenticator
		tokens    *fakeIssuer
		wantCode  int
		wantToken string
	}{
		{
			name:     "bad credentials",
			users:    &fakeAuthenticator{err: apperr.ErrInvalidCredentials},
			tokens:   &fakeIssuer{},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "inactive user",
			users:    &fakeAuthenticator{user: &models.User{ID: "u1", IsActive: false}},
			tokens:   &fakeIssuer{},
			wantCode: http.StatusBadRequest,
		},
		{
			name:      "success",
			users:     &fakeAuthenticator{user: &models.User{ID: "u1", IsActive: true}},
			tokens:    &fakeIssuer{token: "signed-token"},
			wantCode:  http.StatusOK,
			wantToken: "signed-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &AuthenticationHandler{Users: tt.users, Tokens: tt.tokens, TokenTTL: time.Hour}
			rec := httptest.NewRecorder()

			h.AccessToken(rec, postForm("/authentication/access-token", creds))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d; want %d", rec.Code, tt.wantCode)
			}
			if tt.wantToken != "" {
				var resp tokenResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				if resp.AccessToken != tt.wantToken {
					t.Errorf("access_token = %q; want %q", resp.AccessToken, tt.wantToken)
				}
				if resp.TokenType != "bearer" {
					t.Errorf("token_type = %q; want bearer", resp.TokenType)
				}
			}
		})
	}
}

func TestTestToken(t *testing.T) {
	h := &AuthenticationHandler{}

	t.Run("echoes identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/authentication/test-token", nil)
		req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: "u1"}))

		h.TestToken(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		var resp map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp["user_id"] != "u1" {
			t.Errorf("user_id = %q; want u1", resp["user_id"])
		}
	})

	t.Run("no identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.TestToken(rec, httptest.NewRequest("POST", "/authentication/test-token", nil))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d; want 403", rec.Code)
		}
	})
}
