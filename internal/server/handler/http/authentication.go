package http

import (
	"context"
	"net/http"
	"time"

	"github.com/akovalyov/deeptrace/internal/apperr"
	"github.com/akovalyov/deeptrace/internal/middleware"
	"github.com/akovalyov/deeptrace/internal/models"
)

// Authenticator defines the credential check required by the authentication
// endpoints.
type Authenticator interface {
	// Authenticate returns the user iff email and password match.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// TokenIssuer mints signed bearer tokens.
type TokenIssuer interface {
	Issue(subjectID string, ttl time.Duration) (string, error)
}

// AuthenticationHandler handles the token-exchange endpoints.
type AuthenticationHandler struct {
	Users    Authenticator
	Tokens   TokenIssuer
	TokenTTL time.Duration
}

// tokenResponse is the OAuth2-shaped access token payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AccessToken handles POST /authentication/access-token. It exchanges a
// form-encoded username (email) and password for a bearer token. Bad
// credentials and inactive accounts both fail with 400.
func (h *AuthenticationHandler) AccessToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, detail{Detail: "invalid form body"})
		return
	}
	email := r.PostFormValue("username")
	plain := r.PostFormValue("password")

	user, err := h.Users.Authenticate(r.Context(), email, plain)
	if err != nil {
		writeError(w, err)
		return
	}
	if !user.IsActive {
		writeError(w, apperr.ErrInactiveUser)
		return
	}

	signed, err := h.Tokens.Issue(user.ID, h.TokenTTL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: signed, TokenType: "bearer"})
}

// TestToken handles POST /authentication/test-token, echoing the identity
// the auth middleware resolved.
func (h *AuthenticationHandler) TestToken(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, apperr.ErrInvalidToken)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Token is valid",
		"user_id": user.ID,
	})
}
