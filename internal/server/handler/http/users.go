package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akovalyov/deeptrace/internal/apperr"
	"github.com/akovalyov/deeptrace/internal/middleware"
	"github.com/akovalyov/deeptrace/internal/models"
)

// UserService defines the account operations required by the user endpoints.
type UserService interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, draft models.UserCreate) (*models.User, error)
	Update(ctx context.Context, id string, patch models.UserUpdate) (*models.User, error)
}

// UsersHandler handles HTTP requests for user accounts.
type UsersHandler struct {
	Users UserService
}

// signupRequest is the JSON payload for account creation. Privilege flags
// are never taken from the client.
type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// selfUpdateRequest is the JSON payload for PATCH /users/me. Absent fields
// are left untouched.
type selfUpdateRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
}

// Create handles POST /users/. No auth required; duplicate email fails 400.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, detail{Detail: "invalid request body"})
		return
	}

	user, err := h.Users.Create(r.Context(), models.UserCreate{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		IsActive: true,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Me handles GET /users/me, returning the caller's own profile.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, apperr.ErrInvalidToken)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /users/me with partial-update semantics. Changing
// the email to one already registered fails 400.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	current := middleware.GetUserFromContext(r.Context())
	if current == nil {
		writeError(w, apperr.ErrInvalidToken)
		return
	}

	var req selfUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, detail{Detail: "invalid request body"})
		return
	}

	user, err := h.Users.Update(r.Context(), current.ID, models.UserUpdate{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetByID handles GET /users/{id}. Callers may read their own profile;
// anyone else's requires superuser privilege.
func (h *UsersHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	current := middleware.GetUserFromContext(r.Context())
	if current == nil {
		writeError(w, apperr.ErrInvalidToken)
		return
	}

	id := chi.URLParam(r, "id")
	if id != current.ID && !current.IsSuperuser {
		writeError(w, apperr.ErrForbidden)
		return
	}

	user, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
