// Package service provides the business logic for user accounts and the
// detection record lifecycle, delegating persistence to repository
// interfaces.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/akovalyov/deeptrace/internal/apperr"
	"github.com/akovalyov/deeptrace/internal/models"
)

// UserRepository defines the persistence operations required by the
// UserService.
type UserRepository interface {
	// Get fetches a user by ID; apperr.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*models.User, error)
	// GetByEmail fetches a user by email; apperr.ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create inserts a new user, hashing the draft password.
	Create(ctx context.Context, draft models.UserCreate) (*models.User, error)
	// Update applies the non-nil fields of patch.
	Update(ctx context.Context, id string, patch models.UserUpdate) (*models.User, error)
	// Authenticate returns the user iff email and password match.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// UserService implements account business logic over a UserRepository.
type UserService struct {
	repo UserRepository
}

// NewUserService constructs a UserService using the provided repository.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetByID fetches a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.Get(ctx, id)
}

// GetByEmail fetches a user by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Create registers a new user. An already-registered email fails with
// apperr.ErrDuplicateEmail. The pre-check here is a fast path; the unique
// constraint in the store is the authoritative guard.
func (s *UserService) Create(ctx context.Context, draft models.UserCreate) (*models.User, error) {
	if draft.Email == "" || draft.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", apperr.ErrValidation)
	}

	_, err := s.repo.GetByEmail(ctx, draft.Email)
	if err == nil {
		return nil, apperr.ErrDuplicateEmail
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	return s.repo.Create(ctx, draft)
}

// Update applies a partial update to an existing user. Changing the email to
// one already registered fails with apperr.ErrDuplicateEmail.
func (s *UserService) Update(ctx context.Context, id string, patch models.UserUpdate) (*models.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != u.Email {
		_, err := s.repo.GetByEmail(ctx, *patch.Email)
		if err == nil {
			return nil, apperr.ErrDuplicateEmail
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}

	return s.repo.Update(ctx, id, patch)
}

// Authenticate returns the user matching email and password, failing closed
// with apperr.ErrInvalidCredentials otherwise.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	return s.repo.Authenticate(ctx, email, password)
}

// EnsureSuperuser creates the default superuser account once if no user with
// the given email exists. Called at startup.
func (s *UserService) EnsureSuperuser(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	return s.repo.Create(ctx, models.UserCreate{
		Email:       email,
		Password:    password,
		IsActive:    true,
		IsSuperuser: true,
	})
}
