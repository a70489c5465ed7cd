// Package repository provides persistence implementations for users and
// detection records over a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/akovalyov/deeptrace/internal/apperr"
	"github.com/akovalyov/deeptrace/internal/models"
	"github.com/akovalyov/deeptrace/internal/password"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

const userColumns = `id, email, hashed_password, full_name, is_active, is_superuser, created_at, updated_at`

// PostgresUserRepository implements user persistence against PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the
// given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName,
		&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// Get fetches a user by ID. Returns apperr.ErrNotFound if absent.
func (r *PostgresUserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail fetches a user by email. Returns apperr.ErrNotFound if absent.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Create inserts a new user. The plaintext password in draft is hashed
// before persisting and never stored. A unique-constraint conflict on the
// email column is reported as apperr.ErrDuplicateEmail.
func (r *PostgresUserRepository) Create(ctx context.Context, draft models.UserCreate) (*models.User, error) {
	hashed, err := password.Hash(draft.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := models.User{
		ID:             uuid.NewString(),
		Email:          draft.Email,
		HashedPassword: hashed,
		FullName:       draft.FullName,
		IsActive:       draft.IsActive,
		IsSuperuser:    draft.IsSuperuser,
	}
	err = r.DB.QueryRowContext(ctx, `
		INSERT INTO users (id, email, hashed_password, full_name, is_active, is_superuser)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.HashedPassword, u.FullName, u.IsActive, u.IsSuperuser).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperr.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// Update applies the non-nil fields of patch to the user with the given ID.
// A new password is hashed before overwrite. Returns apperr.ErrNotFound if
// the user does not exist and apperr.ErrDuplicateEmail on an email conflict.
func (r *PostgresUserRepository) Update(ctx context.Context, id string, patch models.UserUpdate) (*models.User, error) {
	u, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Password != nil {
		hashed, err := password.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.HashedPassword = hashed
	}
	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	if patch.IsSuperuser != nil {
		u.IsSuperuser = *patch.IsSuperuser
	}
	u.UpdatedAt = time.Now()

	_, err = r.DB.ExecContext(ctx, `
		UPDATE users
		SET email = $2, hashed_password = $3, full_name = $4,
		    is_active = $5, is_superuser = $6, updated_at = $7
		WHERE id = $1
	`, u.ID, u.Email, u.HashedPassword, u.FullName, u.IsActive, u.IsSuperuser, u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperr.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Authenticate returns the user matching email and password. It fails closed
// with apperr.ErrInvalidCredentials on an unknown email or a password
// mismatch, without distinguishing the two.
func (r *PostgresUserRepository) Authenticate(ctx context.Context, email, plain string) (*models.User, error) {
	u, err := r.GetByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !password.Verify(plain, u.HashedPassword) {
		return nil, apperr.ErrInvalidCredentials
	}
	return u, nil
}
