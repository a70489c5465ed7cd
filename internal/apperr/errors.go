// Package apperr defines the sentinel errors shared by the service and
// repository layers. The HTTP boundary maps each sentinel to a response code.
package apperr

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials indicates an unknown email or a password
	// mismatch; the two causes are intentionally indistinguishable.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrInactiveUser indicates the account exists but is deactivated.
	ErrInactiveUser = errors.New("inactive user")
	// ErrForbidden indicates the caller lacks permission for the entity.
	ErrForbidden = errors.New("not enough permissions")
	// ErrInvalidToken indicates a bearer token that is malformed, has a bad
	// signature, or has expired.
	ErrInvalidToken = errors.New("could not validate credentials")
	// ErrInvalidPagination indicates page/per_page outside the allowed range.
	ErrInvalidPagination = errors.New("invalid pagination parameters")
	// ErrIllegalTransition indicates a detection status change the lifecycle
	// state machine does not permit.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("invalid input")
)
