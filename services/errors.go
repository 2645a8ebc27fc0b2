package services

import (
	"errors"
	"fmt"

	"github.com/kendall-kelly/bistro-orders-api/models"
)

// Error kinds returned by the services. Callers match them with errors.Is;
// the wrapped message is safe to show to API clients except for ErrStorage.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnauthenticated   = errors.New("authentication failed")
	ErrForbidden         = errors.New("not permitted")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("illegal status transition")
	ErrStorage           = errors.New("storage failure")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// Caller is the authenticated identity on whose behalf an operation runs
type Caller struct {
	UserID uint
	Role   string
}

// IsAdmin reports whether the caller holds the admin role
func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}
