package errs

import (
	"errors"
	"fmt"
)

var (
	ErrDeviceNotFound      error = errors.New("device not found")
	ErrDeviceAlreadyExists error = errors.New("device with this MAC address already exists")

	ErrAlertNotFound error = errors.New("alert not found")

	ErrUserNotFound       error = errors.New("user not found")
	ErrUserAlreadyExists  error = errors.New("user already exists")
	ErrInvalidCredentials error = errors.New("invalid email or password")
	ErrInvalidToken       error = errors.New("invalid or expired token")

	ErrForbidden error = errors.New("resource belongs to another user")
)

// ValidationError reports the first field of a request that failed validation.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// StorageError wraps a persistence failure that is not a domain condition.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
