package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error taxonomy shared by every service. Handlers map these to HTTP status codes.
var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("insufficient permissions")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

// ValidationError describes one rejected input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

// storeError classifies an error coming back from gorm
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case errors.Is(err, ErrValidation), errors.Is(err, ErrForbidden), errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return err
	default:
		return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
	}
}

// isUniqueViolation recognises unique-constraint errors from drivers that gorm
// does not translate (sqlite without TranslateError, libsql).
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
