package errx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// DatabaseErrorMessage describes ERP database failures.
	DatabaseErrorMessage = "database operation failed"
	// NotFoundMessage describes a missing ERP document.
	NotFoundMessage = "document not found"
	// DuplicateMessage describes a name collision on insert.
	DuplicateMessage = "duplicate entry"
	// ValidationMessage describes a document rejected by validation.
	ValidationMessage = "validation error"
)

// Document error kinds. Wrap them with fmt.Errorf("%w: ...") so callers can
// branch with errors.Is.
var (
	ErrNotFound   = errors.New("does not exist")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation error")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Validationf builds an error of kind ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds an error of kind ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Duplicatef builds an error of kind ErrDuplicate.
func Duplicatef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDuplicate, fmt.Sprintf(format, args...))
}

// WrapRedis maps Redis errors to AppError with appropriate status codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return New(err, http.StatusNotFound, RedisNotFoundMessage)
	}
	return New(err, http.StatusBadGateway, RedisErrorMessage)
}

// WrapDB maps gorm and document errors to AppError. Kind sentinels stay
// reachable through errors.Is on the result.
func WrapDB(err error) error {
	if err == nil {
		return nil
	}
	var app *AppError
	if errors.As(err, &app) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return New(fmt.Errorf("%w: %w", ErrNotFound, err), http.StatusNotFound, NotFoundMessage)
	case errors.Is(err, ErrNotFound):
		return New(err, http.StatusNotFound, NotFoundMessage)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return New(fmt.Errorf("%w: %w", ErrDuplicate, err), http.StatusConflict, DuplicateMessage)
	case errors.Is(err, ErrDuplicate):
		return New(err, http.StatusConflict, DuplicateMessage)
	case errors.Is(err, ErrValidation):
		return New(err, http.StatusUnprocessableEntity, ValidationMessage)
	default:
		return New(err, http.StatusBadGateway, DatabaseErrorMessage)
	}
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var app *AppError
	if errors.As(err, &app) && app.Status != 0 {
		return app.Status
	}
	return http.StatusInternalServerError
}
