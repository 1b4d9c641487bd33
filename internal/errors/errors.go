package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeTransient  ErrorType = "transient"
	ErrorTypeExternal   ErrorType = "external_api"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Message  string
	Code     string
	Internal error
	Context  map[string]interface{}
	Source   string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is matches another AppError by type and code. An empty code on the
// target matches any code of the same type.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		if e.Type != t.Type {
			return false
		}
		return t.Code == "" || e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

func caller(skip int) string {
	_, file, line, _ := runtime.Caller(skip + 1)
	return fmt.Sprintf("%s:%d", file, line)
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  caller(1),
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   caller(1),
		Context:  make(map[string]interface{}),
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or
// ErrorTypeInternal for unclassified errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// HTTPStatus maps an error to the status code returned at the HTTP boundary.
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeAuth:
		return http.StatusUnauthorized
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		h.handleAppError(ctx, appErr)
	} else {
		h.handleGenericError(ctx, err)
	}
}

func (h *Handler) handleAppError(ctx context.Context, err *AppError) {
	switch err.Type {
	case ErrorTypeNotFound:
		h.logger.DebugContext(ctx, "Not found", err.LogFields()...)
	case ErrorTypeValidation:
		h.logger.InfoContext(ctx, "Validation error", err.LogFields()...)
	case ErrorTypeAuth:
		h.logger.WarnContext(ctx, "Auth error", err.LogFields()...)
	case ErrorTypeConflict:
		h.logger.WarnContext(ctx, "Conflict", err.LogFields()...)
	case ErrorTypeTransient:
		h.logger.WarnContext(ctx, "Transient error", err.LogFields()...)
	case ErrorTypeDatabase, ErrorTypeExternal, ErrorTypeInternal:
		h.logger.ErrorContext(ctx, "Critical error", err.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

func (h *Handler) handleGenericError(ctx context.Context, err error) {
	h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
}

// LogAndReturn logs an error and returns it
func (h *Handler) LogAndReturn(ctx context.Context, err error) error {
	h.Handle(ctx, err)
	return err
}

// Sentinels for errors.Is checks; they match any code of their type.
var (
	ErrValidation = &AppError{Type: ErrorTypeValidation}
	ErrNotFound   = &AppError{Type: ErrorTypeNotFound}
	ErrAuth       = &AppError{Type: ErrorTypeAuth}
	ErrConflict   = &AppError{Type: ErrorTypeConflict}
	ErrDatabase   = &AppError{Type: ErrorTypeDatabase}
	ErrTransient  = &AppError{Type: ErrorTypeTransient}
	ErrExternal   = &AppError{Type: ErrorTypeExternal}
)

func NewValidationError(message string) *AppError {
	e := New(ErrorTypeValidation, "VALIDATION", message)
	e.Source = caller(1)
	return e
}

func NewValidationErrorf(format string, args ...any) *AppError {
	e := New(ErrorTypeValidation, "VALIDATION", fmt.Sprintf(format, args...))
	e.Source = caller(1)
	return e
}

func NewNotFoundError(entity, id string) *AppError {
	e := New(ErrorTypeNotFound, "NOT_FOUND", fmt.Sprintf("%s %q not found", entity, id)).
		WithContext("entity", entity).
		WithContext("id", id)
	e.Source = caller(1)
	return e
}

func NewAuthError(message string) *AppError {
	e := New(ErrorTypeAuth, "UNAUTHORIZED", message)
	e.Source = caller(1)
	return e
}

func NewConflictError(err error, message string) *AppError {
	e := Wrap(err, ErrorTypeConflict, "CONFLICT", message)
	e.Source = caller(1)
	return e
}

func NewDatabaseError(err error) *AppError {
	e := Wrap(err, ErrorTypeDatabase, "DB_ERROR", "Database operation failed")
	e.Source = caller(1)
	return e
}

func NewTransientError(err error, operation string) *AppError {
	e := Wrap(err, ErrorTypeTransient, "TRANSIENT", fmt.Sprintf("%s failed", operation)).
		WithContext("operation", operation)
	e.Source = caller(1)
	return e
}

func NewExternalAPIError(err error, api string) *AppError {
	e := Wrap(err, ErrorTypeExternal, "EXTERNAL_API", fmt.Sprintf("%s API error", api)).
		WithContext("api", api)
	e.Source = caller(1)
	return e
}

func NewInternalError(err error) *AppError {
	e := Wrap(err, ErrorTypeInternal, "INTERNAL", "Internal server error")
	e.Source = caller(1)
	return e
}
