// Package errors defines the error taxonomy shared by every layer of the
// document core: the document adapter, the layout actions facade, migrations
// and serialization all raise these types rather than bare fmt.Errorf values.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// ErrorType identifies which failure mode produced an AppError.
type ErrorType string

const (
	// ErrorTypeInvariantViolation means a structural guarantee was broken:
	// a parentId cycle, a wagon tethered to a non-construct parent, an edge
	// endpoint on another page. Never retried.
	ErrorTypeInvariantViolation ErrorType = "INVARIANT_VIOLATION"

	// ErrorTypeInvalidShape means the input to an adapter method was
	// malformed: a missing required field or a wrong type.
	ErrorTypeInvalidShape ErrorType = "INVALID_SHAPE"

	// ErrorTypeUnknownID marks a fine-grained patch or removal that targeted
	// a missing id. Callers should treat this as non-fatal: the offending
	// entry in a batch is skipped, the rest still applies.
	ErrorTypeUnknownID ErrorType = "UNKNOWN_ID"

	// ErrorTypeMigrationFailed means a migration transform threw; the whole
	// migration transaction is rolled back and load is reported failed.
	ErrorTypeMigrationFailed ErrorType = "MIGRATION_FAILED"

	// ErrorTypeValidation covers input validation failures surfaced by the
	// validator-tag layer (schema-library import, adapter input structs).
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict covers optimistic-concurrency failures, e.g. a
	// snapshot save whose expected version has been superseded.
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeInternal is the catch-all for everything else.
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeUnavailable marks a downstream collaborator (persistence,
	// event bus) that could not be reached.
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"
)

// AppError is the concrete error type raised across the module.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode attaches a machine-readable code.
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails attaches structured context (offending ids, field names).
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// NewInvariantViolation reports a broken structural guarantee.
func NewInvariantViolation(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvariantViolation,
		Message:    message,
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewInvalidShape reports malformed adapter input.
func NewInvalidShape(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidShape,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewUnknownID reports a patch/removal targeting a missing id.
func NewUnknownID(kind, id string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnknownID,
		Message:    fmt.Sprintf("%s %q not found", kind, id),
		HTTPStatus: http.StatusNotFound,
		StackTrace: captureStackTrace(),
	}
}

// NewMigrationFailed reports a migration transform failure.
func NewMigrationFailed(fromVersion, toVersion int, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeMigrationFailed,
		Message:    fmt.Sprintf("migration %d -> %d failed", fromVersion, toVersion),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewValidationError reports a struct-tag validation failure.
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		StackTrace: captureStackTrace(),
	}
}

// NewConflictError reports an optimistic-concurrency failure.
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError reports an unexpected internal failure.
func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		StackTrace: captureStackTrace(),
	}
}

// NewUnavailableError reports a downstream collaborator that could not be reached.
func NewUnavailableError(service string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Message:    fmt.Sprintf("%s unavailable", service),
		Cause:      err,
		HTTPStatus: http.StatusServiceUnavailable,
		StackTrace: captureStackTrace(),
	}
}

// IsAppError reports whether err carries an *AppError in its chain.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// As extracts the *AppError from err's chain, if any.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr := As(err)
	return appErr != nil && appErr.Type == t
}

// IsInvariantViolation reports whether err is an InvariantViolation.
func IsInvariantViolation(err error) bool { return IsType(err, ErrorTypeInvariantViolation) }

// IsInvalidShape reports whether err is an InvalidShape error.
func IsInvalidShape(err error) bool { return IsType(err, ErrorTypeInvalidShape) }

// IsUnknownID reports whether err is an UnknownID error.
func IsUnknownID(err error) bool { return IsType(err, ErrorTypeUnknownID) }

// IsMigrationFailed reports whether err is a MigrationFailed error.
func IsMigrationFailed(err error) bool { return IsType(err, ErrorTypeMigrationFailed) }

// Wrap attaches context to err, preserving AppError typing when present.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := As(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return Wrap(err, fmt.Sprintf(format, args...))
}
