package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing      ErrorType = "PARSING"
	ErrTypeCoercion     ErrorType = "COERCION"
	ErrTypeEmptyDataset ErrorType = "EMPTY_DATASET"
	ErrTypeStorage      ErrorType = "STORAGE"
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeNotFound     ErrorType = "NOT_FOUND"
	ErrTypeConfig       ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewParseError reports a malformed source. row is the 1-based line of the
// offending row, or 0 when the header itself could not be read.
func NewParseError(source string, row int, cause error) *AppError {
	msg := fmt.Sprintf("malformed source %q", source)
	if row > 0 {
		msg = fmt.Sprintf("malformed source %q at row %d", source, row)
	}
	return NewAppError(ErrTypeParsing, msg, cause).
		WithContext("source", source).
		WithContext("row", row)
}

// NewCoercionError reports a field whose text cannot be read as a number or date.
func NewCoercionError(field, value string, cause error) *AppError {
	return NewAppError(ErrTypeCoercion, fmt.Sprintf("cannot coerce %s value %q", field, value), cause).
		WithContext("field", field).
		WithContext("value", value)
}

// NewEmptyDatasetError reports an operation that needs at least one record.
func NewEmptyDatasetError(operation string) *AppError {
	return NewAppError(ErrTypeEmptyDataset, fmt.Sprintf("%s requires at least one record", operation), nil).
		WithContext("operation", operation)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the type of the outermost AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// hasType walks the whole chain, so a coercion failure wrapped in a parse
// error is both.
func hasType(err error, t ErrorType) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Type == t {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// IsParseError reports whether err carries a PARSING AppError.
func IsParseError(err error) bool { return hasType(err, ErrTypeParsing) }

// IsCoercionError reports whether err carries a COERCION AppError.
func IsCoercionError(err error) bool { return hasType(err, ErrTypeCoercion) }

// IsEmptyDataset reports whether err carries an EMPTY_DATASET AppError.
func IsEmptyDataset(err error) bool { return hasType(err, ErrTypeEmptyDataset) }

// SourceOf returns the failing source recorded on a parse error, if any.
func SourceOf(err error) string {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return ""
		}
		if appErr.Type == ErrTypeParsing {
			if s, ok := appErr.Context["source"].(string); ok {
				return s
			}
		}
		err = appErr.Cause
	}
	return ""
}
