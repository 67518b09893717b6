package gwcfg

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a configuration error
type ErrorType int

const (
	// ErrTypeAlloc indicates a document node could not be allocated
	ErrTypeAlloc ErrorType = iota
	// ErrTypeParse indicates malformed JSON text
	ErrTypeParse
	// ErrTypeStorage indicates a persistent store open/read/write/erase failure
	ErrTypeStorage
	// ErrTypeValidation indicates a value outside its allowed range or size
	ErrTypeValidation
	// ErrTypeNotInitialized indicates use of a component before Init
	ErrTypeNotInitialized
	// ErrTypeUnknown indicates an unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeAlloc:
		return "Allocation Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeStorage:
		return "Storage Error"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeNotInitialized:
		return "Not Initialized"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ConfigError is the error returned by the configuration core.
type ConfigError struct {
	Type    ErrorType // Category of error
	Message string    // Human-readable error message
	Key     string    // JSON key or storage key involved, if any
	Err     error     // Underlying error, if any
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Key != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Key)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewAllocError creates an allocation failure error
func NewAllocError(key string, err error) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeAlloc,
		Message: "failed to allocate document node",
		Key:     key,
		Err:     err,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeParse,
		Message: message,
		Err:     err,
	}
}

// NewStorageError creates a persistent store error
func NewStorageError(op, key string, err error) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeStorage,
		Message: op + " failed",
		Key:     key,
		Err:     err,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

// NewNotInitializedError creates an error for use before Init
func NewNotInitializedError(component string) *ConfigError {
	return &ConfigError{
		Type:    ErrTypeNotInitialized,
		Message: component + " is not initialized",
	}
}

func isType(err error, t ErrorType) bool {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Type == t
	}
	return false
}

// IsAllocError checks if an error is an allocation failure
func IsAllocError(err error) bool {
	return isType(err, ErrTypeAlloc)
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	return isType(err, ErrTypeParse)
}

// IsStorageError checks if an error is a storage error
func IsStorageError(err error) bool {
	return isType(err, ErrTypeStorage)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return isType(err, ErrTypeValidation)
}

// IsNotInitializedError checks if an error reports use before Init
func IsNotInitializedError(err error) bool {
	return isType(err, ErrTypeNotInitialized)
}
