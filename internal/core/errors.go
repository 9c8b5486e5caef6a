// internal/core/errors.go
package core

import (
	"errors"
	"fmt"
)

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Parse errors. These are the only errors a user can fix by resending.
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient data"}
	ErrInvalidDirection = &Error{Code: "INVALID_DIRECTION", Message: "invalid direction, expected long or short"}
	ErrNonNumeric       = &Error{Code: "NON_NUMERIC", Message: "prices and PNL must be numeric"}
	ErrNonPositivePrice = &Error{Code: "NON_POSITIVE_PRICE", Message: "entry and exit prices must be positive"}

	// Request errors (HTTP API)
	ErrBadRequest      = &Error{Code: "BAD_REQUEST", Message: "malformed request body"}
	ErrPayloadTooLarge = &Error{Code: "PAYLOAD_TOO_LARGE", Message: "request body too large"}

	// Storage errors
	ErrTradeNotFound = &Error{Code: "TRADE_NOT_FOUND", Message: "trade not found"}
	ErrStoreFailed   = &Error{Code: "STORE_FAILED", Message: "trade store operation failed"}
	ErrArchiveFailed = &Error{Code: "ARCHIVE_FAILED", Message: "archive write failed"}

	// Delivery errors
	ErrNotifierFailed = &Error{Code: "NOTIFIER_FAILED", Message: "notifier failed"}
	ErrUnauthorized   = &Error{Code: "UNAUTHORIZED", Message: "access denied"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// LLM errors
	ErrLLMFailed = &Error{Code: "LLM_FAILED", Message: "LLM request failed"}
)

var validationErrors = []*Error{
	ErrInsufficientData,
	ErrInvalidDirection,
	ErrNonNumeric,
	ErrNonPositivePrice,
}

// IsValidation reports whether err is a trade parse error.
func IsValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// ErrorCode extracts the code of a core error, or "" for other errors.
func ErrorCode(err error) string {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
