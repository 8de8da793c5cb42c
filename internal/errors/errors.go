// Package errors provides standardized error types for the wpstack CLI tool.
//
// The errors package defines domain-specific error types that enable
// structured error handling and consistent error messages throughout
// the application.
//
// # Error Types
//
// SetupError is the primary error type, containing:
//   - Code: Categorizes the error (PERMISSION, EXTERNAL, etc.)
//   - Message: Human-readable error description
//   - Site: The site or domain involved (if applicable)
//   - Err: The underlying wrapped error (if any)
//
// # Sentinel Errors
//
// Common error scenarios have pre-defined sentinel errors:
//
//	errors.ErrRootRequired      // must run with sudo/root
//	errors.ErrUnsupportedDistro // distribution not in the install table
//	errors.ErrAborted           // operator declined at a decision point
//	errors.ErrCertMissing       // certbot succeeded but no certificate found
//
// # Usage
//
// Creating domain-specific errors:
//
//	// Operator declined overwrite or port resolution
//	return errors.Aborted("directory overwrite declined")
//
//	// Validation error
//	return errors.Validation("domain cannot be empty")
//
//	// Wrapping an external tool failure
//	return errors.Wrap(errors.ErrCodeExternal, "apt-get install failed", err)
//
// # Error Checking
//
// Use errors.Is for sentinel error comparison:
//
//	if errors.Is(err, errors.ErrAborted) {
//	    // Operator chose to stop; exit non-zero without extra context
//	}
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodePermission    ErrorCode = "PERMISSION"    // Insufficient privileges
	ErrCodeValidation    ErrorCode = "VALIDATION"    // Input validation failed
	ErrCodeUnsupported   ErrorCode = "UNSUPPORTED"   // Distribution not supported
	ErrCodeExternal      ErrorCode = "EXTERNAL"      // External tool exited non-zero
	ErrCodeConflict      ErrorCode = "CONFLICT"      // Port or directory conflict
	ErrCodePostcondition ErrorCode = "POSTCONDITION" // Expected external output missing
	ErrCodeConfig        ErrorCode = "CONFIG"        // Tool configuration error
	ErrCodeInternal      ErrorCode = "INTERNAL"      // Internal/unexpected error
)

// SetupError represents a structured error with context about the operation.
type SetupError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Site    string    // Site name or domain (if applicable)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *SetupError) Error() string {
	if e.Site != "" && e.Err != nil {
		return fmt.Sprintf("site %s: %s: %v", e.Site, e.Message, e.Err)
	}
	if e.Site != "" {
		return fmt.Sprintf("site %s: %s", e.Site, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain traversal.
func (e *SetupError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *SetupError) Is(target error) bool {
	t, ok := target.(*SetupError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for common error scenarios.
// Use these with errors.Is() for error checking.
var (
	// ErrRootRequired indicates the command needs root privileges.
	ErrRootRequired = &SetupError{Code: ErrCodePermission, Message: "root privileges required"}

	// ErrUnsupportedDistro indicates the distribution is not in the install table.
	ErrUnsupportedDistro = &SetupError{Code: ErrCodeUnsupported, Message: "unsupported distribution"}

	// ErrAborted indicates the operator declined at an interactive decision point.
	ErrAborted = &SetupError{Code: ErrCodeConflict, Message: "aborted by operator"}

	// ErrCertMissing indicates certbot reported success but the certificate
	// store entry for the domain is absent.
	ErrCertMissing = &SetupError{Code: ErrCodePostcondition, Message: "certificate not found after issuance"}

	// ErrInvalidDomain indicates the domain name is not valid.
	ErrInvalidDomain = &SetupError{Code: ErrCodeValidation, Message: "invalid domain"}

	// ErrInvalidEmail indicates the email address is not valid.
	ErrInvalidEmail = &SetupError{Code: ErrCodeValidation, Message: "invalid email"}

	// ErrConfigInvalid indicates the tool configuration is invalid or corrupt.
	ErrConfigInvalid = &SetupError{Code: ErrCodeConfig, Message: "invalid configuration"}
)

// Validation creates a validation error with a custom message.
func Validation(msg string) error {
	return &SetupError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// Aborted creates an operator-abort error with a custom message.
func Aborted(msg string) error {
	return &SetupError{
		Code:    ErrCodeConflict,
		Message: msg,
	}
}

// Unsupported creates an unsupported-distribution error naming the distro id.
func Unsupported(id string) error {
	return &SetupError{
		Code:    ErrCodeUnsupported,
		Message: fmt.Sprintf("distribution %q is not supported", id),
	}
}

// Postcondition creates an error for an external tool that reported success
// while its expected output is missing.
func Postcondition(msg string, site string) error {
	return &SetupError{
		Code:    ErrCodePostcondition,
		Message: msg,
		Site:    site,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &SetupError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// WrapSite creates an error with site context and underlying error.
func WrapSite(code ErrorCode, site string, err error) error {
	return &SetupError{
		Code: code,
		Site: site,
		Err:  err,
	}
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
