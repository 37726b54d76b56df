package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Formula errors
	ErrFormulaNotFound ErrorCode = "FORMULA_NOT_FOUND"
	ErrFormulaParse    ErrorCode = "FORMULA_PARSE"
	ErrFormulaInvalid  ErrorCode = "FORMULA_INVALID"

	// Source errors
	ErrSourceFetch      ErrorCode = "SOURCE_FETCH"
	ErrChecksumMismatch ErrorCode = "CHECKSUM_MISMATCH"
	ErrSourceExtract    ErrorCode = "SOURCE_EXTRACT"

	// Install stage errors
	ErrDependencyInstall ErrorCode = "DEPENDENCY_INSTALL"
	ErrConfigureFailed   ErrorCode = "CONFIGURE_FAILED"
	ErrBuildFailed       ErrorCode = "BUILD_FAILED"
	ErrTestFailed        ErrorCode = "TEST_FAILED"
	ErrInstallFailed     ErrorCode = "INSTALL_FAILED"
	ErrPostInstallFailed ErrorCode = "POST_INSTALL_FAILED"

	// Process errors
	ErrCommandFailed ErrorCode = "COMMAND_FAILED"
	ErrCommandStart  ErrorCode = "COMMAND_START"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// Detail keys shared by the executor, runner and CLI
const (
	DetailCommand  = "command"
	DetailExitCode = "exit_code"
	DetailStage    = "stage"
	DetailStep     = "step"
	DetailPath     = "path"
	DetailTree     = "tree"
	DetailLog      = "log"
)

// CellarError represents a structured error with code and details
type CellarError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *CellarError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *CellarError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *CellarError) Is(target error) bool {
	var targetErr *CellarError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new CellarError with the given code and message
func New(code ErrorCode, message string) *CellarError {
	return &CellarError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new CellarError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *CellarError {
	return &CellarError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a CellarError
func Wrap(err error, code ErrorCode, message string) *CellarError {
	if err == nil {
		return nil
	}
	return &CellarError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CellarError {
	if err == nil {
		return nil
	}
	return &CellarError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *CellarError) WithDetail(key string, value interface{}) *CellarError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *CellarError) WithDetails(details map[string]interface{}) *CellarError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code.
// Only the outermost CellarError in the chain is considered.
func IsErrorCode(err error, code ErrorCode) bool {
	var cellarErr *CellarError
	if errors.As(err, &cellarErr) {
		return cellarErr.Code == code
	}
	return false
}

// HasErrorCode reports whether any CellarError in the chain carries code
func HasErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var cellarErr *CellarError
		if !errors.As(err, &cellarErr) {
			return false
		}
		if cellarErr.Code == code {
			return true
		}
		err = cellarErr.Wrapped
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a CellarError
func GetErrorCode(err error) ErrorCode {
	var cellarErr *CellarError
	if errors.As(err, &cellarErr) {
		return cellarErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details of every CellarError in the chain,
// merged so that outer errors win. It returns nil if err holds no CellarError.
func GetErrorDetails(err error) map[string]interface{} {
	var merged map[string]interface{}
	for err != nil {
		var cellarErr *CellarError
		if !errors.As(err, &cellarErr) {
			break
		}
		if merged == nil {
			merged = make(map[string]interface{})
		}
		for k, v := range cellarErr.Details {
			if _, exists := merged[k]; !exists {
				merged[k] = v
			}
		}
		err = cellarErr.Wrapped
	}
	return merged
}

// ExitCode returns the process exit status recorded on err, if any
func ExitCode(err error) (int, bool) {
	code, ok := GetErrorDetails(err)[DetailExitCode].(int)
	return code, ok
}
