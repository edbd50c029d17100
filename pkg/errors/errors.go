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
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"

	// Configuration errors - fatal, detected before traversal starts
	ErrConfigLoad     ErrorCode = "CONFIG_LOAD"
	ErrConfigParse    ErrorCode = "CONFIG_PARSE"
	ErrConfigValid    ErrorCode = "CONFIG_INVALID"
	ErrBadRegex       ErrorCode = "BAD_REGEX"
	ErrBadTimeFormat  ErrorCode = "BAD_TIME_FORMAT"
	ErrTargetNotFound ErrorCode = "TARGET_NOT_FOUND"
	ErrSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"

	// Metadata errors - non-fatal, a predicate reading the entry fails
	ErrMetadataStat   ErrorCode = "METADATA_STAT"
	ErrMetadataDecode ErrorCode = "METADATA_DECODE"

	// Template errors - non-fatal, the matched entry is skipped
	ErrTemplateRender    ErrorCode = "TEMPLATE_RENDER"
	ErrMissingTimeSource ErrorCode = "MISSING_TIME_SOURCE"

	// Copy errors - non-fatal per entry
	ErrCopyFailed    ErrorCode = "COPY_FAILED"
	ErrDestCollision ErrorCode = "DEST_COLLISION"
	ErrDirCreate     ErrorCode = "DIR_CREATE"

	// Journal errors - fatal in continue mode
	ErrJournalOpen    ErrorCode = "JOURNAL_OPEN"
	ErrJournalCorrupt ErrorCode = "JOURNAL_CORRUPT"
	ErrJournalWrite   ErrorCode = "JOURNAL_WRITE"
	ErrJournalLocked  ErrorCode = "JOURNAL_LOCKED"
)

// SortError represents a structured error with code and details
type SortError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SortError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SortError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SortError) Is(target error) bool {
	var targetErr *SortError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SortError with the given code and message
func New(code ErrorCode, message string) *SortError {
	return &SortError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SortError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SortError {
	return &SortError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SortError
func Wrap(err error, code ErrorCode, message string) *SortError {
	if err == nil {
		return nil
	}
	return &SortError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SortError {
	if err == nil {
		return nil
	}
	return &SortError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SortError) WithDetail(key string, value interface{}) *SortError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var sortErr *SortError
	if errors.As(err, &sortErr) {
		return sortErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SortError
func GetErrorCode(err error) ErrorCode {
	var sortErr *SortError
	if errors.As(err, &sortErr) {
		return sortErr.Code
	}
	return ErrUnknown
}

// IsFatal reports whether an error must abort the whole run.
// Only configuration and journal-integrity errors abort; per-entry
// metadata, template and copy errors surface as diagnostics.
func IsFatal(err error) bool {
	switch GetErrorCode(err) {
	case ErrConfigLoad, ErrConfigParse, ErrConfigValid,
		ErrBadRegex, ErrBadTimeFormat,
		ErrTargetNotFound, ErrSourceNotFound,
		ErrJournalOpen, ErrJournalCorrupt, ErrJournalWrite, ErrJournalLocked:
		return true
	}
	return false
}
