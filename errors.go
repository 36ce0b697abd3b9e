package fuzzyscan

import (
	"errors"
	"fmt"

	"github.com/orviska/fuzzyscan/progress"
)

// SearchErrorCode is the closed set of error categories a scan can surface.
type SearchErrorCode string

const (
	ErrCodeNone             SearchErrorCode = "none"
	ErrCodeNotInitialized   SearchErrorCode = "not initialized"
	ErrCodeInvalidQuery     SearchErrorCode = "invalid query"
	ErrCodeMemoryReadFailed SearchErrorCode = "memory read failed"
	ErrCodeInternalError    SearchErrorCode = "internal error"
	ErrCodeAlreadySearching SearchErrorCode = "already searching"
)

// WireCode maps the error code onto the progress channel's integer
// encoding at offset 28.
func (c SearchErrorCode) WireCode() progress.ErrorCode {
	switch c {
	case ErrCodeNone:
		return progress.ErrNone
	case ErrCodeNotInitialized:
		return progress.ErrNotInitialized
	case ErrCodeInvalidQuery:
		return progress.ErrInvalidQuery
	case ErrCodeMemoryReadFailed:
		return progress.ErrMemoryReadFailed
	case ErrCodeAlreadySearching:
		return progress.ErrAlreadySearching
	default:
		return progress.ErrInternalError
	}
}

// Error represents a structured scan error with context and a stable code.
type Error struct {
	Op    string          // Operation that failed (e.g. "InitialScan", "Refine")
	Code  SearchErrorCode // High-level error category
	Msg   string          // Human-readable message
	Inner error           // Wrapped error, if any
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		return fmt.Sprintf("fuzzyscan: %s (op=%s)", msg, e.Op)
	}
	return fmt.Sprintf("fuzzyscan: %s", msg)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is provides errors.Is support comparing by error code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// NewError creates a new structured error.
func NewError(op string, code SearchErrorCode, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// WrapError wraps an existing error with scan context, classifying it as
// MemoryReadFailed unless it is already a structured *Error.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if se, ok := inner.(*Error); ok {
		return &Error{Op: op, Code: se.Code, Msg: se.Msg, Inner: se.Inner}
	}
	return &Error{Op: op, Code: ErrCodeMemoryReadFailed, Msg: inner.Error(), Inner: inner}
}

// IsCode reports whether err is a *Error carrying the given code.
func IsCode(err error, code SearchErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
