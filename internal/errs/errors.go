// Package errs provides the unified error type used across the adapter.
//
// Every subsystem (transport, catalog, type map, filestore, server) wraps
// its native errors into *errs.Error before returning them to callers.
// Callers use the Is* predicates to handle errors without importing
// driver-specific packages.
//
// Usage:
//
//	// In the transport, wrap native errors and keep the SQLSTATE:
//	return errs.WithCode(errs.ErrKindQueryFailed, "query failed", pgErr.Code, pgErr)
//
//	// In a caller, check the error kind:
//	if errs.IsSchemaLookup(err) {
//	    http.Error(w, "unknown table", http.StatusNotFound)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no rows, no object, no bucket
	ErrKindConnectionFailed         // cannot reach the backend
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindQueryFailed              // SQL or storage operation error
	ErrKindInvalidInput             // bad arguments from the caller
	ErrKindPermissionDenied         // access denied / auth failure
	ErrKindSchemaLookup             // table identifier does not resolve in the catalog
	ErrKindTypeDecode               // catalog type has no registered decoding rule
	ErrKindUnsupported              // feature is disabled for the target dialect
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindSchemaLookup:
		return "schema_lookup"
	case ErrKindTypeDecode:
		return "type_decode"
	case ErrKindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all subsystems.
// Drivers produce it; callers inspect it via the Is* predicates below.
type Error struct {
	Kind    ErrKind
	Message string
	Code    string // SQLSTATE reported by the server, empty when not applicable
	Cause   error  // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a formatted message.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause, Code: SQLState(cause)}
}

// WithCode creates an *Error carrying a server SQLSTATE code.
func WithCode(kind ErrKind, msg, code string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Code: code, Cause: cause}
}

// --- Predicates ---

// IsNotFound reports whether err represents a "not found" result.
func IsNotFound(err error) bool {
	return kindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return kindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity or auth failure.
func IsConnectionFailed(err error) bool {
	return kindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether err is a backend operation failure.
func IsQueryFailed(err error) bool {
	return kindOf(err) == ErrKindQueryFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return kindOf(err) == ErrKindPermissionDenied
}

// IsSchemaLookup reports whether err means a table identifier did not
// resolve to a catalog object.
func IsSchemaLookup(err error) bool {
	return kindOf(err) == ErrKindSchemaLookup
}

// IsTypeDecode reports whether err means a catalog type had no decoding rule.
func IsTypeDecode(err error) bool {
	return kindOf(err) == ErrKindTypeDecode
}

// IsUnsupported reports whether err was raised because the target dialect
// lacks the requested feature.
func IsUnsupported(err error) bool {
	return kindOf(err) == ErrKindUnsupported
}

// SQLState returns the first SQLSTATE code found in the error chain,
// or "" if there is none.
func SQLState(err error) string {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return ""
		}
		if e.Code != "" {
			return e.Code
		}
		err = e.Cause
	}
	return ""
}

// kindOf extracts the ErrKind from the outermost *Error in the chain.
func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
