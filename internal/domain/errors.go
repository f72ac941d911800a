package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures so that adapters can translate them
// into transport codes without string matching.
type ErrorKind int

const (
	// KindNotFound means an entity id did not resolve.
	KindNotFound ErrorKind = iota + 1
	// KindValidation means the request violated a domain rule
	// (non-zero balance on close, empty name, ...).
	KindValidation
	// KindConstraint means a delete was blocked by existing references.
	KindConstraint
	// KindConflict means the operation is not valid for the entity's
	// current lifecycle state (e.g. closing an already closed bucket).
	KindConflict
	// KindStorage means the ledger store failed to complete an atomic unit.
	KindStorage
)

// String returns a human-readable name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation failed"
	case KindConstraint:
		return "constraint violation"
	case KindConflict:
		return "conflicting state"
	case KindStorage:
		return "storage error"
	default:
		return "unknown"
	}
}

// Error is a kinded engine error. The message is always safe to surface to
// the caller; Err optionally carries the underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// NotFoundf returns a KindNotFound error with a formatted message.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validationf returns a KindValidation error with a formatted message.
func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Constraintf returns a KindConstraint error with a formatted message.
func Constraintf(format string, args ...any) error {
	return &Error{Kind: KindConstraint, Message: fmt.Sprintf(format, args...)}
}

// Conflictf returns a KindConflict error with a formatted message.
func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a store failure as a KindStorage error.
func StorageError(op string, err error) error {
	return &Error{Kind: KindStorage, Message: op, Err: err}
}

// IsKind reports whether err (or any error it wraps) is a domain Error of
// the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}
