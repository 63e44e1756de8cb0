// Package errors holds the typed errors shared by the loader, session,
// roster and storage layers, and the sentinels they match with errors.Is.
package errors

import "errors"

// Forwarded from the standard library so callers need one import.
var (
	New = errors.New
	As  = errors.As
	Is  = errors.Is
)

// Sentinels matched by the typed errors' Is methods.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	// ErrPersist marks a commit whose write to the state store failed.
	// The in-memory commit stands.
	ErrPersist = errors.New("persist failed")
)

// IsNotFound reports whether err is an unknown category, row or identity.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsAlreadyExists reports whether err names a duplicate.
func IsAlreadyExists(err error) bool { return errors.Is(err, ErrAlreadyExists) }

// IsValidationError reports whether err is a rejected request or index.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsPersistError reports whether err is a non-fatal persistence warning.
func IsPersistError(err error) bool { return errors.Is(err, ErrPersist) }

// WrapIO returns nil for a nil err, otherwise an *IOError for op on path.
func WrapIO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: op, Path: path, Message: err.Error(), Err: err}
}

// WrapResource returns nil for a nil err, otherwise a *ResourceError.
// id may be empty.
func WrapResource(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Operation: op, Resource: resource, ID: id, Message: err.Error(), Err: err}
}

// WrapParse returns nil for a nil err, otherwise a *ParseError in format.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
