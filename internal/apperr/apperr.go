// Package apperr defines the error kinds surfaced by the tracking and
// reporting engine.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the presentation layer.
type Kind string

const (
	// Conflict means the single-active-entry invariant would be violated.
	Conflict Kind = "conflict"
	// NotFound means the entry does not exist or is already stopped.
	NotFound Kind = "not_found"
	// Validation means the caller supplied bad input.
	Validation Kind = "validation"
	// Storage means the underlying persistence failed.
	Storage Kind = "storage"
)

// Error is a classified error with a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg != "" {
		return e.Msg + ": " + e.Err.Error()
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err, apperr.ErrConflict) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrConflict   = &Error{Kind: Conflict}
	ErrNotFound   = &Error{Kind: NotFound}
	ErrValidation = &Error{Kind: Validation}
	ErrStorage    = &Error{Kind: Storage}
)

func Conflictf(format string, args ...any) error {
	return &Error{Kind: Conflict, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: NotFound, Msg: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: Validation, Msg: fmt.Sprintf(format, args...)}
}

// StorageErr wraps a persistence failure. A nil err returns nil.
func StorageErr(msg string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Kind == Storage {
		return err
	}
	return &Error{Kind: Storage, Msg: msg, Err: err}
}

// KindOf returns the kind of err, defaulting to Storage for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Storage
}
