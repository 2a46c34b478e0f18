// Package errs defines the storage core's error taxonomy. Every error kind
// named in the specification is a typed sentinel that callers can match
// with errors.Is/errors.As; wrapping always preserves the original cause.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one of the error categories the storage core can raise.
type Kind int

const (
	KindSchemaInvalidType Kind = iota
	KindSchemaInvalidField
	KindSchemaInvalidSchema
	KindFileIO
	KindSerialization
	KindPageOverflow
	KindInvalidIndex
	KindInvalidSlot
	KindCorruptedTuple
	KindMissingSchema
	KindTablespaceObjectExists
	KindTablespaceObjectNotFound
	KindBufferUnknownKey
	KindBufferTablespace
	KindBufferFile
	KindBufferIO
)

func (k Kind) String() string {
	switch k {
	case KindSchemaInvalidType:
		return "SchemaInvalidType"
	case KindSchemaInvalidField:
		return "SchemaInvalidField"
	case KindSchemaInvalidSchema:
		return "SchemaInvalidSchema"
	case KindFileIO:
		return "FileIO"
	case KindSerialization:
		return "Serialization"
	case KindPageOverflow:
		return "PageOverflow"
	case KindInvalidIndex:
		return "InvalidIndex"
	case KindInvalidSlot:
		return "InvalidSlot"
	case KindCorruptedTuple:
		return "CorruptedTuple"
	case KindMissingSchema:
		return "MissingSchema"
	case KindTablespaceObjectExists:
		return "TablespaceObjectExists"
	case KindTablespaceObjectNotFound:
		return "TablespaceObjectNotFound"
	case KindBufferUnknownKey:
		return "BufferUnknownKey"
	case KindBufferTablespace:
		return "BufferTablespace"
	case KindBufferFile:
		return "BufferFile"
	case KindBufferIO:
		return "BufferIO"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type carried by the storage core. It keeps
// the Kind for errors.Is-style matching and wraps an optional cause.
type Error struct {
	Kind  Kind
	Msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target shares this error's Kind — either another
// *Error (regardless of message/cause) or one of the package-level Err*
// sentinels — so errors.Is(err, errs.ErrPageOverflow) works.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Error:
		return e.Kind == t.Kind
	case sentinel:
		return e.Kind == Kind(t)
	default:
		return false
	}
}

// New creates an *Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an *Error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap wraps cause verbatim under the given kind and message, using
// github.com/pkg/errors so the resulting error retains a stack trace and
// remains errors.Unwrap-able down to cause.
func Wrap(kind Kind, cause error, msg string) *Error {
	if cause == nil {
		return New(kind, msg)
	}
	return &Error{Kind: kind, Msg: msg, cause: errors.Wrap(cause, msg)}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return Wrap(kind, cause, fmt.Sprintf(format, args...))
}

// sentinel is a Kind-only matcher, returned by the Err* helpers below for
// use with errors.Is(err, errs.ErrPageOverflow).
type sentinel Kind

func (s sentinel) Error() string { return Kind(s).String() }

func (s sentinel) Is(target error) bool {
	e, ok := target.(*Error)
	return ok && e.Kind == Kind(s)
}

var (
	ErrSchemaInvalidType         error = sentinel(KindSchemaInvalidType)
	ErrSchemaInvalidField        error = sentinel(KindSchemaInvalidField)
	ErrSchemaInvalidSchema       error = sentinel(KindSchemaInvalidSchema)
	ErrFileIO                    error = sentinel(KindFileIO)
	ErrSerialization             error = sentinel(KindSerialization)
	ErrPageOverflow              error = sentinel(KindPageOverflow)
	ErrInvalidIndex              error = sentinel(KindInvalidIndex)
	ErrInvalidSlot               error = sentinel(KindInvalidSlot)
	ErrCorruptedTuple            error = sentinel(KindCorruptedTuple)
	ErrMissingSchema             error = sentinel(KindMissingSchema)
	ErrTablespaceObjectExists    error = sentinel(KindTablespaceObjectExists)
	ErrTablespaceObjectNotFound  error = sentinel(KindTablespaceObjectNotFound)
	ErrBufferUnknownKey          error = sentinel(KindBufferUnknownKey)
	ErrBufferTablespace          error = sentinel(KindBufferTablespace)
	ErrBufferFile                error = sentinel(KindBufferFile)
	ErrBufferIO                  error = sentinel(KindBufferIO)
)

// Is implements errors.Is matching for *Error against the sentinel errors
// declared above, so callers can write errors.Is(err, errs.ErrPageOverflow).
func Is(err error, sentinelErr error) bool {
	return errors.Is(err, sentinelErr)
}
