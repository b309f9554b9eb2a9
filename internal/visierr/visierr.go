// Package visierr defines the error kinds shared across the BSP
// geometry engine, the portal generator, and the serialization
// bridge, per the error handling design in spec.md.
package visierr

import (
	"errors"
	"fmt"
)

// Kind classifies an error raised by the core packages.
type Kind int

const (
	// InvalidArgument covers non-positive world dimensions,
	// out-of-range partitions, edits to elements not in the tree, and
	// point-location queries outside the world.
	InvalidArgument Kind = iota
	// PreconditionViolation covers constructing a Portal between two
	// leaves that are not boundary-sharing visleaves.
	PreconditionViolation
	// MalformedInput covers deserialization failures: missing/unknown
	// fields, non-integral numerics, dangling child ids, or
	// inconsistent bounds.
	MalformedInput
	// GeometryDegenerate covers zero-length segments inside collision
	// routines or zero-length portals; both are ignorable no-ops,
	// logged as a warning rather than surfaced as a hard failure.
	GeometryDegenerate
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case PreconditionViolation:
		return "PreconditionViolation"
	case MalformedInput:
		return "MalformedInput"
	case GeometryDegenerate:
		return "GeometryDegenerate"
	default:
		return "Unknown"
	}
}

// Error is a typed error carrying one of the four error kinds.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error with no wrapped cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around an existing error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Is reports whether err is a *Error of the given kind (also matching
// through wrapped errors via errors.As semantics at the call site).
func Is(err error, kind Kind) bool {
	var ve *Error
	return errors.As(err, &ve) && ve.Kind == kind
}
