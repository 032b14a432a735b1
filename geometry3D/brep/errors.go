package brep

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord is returned when a statement cannot be tokenized
	// into the arity its entity kind requires.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnknownEntityKind is non-fatal: unknown kinds are treated as empty.
	ErrUnknownEntityKind = errors.New("unknown entity kind")
	// ErrDanglingReference marks a reference to a missing lower-kind entity.
	ErrDanglingReference = errors.New("dangling reference")
	// ErrEmptyVolume is returned when a volume encloses no points.
	ErrEmptyVolume = errors.New("volume encloses no points")
	// ErrUnsupportedKernelMethod is returned for processing methods that
	// need an external kernel this toolkit does not drive.
	ErrUnsupportedKernelMethod = errors.New("unsupported kernel method")
	// ErrInvalidParameter is returned for out of range numeric inputs.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// EntityError attaches the offending entity to one of the sentinel errors.
type EntityError struct {
	Kind   Kind
	ID     int
	Err    error
	Detail string
}

func (e *EntityError) Error() string {
	msg := e.Err.Error()
	if e.Kind >= 0 {
		if e.ID != 0 {
			msg = fmt.Sprintf("%s %d: %s", e.Kind, e.ID, msg)
		} else {
			msg = fmt.Sprintf("%s: %s", e.Kind, msg)
		}
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *EntityError) Unwrap() error { return e.Err }

func dangling(kind Kind, id int, format string, args ...interface{}) error {
	return &EntityError{Kind: kind, ID: id, Err: ErrDanglingReference, Detail: fmt.Sprintf(format, args...)}
}
