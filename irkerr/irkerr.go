// Package irkerr defines the error kinds surfaced by the index core.
//
// Every fallible operation in this module returns an error that can be
// classified with Kind. Causes are preserved with github.com/pkg/errors
// so logs still show the original os/io failure.
package irkerr

import "github.com/pkg/errors"

// Kind classifies a failure the way callers are expected to react to it.
type Kind int

const (
	// NotFound covers a missing file or an unknown term string. Note that
	// term_id and the string-keyed posting accessors return an "absent"
	// sentinel instead of this error; it is reserved for missing files and
	// named score tuples.
	NotFound Kind = iota
	// Malformed covers header mismatches, truncated files, out-of-range
	// offsets, inconsistent declared counts, non-monotonic document ids,
	// and unknown flag bits.
	Malformed
	// OutOfRange covers a term id, document id, or table index outside its
	// declared domain.
	OutOfRange
	// Invariant covers a negative score, a quantized value outside
	// [0, M], or an empty leader array with a non-zero count.
	Invariant
	// Io covers an underlying read or mmap failure.
	Io
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Malformed:
		return "malformed"
	case OutOfRange:
		return "out_of_range"
	case Invariant:
		return "invariant"
	case Io:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a tagged, wrapped error: Kind tells the caller what happened,
// the wrapped cause (if any) tells a human where.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a bare error of the given kind with a message.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, cause: errors.New(msg)}
}

// Newf creates a bare error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, cause: errors.Errorf(format, args...)}
}

// Wrap attaches a kind to an existing error, preserving it as the cause.
// Returns nil if err is nil.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, cause: errors.Wrap(err, msg)}
}

// Wrapf is like Wrap with a formatted message.
func Wrapf(err error, kind Kind, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, cause: errors.Wrapf(err, format, args...)}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ie, ok := err.(*Error); ok {
			e = ie
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
