package storage

import (
	"errors"
	"fmt"
)

// ErrClosed is returned for operations submitted after Close.
var ErrClosed = errors.New("storage: store is closed")

// ErrorKind classifies storage failures for callers that need to tell a
// corrupt file apart from a plain I/O problem.
type ErrorKind string

const (
	// KindMalformedJSON means the file contents do not parse as JSON.
	KindMalformedJSON ErrorKind = "malformed_json"
	// KindWrongShape means the file parses as JSON but its top-level
	// value is not an array of task objects.
	KindWrongShape ErrorKind = "wrong_shape"
	// KindIO means the underlying read or write failed.
	KindIO ErrorKind = "io"
)

// Error is the typed storage failure. It always wraps the underlying cause.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s (%s): %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a storage Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}
