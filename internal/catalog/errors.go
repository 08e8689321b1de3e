package catalog

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrEmptyRequest is returned by Items when no identifiers were requested.
// It is distinct from a request that succeeded with zero results.
var ErrEmptyRequest = errors.New("no identifiers requested")

// TransportError reports that an endpoint could not be reached or answered
// with an error status.
type TransportError struct {
	Op   string
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: fetch %s: %v", e.Op, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports that a response body did not have the expected
// top-level shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ElementError reports a single array element that could not be built.
type ElementError struct {
	// Index is the position of the element in the response array.
	Index int
	Err   error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("element %d: %v", e.Index, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }
