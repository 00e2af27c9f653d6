package app

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch reports a page without the designated container. The run
// ends without artifacts but is not a failure.
var ErrShapeMismatch = errors.New("designated container not found")

// ErrPagesFailed is returned by callers that summarise a batch in which at
// least one page failed to fetch or hit an unexpected error.
var ErrPagesFailed = errors.New("one or more pages failed")

// FetchError wraps a failed page download. It ends that page's run and is
// never retried.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// panicError carries a value recovered from a page run.
type panicError struct {
	value any
}

func (e panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }
