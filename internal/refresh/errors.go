package refresh

import (
	"errors"
	"fmt"
)

// Sentinel kinds for controller errors.
var (
	// ErrDisposed is returned by every operation after Dispose.
	ErrDisposed = errors.New("chart controller disposed")
	// ErrSuperseded reports a response dropped because a newer request was issued.
	ErrSuperseded = errors.New("response superseded by a newer request")

	ErrNilSource   = errors.New("nil status source")
	ErrNilRenderer = errors.New("nil chart renderer")
)

// RenderError is a failed draw. The chart handle is gone when it is returned.
type RenderError struct {
	Token uint64
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render request %d: %v", e.Token, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
