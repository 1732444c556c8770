package lasca

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the pipeline and its collaborators.
var (
	// ErrEndOfStream is returned by a FrameSource when no more frames are
	// available. The pipeline treats it as control flow: it rewinds the
	// source and resets the accumulators.
	ErrEndOfStream = errors.New("lasca: end of stream")

	// ErrStaleMask is returned by Pipeline.Mask when the last tick failed
	// or no tick has completed yet.
	ErrStaleMask = errors.New("lasca: mask is stale")

	// ErrClosed is returned by operations on a closed pipeline or backend.
	ErrClosed = errors.New("lasca: closed")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("lasca: invalid config")

	// ErrFrameSize is returned when a frame does not match the configured
	// geometry.
	ErrFrameSize = errors.New("lasca: frame size mismatch")

	// ErrNoBackend is returned when the requested compute backend is not
	// registered or cannot be created.
	ErrNoBackend = errors.New("lasca: no compute backend")
)

// AllocationError reports a failure to create a buffer, shader or pipeline
// object. It is fatal to pipeline construction.
type AllocationError struct {
	Resource string
	Err      error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("lasca: allocate %s: %v", e.Resource, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// DispatchError reports a failed kernel dispatch or mask readback. The tick
// that produced it is abandoned and the mask is stale until the next
// successful tick.
type DispatchError struct {
	Stage string
	Err   error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("lasca: %s stage: %v", e.Stage, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
