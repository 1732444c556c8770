package lasca

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Event signals the completion of an asynchronous dispatch.
type Event interface {
	// Wait blocks until the work behind the event has finished and returns
	// its error, if any. Wait may be called any number of times.
	Wait() error
}

// Backend executes the two compute stages on some device.
//
// A backend owns the accumulator buffers, the mask and the ping-pong
// registry. Dispatch methods return without waiting for the work to finish;
// dependencies between stages are expressed with events. All methods are
// called from a single goroutine.
type Backend interface {
	// Name returns the backend name (e.g., "software", "wgpu").
	Name() string

	// Allocate creates every buffer for cfg and uploads the color table.
	// Failures are reported as *AllocationError.
	Allocate(cfg Config, table *ColorTable) error

	// Reset zero-fills all accumulators. Geometry and parameters are kept.
	Reset() error

	// DispatchTemporal enqueues the temporal stage for frame. The frame
	// must stay valid until the returned event completes.
	DispatchTemporal(frame Frame) (Event, error)

	// DispatchSpatial enqueues the spatial stage. It starts only after
	// `after` has completed.
	DispatchSpatial(after Event) (Event, error)

	// ReadMask blocks until `after` completes and copies the mask into dst.
	ReadMask(dst []uint8, after Event) error

	// Swap exchanges the slow and blur roles.
	Swap()

	// Snapshot reads back all accumulators.
	Snapshot() (*Accumulators, error)

	// Close releases all resources. Close is idempotent.
	Close() error
}

// Accumulators is a host copy of the backend state after a tick.
//
// Slow* is the pair the temporal stage updated, Blurred* the 3×3 box mean
// the spatial stage derived from it. The next tick feeds Blurred* into the
// slow recursion.
type Accumulators struct {
	Width  int
	Height int

	Intensity        []float32
	SquaredIntensity []float32

	SlowIntensity        []float32
	SlowSquaredIntensity []float32

	BlurredIntensity        []float32
	BlurredSquaredIntensity []float32
}

// BackendFactory creates an unallocated backend.
type BackendFactory func() (Backend, error)

// Backend names registered by this module.
const (
	BackendSoftware = "software"
	BackendWGPU     = "wgpu"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]BackendFactory{}
)

// RegisterBackend makes a backend available by name. Registering an
// existing name replaces it.
//
// GPU backend packages register themselves from init, so users opt in with
// a blank import:
//
//	import _ "github.com/gogpu/lasca/gpu"
func RegisterBackend(name string, f BackendFactory) {
	if f == nil {
		panic("lasca: RegisterBackend factory must not be nil")
	}
	registryMu.Lock()
	registry[name] = f
	registryMu.Unlock()
}

// Backends returns the sorted names of all registered backends.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func lookupBackend(name string) (BackendFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// openBackend creates and allocates the backend selected by o.
//
// Without an explicit choice the GPU backend is tried first, and any
// failure there falls back to the software backend.
func openBackend(cfg Config, o *options, table *ColorTable) (Backend, error) {
	switch {
	case o.backend != nil:
		return allocate(o.backend, cfg, table)
	case o.factory != nil:
		b, err := o.factory()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoBackend, err)
		}
		return allocate(b, cfg, table)
	case o.backendName != "":
		b, err := newNamedBackend(o.backendName, o)
		if err != nil {
			return nil, err
		}
		return allocate(b, cfg, table)
	}

	if _, ok := lookupBackend(BackendWGPU); ok {
		b, err := newNamedBackend(BackendWGPU, o)
		if err == nil {
			b, err = allocate(b, cfg, table)
		}
		if err == nil {
			return b, nil
		}
		Logger().Warn("lasca: GPU backend unavailable, falling back to software", "err", err)
	}
	b, err := newNamedBackend(BackendSoftware, o)
	if err != nil {
		return nil, err
	}
	return allocate(b, cfg, table)
}

func newNamedBackend(name string, o *options) (Backend, error) {
	if name == BackendSoftware {
		return NewSoftwareBackend(o.workers), nil
	}
	f, ok := lookupBackend(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q not registered (have %v)", ErrNoBackend, name, Backends())
	}
	b, err := f()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoBackend, name, err)
	}
	return b, nil
}

func allocate(b Backend, cfg Config, table *ColorTable) (Backend, error) {
	if err := b.Allocate(cfg, table); err != nil {
		if cerr := b.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, err
	}
	return b, nil
}

func init() {
	RegisterBackend(BackendSoftware, func() (Backend, error) {
		return NewSoftwareBackend(0), nil
	})
}

// doneEvent is an already-completed event.
type doneEvent struct{ err error }

func (e doneEvent) Wait() error { return e.err }

// Completed returns an event that has already finished with err.
func Completed(err error) Event { return doneEvent{err: err} }
