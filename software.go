package lasca

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"

	"github.com/gogpu/lasca/internal/kernel"
	"github.com/gogpu/lasca/internal/parallel"
)

// SoftwareBackend runs both stages on the CPU. Each dispatch splits its
// region into bands executed by a worker pool; the dispatch itself runs on
// a separate goroutine so that the caller is not blocked.
//
// SoftwareBackend is the reference for every other backend: the GPU shaders
// compute the same per-pixel functions from internal/kernel.
type SoftwareBackend struct {
	workers int
	pool    *parallel.WorkerPool
	buf     *kernel.Buffers
	params  kernel.Params

	temporal kernel.Region
	spatial  kernel.Region

	// inflight tracks dispatch goroutines so Close and Reset never race a
	// running stage.
	inflight sync.WaitGroup
	logger   atomic.Pointer[slog.Logger]
}

// NewSoftwareBackend creates a CPU backend. workers <= 0 uses one worker per
// logical core.
func NewSoftwareBackend(workers int) *SoftwareBackend {
	if workers <= 0 {
		workers = max(cpuid.CPU.LogicalCores, 1)
	}
	s := &SoftwareBackend{workers: workers}
	s.logger.Store(Logger())
	return s
}

// Name returns "software".
func (s *SoftwareBackend) Name() string { return BackendSoftware }

// SetLogger sets the logger used for diagnostics.
func (s *SoftwareBackend) SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	s.logger.Store(l)
}

// Workers returns the number of pool workers.
func (s *SoftwareBackend) Workers() int { return s.workers }

// Allocate creates the host working set. It refuses working sets larger than
// half of the physical memory.
func (s *SoftwareBackend) Allocate(cfg Config, _ *ColorTable) error {
	if err := cfg.Validate(); err != nil {
		return &AllocationError{Resource: "config", Err: err}
	}
	need := kernel.WorkingSetBytes(cfg.Width, cfg.Height)
	if total := memory.TotalMemory(); total > 0 && need > total/2 {
		return &AllocationError{
			Resource: "accumulators",
			Err:      fmt.Errorf("%d MiB needed, %d MiB physical memory", need>>20, total>>20),
		}
	}
	if s.pool != nil {
		s.release()
	}

	s.buf = kernel.NewBuffers(cfg.Width, cfg.Height)
	s.params = kernel.NewParams(cfg.Alpha, cfg.Beta, cfg.ContrastGain)
	s.spatial = kernel.InteriorRegion(cfg.Width, cfg.Height)
	s.temporal = kernel.FullRegion(cfg.Width, cfg.Height)
	if cfg.InteriorTemporal {
		s.temporal = s.spatial
	}
	s.pool = parallel.NewWorkerPool(s.workers)

	s.logger.Load().Info("lasca: software buffers allocated",
		"width", cfg.Width, "height", cfg.Height,
		"bytes", need, "workers", s.workers,
		"cpu", cpuid.CPU.BrandName, "avx2", cpuid.CPU.AVX2())
	return nil
}

// Reset zero-fills all accumulators.
func (s *SoftwareBackend) Reset() error {
	if s.buf == nil {
		return ErrClosed
	}
	s.inflight.Wait()
	s.buf.Reset()
	return nil
}

// swEvent completes when its dispatch goroutine returns.
type swEvent struct {
	done chan struct{}
	err  error
}

func (e *swEvent) Wait() error {
	<-e.done
	return e.err
}

// launch runs fn on its own goroutine and returns its completion event.
func (s *SoftwareBackend) launch(fn func() error) Event {
	ev := &swEvent{done: make(chan struct{})}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer close(ev.done)
		ev.err = fn()
	}()
	return ev
}

// DispatchTemporal updates the fast pair and the current slow slot.
func (s *SoftwareBackend) DispatchTemporal(frame Frame) (Event, error) {
	if s.buf == nil {
		return nil, ErrClosed
	}
	if len(frame.Pix) != s.buf.Len() {
		return nil, fmt.Errorf("%w: %d bytes for %d pixels", ErrFrameSize, len(frame.Pix), s.buf.Len())
	}
	r, p, fast, slow := s.temporal, s.params, s.buf.Fast, s.buf.Slots.Slow()
	return s.launch(func() error {
		s.pool.ForEachBand(r.Offset, r.End(), func(lo, hi int) {
			kernel.Temporal(p, r, lo, hi, frame.Pix, fast, slow)
		})
		return nil
	}), nil
}

// DispatchSpatial blurs the slow slot into the blur slot and writes the mask
// once `after` has completed.
func (s *SoftwareBackend) DispatchSpatial(after Event) (Event, error) {
	if s.buf == nil {
		return nil, ErrClosed
	}
	if after == nil {
		after = Completed(nil)
	}
	r, p, slow, blur, mask := s.spatial, s.params, s.buf.Slots.Slow(), s.buf.Slots.Blur(), s.buf.Mask
	return s.launch(func() error {
		if err := after.Wait(); err != nil {
			return fmt.Errorf("waiting for temporal stage: %w", err)
		}
		s.pool.ForEachBand(r.Offset, r.End(), func(lo, hi int) {
			kernel.Spatial(p, r, lo, hi, slow, blur, mask)
		})
		return nil
	}), nil
}

// ReadMask waits for `after` and copies the mask into dst.
func (s *SoftwareBackend) ReadMask(dst []uint8, after Event) error {
	if s.buf == nil {
		return ErrClosed
	}
	if len(dst) != s.buf.Len() {
		return fmt.Errorf("%w: mask destination holds %d bytes, want %d", ErrFrameSize, len(dst), s.buf.Len())
	}
	if after != nil {
		if err := after.Wait(); err != nil {
			return err
		}
	}
	copy(dst, s.buf.Mask)
	return nil
}

// Swap exchanges the slow and blur roles.
func (s *SoftwareBackend) Swap() {
	if s.buf != nil {
		s.buf.Slots.Swap()
	}
}

// Snapshot copies all accumulators. It waits for in-flight dispatches.
func (s *SoftwareBackend) Snapshot() (*Accumulators, error) {
	if s.buf == nil {
		return nil, ErrClosed
	}
	s.inflight.Wait()
	b := s.buf
	// After Swap the temporal stage's slot sits in the blur role.
	slow, blurred := b.Slots.Blur(), b.Slots.Slow()
	return &Accumulators{
		Width:                   b.Width,
		Height:                  b.Height,
		Intensity:               clone(b.Fast.Intensity),
		SquaredIntensity:        clone(b.Fast.Squared),
		SlowIntensity:           clone(slow.Intensity),
		SlowSquaredIntensity:    clone(slow.Squared),
		BlurredIntensity:        clone(blurred.Intensity),
		BlurredSquaredIntensity: clone(blurred.Squared),
	}, nil
}

// Close waits for in-flight dispatches and releases the buffers.
func (s *SoftwareBackend) Close() error {
	s.release()
	return nil
}

func (s *SoftwareBackend) release() {
	s.inflight.Wait()
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	s.buf = nil
}

func clone(v []float32) []float32 { return append([]float32(nil), v...) }
