package lasca

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TickResult describes one completed tick.
type TickResult struct {
	// Frame is the 1-based index of the tick since New.
	Frame uint64
	// Rewound is true when the source hit end of stream and was replayed
	// from the start during this tick.
	Rewound bool
	// Elapsed is the wall time from pulling the frame to handing the mask
	// to the display consumer.
	Elapsed time.Duration
}

// Stats are cumulative pipeline counters.
type Stats struct {
	Ticks    uint64
	Replays  uint64
	Failures uint64
}

// Pipeline drives the two compute stages frame by frame.
//
// Pipeline methods are safe for concurrent use but are serialized: one tick
// runs at a time.
type Pipeline struct {
	mu sync.Mutex

	id      string
	cfg     Config
	source  FrameSource
	display DisplayConsumer
	table   *ColorTable
	backend Backend

	mask   []uint8
	stale  bool
	closed bool
	stats  Stats
}

// New allocates a pipeline for cfg. source is required; display may be nil.
//
// Allocation failures are returned as *AllocationError; an unknown backend
// name as ErrNoBackend.
func New(cfg Config, source FrameSource, display DisplayConsumer, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("%w: nil frame source", ErrInvalidConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.table == nil {
		o.table = TurboColorTable()
	}

	b, err := openBackend(cfg, &o, o.table)
	if err != nil {
		return nil, err
	}
	track(b)

	p := &Pipeline{
		id:      uuid.New().String(),
		cfg:     cfg,
		source:  source,
		display: display,
		table:   o.table,
		backend: b,
		mask:    make([]uint8, cfg.Pixels()),
		stale:   true,
	}
	p.logger().Info("lasca: pipeline ready",
		"backend", b.Name(), "width", cfg.Width, "height", cfg.Height,
		"alpha", cfg.Alpha, "beta", cfg.Beta, "gain", cfg.ContrastGain,
		"interiorTemporal", cfg.InteriorTemporal)
	return p, nil
}

// logger returns the package logger tagged with the session ID.
func (p *Pipeline) logger() *slog.Logger {
	return Logger().With("pipeline", p.id)
}

// ID returns the session identifier attached to the pipeline's log records.
func (p *Pipeline) ID() string { return p.id }

// Config returns the session constants.
func (p *Pipeline) Config() Config { return p.cfg }

// BackendName returns the name of the backend in use.
func (p *Pipeline) BackendName() string { return p.backend.Name() }

// ColorTable returns the table handed to the display consumer.
func (p *Pipeline) ColorTable() *ColorTable { return p.table }

// Tick processes one frame: pull, temporal stage, spatial stage, mask
// readback, role swap and display.
//
// ctx is checked before the tick starts; a started tick is never cancelled.
// A failed dispatch or readback is returned as *DispatchError and leaves
// the mask stale. So does a frame whose size does not match the Config
// (ErrFrameSize).
func (p *Pipeline) Tick(ctx context.Context) (TickResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return TickResult{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return TickResult{}, err
	}

	start := time.Now()
	frame, rewound, err := p.nextFrame()
	if err != nil {
		return TickResult{}, err
	}
	if err := frame.check(p.cfg); err != nil {
		return TickResult{}, p.abandon(err)
	}
	if err := p.dispatch(frame); err != nil {
		return TickResult{}, p.abandon(err)
	}
	p.stale = false
	p.backend.Swap()
	p.stats.Ticks++

	res := TickResult{Frame: p.stats.Ticks, Rewound: rewound}
	if p.display != nil {
		if err := p.display.Display(p.mask, p.cfg.Width, p.cfg.Height, p.table); err != nil {
			return res, fmt.Errorf("lasca: display: %w", err)
		}
	}
	res.Elapsed = time.Since(start)

	p.logger().Debug("lasca: tick", "frame", res.Frame, "elapsed", res.Elapsed, "rewound", rewound)
	return res, nil
}

// abandon marks the mask stale after a tick that started but did not
// produce a mask.
func (p *Pipeline) abandon(err error) error {
	p.stale = true
	p.stats.Failures++
	p.logger().Warn("lasca: tick abandoned", "err", err)
	return err
}

// nextFrame pulls a frame, replaying the source once on end of stream.
func (p *Pipeline) nextFrame() (Frame, bool, error) {
	frame, err := p.source.Next()
	if err == nil {
		return frame, false, nil
	}
	if !errors.Is(err, ErrEndOfStream) {
		return Frame{}, false, fmt.Errorf("lasca: read frame: %w", err)
	}

	if err := p.source.Rewind(); err != nil {
		return Frame{}, false, fmt.Errorf("lasca: rewind source: %w", err)
	}
	if err := p.backend.Reset(); err != nil {
		return Frame{}, false, &DispatchError{Stage: "reset", Err: err}
	}
	p.stats.Replays++
	p.logger().Info("lasca: stream rewound", "replay", p.stats.Replays, "afterTicks", p.stats.Ticks)

	frame, err = p.source.Next()
	if err != nil {
		return Frame{}, true, fmt.Errorf("lasca: read frame after rewind: %w", err)
	}
	return frame, true, nil
}

// dispatch runs both stages and reads the mask back.
func (p *Pipeline) dispatch(frame Frame) error {
	temporal, err := p.backend.DispatchTemporal(frame)
	if err != nil {
		return &DispatchError{Stage: "temporal", Err: err}
	}
	spatial, err := p.backend.DispatchSpatial(temporal)
	if err != nil {
		// Let the temporal stage drain before the buffers are touched again.
		_ = temporal.Wait()
		return &DispatchError{Stage: "spatial", Err: err}
	}
	if err := p.backend.ReadMask(p.mask, spatial); err != nil {
		return &DispatchError{Stage: "readback", Err: err}
	}
	return nil
}

// Run ticks until n frames have been processed, ctx is done or a tick
// fails. n <= 0 runs until ctx is done.
func (p *Pipeline) Run(ctx context.Context, n int) error {
	for i := 0; n <= 0 || i < n; i++ {
		if _, err := p.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Mask returns a copy of the last mask, or ErrStaleMask if the last tick
// failed or none has completed.
func (p *Pipeline) Mask() ([]uint8, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	if p.stale {
		return nil, ErrStaleMask
	}
	return append([]uint8(nil), p.mask...), nil
}

// Reset zero-fills all accumulators without touching the source.
func (p *Pipeline) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if err := p.backend.Reset(); err != nil {
		return &DispatchError{Stage: "reset", Err: err}
	}
	return nil
}

// Snapshot reads back every accumulator.
func (p *Pipeline) Snapshot() (*Accumulators, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	acc, err := p.backend.Snapshot()
	if err != nil {
		return nil, &DispatchError{Stage: "snapshot", Err: err}
	}
	return acc, nil
}

// Stats returns the cumulative counters.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Close releases the backend. The source is not closed. Close is
// idempotent.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	untrack(p.backend)
	p.logger().Info("lasca: pipeline closed", "ticks", p.stats.Ticks, "replays", p.stats.Replays)
	return p.backend.Close()
}
