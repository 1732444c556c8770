package lasca

// Option configures a Pipeline during creation.
//
// Example:
//
//	// Pick the best registered backend (GPU if available)
//	p, err := lasca.New(cfg, src, dst)
//
//	// Force the CPU backend with 4 workers and a grayscale table
//	p, err := lasca.New(cfg, src, dst,
//	    lasca.WithBackendName("software"),
//	    lasca.WithWorkers(4),
//	    lasca.WithColorTable(lasca.GrayColorTable()))
type Option func(*options)

type options struct {
	backend     Backend
	backendName string
	factory     BackendFactory
	table       *ColorTable
	workers     int
}

func defaultOptions() options {
	return options{
		table: nil, // TurboColorTable when nil
	}
}

// WithBackend injects a ready backend. The pipeline takes ownership and
// closes it in Pipeline.Close.
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithBackendName selects a registered backend by name ("software",
// "wgpu", ...). New fails with ErrNoBackend if the name is unknown, and
// does not fall back to another backend.
func WithBackendName(name string) Option {
	return func(o *options) {
		o.backendName = name
	}
}

// WithBackendFactory constructs the backend with f instead of consulting
// the registry.
func WithBackendFactory(f BackendFactory) Option {
	return func(o *options) {
		o.factory = f
	}
}

// WithColorTable sets the table handed to the display consumer and
// uploaded to the backend. Defaults to TurboColorTable.
func WithColorTable(t *ColorTable) Option {
	return func(o *options) {
		o.table = t
	}
}

// WithWorkers sets the worker count of the software backend. Zero or less
// uses one worker per logical core.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}
