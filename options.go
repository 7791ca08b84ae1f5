package pixkern

import "log/slog"

// EngineOption configures an Engine during creation.
// Use functional options to customize Engine behavior.
//
// Example:
//
//	// Default: one worker per spare CPU
//	eng := pixkern.NewEngine()
//
//	// Explicit worker count
//	eng := pixkern.NewEngine(pixkern.WithWorkers(4))
type EngineOption func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	workers int
	logger  *slog.Logger
}

// defaultOptions returns the default engine options.
func defaultOptions() engineOptions {
	return engineOptions{
		workers: -1, // Pool default: NumCPU - 1
	}
}

// WithWorkers sets the number of background workers in the engine's
// pool. A count of 0 is valid and makes every launch run entirely on
// the calling goroutine; a negative count selects the default
// (NumCPU - 1).
func WithWorkers(n int) EngineOption {
	return func(o *engineOptions) {
		o.workers = n
	}
}

// WithLogger sets a logger for this engine only, overriding the
// package-level logger configured with SetLogger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = l
	}
}
