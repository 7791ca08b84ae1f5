package pixkern

import (
	"log/slog"
	"sync/atomic"

	"github.com/pixkern/pixkern/internal/parallel"
)

// Engine owns the worker pool and dispatches kernel launches.
//
// An Engine is created once and reused for its lifetime; no goroutines
// are created per launch. Close releases the pool.
//
// Thread safety: a single Engine must not run concurrent launches
// against the same buffer from unrelated callers; callers serialize
// such use. The engine's own reentrancy guard only covers nested
// dispatches issued from within a kernel body.
type Engine struct {
	pool *parallel.Pool

	// inLaunch prevents re-entrant parallel dispatch from within a
	// kernel body. Nested launches run serially on the calling
	// goroutine.
	inLaunch atomic.Bool

	// log overrides the package logger when non-nil.
	log *slog.Logger
}

// NewEngine creates an engine.
// By default the pool holds one worker per spare CPU (NumCPU - 1).
//
// Example:
//
//	eng := pixkern.NewEngine()
//	defer eng.Close()
//
//	// Single-threaded engine, e.g. for deterministic profiling:
//	eng := pixkern.NewEngine(pixkern.WithWorkers(0))
func NewEngine(opts ...EngineOption) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{
		pool: parallel.NewPool(o.workers),
		log:  o.logger,
	}
}

// Workers returns the number of background workers in the engine's pool.
// The calling goroutine always participates in a launch in addition to
// these.
func (e *Engine) Workers() int {
	return e.pool.Workers()
}

// Close shuts down the worker pool. The engine still dispatches
// correctly after Close, entirely on the calling goroutine.
func (e *Engine) Close() {
	e.pool.Close()
}

// logger returns the engine's logger, falling back to the package
// logger configured with SetLogger.
func (e *Engine) logger() *slog.Logger {
	if e.log != nil {
		return e.log
	}
	return Logger()
}
