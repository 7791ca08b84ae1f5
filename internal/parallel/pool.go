// Package parallel provides the fixed worker pool that backs kernel
// launches.
//
// The pool is created once per engine and reused for every launch. Each
// background worker blocks on a private wake channel between launches;
// the launching goroutine always participates in the work itself as
// worker 0, which removes one wake round-trip from every launch.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines for parallel kernel launches.
//
// Thread safety: Launch must not be called concurrently; the engine
// serializes launches through its reentrancy guard. Close is safe to
// call multiple times.
type Pool struct {
	// workers is the number of background workers (the caller makes
	// one more).
	workers int

	// wake holds each worker's private wake channel. Sending the launch
	// callback on it is the worker's wake signal.
	wake []chan func(worker int)

	// running counts workers that have not yet finished the current
	// launch. The last one to finish posts the completion signal.
	running atomic.Int32

	// complete is the pool-wide completion signal the caller blocks on.
	complete chan struct{}

	// quit signals workers to exit.
	quit chan struct{}

	// wg waits for all workers during Close.
	wg sync.WaitGroup

	// closed indicates Close has been called.
	closed atomic.Bool
}

// NewPool creates a pool with the given number of background workers.
// If workers is negative, one worker per spare CPU is used
// (NumCPU - 1, floor 0). A pool with 0 workers is fully functional:
// every launch then runs entirely on the calling goroutine.
func NewPool(workers int) *Pool {
	if workers < 0 {
		workers = runtime.NumCPU() - 1
	}
	if workers < 0 {
		workers = 0
	}

	p := &Pool{
		workers:  workers,
		wake:     make([]chan func(worker int), workers),
		complete: make(chan struct{}, 1),
		quit:     make(chan struct{}),
	}

	for i := range p.wake {
		p.wake[i] = make(chan func(worker int), 1)
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i+1, p.wake[i])
	}

	return p
}

// worker is the main loop for one background worker. Worker indices
// start at 1; index 0 is reserved for the launching goroutine.
func (p *Pool) worker(index int, wake chan func(worker int)) {
	defer p.wg.Done()

	for {
		select {
		case <-p.quit:
			return
		case fn := <-wake:
			fn(index)
			if p.running.Add(-1) == 0 {
				p.complete <- struct{}{}
			}
		}
	}
}

// Launch wakes every worker with fn, runs fn(0) on the calling
// goroutine, and blocks until all workers have returned.
//
// fn receives the worker index (0 for the caller) and is expected to
// claim work slices from shared launch state until none remain.
func (p *Pool) Launch(fn func(worker int)) {
	if p.workers == 0 || p.closed.Load() {
		fn(0)
		return
	}

	p.running.Store(int32(p.workers))
	for _, w := range p.wake {
		w <- fn
	}

	fn(0)
	<-p.complete
}

// Workers returns the number of background workers in the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// Close shuts down the pool and joins all workers.
// Close is safe to call multiple times. A closed pool still executes
// launches correctly, on the calling goroutine only.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	close(p.quit)
	p.wg.Wait()
}
