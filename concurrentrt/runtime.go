// Package concurrentrt is the runtime façade of spec.md §4.10: it owns the
// timer queue and a standard set of executors so callers don't have to
// wire each piece together by hand, the way concurrencpp/src/runtime/runtime.h
// bundles a runtime's default executors and timer queue behind one object.
package concurrentrt

import (
	"context"
	"runtime"
	"sync"

	"github.com/joeycumines/go-concurrentrt/executor"
	"github.com/joeycumines/go-concurrentrt/timerqueue"
)

// backgroundThreadMultiplier is the original's fixed multiplier for sizing
// the background pool relative to the CPU-bound one (concurrencpp/src/
// runtime/runtime.h sizes the background pool larger than the CPU pool).
const backgroundThreadMultiplier = 4

// Runtime bundles a timer queue and the default executors spec.md §4.10
// describes: inline, a CPU-sized thread pool, a larger "background" thread
// pool, and a one-shot-thread executor, plus factories for the
// caller-owned single-worker and manual executors.
type Runtime struct {
	timers *timerqueue.Queue

	inline     *executor.Inline
	cpuPool    *executor.ThreadPool
	background *executor.ThreadPool
	oneShot    *executor.OneShotThread

	mu      sync.Mutex
	owned   []executor.Executor
	closed  bool
}

// Option configures Runtime construction.
type Option interface{ applyRuntime(*config) }

type config struct {
	maxCPUThreads        int
	maxBackgroundThreads int
}

type optionFunc func(*config)

func (f optionFunc) applyRuntime(c *config) { f(c) }

// WithMaxCPUThreads overrides the CPU-bound thread pool's worker count
// (default runtime.NumCPU()).
func WithMaxCPUThreads(n int) Option {
	return optionFunc(func(c *config) { c.maxCPUThreads = n })
}

// WithMaxBackgroundThreads overrides the background thread pool's worker
// count (default runtime.NumCPU()*backgroundThreadMultiplier).
func WithMaxBackgroundThreads(n int) Option {
	return optionFunc(func(c *config) { c.maxBackgroundThreads = n })
}

// New constructs a Runtime and starts all of its owned executors and its
// timer queue.
func New(opts ...Option) *Runtime {
	cfg := config{
		maxCPUThreads:        runtime.NumCPU(),
		maxBackgroundThreads: runtime.NumCPU() * backgroundThreadMultiplier,
	}
	for _, o := range opts {
		o.applyRuntime(&cfg)
	}

	rt := &Runtime{
		timers:     timerqueue.New(),
		inline:     executor.NewInline("inline"),
		cpuPool:    executor.NewThreadPool("cpu-pool", cfg.maxCPUThreads),
		background: executor.NewThreadPool("background-pool", cfg.maxBackgroundThreads),
		oneShot:    executor.NewOneShotThread("one-shot-thread"),
	}
	rt.owned = []executor.Executor{rt.cpuPool, rt.background, rt.oneShot, rt.inline}
	return rt
}

// Inline returns the runtime's shared inline executor.
func (rt *Runtime) Inline() *executor.Inline { return rt.inline }

// ThreadPool returns the runtime's CPU-sized thread pool, for general
// compute-bound work.
func (rt *Runtime) ThreadPool() *executor.ThreadPool { return rt.cpuPool }

// BackgroundThreadPool returns the runtime's larger thread pool, intended
// for blocking or IO-bound work that would otherwise starve cpuPool.
func (rt *Runtime) BackgroundThreadPool() *executor.ThreadPool { return rt.background }

// OneShotThreadExecutor returns the runtime's one-shot-thread executor.
func (rt *Runtime) OneShotThreadExecutor() *executor.OneShotThread { return rt.oneShot }

// Timers returns the runtime's timer queue.
func (rt *Runtime) Timers() *timerqueue.Queue { return rt.timers }

// NewSingleWorkerExecutor constructs a caller-owned SingleWorker executor.
// The runtime does not track its lifetime; the caller is responsible for
// calling its Shutdown.
func (rt *Runtime) NewSingleWorkerExecutor(name string) *executor.SingleWorker {
	return executor.NewSingleWorker(name)
}

// NewManualExecutor constructs a caller-owned Manual executor. The runtime
// does not track its lifetime; the caller is responsible for calling its
// Shutdown.
func (rt *Runtime) NewManualExecutor(name string) *executor.Manual {
	return executor.NewManual(name)
}

// Shutdown stops every executor the Runtime owns and its timer queue.
// The timer queue is stopped first so no live timer can enqueue a task
// onto an executor that is already mid-shutdown or gone, matching spec.md
// §4.10's "no live task holds a weak reference to an already-destroyed
// executor" ordering guarantee.
func (rt *Runtime) Shutdown(ctx context.Context) error {
	rt.mu.Lock()
	if rt.closed {
		rt.mu.Unlock()
		return nil
	}
	rt.closed = true
	rt.mu.Unlock()

	rt.timers.Shutdown()

	for _, ex := range rt.owned {
		if err := ex.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}
