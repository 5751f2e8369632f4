package executor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-concurrentrt/crterrors"
	"github.com/joeycumines/go-concurrentrt/crtlog"
	"github.com/joeycumines/go-concurrentrt/task"
)

// OneShotThread spawns a fresh goroutine for every enqueued task, matching
// spec.md §4.6: no shared queue, no pooling, intended for long-running
// blocking work where pool contention would be undesirable. "Thread" here
// is a goroutine, since Go has no user-facing OS-thread handle to join;
// Shutdown instead waits on a sync.WaitGroup tracking every spawned
// goroutine, which is the Go-idiomatic equivalent of joining a retired
// thread list.
type OneShotThread struct {
	name string

	shutdown atomic.Bool
	wg       sync.WaitGroup
}

var _ Executor = (*OneShotThread)(nil)

// NewOneShotThread constructs a OneShotThread executor.
func NewOneShotThread(name string) *OneShotThread {
	return &OneShotThread{name: name}
}

func (e *OneShotThread) Enqueue(t task.Task) error {
	if e.shutdown.Load() {
		t.Cancel(crterrors.ErrExecutorShutdown)
		return crterrors.ErrExecutorShutdown
	}
	e.wg.Add(1)
	go func(t task.Task) {
		defer e.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				crtlog.TaskPanicked(e.name, -1, r)
			}
		}()
		t.Invoke()
	}(t)
	return nil
}

func (e *OneShotThread) EnqueueBatch(b task.Batch) error {
	for _, t := range b {
		if err := e.Enqueue(t); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops accepting new work and blocks until every spawned goroutine
// has finished, or until ctx is cancelled.
func (e *OneShotThread) Shutdown(ctx context.Context) error {
	if !e.shutdown.CompareAndSwap(false, true) {
		return nil
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		crtlog.ExecutorShutdown(e.name, 0)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *OneShotThread) ShutdownRequested() bool {
	return e.shutdown.Load()
}

func (e *OneShotThread) Name() string {
	return e.name
}

// MaxConcurrencyLevel is unbounded: every task gets its own goroutine.
func (e *OneShotThread) MaxConcurrencyLevel() int {
	return 0
}
