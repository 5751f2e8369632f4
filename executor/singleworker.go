package executor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-concurrentrt/crterrors"
	"github.com/joeycumines/go-concurrentrt/crtlog"
	"github.com/joeycumines/go-concurrentrt/task"
)

// SingleWorker is one persistent worker goroutine draining a local deque
// (touched only by the worker while it runs) and a public deque (foreign
// goroutines push under a lock), matching spec.md §4.7.
type SingleWorker struct {
	name string

	workerID atomic.Uint64 // goroutine ID of the worker, set once on start

	localAbort atomic.Bool // unlocked fast-path abort check for the local loop
	local      taskDeque   // touched only by the worker goroutine itself

	mu        sync.Mutex
	cond      sync.Cond
	public    taskDeque
	abort     bool // locked abort flag for the public-queue path
	done      chan struct{}
	startOnce sync.Once
}

var _ Executor = (*SingleWorker)(nil)

// NewSingleWorker constructs and starts a SingleWorker executor.
func NewSingleWorker(name string) *SingleWorker {
	e := &SingleWorker{name: name, done: make(chan struct{})}
	e.cond.L = &e.mu
	e.start()
	return e
}

func (e *SingleWorker) start() {
	e.startOnce.Do(func() {
		go e.run()
	})
}

func (e *SingleWorker) run() {
	e.workerID.Store(currentGoroutineID())
	crtlog.WorkerSpawned(e.name, 0)
	defer close(e.done)

	for {
		if e.localAbort.Load() {
			e.drainAndCancel()
			return
		}

		if t, ok := e.local.PopBack(); ok {
			e.invoke(t)
			continue
		}

		e.mu.Lock()
		for e.public.Len() == 0 && !e.abort {
			e.cond.Wait()
		}
		if e.abort {
			e.mu.Unlock()
			e.drainAndCancel()
			return
		}
		// Take-and-swap: move every publicly queued task into the local
		// deque under the lock, then release it before running anything.
		drained := e.public.DrainAll()
		e.mu.Unlock()
		e.local.PushBackBatch(drained)
	}
}

func (e *SingleWorker) invoke(t task.Task) {
	defer func() {
		if r := recover(); r != nil {
			crtlog.TaskPanicked(e.name, 0, r)
		}
	}()
	t.Invoke()
}

func (e *SingleWorker) drainAndCancel() {
	for {
		t, ok := e.local.PopBack()
		if !ok {
			break
		}
		t.Cancel(crterrors.ErrExecutorShutdown)
	}
	e.mu.Lock()
	drained := e.public.DrainAll()
	e.mu.Unlock()
	for _, t := range drained {
		t.Cancel(crterrors.ErrExecutorShutdown)
	}
}

// isWorkerGoroutine reports whether the caller is running on this
// executor's own worker goroutine.
func (e *SingleWorker) isWorkerGoroutine() bool {
	id := e.workerID.Load()
	return id != 0 && id == currentGoroutineID()
}

func (e *SingleWorker) Enqueue(t task.Task) error {
	if e.localAbort.Load() {
		t.Cancel(crterrors.ErrExecutorShutdown)
		return crterrors.ErrExecutorShutdown
	}

	// A task scheduling further work from inside the worker's own goroutine
	// goes straight onto the local deque, no lock required (spec.md §4.7:
	// "enqueue distinguishes local vs. foreign by thread-local identity").
	if e.isWorkerGoroutine() {
		e.local.PushBack(t)
		return nil
	}

	e.mu.Lock()
	if e.abort {
		e.mu.Unlock()
		t.Cancel(crterrors.ErrExecutorShutdown)
		return crterrors.ErrExecutorShutdown
	}
	e.public.PushBack(t)
	e.mu.Unlock()
	e.cond.Signal()
	return nil
}

func (e *SingleWorker) EnqueueBatch(b task.Batch) error {
	e.mu.Lock()
	if e.abort {
		e.mu.Unlock()
		for _, t := range b {
			t.Cancel(crterrors.ErrExecutorShutdown)
		}
		return crterrors.ErrExecutorShutdown
	}
	e.public.PushBackBatch(b)
	e.mu.Unlock()
	e.cond.Broadcast()
	return nil
}

// Shutdown sets both abort flags, wakes the worker, and blocks until it has
// joined and cancelled every leftover task.
func (e *SingleWorker) Shutdown(ctx context.Context) error {
	e.localAbort.Store(true)

	e.mu.Lock()
	alreadyAborted := e.abort
	e.abort = true
	e.mu.Unlock()
	e.cond.Broadcast()

	if alreadyAborted {
		select {
		case <-e.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}

	select {
	case <-e.done:
		crtlog.ExecutorShutdown(e.name, 0)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *SingleWorker) ShutdownRequested() bool {
	return e.localAbort.Load()
}

func (e *SingleWorker) Name() string {
	return e.name
}

// MaxConcurrencyLevel is 1: a single persistent worker.
func (e *SingleWorker) MaxConcurrencyLevel() int {
	return 1
}
