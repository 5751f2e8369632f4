package executor

import (
	"context"
	"sync"
	"time"

	"github.com/joeycumines/go-concurrentrt/crterrors"
	"github.com/joeycumines/go-concurrentrt/crtlog"
	"github.com/joeycumines/go-concurrentrt/task"
)

// Manual is a FIFO executor with no worker of its own: tasks only run when
// something calls LoopOnce, LoopOnceTimeout, or Loop, matching spec.md §4.5.
// It is the Go-idiomatic stand-in for tests that need full control over
// when queued work executes.
type Manual struct {
	name string

	mu       sync.Mutex
	cond     sync.Cond
	q        taskDeque
	shutdown bool
}

var _ Executor = (*Manual)(nil)

// NewManual constructs a Manual executor.
func NewManual(name string) *Manual {
	m := &Manual{name: name}
	m.cond.L = &m.mu
	return m
}

func (e *Manual) Enqueue(t task.Task) error {
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		t.Cancel(crterrors.ErrExecutorShutdown)
		return crterrors.ErrExecutorShutdown
	}
	e.q.PushBack(t)
	e.mu.Unlock()
	e.cond.Signal()
	return nil
}

func (e *Manual) EnqueueBatch(b task.Batch) error {
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		for _, t := range b {
			t.Cancel(crterrors.ErrExecutorShutdown)
		}
		return crterrors.ErrExecutorShutdown
	}
	for _, t := range b {
		e.q.PushBack(t)
	}
	e.mu.Unlock()
	e.cond.Broadcast()
	return nil
}

// LoopOnce dequeues and runs one task, non-blocking. It reports false if the
// queue was empty.
func (e *Manual) LoopOnce() (bool, error) {
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		return false, crterrors.ErrExecutorShutdown
	}
	t, ok := e.q.PopFront()
	e.mu.Unlock()
	if !ok {
		return false, nil
	}
	t.Invoke()
	return true, nil
}

// LoopOnceTimeout blocks up to timeout for a task to become available, then
// runs it. It reports false on timeout with no task run.
func (e *Manual) LoopOnceTimeout(timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)

	e.mu.Lock()
	for {
		if e.shutdown {
			e.mu.Unlock()
			return false, crterrors.ErrExecutorShutdown
		}
		if t, ok := e.q.PopFront(); ok {
			e.mu.Unlock()
			t.Invoke()
			return true, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			e.mu.Unlock()
			return false, nil
		}
		waitOnCond(&e.cond, remaining)
	}
}

// Loop runs up to max tasks, stopping early once the queue empties.
func (e *Manual) Loop(max int) (int, error) {
	ran := 0
	for ran < max {
		ok, err := e.LoopOnce()
		if err != nil {
			return ran, err
		}
		if !ok {
			break
		}
		ran++
	}
	return ran, nil
}

// WaitForTask blocks until at least one task is queued, without running it.
// A zero timeout blocks indefinitely.
func (e *Manual) WaitForTask(timeout time.Duration) (bool, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		if e.shutdown {
			return false, crterrors.ErrExecutorShutdown
		}
		if e.q.Len() > 0 {
			return true, nil
		}
		if timeout <= 0 {
			e.cond.Wait()
			continue
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}
		waitOnCond(&e.cond, remaining)
	}
}

// Clear drops all queued tasks, cancelling each with crterrors.ErrBrokenTask.
func (e *Manual) Clear() {
	e.mu.Lock()
	drained := e.q.DrainAll()
	e.mu.Unlock()
	for _, t := range drained {
		t.Cancel(crterrors.ErrBrokenTask)
	}
}

// Size reports the number of queued tasks.
func (e *Manual) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.q.Len()
}

// Empty reports whether the queue is empty.
func (e *Manual) Empty() bool {
	return e.Size() == 0
}

func (e *Manual) Shutdown(_ context.Context) error {
	e.mu.Lock()
	if e.shutdown {
		e.mu.Unlock()
		return nil
	}
	e.shutdown = true
	drained := e.q.DrainAll()
	e.mu.Unlock()
	e.cond.Broadcast()

	for _, t := range drained {
		t.Cancel(crterrors.ErrExecutorShutdown)
	}
	crtlog.ExecutorShutdown(e.name, len(drained))
	return nil
}

func (e *Manual) ShutdownRequested() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shutdown
}

func (e *Manual) Name() string {
	return e.name
}

// MaxConcurrencyLevel is 1: only the goroutine driving LoopOnce*/Loop ever
// runs a task.
func (e *Manual) MaxConcurrencyLevel() int {
	return 1
}
