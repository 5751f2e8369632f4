package executor

import (
	"context"
	"sync/atomic"

	"github.com/joeycumines/go-concurrentrt/crterrors"
	"github.com/joeycumines/go-concurrentrt/task"
)

// Inline runs every task synchronously on the calling goroutine, matching
// spec.md §4.4: "invokes immediately on the calling thread". It is the
// Go-idiomatic "no-op scheduler" used by tests and by Result.Then when a
// continuation should run without handing off to another goroutine.
type Inline struct {
	name     string
	shutdown atomic.Bool
}

var _ Executor = (*Inline)(nil)

// NewInline constructs an Inline executor. name is used for logging and
// ExecutorException; "inline" is a reasonable default.
func NewInline(name string) *Inline {
	return &Inline{name: name}
}

func (e *Inline) Enqueue(t task.Task) error {
	if e.shutdown.Load() {
		t.Cancel(crterrors.ErrExecutorShutdown)
		return crterrors.ErrExecutorShutdown
	}
	t.Invoke()
	return nil
}

func (e *Inline) EnqueueBatch(b task.Batch) error {
	for i := range b {
		if err := e.Enqueue(b[i]); err != nil {
			// Cancel the remainder rather than running tasks out of order
			// after a shutdown is observed mid-batch.
			for _, t := range b[i+1:] {
				t.Cancel(crterrors.ErrExecutorShutdown)
			}
			return err
		}
	}
	return nil
}

// Shutdown marks the executor stopped. There is no background goroutine to
// join, so it always returns immediately.
func (e *Inline) Shutdown(_ context.Context) error {
	e.shutdown.Store(true)
	return nil
}

func (e *Inline) ShutdownRequested() bool {
	return e.shutdown.Load()
}

func (e *Inline) Name() string {
	return e.name
}

// MaxConcurrencyLevel is unbounded for the inline executor: it never queues,
// and the caller's own goroutine is the only concurrency unit.
func (e *Inline) MaxConcurrencyLevel() int {
	return 0
}
