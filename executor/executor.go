// Package executor implements the executor protocol from spec.md §6 and its
// five concrete schedulers (§4.4–§4.8): Inline, Manual, OneShotThread,
// SingleWorker, and ThreadPool. Each accepts task.Task values and runs them
// according to its own scheduling policy; none share internal state with
// each other beyond the common Executor interface.
package executor

import (
	"context"

	"github.com/joeycumines/go-concurrentrt/task"
)

// Executor is the scheduling protocol every executor in this module
// implements, matching spec.md §6's "executor protocol": Enqueue takes
// ownership of a task (or batch), Shutdown drains and stops the executor,
// ShutdownRequested reports whether shutdown has been observed, Name
// identifies the executor (for logging and ExecutorException), and
// MaxConcurrencyLevel reports how many tasks the executor can run at once
// (0 means unbounded).
type Executor interface {
	// Enqueue submits a single task. It returns crterrors.ErrExecutorShutdown
	// if the executor has already finished shutting down.
	Enqueue(t task.Task) error

	// EnqueueBatch submits a batch of tasks together, letting the executor
	// apply any batch-specific scheduling policy (spec.md §4.8's batch
	// splitting). The default behavior for executors without a distinct
	// batch policy is to Enqueue each task in order.
	EnqueueBatch(b task.Batch) error

	// Shutdown stops the executor: queued tasks are cancelled with
	// crterrors.ErrExecutorShutdown, in-flight tasks are allowed to finish,
	// and subsequent Enqueue/EnqueueBatch calls fail. Shutdown blocks until
	// every owned goroutine has exited. It is safe to call more than once;
	// only the first call has an effect.
	Shutdown(ctx context.Context) error

	// ShutdownRequested reports whether Shutdown has been called, even if
	// it has not yet finished draining.
	ShutdownRequested() bool

	// Name identifies the executor, used in log messages and in
	// crterrors.ExecutorException.
	Name() string

	// MaxConcurrencyLevel reports the maximum number of tasks this executor
	// may run concurrently, or 0 for unbounded.
	MaxConcurrencyLevel() int
}
