// Package crterrors defines the error taxonomy shared by every component of
// the runtime: executors, the result state machine, and the timer queue.
//
// Kinds are sentinel errors or small wrapper types, matched with errors.Is
// and errors.As rather than type switches, the way the teacher's errors.go
// builds TypeError/RangeError/TimeoutError with Unwrap/Is support.
package crterrors

import "fmt"

var (
	// ErrEmptyObject is returned when an operation is invoked on a moved-from
	// or zero-value handle: a Result, Promise, Timer, or awaitable that no
	// longer (or never did) own a live state.
	ErrEmptyObject = fmt.Errorf("concurrentrt: operation on empty object")

	// ErrBrokenTask is published into a result state when its producer
	// (a Promise, or a task wrapping a continuation) is abandoned without
	// ever writing a value or exception. It is also the cancellation reason
	// Manual.Clear hands to the tasks it drops.
	ErrBrokenTask = fmt.Errorf("concurrentrt: broken task")

	// ErrAlreadyRetrieved is returned by Promise.Result when called more
	// than once on the same promise.
	ErrAlreadyRetrieved = fmt.Errorf("concurrentrt: result already retrieved")

	// ErrExecutorShutdown is returned by any executor operation attempted
	// after Shutdown has completed, and is the cancellation reason handed
	// to tasks still queued at shutdown time.
	ErrExecutorShutdown = fmt.Errorf("concurrentrt: executor is shut down")
)

// Reserved sentinels for the IO engine and async-lock collaborators named in
// spec.md's error taxonomy (§7) but explicitly out of scope for this module.
// They are never returned by anything in this module and, being unexported,
// cannot be matched from outside this package; they only reserve the two
// kinds' names and messages.
var (
	errIOCancelled     = fmt.Errorf("concurrentrt: io operation cancelled") //nolint:unused // reserved, see doc comment
	errRuntimeShutdown = fmt.Errorf("concurrentrt: runtime is shutting down") //nolint:unused // reserved, see doc comment
)

// ExecutorException wraps a failure that occurred while an executor tried to
// schedule a continuation (Result.Then with WithExecutor). It carries the
// original exception being delivered, if any, plus the identity of the
// executor that failed. A failed timer callback dispatch is only logged and
// produces no ExecutorException.
//
// This mirrors spec.md §4.2's "ready-path discipline": when re-dispatching a
// ready result onto an executor fails, the continuation runs inline and
// receives this wrapper in place of the original error, so it observes the
// failure rather than hanging forever. The result's own stored value and
// error are left unchanged.
type ExecutorException struct {
	// Cause is the original exception the continuation would have observed,
	// or nil if the continuation was being resumed with a value.
	Cause error
	// Executor is the name of the executor that failed to accept the task.
	Executor string
}

func (e *ExecutorException) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("concurrentrt: executor %q failed to schedule continuation: %v", e.Executor, e.Cause)
	}
	return fmt.Sprintf("concurrentrt: executor %q failed to schedule continuation", e.Executor)
}

func (e *ExecutorException) Unwrap() error {
	return e.Cause
}
