// Package task provides Task, the type-erased unit of work every executor in
// this module accepts.
//
// The original spec describes a move-only callable with an inline small
// buffer optimization and a heap fallback, distinguished from a dedicated
// "contains a coroutine handle" vtable so that destroying an abandoned task
// unwinds a coroutine to completion. None of that is idiomatic Go: the
// compiler already decides whether a closure's captures escape to the heap,
// and Go has no destructor to hook a second vtable into. What's kept is the
// *contract* spec.md actually cares about: a task is empty or owns exactly
// one callable, invoking it empties it, and cancelling it (instead of
// running it) gives whoever built the task a chance to report why it never
// ran. That second hook is how a task that settles a Promise reports the
// executor's cancellation reason (e.g. executor-shutdown) to its awaiter,
// typically through Promise.Break, which is the Go-idiomatic stand-in for
// "destroying a coroutine-holding task unwinds it".
package task

// Task is a move-only-by-convention, type-erased unit of work.
//
// The zero value is empty. Copying a non-empty Task and invoking both copies
// runs the callable twice, which violates the single-invocation contract;
// callers that need to move a Task (hand it to a queue, then forget their
// own copy) should do so by value and simply stop using the source, the way
// every Task is passed by value into this package's executors.
type Task struct {
	run    func()
	cancel func(error)
}

// New constructs a Task that, when invoked, runs fn. Passing a nil fn
// produces an empty Task.
func New(fn func()) Task {
	return Task{run: fn}
}

// NewCancelable constructs a Task like New, but with a cancel hook invoked
// in place of fn when the task is discarded without running — e.g. because
// the executor holding it was shut down.
func NewCancelable(fn func(), cancel func(error)) Task {
	return Task{run: fn, cancel: cancel}
}

// Empty reports whether the task owns a callable.
func (t *Task) Empty() bool {
	return t.run == nil
}

// Invoke runs the task's callable and leaves the task empty. Invoking an
// empty task is a no-op. Panics from the callable propagate to the caller;
// the task is left empty regardless, matching spec.md §4.1's "exceptions
// propagate; the task is nevertheless left empty".
func (t *Task) Invoke() {
	run := t.run
	t.run = nil
	t.cancel = nil
	if run == nil {
		return
	}
	run()
}

// Cancel discards the task's callable without running it. If a cancel hook
// was registered, it is invoked with err so the task's originator can
// propagate the reason (typically crterrors.ErrBrokenTask or
// crterrors.ErrExecutorShutdown) to whatever is waiting on the task's
// eventual effect. Cancel never panics on behalf of the hook: a panicking
// cancel hook is a programming error in the caller, not something Cancel
// recovers from, matching spec.md §4.1's "never throws" being the hook's
// responsibility rather than Task's.
func (t *Task) Cancel(err error) {
	run := t.run
	cancel := t.cancel
	t.run = nil
	t.cancel = nil
	if run == nil {
		return
	}
	if cancel != nil {
		cancel(err)
	}
}

// Batch is a slice of tasks submitted together, e.g. to Executor.EnqueueBatch.
type Batch []Task
