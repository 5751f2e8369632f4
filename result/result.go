package result

import (
	"context"
	"errors"
	"time"

	"github.com/joeycumines/go-concurrentrt/crterrors"
	"github.com/joeycumines/go-concurrentrt/crtlog"
	"github.com/joeycumines/go-concurrentrt/task"
)

// Result is the read end of a one-shot Promise[T], the Go-native stand-in
// for concurrencpp's result<T>: a single consumer may either block on it
// (Wait/WaitFor/WaitUntil/Get) or attach a continuation (Then), never both.
//
// The zero value is empty: Status reports StatusIdle, Wait, WaitUntil, Get
// and WaitFor with a positive timeout return crterrors.ErrEmptyObject, and
// Then panics. Results are only ever produced by Promise.Result.
type Result[T any] struct {
	state *sharedState[T]
}

func newResult[T any](s *sharedState[T]) *Result[T] {
	return &Result[T]{state: s}
}

// Empty reports whether this Result owns a live state, i.e. whether it was
// obtained from a Promise rather than being the zero value.
func (r *Result[T]) Empty() bool {
	return r == nil || r.state == nil
}

// Status returns the current, non-consuming snapshot of the result: idle,
// value, or exception. It never blocks.
func (r *Result[T]) Status() Status {
	if r.Empty() {
		return StatusIdle
	}
	return r.state.status()
}

// Wait blocks until the result is ready or ctx is done, whichever comes
// first. It is the Go-idiomatic replacement for concurrencpp's
// co_await result<T>, with cancellation surfaced through ctx instead of
// an uncancellable suspension.
func (r *Result[T]) Wait(ctx context.Context) error {
	if r.Empty() {
		return crterrors.ErrEmptyObject
	}
	if r.state.status() != StatusIdle {
		return nil
	}

	w := make(waiterConsumer)
	if ready := r.state.installConsumer(w); ready {
		return nil
	}

	select {
	case <-w:
		return nil
	case <-ctx.Done():
		if r.state.uninstallConsumer(w) {
			return ctx.Err()
		}
		// The producer won the race; it will (or already did) close w.
		<-w
		return nil
	}
}

// WaitFor blocks for at most timeout, returning the resulting status. A
// timeout less than or equal to zero polls the current status without
// blocking.
func (r *Result[T]) WaitFor(timeout time.Duration) (Status, error) {
	if timeout <= 0 {
		return r.Status(), nil
	}
	return r.WaitUntil(time.Now().Add(timeout))
}

// WaitUntil blocks until deadline, returning the resulting status. Reaching
// the deadline is not an error: the status is then StatusIdle.
func (r *Result[T]) WaitUntil(deadline time.Time) (Status, error) {
	if r.Empty() {
		return StatusIdle, crterrors.ErrEmptyObject
	}
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()
	if err := r.Wait(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return StatusIdle, err
	}
	return r.state.status(), nil
}

// Get blocks until the result is ready, then returns the produced value or
// exception. Unlike concurrencpp's result<T>::get, which may only be called
// once (the C++ move semantics consume the result), Get is idempotent: Go
// values are ordinarily copyable, so calling Get more than once simply
// replays the same value/error rather than being a use-after-move bug. See
// DESIGN.md for the rationale.
func (r *Result[T]) Get(ctx context.Context) (T, error) {
	var zero T
	if r.Empty() {
		return zero, crterrors.ErrEmptyObject
	}
	if err := r.Wait(ctx); err != nil {
		return zero, err
	}
	return r.state.val, r.state.err
}

// continuationConsumer adapts an onDone callback, plus optional dispatch
// policy, into a consumer. This is the generic analogue of
// eventloop/promise.go's ChainedPromise handler slot.
type continuationConsumer[T any] struct {
	state    *sharedState[T]
	onDone   func(T, error)
	executor interface {
		Enqueue(t task.Task) error
		Name() string
	}
	force bool
}

// resume runs when the producer settles a result whose continuation was
// already installed: it is dispatched onto the executor whenever one was
// given, whatever force says, and runs inline on the producer's goroutine
// otherwise.
func (c *continuationConsumer[T]) resume() {
	deliver(c.executor, true, c.onDone, c.state.val, c.state.err)
}

// deliver runs onDone(v, err) according to the ready-path discipline from
// spec.md §4.2: inline unless both an executor and force are given, in
// which case it is enqueued onto ex; if that enqueue fails, the failure is
// wrapped into a crterrors.ExecutorException, logged, and onDone still runs
// inline (with the wrapped error) so the continuation is never lost.
func deliver[T any](ex interface {
	Enqueue(t task.Task) error
	Name() string
}, force bool, onDone func(T, error), v T, err error) {
	if ex == nil || !force {
		onDone(v, err)
		return
	}

	enqueueErr := ex.Enqueue(task.New(func() { onDone(v, err) }))
	if enqueueErr == nil {
		return
	}

	wrapped := &crterrors.ExecutorException{Cause: err, Executor: ex.Name()}
	crtlog.ExecutorExceptionWrapped(ex.Name(), err)
	onDone(v, wrapped)
}

// Then attaches a continuation to be invoked exactly once, when the result
// becomes ready. If the result is already ready when Then is called, the
// continuation runs inline unless WithExecutor+WithForceReschedule(true)
// were given. Otherwise it is installed, and when the producer settles the
// result it is enqueued onto WithExecutor's executor if one was given, or
// runs inline on the producer's goroutine if not, matching concurrencpp's
// await_via semantics.
func (r *Result[T]) Then(onDone func(T, error), opts ...ThenOption) {
	if r.Empty() {
		panic("concurrentrt: Then called on an empty Result")
	}
	o := resolveThenOptions(opts)

	c := &continuationConsumer[T]{state: r.state, onDone: onDone, executor: o.executor, force: o.force}

	if ready := r.state.installConsumer(c); ready {
		deliver(o.executor, o.force, onDone, r.state.val, r.state.err)
	}
}
