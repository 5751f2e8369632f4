package result

import (
	"runtime"
	"sync/atomic"

	"github.com/joeycumines/go-concurrentrt/crterrors"
)

// Promise is the write end of a one-shot Promise[T]/Result[T] pair, the
// producer side of spec.md §4.3. Exactly one of SetValue, SetException, or
// SetFromFunc may succeed; any later attempt panics (see sharedState.publish).
type Promise[T any] struct {
	state      *sharedState[T]
	resultTaken atomic.Bool
}

// New constructs a fresh, unset Promise[T].
func New[T any]() *Promise[T] {
	p := &Promise[T]{state: newSharedState[T]()}
	// Best-effort broken-task safety net: if the caller drops the promise on
	// the floor without ever settling it or explicitly Break-ing it, the GC
	// finalizer settles it as broken so an awaiter doesn't hang forever.
	// This is deliberately approximate (finalizer timing is not guaranteed,
	// unlike C++'s deterministic destructor) — callers that need prompt
	// cancellation should call Break explicitly. See DESIGN.md.
	runtime.SetFinalizer(p, func(p *Promise[T]) { p.state.breakTask(nil) })
	return p
}

// SetValue publishes v as the promise's result. It panics if the promise
// has already been settled.
func (p *Promise[T]) SetValue(v T) error {
	p.state.publish(v, nil)
	return nil
}

// SetException publishes err as the promise's exceptional result. err must
// not be nil. It panics if the promise has already been settled.
func (p *Promise[T]) SetException(err error) error {
	if err == nil {
		return crterrors.ErrEmptyObject
	}
	var zero T
	p.state.publish(zero, err)
	return nil
}

// SetFromFunc runs fn and publishes its result, whichever of value or error
// it returns, as a single atomic step — the Go equivalent of
// concurrencpp's promise::set_from_function.
func (p *Promise[T]) SetFromFunc(fn func() (T, error)) error {
	v, err := fn()
	p.state.publish(v, err)
	return nil
}

// Break settles the promise as broken, as if it had been dropped without
// ever being set, with cause as the reported error (crterrors.ErrBrokenTask
// if cause is nil). It is a no-op if the promise is already settled. Call
// this for deterministic cancellation instead of relying on the finalizer.
func (p *Promise[T]) Break(cause error) {
	p.state.breakTask(cause)
}

// Result returns the Result[T] handle bound to this promise's state. It may
// only be called once per promise; subsequent calls return
// crterrors.ErrAlreadyRetrieved.
func (p *Promise[T]) Result() (*Result[T], error) {
	if !p.resultTaken.CompareAndSwap(false, true) {
		return nil, crterrors.ErrAlreadyRetrieved
	}
	return newResult(p.state), nil
}
