// Package result implements the one-shot, SPSC result/promise state machine
// from spec.md §4.2/§4.3: Promise[T] is the write end, Result[T] is the read
// end, and a shared tri-state phase (idle / producer-set / consumer-set)
// published with compare-and-swap mediates the hand-off between them.
//
// This is the generic, Go-native descendant of eventloop/state.go's
// cache-line-padded FastState and eventloop/promise.go's ChainedPromise:
// the phase CAS machinery is the same shape as FastState's
// TryTransition, and Result[T].Then's install/resume pair is the same shape
// as ChainedPromise.addHandler/scheduleHandler, generalized from
// eventloop's dynamically-typed any payload to a type parameter, and from
// JS-style Promise/A+ chaining down to the single-consumer bridge spec.md
// §9 asks for (see SPEC_FULL.md §3).
package result

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-concurrentrt/crterrors"
)

type phase = int32

const (
	phaseIdle phase = iota
	phaseProducerSet
	phaseConsumerSet
)

// consumer is resumed exactly once, after the producer's write is already
// visible, and never while any lock is held (spec.md §4.2: "released
// before resuming a coroutine or signaling a waiter").
type consumer interface {
	resume()
}

// waiterConsumer backs Result.Wait: closing it is the resume signal.
type waiterConsumer chan struct{}

func (w waiterConsumer) resume() { close(w) }

// sharedState is the state machine backing both ends of a Promise[T] /
// Result[T] pair. Exactly one of each exists per promise.
type sharedState[T any] struct {
	phaseVal atomic.Int32 // phase, typed int32 under the hood for atomic ops

	val T
	err error

	mu       sync.Mutex // guards consumer install/read only, never the value
	consumer consumer

	retrieved atomic.Bool // not consulted: Promise.Result tracks retrieval in Promise.resultTaken
}

func newSharedState[T any]() *sharedState[T] {
	return &sharedState[T]{}
}

func (s *sharedState[T]) status() Status {
	if s.phaseVal.Load() != phaseProducerSet {
		return StatusIdle
	}
	if s.err != nil {
		return StatusException
	}
	return StatusValue
}

// publish writes v/err into the producer slot and transitions the phase to
// producer-set, resuming any installed consumer. It panics if called more
// than once on the same state, per spec.md §8 invariant 1 ("the producer
// slot is written at most once; any attempt beyond the first is a
// programming error").
func (s *sharedState[T]) publish(v T, err error) {
	s.val = v
	s.err = err

	// Fast path: no consumer has installed yet, so there's nothing to wake.
	if s.phaseVal.CompareAndSwap(phaseIdle, phaseProducerSet) {
		return
	}

	if !s.phaseVal.CompareAndSwap(phaseConsumerSet, phaseProducerSet) {
		panic("concurrentrt: result producer slot written twice")
	}

	// The CAS above synchronizes with installConsumer's own CAS into
	// phaseConsumerSet, so s.consumer is already safely visible here; the
	// lock just keeps the read/clear consistent with installConsumer and
	// uninstallConsumer's own critical sections.
	s.mu.Lock()
	c := s.consumer
	s.consumer = nil
	s.mu.Unlock()

	if c != nil {
		c.resume()
	}
}

// installConsumer installs c as the state's sole consumer. It reports true
// if the state was already ready (in which case c is never installed and
// the caller should proceed on the fast, already-ready path itself).
func (s *sharedState[T]) installConsumer(c consumer) (ready bool) {
	s.mu.Lock()
	if s.phaseVal.Load() == phaseProducerSet {
		s.mu.Unlock()
		return true
	}
	if s.consumer != nil {
		s.mu.Unlock()
		panic("concurrentrt: result already has a consumer installed")
	}
	s.consumer = c
	ok := s.phaseVal.CompareAndSwap(phaseIdle, phaseConsumerSet)
	if !ok {
		s.consumer = nil
	}
	s.mu.Unlock()
	return !ok
}

// uninstallConsumer reverses installConsumer, for a cancelled wait. It
// reports true if it won the race against the producer (phase reverted to
// idle, c was never and will never be resumed); false means the producer
// already claimed the state concurrently and c either has been or is about
// to be resumed — the caller must still observe that resume.
func (s *sharedState[T]) uninstallConsumer(c consumer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumer != c {
		return false
	}
	if s.phaseVal.CompareAndSwap(phaseConsumerSet, phaseIdle) {
		s.consumer = nil
		return true
	}
	return false
}

// breakTask publishes cause (crterrors.ErrBrokenTask if cause is nil),
// unless the state is already settled (in which case it's a no-op): this is
// what a dropped/discarded
// Promise, or an executor cancelling a queued continuation task, resolves
// to (spec.md §7 broken-task).
func (s *sharedState[T]) breakTask(cause error) {
	if s.phaseVal.Load() == phaseProducerSet {
		return
	}
	if cause == nil {
		cause = crterrors.ErrBrokenTask
	}
	var zero T
	defer func() { recover() }() //nolint:errcheck // tolerate a racing legitimate publish landing first
	s.publish(zero, cause)
}
