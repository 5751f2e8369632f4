// Package timerqueue implements the background timer queue of spec.md §4.9:
// a single worker goroutine owns a deadline-ordered heap of timer records,
// fed by a request queue so registration and cancellation from foreign
// goroutines never touch the heap directly. This is the Go-native sibling
// of eventloop/loop.go's timerHeap (container/heap over a deadline field),
// generalized from an in-loop data structure into its own, independently
// owned worker — since unlike eventloop's single-threaded reactor, this
// runtime has many independent executors and needs one shared clock thread
// that can fire onto any of them.
package timerqueue

import (
	"sync"
	"time"

	"github.com/joeycumines/go-concurrentrt/executor"
)

// oneShot is the sentinel frequency marking a timer that fires once.
const oneShot time.Duration = 0

// record is a single timer's shared state, jointly owned by its Timer
// handle and the Queue. Only the worker goroutine ever touches heapIndex
// or reorders the heap; every other field is read/written under the
// record's own mutex or via atomics, per spec.md §4.9's "only the worker
// thread touches the ordered collection" invariant.
type record struct {
	name      string
	due       time.Time
	frequency time.Duration // oneShot for one-shot timers
	executor  executor.Executor
	callback  func()

	mu        sync.Mutex
	cancelled bool
	fired     bool // one-shot only: true once its callback has been enqueued

	heapIndex int
}

// Timer is a handle to a registered timer record.
type Timer struct {
	q *Queue
	r *record
}

// Cancel marks the timer cancelled and asks the queue's worker to drop it.
// Cancelling an already-fired one-shot timer, or calling Cancel more than
// once, is a harmless no-op (spec.md §4.9).
func (t *Timer) Cancel() {
	t.r.mu.Lock()
	already := t.r.cancelled || t.r.fired
	t.r.cancelled = true
	t.r.mu.Unlock()
	if already {
		return
	}
	t.q.submit(request{kind: requestCancel, rec: t.r})
}

// SetFrequency atomically updates the record's repeat frequency. It takes
// effect starting with the fire after the one already scheduled (spec.md
// §4.9: "never affects the already-scheduled next deadline").
func (t *Timer) SetFrequency(freq time.Duration) {
	t.r.mu.Lock()
	t.r.frequency = freq
	t.r.mu.Unlock()
}

type requestKind int

const (
	requestRegister requestKind = iota
	requestCancel
)

type request struct {
	kind requestKind
	rec  *record
}

// timerHeap is a container/heap.Interface min-heap ordered by due time,
// directly modeled on eventloop/loop.go's timerHeap.
type timerHeap []*record

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	return h[i].due.Before(h[j].due)
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}
func (h *timerHeap) Push(x any) {
	r := x.(*record)
	r.heapIndex = len(*h)
	*h = append(*h, r)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	r.heapIndex = -1
	*h = old[:n-1]
	return r
}
