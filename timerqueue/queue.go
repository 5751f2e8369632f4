package timerqueue

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-concurrentrt/crtlog"
	"github.com/joeycumines/go-concurrentrt/executor"
	"github.com/joeycumines/go-concurrentrt/result"
	"github.com/joeycumines/go-concurrentrt/task"
)

// Queue is the background timer worker of spec.md §4.9. Exactly one
// goroutine ever touches the deadline-ordered heap; every other goroutine
// only ever pushes onto the request queue.
type Queue struct {
	mu       sync.Mutex
	cond     sync.Cond
	requests []request
	abort    bool

	heap timerHeap

	nameCounter atomic.Uint64

	done chan struct{}
}

// New constructs and starts a Queue's background worker goroutine.
func New() *Queue {
	q := &Queue{done: make(chan struct{})}
	q.cond.L = &q.mu
	go q.run()
	return q
}

func (q *Queue) nextName() string {
	return "timer-" + itoa(q.nameCounter.Add(1))
}

func itoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func (q *Queue) submit(r request) {
	q.mu.Lock()
	q.requests = append(q.requests, r)
	q.mu.Unlock()
	q.cond.Signal()
}

// CreateTimer registers a repeating timer whose first deadline is
// now+due and which re-fires every freq thereafter, dispatching callback
// onto ex each time.
func (q *Queue) CreateTimer(due, freq time.Duration, ex executor.Executor, callback func()) *Timer {
	return q.create(due, freq, ex, callback)
}

// CreateOneShotTimer registers a timer that fires exactly once, at now+due.
func (q *Queue) CreateOneShotTimer(due time.Duration, ex executor.Executor, callback func()) *Timer {
	return q.create(due, oneShot, ex, callback)
}

func (q *Queue) create(due, freq time.Duration, ex executor.Executor, callback func()) *Timer {
	r := &record{
		name:      q.nextName(),
		due:       time.Now().Add(due),
		frequency: freq,
		executor:  ex,
		callback:  callback,
	}
	q.submit(request{kind: requestRegister, rec: r})
	crtlog.TimerRegistered(r.name, freq == oneShot)
	return &Timer{q: q, r: r}
}

// CreateDelayObject is the canonical bridge from timers to awaitables
// (spec.md §6): it schedules a one-shot timer that fulfills the returned
// result once due has elapsed.
func (q *Queue) CreateDelayObject(due time.Duration, ex executor.Executor) (*result.Result[struct{}], error) {
	p := result.New[struct{}]()
	q.CreateOneShotTimer(due, ex, func() { _ = p.SetValue(struct{}{}) })
	return p.Result()
}

// Shutdown stops the worker goroutine, cancelling every timer still
// registered. It blocks until the worker has exited.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	if q.abort {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.abort = true
	q.mu.Unlock()
	q.cond.Broadcast()
	<-q.done
}

// run is the worker loop, matching spec.md §4.9's three steps.
func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.requests) == 0 && !q.readyToFire() && !q.abort {
			wait := q.untilNextDeadline()
			waitOnCond(&q.cond, &q.mu, wait)
		}
		pending := q.requests
		q.requests = nil
		abort := q.abort
		q.mu.Unlock()

		for _, r := range pending {
			q.apply(r)
		}

		if abort {
			q.cancelAll()
			return
		}

		q.fireExpired()
	}
}

// readyToFire reports whether the earliest timer's deadline has already
// passed. Caller holds q.mu.
func (q *Queue) readyToFire() bool {
	return len(q.heap) > 0 && !q.heap[0].due.After(time.Now())
}

// untilNextDeadline reports how long to wait before the next deadline, or
// a long sentinel duration if the heap is empty (the worker is instead
// woken by Signal/Broadcast on any new request or shutdown).
func (q *Queue) untilNextDeadline() time.Duration {
	if len(q.heap) == 0 {
		return 24 * time.Hour
	}
	d := time.Until(q.heap[0].due)
	if d < 0 {
		return 0
	}
	return d
}

func (q *Queue) apply(r request) {
	switch r.kind {
	case requestRegister:
		heap.Push(&q.heap, r.rec)
	case requestCancel:
		if r.rec.heapIndex >= 0 && r.rec.heapIndex < len(q.heap) && q.heap[r.rec.heapIndex] == r.rec {
			heap.Remove(&q.heap, r.rec.heapIndex)
		}
		crtlog.TimerCancelled(r.rec.name, false)
	}
}

// fireExpired walks the heap from the earliest deadline, firing every
// record whose deadline has passed, stopping at the first future one.
func (q *Queue) fireExpired() {
	now := time.Now()
	for {
		q.mu.Lock()
		if len(q.heap) == 0 || q.heap[0].due.After(now) {
			q.mu.Unlock()
			return
		}
		r := heap.Pop(&q.heap).(*record)
		q.mu.Unlock()

		r.mu.Lock()
		cancelled := r.cancelled
		oneShotTimer := r.frequency == oneShot
		freq := r.frequency
		if oneShotTimer {
			r.fired = true
		}
		r.mu.Unlock()

		if cancelled {
			continue
		}

		q.dispatch(r)

		if !oneShotTimer {
			r.mu.Lock()
			r.due = now.Add(freq)
			r.mu.Unlock()
			q.mu.Lock()
			heap.Push(&q.heap, r)
			q.mu.Unlock()
		} else {
			crtlog.TimerCancelled(r.name, true)
		}
	}
}

// dispatch posts the timer's callback onto its executor. Callback
// invocation always happens through the timer's executor, never inline on
// the worker goroutine, so a slow or blocking user callback can never
// stall the timer worker (spec.md §4.9 invariant).
func (q *Queue) dispatch(r *record) {
	cb := r.callback
	if err := r.executor.Enqueue(task.New(cb)); err != nil {
		crtlog.ExecutorExceptionWrapped(r.executor.Name(), err)
	}
}

func (q *Queue) cancelAll() {
	q.mu.Lock()
	drained := q.heap
	q.heap = nil
	pending := q.requests
	q.requests = nil
	q.mu.Unlock()

	for _, r := range pending {
		if r.kind == requestRegister {
			drained = append(drained, r.rec)
		}
	}
	for _, r := range drained {
		crtlog.TimerCancelled(r.name, false)
	}
}

// waitOnCond is cond.Wait bounded by a timeout, mirroring
// executor/cond.go's waitOnCond for the same lack of native timeout support
// in sync.Cond.
func waitOnCond(c *sync.Cond, mu *sync.Mutex, d time.Duration) {
	timer := time.AfterFunc(d, func() {
		mu.Lock()
		c.Broadcast()
		mu.Unlock()
	})
	defer timer.Stop()
	c.Wait()
}
