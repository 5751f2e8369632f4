package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-concurrentrt/crterrors"
	"github.com/joeycumines/go-concurrentrt/crtlog"
	"github.com/joeycumines/go-concurrentrt/crtsync"
	"github.com/joeycumines/go-concurrentrt/task"
)

// defaultMaxIdleTime is how long an idle thread-pool worker waits for new
// work before its goroutine exits, per spec.md §4.8 step 3.
const defaultMaxIdleTime = 60 * time.Second

// ThreadPool is the thread-pool executor from spec.md §4.8: N workers, each
// with a private local deque and a locked public deque, a pool-wide idle
// set for lock-free idle-worker discovery, work stealing via donation from a
// busy worker to idle peers, and round-robin fallback when no worker is
// idle and the caller isn't itself a pool worker.
type ThreadPool struct {
	name    string
	workers []*poolWorker
	idle    *crtsync.IdleSet

	cursor atomic.Uint64 // round-robin fallback cursor

	abort atomic.Bool

	maxIdleTime time.Duration

	wg sync.WaitGroup
}

type poolWorker struct {
	pool *ThreadPool
	idx  int

	workerID atomic.Uint64
	rng      *crtsync.LCG

	local taskDeque // touched only by this worker's own goroutine

	mu     sync.Mutex
	cond   sync.Cond
	public taskDeque
	abort  bool

	// exited is set just before the worker's goroutine returns after an
	// idle timeout, and cleared when a respawned goroutine starts. Unlike a
	// goroutine merely parked in cond.Wait (which a Signal/Broadcast alone
	// wakes), an exited worker has no goroutine left to wake and needs a
	// fresh `go w.run()`.
	exited atomic.Bool
}

var _ Executor = (*ThreadPool)(nil)

// NewThreadPool constructs and starts a pool of n workers.
func NewThreadPool(name string, n int, opts ...ThreadPoolOption) *ThreadPool {
	if n < 1 {
		n = 1
	}
	cfg := resolveThreadPoolOptions(opts)
	p := &ThreadPool{
		name:        name,
		workers:     make([]*poolWorker, n),
		idle:        crtsync.NewIdleSet(n),
		maxIdleTime: cfg.maxIdleTime,
	}
	for i := range p.workers {
		w := &poolWorker{pool: p, idx: i, rng: crtsync.NewLCG(lcgSeedFor(i))}
		w.cond.L = &w.mu
		p.workers[i] = w
	}
	for i, w := range p.workers {
		p.wg.Add(1)
		go w.run()
		crtlog.WorkerSpawned(name, i)
	}
	return p
}

func lcgSeedFor(i int) uint32 {
	return uint32(i)*2654435761 + 1
}

// callerWorker reports the poolWorker whose goroutine is the caller, or nil
// if the caller isn't running on one of this pool's workers.
func (p *ThreadPool) callerWorker() *poolWorker {
	id := currentGoroutineID()
	for _, w := range p.workers {
		if w.workerID.Load() == id {
			return w
		}
	}
	return nil
}

// Enqueue implements spec.md §4.8's four-step single-task policy.
func (p *ThreadPool) Enqueue(t task.Task) error {
	if p.abort.Load() {
		t.Cancel(crterrors.ErrExecutorShutdown)
		return crterrors.ErrExecutorShutdown
	}

	caller := p.callerWorker()
	callerIdx := -1
	if caller != nil {
		if caller.local.Len() == 0 {
			caller.local.PushBack(t)
			return nil
		}
		callerIdx = caller.idx
	}

	rng := crtsync.NewLCG(uint32(currentGoroutineID()))
	if idx, ok := p.idle.FindIdle(callerIdx, rng); ok {
		p.workers[idx].pushPublic(t)
		return nil
	}

	if caller != nil {
		caller.local.PushBack(t)
		return nil
	}

	idx := int(p.cursor.Add(1)-1) % len(p.workers)
	p.workers[idx].pushPublic(t)
	return nil
}

// EnqueueBatch implements spec.md §4.8's batch policy: a large external
// batch (at least one task per worker) splits approximately evenly across
// all workers, with the remainder distributed to the first
// task_count mod workers workers. A batch submitted from inside the pool,
// or a small external batch, goes straight onto the caller's local deque
// (or falls back to per-task Enqueue if the caller isn't a worker).
func (p *ThreadPool) EnqueueBatch(b task.Batch) error {
	if p.abort.Load() {
		for _, t := range b {
			t.Cancel(crterrors.ErrExecutorShutdown)
		}
		return crterrors.ErrExecutorShutdown
	}

	if caller := p.callerWorker(); caller != nil {
		caller.local.PushBackBatch(b)
		return nil
	}

	n := len(p.workers)
	if len(b) < n {
		for _, t := range b {
			if err := p.Enqueue(t); err != nil {
				return err
			}
		}
		return nil
	}

	base := len(b) / n
	extra := len(b) % n
	pos := 0
	for i, w := range p.workers {
		count := base
		if i < extra {
			count++
		}
		if count == 0 {
			continue
		}
		w.pushPublicBatch(b[pos : pos+count])
		pos += count
	}
	return nil
}

func (w *poolWorker) pushPublic(t task.Task) {
	w.mu.Lock()
	wasEmpty := w.public.Len() == 0
	w.public.PushBack(t)
	w.mu.Unlock()
	if wasEmpty {
		w.activate()
	}
	w.cond.Signal()
}

func (w *poolWorker) pushPublicBatch(b []task.Task) {
	w.mu.Lock()
	wasEmpty := w.public.Len() == 0
	w.public.PushBackBatch(b)
	w.mu.Unlock()
	if wasEmpty {
		w.activate()
	}
	w.cond.Broadcast()
}

// activate marks the worker active in the pool's idle set and, if its
// goroutine had exited after an idle timeout, respawns it (spec.md §4: "a
// future enqueue_foreign can reactivate it").
func (w *poolWorker) activate() {
	w.pool.idle.SetActive(w.idx)
	if w.exited.CompareAndSwap(true, false) {
		w.pool.wg.Add(1)
		crtlog.WorkerReactivated(w.pool.name, w.idx)
		go w.run()
	}
}

func (w *poolWorker) run() {
	defer w.pool.wg.Done()
	w.workerID.Store(currentGoroutineID())

	for {
		if w.pool.abort.Load() {
			w.drainAndCancel()
			return
		}

		w.maybeDonate()

		if t, ok := w.local.PopBack(); ok {
			w.invoke(t)
			continue
		}

		w.mu.Lock()
		if w.public.Len() > 0 {
			drained := w.public.DrainAll()
			w.mu.Unlock()
			w.local.PushBackBatch(drained)
			continue
		}
		if w.abort {
			w.mu.Unlock()
			w.drainAndCancel()
			return
		}

		w.pool.idle.SetIdle(w.idx)
		deadline := time.Now().Add(w.pool.maxIdleTime)
		for w.public.Len() == 0 && !w.abort {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				// Idle timeout: exit this goroutine but keep the worker's
				// record (and its idle flag) alive so a future foreign
				// Enqueue can reactivate it (spec.md §4.8 step 3).
				w.exited.Store(true)
				w.mu.Unlock()
				crtlog.WorkerIdleExit(w.pool.name, w.idx)
				return
			}
			waitOnCond(&w.cond, remaining)
		}
		w.pool.idle.SetActive(w.idx)
		if w.abort {
			w.mu.Unlock()
			w.drainAndCancel()
			return
		}
		drained := w.public.DrainAll()
		w.mu.Unlock()
		w.local.PushBackBatch(drained)
	}
}

// maybeDonate implements spec.md §4.8 step 1's donation: if more than one
// task remains locally, try to find idle peers and redistribute a
// contiguous range to each, approximately evenly, keeping at least one task
// for the donor.
func (w *poolWorker) maybeDonate() {
	n := w.local.Len()
	if n < 2 {
		return
	}

	donatable := n - 1 // keep at least one task for the donor
	peers := w.pool.idle.FindMulti(w.idx, w.rng, donatable)
	if len(peers) == 0 {
		return
	}

	perPeer := donatable / len(peers)
	for _, pIdx := range peers {
		donated := w.local.PopFrontRange(perPeer)
		if len(donated) == 0 {
			w.pool.idle.SetIdle(pIdx)
			continue
		}
		w.pool.workers[pIdx].pushPublic(donated[0])
		if len(donated) > 1 {
			w.pool.workers[pIdx].pushPublicBatch(donated[1:])
		}
	}
}

func (w *poolWorker) invoke(t task.Task) {
	defer func() {
		if r := recover(); r != nil {
			crtlog.TaskPanicked(w.pool.name, w.idx, r)
		}
	}()
	t.Invoke()
}

func (w *poolWorker) drainAndCancel() {
	for {
		t, ok := w.local.PopBack()
		if !ok {
			break
		}
		t.Cancel(crterrors.ErrExecutorShutdown)
	}
	w.mu.Lock()
	drained := w.public.DrainAll()
	w.mu.Unlock()
	for _, t := range drained {
		t.Cancel(crterrors.ErrExecutorShutdown)
	}
}

// Shutdown sets the pool-wide abort flag exactly once (spec.md §4.8: "CAS
// from false->true; subsequent calls are no-ops"), then shuts down every
// worker and joins all worker goroutines.
func (p *ThreadPool) Shutdown(ctx context.Context) error {
	if !p.abort.CompareAndSwap(false, true) {
		return waitGroupWithContext(ctx, &p.wg)
	}

	for _, w := range p.workers {
		w.mu.Lock()
		w.abort = true
		w.mu.Unlock()
		w.cond.Broadcast()
	}

	if err := waitGroupWithContext(ctx, &p.wg); err != nil {
		return err
	}
	crtlog.ExecutorShutdown(p.name, 0)
	return nil
}

func waitGroupWithContext(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *ThreadPool) ShutdownRequested() bool {
	return p.abort.Load()
}

func (p *ThreadPool) Name() string {
	return p.name
}

// MaxConcurrencyLevel is the number of workers in the pool.
func (p *ThreadPool) MaxConcurrencyLevel() int {
	return len(p.workers)
}
