package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/go-concurrentrt/crterrors"
	"github.com/joeycumines/go-concurrentrt/task"
	"github.com/stretchr/testify/require"
)

// TestThreadPoolS1 is scenario S1 from spec.md §8: 10,000 no-op tasks across
// 4 workers, all run exactly once, using at most 4 distinct goroutines.
func TestThreadPoolS1(t *testing.T) {
	const workers = 4
	const tasks = 10_000

	p := NewThreadPool("pool", workers)
	var count atomic.Int64
	var ids sync.Map
	var wg sync.WaitGroup
	wg.Add(tasks)

	for i := 0; i < tasks; i++ {
		require.NoError(t, p.Enqueue(task.New(func() {
			ids.Store(currentGoroutineID(), struct{}{})
			count.Add(1)
			wg.Done()
		})))
	}

	waitTimeout(t, &wg, 10*time.Second)
	require.EqualValues(t, tasks, count.Load())
	require.NoError(t, p.Shutdown(context.Background()))
	distinct := 0
	ids.Range(func(_, _ any) bool { distinct++; return true })
	require.LessOrEqual(t, distinct, workers)
}

// TestThreadPoolS2 is scenario S2: a sleeping task must not block an
// independent task from completing promptly, proving parallelism.
func TestThreadPoolS2(t *testing.T) {
	p := NewThreadPool("pool", 4)
	defer p.Shutdown(context.Background())

	var bDone atomic.Bool
	require.NoError(t, p.Enqueue(task.New(func() {
		time.Sleep(time.Second)
	})))

	start := time.Now()
	done := make(chan struct{})
	require.NoError(t, p.Enqueue(task.New(func() {
		bDone.Store(true)
		close(done)
	})))

	select {
	case <-done:
		require.Less(t, time.Since(start), 200*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("task B was blocked behind task A")
	}
}

func TestThreadPoolShutdownCancelsQueued(t *testing.T) {
	p := NewThreadPool("pool", 1)

	// The second task is only enqueued once the first is running: tasks
	// taken from the public deque together run newest first.
	block := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Enqueue(task.New(func() { close(started); <-block })))
	<-started

	var gotErr error
	var mu sync.Mutex
	require.NoError(t, p.Enqueue(task.NewCancelable(func() {}, func(err error) {
		mu.Lock()
		gotErr = err
		mu.Unlock()
	})))

	shutdownErr := make(chan error, 1)
	go func() { shutdownErr <- p.Shutdown(context.Background()) }()
	time.Sleep(20 * time.Millisecond)
	close(block)
	require.NoError(t, <-shutdownErr)

	mu.Lock()
	defer mu.Unlock()
	require.ErrorIs(t, gotErr, crterrors.ErrExecutorShutdown)

	err := p.Enqueue(task.New(func() {}))
	require.ErrorIs(t, err, crterrors.ErrExecutorShutdown)
}

func TestThreadPoolEnqueueBatchSplitsAcrossWorkers(t *testing.T) {
	p := NewThreadPool("pool", 4)
	defer p.Shutdown(context.Background())

	const n = 400
	var wg sync.WaitGroup
	wg.Add(n)
	batch := make(task.Batch, n)
	for i := range batch {
		batch[i] = task.New(func() { wg.Done() })
	}

	require.NoError(t, p.EnqueueBatch(batch))
	waitTimeout(t, &wg, 5*time.Second)
}

func TestThreadPoolWorkDonation(t *testing.T) {
	p := NewThreadPool("pool", 4)
	defer p.Shutdown(context.Background())

	var wg sync.WaitGroup
	const n = 2000
	wg.Add(n)

	// Submitted from outside the pool as individual tasks rather than one
	// EnqueueBatch call, to exercise find-idle-worker discovery and, once
	// workers pick up local backlogs, the donation path in maybeDonate.
	for i := 0; i < n; i++ {
		require.NoError(t, p.Enqueue(task.New(func() { wg.Done() })))
	}

	waitTimeout(t, &wg, 10*time.Second)
}
