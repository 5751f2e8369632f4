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

func TestSingleWorkerRunsTasks(t *testing.T) {
	e := NewSingleWorker("worker")
	defer e.Shutdown(context.Background())

	var wg sync.WaitGroup
	var count atomic.Int32
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, e.Enqueue(task.New(func() {
			count.Add(1)
			wg.Done()
		})))
	}

	waitTimeout(t, &wg, time.Second)
	require.EqualValues(t, 100, count.Load())
}

func TestSingleWorkerSelfEnqueue(t *testing.T) {
	e := NewSingleWorker("worker")
	defer e.Shutdown(context.Background())

	done := make(chan struct{})
	require.NoError(t, e.Enqueue(task.New(func() {
		// Scheduling from inside the worker's own goroutine exercises the
		// local fast path.
		e.Enqueue(task.New(func() { close(done) }))
	})))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nested enqueue never ran")
	}
}

func TestSingleWorkerShutdownCancelsQueued(t *testing.T) {
	e := NewSingleWorker("worker")
	var gotErr error
	var mu sync.Mutex
	block := make(chan struct{})

	// Occupy the worker so the next task stays queued. The second task is
	// only enqueued once the first is running: tasks taken from the public
	// deque together run newest first.
	started := make(chan struct{})
	require.NoError(t, e.Enqueue(task.New(func() { close(started); <-block })))
	<-started
	require.NoError(t, e.Enqueue(task.NewCancelable(func() {}, func(err error) {
		mu.Lock()
		gotErr = err
		mu.Unlock()
	})))

	shutdownErr := make(chan error, 1)
	go func() { shutdownErr <- e.Shutdown(context.Background()) }()
	time.Sleep(20 * time.Millisecond) // let Shutdown observe the abort flags first
	close(block)
	require.NoError(t, <-shutdownErr)

	mu.Lock()
	defer mu.Unlock()
	require.ErrorIs(t, gotErr, crterrors.ErrExecutorShutdown)
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for group")
	}
}
