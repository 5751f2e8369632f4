package concurrentrt

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/go-concurrentrt/task"
	"github.com/stretchr/testify/require"
)

func TestNewUsesCPUSizing(t *testing.T) {
	rt := New()
	defer rt.Shutdown(context.Background())

	require.Greater(t, rt.ThreadPool().MaxConcurrencyLevel(), 0)
	require.Greater(t, rt.BackgroundThreadPool().MaxConcurrencyLevel(), rt.ThreadPool().MaxConcurrencyLevel()-1)
}

func TestRuntimeOptionsOverrideSizing(t *testing.T) {
	rt := New(WithMaxCPUThreads(2), WithMaxBackgroundThreads(3))
	defer rt.Shutdown(context.Background())

	require.Equal(t, 2, rt.ThreadPool().MaxConcurrencyLevel())
	require.Equal(t, 3, rt.BackgroundThreadPool().MaxConcurrencyLevel())
}

func TestRuntimeRunsWorkAcrossExecutors(t *testing.T) {
	rt := New(WithMaxCPUThreads(2), WithMaxBackgroundThreads(2))
	defer rt.Shutdown(context.Background())

	var wg sync.WaitGroup
	wg.Add(3)
	var ran atomic.Int32

	require.NoError(t, rt.Inline().Enqueue(task.New(func() { ran.Add(1); wg.Done() })))
	require.NoError(t, rt.ThreadPool().Enqueue(task.New(func() { ran.Add(1); wg.Done() })))
	require.NoError(t, rt.BackgroundThreadPool().Enqueue(task.New(func() { ran.Add(1); wg.Done() })))

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for runtime executors")
	}
	require.EqualValues(t, 3, ran.Load())
}

func TestRuntimeTimerFiresOntoOwnedExecutor(t *testing.T) {
	rt := New(WithMaxCPUThreads(1), WithMaxBackgroundThreads(1))
	defer rt.Shutdown(context.Background())

	fired := make(chan struct{})
	rt.Timers().CreateOneShotTimer(20*time.Millisecond, rt.Inline(), func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("runtime timer never fired")
	}
}

func TestRuntimeShutdownIsIdempotent(t *testing.T) {
	rt := New(WithMaxCPUThreads(1), WithMaxBackgroundThreads(1))
	require.NoError(t, rt.Shutdown(context.Background()))
	require.NoError(t, rt.Shutdown(context.Background()))
}

func TestRuntimeFactoriesProduceCallerOwnedExecutors(t *testing.T) {
	rt := New(WithMaxCPUThreads(1), WithMaxBackgroundThreads(1))
	defer rt.Shutdown(context.Background())

	m := rt.NewManualExecutor("manual")
	defer m.Shutdown(context.Background())
	require.NoError(t, m.Enqueue(task.New(func() {})))
	ran, err := m.LoopOnce()
	require.NoError(t, err)
	require.True(t, ran)

	sw := rt.NewSingleWorkerExecutor("single")
	defer sw.Shutdown(context.Background())
	done := make(chan struct{})
	require.NoError(t, sw.Enqueue(task.New(func() { close(done) })))
	<-done
}
