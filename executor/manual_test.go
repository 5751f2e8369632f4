package executor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/go-concurrentrt/crterrors"
	"github.com/joeycumines/go-concurrentrt/task"
	"github.com/stretchr/testify/require"
)

func TestManualLoopOnce(t *testing.T) {
	e := NewManual("manual")
	var ran bool
	require.NoError(t, e.Enqueue(task.New(func() { ran = true })))
	require.False(t, ran) // nothing runs until the loop is driven

	ok, err := e.LoopOnce()
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, ran)

	ok, err = e.LoopOnce()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestManualLoopRunsUpToMax(t *testing.T) {
	e := NewManual("manual")
	var count atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Enqueue(task.New(func() { count.Add(1) })))
	}

	ran, err := e.Loop(3)
	require.NoError(t, err)
	require.Equal(t, 3, ran)
	require.EqualValues(t, 3, count.Load())
	require.Equal(t, 2, e.Size())
}

func TestManualWaitForTask(t *testing.T) {
	e := NewManual("manual")
	done := make(chan struct{})
	go func() {
		defer close(done)
		ok, err := e.WaitForTask(time.Second)
		require.NoError(t, err)
		require.True(t, ok)
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, e.Enqueue(task.New(func() {})))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitForTask did not observe the enqueued task")
	}
}

func TestManualWaitForTaskTimeout(t *testing.T) {
	e := NewManual("manual")
	ok, err := e.WaitForTask(20 * time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestManualClearCancelsBroken(t *testing.T) {
	e := NewManual("manual")
	var gotErr error
	tk := task.NewCancelable(func() {}, func(err error) { gotErr = err })
	require.NoError(t, e.Enqueue(tk))

	e.Clear()
	require.ErrorIs(t, gotErr, crterrors.ErrBrokenTask)
	require.True(t, e.Empty())
}

func TestManualShutdownCancelsQueued(t *testing.T) {
	e := NewManual("manual")
	var gotErr error
	tk := task.NewCancelable(func() {}, func(err error) { gotErr = err })
	require.NoError(t, e.Enqueue(tk))

	require.NoError(t, e.Shutdown(context.Background()))
	require.ErrorIs(t, gotErr, crterrors.ErrExecutorShutdown)

	err := e.Enqueue(task.New(func() {}))
	require.ErrorIs(t, err, crterrors.ErrExecutorShutdown)
}
