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

func TestOneShotThreadRunsConcurrently(t *testing.T) {
	e := NewOneShotThread("oneshot")
	const n = 8
	var running atomic.Int32
	var maxObserved atomic.Int32
	release := make(chan struct{})

	for i := 0; i < n; i++ {
		require.NoError(t, e.Enqueue(task.New(func() {
			cur := running.Add(1)
			for {
				max := maxObserved.Load()
				if cur <= max || maxObserved.CompareAndSwap(max, cur) {
					break
				}
			}
			<-release
			running.Add(-1)
		})))
	}

	require.Eventually(t, func() bool { return maxObserved.Load() > 1 }, time.Second, time.Millisecond)
	close(release)
	require.NoError(t, e.Shutdown(context.Background()))
}

func TestOneShotThreadShutdownRejectsFurtherWork(t *testing.T) {
	e := NewOneShotThread("oneshot")
	require.NoError(t, e.Shutdown(context.Background()))

	var cancelErr error
	tk := task.NewCancelable(func() {}, func(err error) { cancelErr = err })
	err := e.Enqueue(tk)
	require.ErrorIs(t, err, crterrors.ErrExecutorShutdown)
	require.ErrorIs(t, cancelErr, crterrors.ErrExecutorShutdown)
}
