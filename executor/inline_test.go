package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/joeycumines/go-concurrentrt/crterrors"
	"github.com/joeycumines/go-concurrentrt/task"
	"github.com/stretchr/testify/require"
)

func TestInlineRunsSynchronously(t *testing.T) {
	e := NewInline("inline")
	var ran bool
	require.NoError(t, e.Enqueue(task.New(func() { ran = true })))
	require.True(t, ran)
}

func TestInlineShutdownRejects(t *testing.T) {
	e := NewInline("inline")
	require.NoError(t, e.Shutdown(context.Background()))
	require.True(t, e.ShutdownRequested())

	var cancelErr error
	tk := task.NewCancelable(func() {}, func(err error) { cancelErr = err })
	err := e.Enqueue(tk)
	require.ErrorIs(t, err, crterrors.ErrExecutorShutdown)
	require.True(t, errors.Is(cancelErr, crterrors.ErrExecutorShutdown))
}
