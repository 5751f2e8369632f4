package executor

import (
	"testing"

	"github.com/joeycumines/go-concurrentrt/task"
	"github.com/stretchr/testify/require"
)

func TestTaskDequeFIFOandLIFO(t *testing.T) {
	var q taskDeque
	var order []int
	push := func(i int) task.Task {
		return task.New(func() { order = append(order, i) })
	}

	q.PushBack(push(1))
	q.PushBack(push(2))
	q.PushBack(push(3))
	require.Equal(t, 3, q.Len())

	back, ok := q.PopBack()
	require.True(t, ok)
	back.Invoke()
	require.Equal(t, []int{3}, order)

	front, ok := q.PopFront()
	require.True(t, ok)
	front.Invoke()
	require.Equal(t, []int{3, 1}, order)

	require.Equal(t, 1, q.Len())
}

func TestTaskDequePopFrontRange(t *testing.T) {
	var q taskDeque
	for i := 0; i < 5; i++ {
		q.PushBack(task.New(func() {}))
	}

	got := q.PopFrontRange(3)
	require.Len(t, got, 3)
	require.Equal(t, 2, q.Len())

	got = q.PopFrontRange(10)
	require.Len(t, got, 2)
	require.Equal(t, 0, q.Len())
}

func TestTaskDequeDrainAll(t *testing.T) {
	var q taskDeque
	for i := 0; i < 4; i++ {
		q.PushBack(task.New(func() {}))
	}
	drained := q.DrainAll()
	require.Len(t, drained, 4)
	require.Equal(t, 0, q.Len())
}
