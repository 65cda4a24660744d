package tree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ticsynth/tree"
)

func TestQueuePopsLowestPriorityFirst(t *testing.T) {
	q := tree.NewQueue()
	require.Equal(t, 0, q.Len())

	low := tree.NewNode(1, nil, 0, 0, "", false)
	mid := tree.NewNode(2, nil, 0, 0, "", false)
	high := tree.NewNode(3, nil, 0, 0, "", false)

	q.Push(mid, 5)
	q.Push(high, 9)
	q.Push(low, 1)
	require.Equal(t, 3, q.Len())

	n, ok := q.Pop()
	require.True(t, ok)
	require.Same(t, low, n)

	n, ok = q.Pop()
	require.True(t, ok)
	require.Same(t, mid, n)

	n, ok = q.Pop()
	require.True(t, ok)
	require.Same(t, high, n)

	_, ok = q.Pop()
	require.False(t, ok)
}
