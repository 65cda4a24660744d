package heuristic_test

import (
	"testing"

	"github.com/katalvlaran/ticsynth/heuristic"
	"github.com/stretchr/testify/require"
)

func TestBFSOrdersByDepth(t *testing.T) {
	h := heuristic.BFS()
	require.Less(t, h(heuristic.Snapshot{Depth: 1}), h(heuristic.Snapshot{Depth: 2}))
}

func TestDFSOrdersInverse(t *testing.T) {
	h := heuristic.DFS()
	require.Greater(t, h(heuristic.Snapshot{Depth: 1}), h(heuristic.Snapshot{Depth: 2}))
}

func TestPreferEnvironmentBoostsEnvNodes(t *testing.T) {
	h := heuristic.PreferEnvironment()
	env := h(heuristic.Snapshot{Depth: 3, IsEnvironmentAction: true})
	ctrl := h(heuristic.Snapshot{Depth: 3, IsEnvironmentAction: false})
	require.Less(t, env, ctrl)
}

func TestCompositeLinearCombination(t *testing.T) {
	h := heuristic.Composite(
		heuristic.Weighted{Func: heuristic.BFS(), Weight: 1},
		heuristic.Weighted{Func: heuristic.WordCount(), Weight: 10},
	)
	got := h(heuristic.Snapshot{Depth: 2, WordCount: 3})
	require.Equal(t, 32.0, got)
}

func TestRandomDeterministicPerSeed(t *testing.T) {
	a := heuristic.Random(42)
	b := heuristic.Random(42)
	require.Equal(t, a(heuristic.Snapshot{}), b(heuristic.Snapshot{}))
}
