package controller_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ticsynth/constraint"
	"github.com/katalvlaran/ticsynth/controller"
	"github.com/katalvlaran/ticsynth/ta"
	"github.com/katalvlaran/ticsynth/tree"
	"github.com/katalvlaran/ticsynth/word"
)

func regionNode(t *testing.T, id uint64, x float64, depth, timeToRoot int, action ta.Action) *tree.Node {
	t.Helper()
	w, err := word.CanonicalRegion("L0", []word.ClockValuation{{Clock: "x", Value: x}}, nil, 3)
	require.NoError(t, err)
	return tree.NewNode(id, []word.Word{w}, depth, timeToRoot, action, false)
}

func TestExtractRefusesNonTopRoot(t *testing.T) {
	root := regionNode(t, 1, 0, 0, 0, "")
	_, err := controller.Extract(root, nil, false, 3)
	require.ErrorIs(t, err, controller.ErrRootNotTop)
}

// TestExtractWalksOnlyTopLabeledChildren builds a 3-node chain by hand
// (root -> topChild [TOP] and root -> deadEnd [BOTTOM]) and checks that
// Extract emits a location/transition only for the TOP edge, matching
// spec.md §4.9's "TOP-labeled subtree only" walk.
func TestExtractWalksOnlyTopLabeledChildren(t *testing.T) {
	root := regionNode(t, 1, 0, 0, 0, "")
	root.SetLabel(tree.Top, tree.GoodNodeReason)

	topChild := regionNode(t, 2, 1, 1, 1, "a")
	topChild.SetLabel(tree.Top, tree.GoodNodeReason)
	root.AddChild(tree.EdgeKey{Increment: 1, Action: "a"}, topChild)

	deadEnd := regionNode(t, 3, 2, 1, 2, "b")
	deadEnd.SetLabel(tree.Bottom, tree.BadNodeReason)
	root.AddChild(tree.EdgeKey{Increment: 2, Action: "b"}, deadEnd)

	out, err := controller.Extract(root, map[ta.Action]bool{"a": true, "b": false}, false, 3)
	require.NoError(t, err)

	require.Len(t, out.Locations(), 2)
	require.ElementsMatch(t, []ta.Action{"a"}, out.Alphabet())

	init := out.InitialConfiguration()
	trans := out.TransitionsFrom(init.Location)
	require.Len(t, trans, 1)
	require.Equal(t, ta.Action("a"), trans[0].Symbol)

	// root's word starts at region index 0 (x == 0); one time-successor
	// step on an all-even partition advances every symbol to region index
	// 1, an open interval strictly between 0 and 1.
	atoms := trans[0].Guards["x"]
	require.Equal(t, []constraint.Atomic{{Op: constraint.Gt, K: 0}, {Op: constraint.Lt, K: 1}}, atoms)

	// Every reached TOP location is final (spec §4.9 "accepting locations
	// are exactly those derived from TOP nodes").
	require.Len(t, out.FinalLocations(), 2)
}

// TestExtractStopsAfterFirstControllerActionWhenMinimizing checks the
// minimize-controller heuristic: once a controller action has fired out
// of a node, every alphabetically-later sibling edge at that node -
// controller-owned or not - is dropped (spec §4.9 "minimized controller"
// option picks a single controller move per node and stops there).
func TestExtractStopsAfterFirstControllerActionWhenMinimizing(t *testing.T) {
	root := regionNode(t, 1, 0, 0, 0, "")
	root.SetLabel(tree.Top, tree.GoodNodeReason)

	first := regionNode(t, 2, 1, 1, 1, "a")
	first.SetLabel(tree.Top, tree.GoodNodeReason)
	root.AddChild(tree.EdgeKey{Increment: 1, Action: "a"}, first)

	second := regionNode(t, 3, 1, 1, 1, "c")
	second.SetLabel(tree.Top, tree.GoodNodeReason)
	root.AddChild(tree.EdgeKey{Increment: 1, Action: "c"}, second)

	out, err := controller.Extract(root, map[ta.Action]bool{"a": true, "c": true}, true, 3)
	require.NoError(t, err)

	init := out.InitialConfiguration()
	trans := out.TransitionsFrom(init.Location)
	var actions []ta.Action
	for _, tr := range trans {
		actions = append(actions, tr.Symbol)
	}
	require.Equal(t, []ta.Action{"a"}, actions)
}

// TestExtractStopsUnconditionallyAfterControllerActionEvenWithLaterEnvEdge
// guards against a narrower break condition that only skipped a *second*
// controller-owned edge: with a TOP environment-owned sibling sorting after
// the fired controller action ("a" controller < "b" env), minimizing
// must still stop at "a" and never reach "b" (spec.md §4.9 "stop after
// emitting the first accepting edge from this node").
func TestExtractStopsUnconditionallyAfterControllerActionEvenWithLaterEnvEdge(t *testing.T) {
	root := regionNode(t, 1, 0, 0, 0, "")
	root.SetLabel(tree.Top, tree.GoodNodeReason)

	first := regionNode(t, 2, 1, 1, 1, "a")
	first.SetLabel(tree.Top, tree.GoodNodeReason)
	root.AddChild(tree.EdgeKey{Increment: 1, Action: "a"}, first)

	env := regionNode(t, 3, 1, 1, 1, "b")
	env.SetLabel(tree.Top, tree.GoodNodeReason)
	root.AddChild(tree.EdgeKey{Increment: 1, Action: "b"}, env)

	out, err := controller.Extract(root, map[ta.Action]bool{"a": true, "b": false}, true, 3)
	require.NoError(t, err)

	init := out.InitialConfiguration()
	trans := out.TransitionsFrom(init.Location)
	var actions []ta.Action
	for _, tr := range trans {
		actions = append(actions, tr.Symbol)
	}
	require.Equal(t, []ta.Action{"a"}, actions)
}
