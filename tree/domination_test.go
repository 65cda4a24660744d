package tree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ticsynth/tree"
	"github.com/katalvlaran/ticsynth/word"
)

func TestDominatesRegionSameSymbolsLaterIndex(t *testing.T) {
	ancestor, err := word.CanonicalRegion("L0", []word.ClockValuation{{Clock: "x", Value: 0}}, nil, 5)
	require.NoError(t, err)
	descendant, err := word.CanonicalRegion("L0", []word.ClockValuation{{Clock: "x", Value: 2}}, nil, 5)
	require.NoError(t, err)

	require.True(t, tree.Dominates(ancestor, descendant))
	require.False(t, tree.Dominates(descendant, ancestor))
}

func TestDominatesRegionDifferentVariantsNeverDominate(t *testing.T) {
	region, err := word.CanonicalRegion("L0", []word.ClockValuation{{Clock: "x", Value: 0}}, nil, 5)
	require.NoError(t, err)
	zone, err := word.CanonicalZone("L0", []word.ClockValuation{{Clock: "x", Value: 0}}, nil, 5)
	require.NoError(t, err)

	require.False(t, tree.Dominates(region, zone))
	require.False(t, tree.Dominates(zone, region))
}

func TestFindDominatingAncestorWalksParentChain(t *testing.T) {
	ancestorWord, err := word.CanonicalRegion("L0", []word.ClockValuation{{Clock: "x", Value: 0}}, nil, 5)
	require.NoError(t, err)
	descendantWord, err := word.CanonicalRegion("L0", []word.ClockValuation{{Clock: "x", Value: 2}}, nil, 5)
	require.NoError(t, err)
	// mid sits at a later region index than leaf, so it does not dominate
	// leaf and the walk has to continue up to ancestor.
	midWord, err := word.CanonicalRegion("L0", []word.ClockValuation{{Clock: "x", Value: 3}}, nil, 5)
	require.NoError(t, err)

	ancestor := tree.NewNode(1, []word.Word{ancestorWord}, 0, 0, "", false)
	mid := tree.NewNode(2, []word.Word{midWord}, 1, 1, "a", false)
	leaf := tree.NewNode(3, []word.Word{descendantWord}, 2, 2, "a", false)
	mid.AddParent(ancestor)
	leaf.AddParent(mid)

	found, ok := tree.FindDominatingAncestor(leaf)
	require.True(t, ok)
	require.Same(t, ancestor, found)
}
