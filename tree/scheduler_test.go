package tree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ticsynth/constraint"
	"github.com/katalvlaran/ticsynth/heuristic"
	"github.com/katalvlaran/ticsynth/ta"
	"github.com/katalvlaran/ticsynth/tree"
	"github.com/katalvlaran/ticsynth/word"
)

// deathPlant is a one-location, one-clock plant with no accepting
// locations; its single transition never matters because the ATA below
// dies at the root.
type deathPlant struct{}

func (deathPlant) InitialConfiguration() ta.PlantConfiguration {
	return ta.PlantConfiguration{Location: "L0", Valuation: map[string]float64{"x": 0}}
}
func (deathPlant) Alphabet() []ta.Action         { return []ta.Action{"a"} }
func (deathPlant) Clocks() []string              { return []string{"x"} }
func (deathPlant) Locations() []ta.Location      { return []ta.Location{"L0"} }
func (deathPlant) FinalLocations() []ta.Location { return nil }
func (deathPlant) LargestConstant() int          { return 2 }
func (deathPlant) TransitionsFrom(ta.Location) []ta.PlantTransition {
	return []ta.PlantTransition{{Src: "L0", Dst: "L0", Symbol: "a", Guards: constraint.NewSet(), Resets: []string{"x"}}}
}
func (deathPlant) IsAccepting(ta.PlantConfiguration) bool { return false }

// sinkAtRootATA starts already at its own sink, so the search's "good by
// ATA death" termination fires on the very first node (spec §4.7 step 4).
type sinkAtRootATA struct{}

func (sinkAtRootATA) InitialConfiguration() []ta.AtaState {
	return []ta.AtaState{{Location: "qF", Instance: 0, Value: 0}}
}
func (sinkAtRootATA) Transitions() []ta.AtaTransition  { return nil }
func (sinkAtRootATA) SinkLocation() (ta.Location, bool) { return "qF", true }
func (sinkAtRootATA) IsAccepting([]ta.AtaState) bool     { return false }
func (sinkAtRootATA) MinimalModels(f ta.Formula, val ta.ValuationSource) (ta.Antichain, error) {
	return ta.EvaluateMinimalModels(f, val), nil
}
func (sinkAtRootATA) ClockConstraintsOf(f ta.Formula) constraint.Set { return ta.ClockConstraintsOf(f) }

func TestSchedulerLabelsRootTopWhenAtaDiesImmediately(t *testing.T) {
	root, err := word.CanonicalRegion("L0", []word.ClockValuation{{Clock: "x", Value: 0}},
		[]word.AtaValuation{{Location: "qF", Instance: 0, Value: 0}}, 2)
	require.NoError(t, err)

	sched := tree.NewScheduler(deathPlant{}, sinkAtRootATA{}, []ta.Action{"a"},
		map[ta.Action]bool{"a": true}, 2, heuristic.BFS(), 2)

	res, err := sched.Run(context.Background(), []word.Word{root})
	require.NoError(t, err)
	require.Equal(t, tree.Top, res.Root.Label())
	require.Equal(t, tree.GoodNodeReason, res.Root.GetReason())
	require.Equal(t, 1, res.TreeSize)
}

// badAtRootPlant/ATA combination is jointly accepting from the first node,
// so the root must be labeled BOTTOM (spec §4.7 step 3).
type badAtRootPlant struct{ deathPlant }

func (badAtRootPlant) IsAccepting(ta.PlantConfiguration) bool { return true }

type badAtRootATA struct{ sinkAtRootATA }

func (badAtRootATA) InitialConfiguration() []ta.AtaState {
	return []ta.AtaState{{Location: "q0", Instance: 0, Value: 0}}
}
func (badAtRootATA) IsAccepting([]ta.AtaState) bool { return true }

func TestSchedulerLabelsRootBottomWhenJointlyAccepting(t *testing.T) {
	root, err := word.CanonicalRegion("L0", []word.ClockValuation{{Clock: "x", Value: 0}},
		[]word.AtaValuation{{Location: "q0", Instance: 0, Value: 0}}, 2)
	require.NoError(t, err)

	sched := tree.NewScheduler(badAtRootPlant{}, badAtRootATA{}, []ta.Action{"a"},
		map[ta.Action]bool{"a": true}, 2, heuristic.BFS(), 1)

	res, err := sched.Run(context.Background(), []word.Word{root})
	require.NoError(t, err)
	require.Equal(t, tree.Bottom, res.Root.Label())
	require.Equal(t, tree.BadNodeReason, res.Root.GetReason())
}
