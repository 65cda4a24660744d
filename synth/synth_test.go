package synth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ticsynth/constraint"
	"github.com/katalvlaran/ticsynth/synth"
	"github.com/katalvlaran/ticsynth/ta"
)

// loopPlant is spec.md S1's plant: one location L0, one clock x, a single
// self-loop transition on "a" guarded x<1 and resetting x. No location is
// plant-accepting.
type loopPlant struct{}

func (loopPlant) InitialConfiguration() ta.PlantConfiguration {
	return ta.PlantConfiguration{Location: "L0", Valuation: map[string]float64{"x": 0}}
}
func (loopPlant) Alphabet() []ta.Action    { return []ta.Action{"a"} }
func (loopPlant) Clocks() []string         { return []string{"x"} }
func (loopPlant) Locations() []ta.Location { return []ta.Location{"L0"} }
func (loopPlant) FinalLocations() []ta.Location { return nil }
func (loopPlant) LargestConstant() int     { return 1 }
func (loopPlant) TransitionsFrom(loc ta.Location) []ta.PlantTransition {
	if loc != "L0" {
		return nil
	}
	guards := constraint.NewSet()
	guards.Add("x", constraint.Atomic{Op: constraint.Lt, K: 1})
	return []ta.PlantTransition{{Src: "L0", Dst: "L0", Symbol: "a", Guards: guards, Resets: []string{"x"}}}
}
func (loopPlant) IsAccepting(ta.PlantConfiguration) bool { return false }

// sinkOnlyATA represents the trivially unsatisfiable formula "false": its
// initial configuration already sits at the sink, so the "good by ATA
// death" termination fires immediately (spec.md S1 "trivially unsatisfiable
// spec").
type sinkOnlyATA struct{}

func (sinkOnlyATA) InitialConfiguration() []ta.AtaState {
	return []ta.AtaState{{Location: "qF", Instance: 0, Value: 0}}
}
func (sinkOnlyATA) Transitions() []ta.AtaTransition  { return nil }
func (sinkOnlyATA) SinkLocation() (ta.Location, bool) { return "qF", true }
func (sinkOnlyATA) IsAccepting([]ta.AtaState) bool     { return false }
func (sinkOnlyATA) MinimalModels(f ta.Formula, val ta.ValuationSource) (ta.Antichain, error) {
	return ta.EvaluateMinimalModels(f, val), nil
}
func (sinkOnlyATA) ClockConstraintsOf(f ta.Formula) constraint.Set { return ta.ClockConstraintsOf(f) }

func TestSynthesizeTrivialSpecIsRealizable(t *testing.T) {
	res, err := synth.Synthesize(context.Background(), loopPlant{}, sinkOnlyATA{}, []ta.Action{"a"})
	require.NoError(t, err)
	require.NotNil(t, res.Controller)
	require.GreaterOrEqual(t, res.ControllerLocations, 1)
	require.GreaterOrEqual(t, res.TreeSize, 1)

	ok, err := synth.Verify(context.Background(), loopPlant{}, res.Controller, sinkOnlyATA{}, []ta.Action{"a"})
	require.NoError(t, err)
	require.True(t, ok)
}

// alwaysAcceptingATA is satisfied by the very first step: its initial
// configuration is already an accepting one, so the joint plant/ATA state
// is immediately "bad" (spec.md S6 "unrealizable").
type alwaysAcceptingATA struct{ sinkOnlyATA }

func (alwaysAcceptingATA) InitialConfiguration() []ta.AtaState {
	return []ta.AtaState{{Location: "q0", Instance: 0, Value: 0}}
}
func (alwaysAcceptingATA) IsAccepting([]ta.AtaState) bool { return true }

type alwaysAcceptingPlant struct{ loopPlant }

func (alwaysAcceptingPlant) IsAccepting(ta.PlantConfiguration) bool { return true }

func TestSynthesizeUnrealizable(t *testing.T) {
	_, err := synth.Synthesize(context.Background(), alwaysAcceptingPlant{}, alwaysAcceptingATA{}, []ta.Action{"a"})
	require.ErrorIs(t, err, synth.ErrUnrealizable)
}

func TestSynthesizeRejectsMalformedPlant(t *testing.T) {
	_, err := synth.Synthesize(context.Background(), noClocksPlant{}, sinkOnlyATA{}, nil)
	require.Error(t, err)
}

type noClocksPlant struct{ loopPlant }

func (noClocksPlant) Clocks() []string { return nil }
