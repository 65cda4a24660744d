package ta_test

import (
	"testing"

	"github.com/katalvlaran/ticsynth/constraint"
	"github.com/katalvlaran/ticsynth/ta"
	"github.com/stretchr/testify/require"
)

func TestEvaluateMinimalModelsTrue(t *testing.T) {
	models := ta.EvaluateMinimalModels(ta.FTrue{}, ta.ExactValuation(0))
	require.Len(t, models, 1)
	require.Empty(t, models[0])
}

func TestEvaluateMinimalModelsFalse(t *testing.T) {
	models := ta.EvaluateMinimalModels(ta.FFalse{}, ta.ExactValuation(0))
	require.Empty(t, models)
}

func TestEvaluateMinimalModelsOrUnion(t *testing.T) {
	f := ta.FOr{Left: ta.FLoc{Location: "p"}, Right: ta.FLoc{Location: "q"}}
	models := ta.EvaluateMinimalModels(f, ta.ExactValuation(0))
	require.Len(t, models, 2)
}

func TestEvaluateMinimalModelsAndCartesian(t *testing.T) {
	f := ta.FAnd{Left: ta.FLoc{Location: "p"}, Right: ta.FLoc{Location: "q", Reset: true}}
	models := ta.EvaluateMinimalModels(f, ta.ExactValuation(0))
	require.Len(t, models, 1)
	require.ElementsMatch(t, ta.SuccessorSet{{Location: "p"}, {Location: "q", Reset: true}}, models[0])
}

func TestEvaluateMinimalModelsClockTestGates(t *testing.T) {
	f := ta.FAnd{
		Left:  ta.FLoc{Location: "p"},
		Right: ta.FClockTest{Atomic: constraint.Atomic{Op: constraint.Gt, K: 5}},
	}
	blocked := ta.EvaluateMinimalModels(f, ta.ExactValuation(1))
	require.Empty(t, blocked)
	allowed := ta.EvaluateMinimalModels(f, ta.ExactValuation(6))
	require.Len(t, allowed, 1)
}

func TestEvaluateMinimalModelsDropsDominated(t *testing.T) {
	// (p) OR (p AND q) should collapse to just {p}, since {p} subsumes
	// {p,q}.
	f := ta.FOr{
		Left:  ta.FLoc{Location: "p"},
		Right: ta.FAnd{Left: ta.FLoc{Location: "p"}, Right: ta.FLoc{Location: "q"}},
	}
	models := ta.EvaluateMinimalModels(f, ta.ExactValuation(0))
	require.Len(t, models, 1)
	require.Equal(t, ta.SuccessorSet{{Location: "p"}}, models[0])
}

func TestClockConstraintsOfCollectsAtomics(t *testing.T) {
	f := ta.FAnd{
		Left:  ta.FClockTest{Atomic: constraint.Atomic{Op: constraint.Ge, K: 2}},
		Right: ta.FClockTest{Atomic: constraint.Atomic{Op: constraint.Lt, K: 5}},
	}
	cs := ta.ClockConstraintsOf(f)
	require.Len(t, cs["q"], 2)
}

func TestValidatePlantRejectsNoClocks(t *testing.T) {
	err := ta.ValidatePlant(fakePlant{})
	require.ErrorIs(t, err, ta.ErrNoClocks)
}

type fakePlant struct{}

func (fakePlant) InitialConfiguration() ta.PlantConfiguration { return ta.PlantConfiguration{} }
func (fakePlant) Alphabet() []ta.Action                       { return nil }
func (fakePlant) Clocks() []string                            { return nil }
func (fakePlant) Locations() []ta.Location                    { return []ta.Location{"L0"} }
func (fakePlant) FinalLocations() []ta.Location                { return nil }
func (fakePlant) LargestConstant() int                        { return 0 }
func (fakePlant) TransitionsFrom(ta.Location) []ta.PlantTransition { return nil }
func (fakePlant) IsAccepting(ta.PlantConfiguration) bool      { return false }
