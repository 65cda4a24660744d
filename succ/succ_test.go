package succ_test

import (
	"testing"

	"github.com/katalvlaran/ticsynth/constraint"
	"github.com/katalvlaran/ticsynth/succ"
	"github.com/katalvlaran/ticsynth/ta"
	"github.com/katalvlaran/ticsynth/word"
	"github.com/stretchr/testify/require"
)

// twoLocPlant is a minimal plant TA: L0 --a--> L1 on clock x, guard x>=1,
// resetting x.
type twoLocPlant struct{}

func (twoLocPlant) InitialConfiguration() ta.PlantConfiguration {
	return ta.PlantConfiguration{Location: "L0", Valuation: map[string]float64{"x": 0}}
}
func (twoLocPlant) Alphabet() []ta.Action    { return []ta.Action{"a"} }
func (twoLocPlant) Clocks() []string         { return []string{"x"} }
func (twoLocPlant) Locations() []ta.Location { return []ta.Location{"L0", "L1"} }
func (twoLocPlant) FinalLocations() []ta.Location { return []ta.Location{"L1"} }
func (twoLocPlant) LargestConstant() int     { return 5 }
func (twoLocPlant) TransitionsFrom(loc ta.Location) []ta.PlantTransition {
	if loc != "L0" {
		return nil
	}
	guards := constraint.NewSet()
	guards.Add("x", constraint.Atomic{Op: constraint.Ge, K: 1})
	return []ta.PlantTransition{{Src: "L0", Dst: "L1", Symbol: "a", Guards: guards, Resets: []string{"x"}}}
}
func (twoLocPlant) IsAccepting(cfg ta.PlantConfiguration) bool { return cfg.Location == "L1" }

// trivialATA has one location "q0" whose only transition on "a" is FTrue
// (no successor obligations).
type trivialATA struct{}

func (trivialATA) InitialConfiguration() []ta.AtaState {
	return []ta.AtaState{{Location: "q0", Instance: 0, Value: 0}}
}
func (trivialATA) Transitions() []ta.AtaTransition {
	return []ta.AtaTransition{{Src: "q0", Symbol: "a", Formula: ta.FTrue{}}}
}
func (trivialATA) SinkLocation() (ta.Location, bool) { return "", false }
func (trivialATA) IsAccepting([]ta.AtaState) bool     { return true }
func (trivialATA) MinimalModels(f ta.Formula, val ta.ValuationSource) (ta.Antichain, error) {
	return ta.EvaluateMinimalModels(f, val), nil
}
func (trivialATA) ClockConstraintsOf(f ta.Formula) constraint.Set { return ta.ClockConstraintsOf(f) }

func TestSymbolSuccessorsRegionBasic(t *testing.T) {
	w, err := word.CanonicalRegion("L0",
		[]word.ClockValuation{{Clock: "x", Value: 1}},
		[]word.AtaValuation{{Location: "q0", Instance: 0, Value: 0}},
		5)
	require.NoError(t, err)

	succs, err := succ.SymbolSuccessors(twoLocPlant{}, trivialATA{}, w, "a")
	require.NoError(t, err)
	require.Len(t, succs, 1)
	rw := succs[0].(*word.RegionWord)
	loc, plantVals, ataVals := rw.Decode()
	require.Equal(t, "L1", loc)
	require.Len(t, plantVals, 1)
	require.Equal(t, 0.0, plantVals[0].Value)
	require.Empty(t, ataVals)
}

func TestSymbolSuccessorsRegionGuardBlocks(t *testing.T) {
	w, err := word.CanonicalRegion("L0",
		[]word.ClockValuation{{Clock: "x", Value: 0}},
		nil, 5)
	require.NoError(t, err)

	succs, err := succ.SymbolSuccessors(twoLocPlant{}, trivialATA{}, w, "a")
	require.NoError(t, err)
	require.Empty(t, succs)
}

func TestSymbolSuccessorsZoneBasic(t *testing.T) {
	w, err := word.CanonicalZone("L0",
		[]word.ClockValuation{{Clock: "x", Value: 2}},
		[]word.AtaValuation{{Location: "q0", Instance: 0, Value: 0}},
		5)
	require.NoError(t, err)

	succs, err := succ.SymbolSuccessors(twoLocPlant{}, trivialATA{}, w, "a")
	require.NoError(t, err)
	require.Len(t, succs, 1)
	zw := succs[0].(*word.ZoneWord)
	require.Equal(t, "L1", zw.PlantLocation)
	require.Empty(t, zw.AtaClocks)
	s, err := zw.DBM.ZoneSlice("x")
	require.NoError(t, err)
	require.Equal(t, 0, s.Lo)
	require.Equal(t, 0, s.Hi)
}

func TestSymbolSuccessorsUnsupportedVariant(t *testing.T) {
	_, err := succ.SymbolSuccessors(twoLocPlant{}, trivialATA{}, nil, "a")
	require.ErrorIs(t, err, succ.ErrUnsupportedVariant)
}
