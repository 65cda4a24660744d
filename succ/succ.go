// Package succ computes the symbol-successor relation of spec.md §4.5: for
// a current canonical AB-word and an action symbol, the set of canonical
// words reachable by firing that symbol on both the plant TA and every ATA
// location in the word, combined via the ATA's minimal models and
// re-normalized.
//
// Both variants (region and zone) are implemented directly against the
// word package's two Word kinds; the cartesian-combination and
// sink-substitution logic (spec §4.5 steps (b)-(e)) is shared, grounded on
// lvlath's flow/ford_fulkerson.go residual-expansion loop: enumerate
// outgoing edges, test feasibility, emit a successor state.
package succ

import (
	"errors"
	"fmt"
	"sort"

	"github.com/katalvlaran/ticsynth/constraint"
	"github.com/katalvlaran/ticsynth/ta"
	"github.com/katalvlaran/ticsynth/word"
	"github.com/katalvlaran/ticsynth/zone"
)

// ErrUnsupportedVariant indicates a Word of neither RegionWord nor ZoneWord
// concrete type was passed in (should not happen given the closed variant
// set, but guarded per spec §7's defensive-assertion policy).
var ErrUnsupportedVariant = errors.New("succ: unsupported word variant")

// SymbolSuccessors computes every canonical word reachable from cur by
// firing symbol, per spec §4.5. Inconsistent guard combinations are
// silently discarded (spec §7: "not an error"), not reported.
func SymbolSuccessors(plant ta.Plant, ata ta.ATA, cur word.Word, symbol ta.Action) ([]word.Word, error) {
	switch w := cur.(type) {
	case *word.RegionWord:
		return symbolSuccessorsRegion(plant, ata, w, symbol)
	case *word.ZoneWord:
		return symbolSuccessorsZone(plant, ata, w, symbol)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedVariant, cur)
	}
}

// ataChoice pairs one ATA location with the antichain of minimal models its
// transition produces on the symbol being fired.
type ataChoice struct {
	loc    ta.Location
	models ta.Antichain
}

// enabledPlantTransitions filters TransitionsFrom(loc) to those labeled
// symbol.
func enabledPlantTransitions(plant ta.Plant, loc ta.Location, symbol ta.Action) []ta.PlantTransition {
	var out []ta.PlantTransition
	for _, tr := range plant.TransitionsFrom(loc) {
		if tr.Symbol == symbol {
			out = append(out, tr)
		}
	}
	return out
}

// ataMinimalModelsFor resolves loc's unique symbol-transition (substituting
// the sink if absent and available) and evaluates its minimal models
// against val.
func ataMinimalModelsFor(ata ta.ATA, loc ta.Location, symbol ta.Action, val ta.ValuationSource) (ta.Antichain, error) {
	tr, ok := ta.TransitionsOn(ata, loc, symbol)
	if !ok {
		sink, hasSink := ata.SinkLocation()
		if !hasSink {
			return nil, nil // no transition, no sink: this location dies, contributing no models
		}
		return ta.Antichain{ta.SuccessorSet{{Location: sink}}}, nil
	}
	return ta.EvaluateMinimalModels(tr.Formula, val), nil
}

// combo is one combination of choices, one chosen minimal model per source
// ATA location, kept aligned to the input choices slice so callers can still
// tell which source location produced which states (needed to decide
// whether a non-resetting successor inherits its parent's clock value).
type combo []ta.SuccessorSet

// cartesianAtaChoices enumerates every combination of one chosen minimal
// model per ATA location (spec §4.5 step (c)), keeping each combination
// aligned per-source so a later pass can resolve clock inheritance.
func cartesianAtaChoices(choices []ataChoice) []combo {
	combos := []combo{{}}
	for _, c := range choices {
		if len(c.models) == 0 {
			return nil // this ATA location has no viable successor at all
		}
		var next []combo
		for _, base := range combos {
			for _, model := range c.models {
				merged := append(append(combo{}, base...), model)
				next = append(next, merged)
			}
		}
		combos = next
	}
	return combos
}

// instanceAssignRegion flattens one combo into AtaValuations, assigning
// per-location instance numbers in encounter order. A state inherits its
// source choice's prior value unless its formula marked a reset, in which
// case it starts at zero (spec §4.5: "reset" re-initializes the ATA clock).
func instanceAssignRegion(c combo, sourceVals []float64) []word.AtaValuation {
	counts := make(map[ta.Location]int)
	var out []word.AtaValuation
	for i, model := range c {
		for _, s := range model {
			inst := counts[s.Location]
			counts[s.Location]++
			val := sourceVals[i]
			if s.Reset {
				val = 0
			}
			out = append(out, word.AtaValuation{Location: string(s.Location), Instance: inst, Value: val})
		}
	}
	return out
}

func symbolSuccessorsRegion(plant ta.Plant, ata ta.ATA, cur *word.RegionWord, symbol ta.Action) ([]word.Word, error) {
	plantLocStr, plantVals, ataVals := cur.Decode()
	plantLoc := ta.Location(plantLocStr)

	var results []word.Word
	for _, tr := range enabledPlantTransitions(plant, plantLoc, symbol) {
		ok, err := constraintsHoldAtRepresentative(tr.Guards, plantVals)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		newPlantVals := applyResets(plantVals, tr.Resets)

		var choices []ataChoice
		var sourceVals []float64
		for _, av := range ataVals {
			loc := ta.Location(av.Location)
			models, err := ataMinimalModelsFor(ata, loc, symbol, ta.ExactValuation(av.Value))
			if err != nil {
				return nil, err
			}
			choices = append(choices, ataChoice{loc: loc, models: models})
			sourceVals = append(sourceVals, av.Value)
		}
		combos := cartesianAtaChoices(choices)
		if combos == nil && len(choices) > 0 {
			continue // some ATA location had no viable successor: this branch dies
		}
		if len(combos) == 0 {
			combos = []combo{{}}
		}
		for _, c := range combos {
			newAtaVals := instanceAssignRegion(c, sourceVals)
			w, err := word.CanonicalRegion(string(tr.Dst), newPlantVals, newAtaVals, cur.K)
			if err != nil {
				continue // malformed/empty combination: discard silently
			}
			results = append(results, w)
		}
	}
	return results, nil
}

func applyResets(vals []word.ClockValuation, resets []string) []word.ClockValuation {
	resetSet := make(map[string]bool, len(resets))
	for _, c := range resets {
		resetSet[c] = true
	}
	out := make([]word.ClockValuation, len(vals))
	for i, v := range vals {
		if resetSet[v.Clock] {
			out[i] = word.ClockValuation{Clock: v.Clock, Value: 0}
		} else {
			out[i] = v
		}
	}
	return out
}

// constraintsHoldAtRepresentative tests a guard constraint.Set against the
// representative plant valuations, relying on the region-equivalence
// invariant (any point within a region agrees on every integer-bounded
// guard).
func constraintsHoldAtRepresentative(guards constraint.Set, vals []word.ClockValuation) (bool, error) {
	byClock := make(map[string]float64, len(vals))
	for _, v := range vals {
		byClock[v.Clock] = v.Value
	}
	for clock, atoms := range guards {
		v, ok := byClock[clock]
		if !ok {
			return false, fmt.Errorf("succ: guard on unknown clock %q", clock)
		}
		ev := ta.ExactValuation(v)
		for _, a := range atoms {
			if !ev.Test(a) {
				return false, nil
			}
		}
	}
	return true, nil
}

func symbolSuccessorsZone(plant ta.Plant, ata ta.ATA, cur *word.ZoneWord, symbol ta.Action) ([]word.Word, error) {
	plantLoc := ta.Location(cur.PlantLocation)
	var results []word.Word
	for _, tr := range enabledPlantTransitions(plant, plantLoc, symbol) {
		d := cur.DBM.Clone()
		for clock, atoms := range tr.Guards {
			for _, a := range atoms {
				var err error
				d, err = d.Conjunct(clock, a)
				if err != nil {
					return nil, err
				}
			}
		}
		d.Normalize()
		if !d.Consistent() {
			continue
		}
		for _, c := range tr.Resets {
			var err error
			d, err = d.Reset(c)
			if err != nil {
				return nil, err
			}
		}

		var choices []ataChoice
		sourceSlices := make([]zone.Slice, len(cur.AtaClocks))
		for i, ac := range cur.AtaClocks {
			s, err := cur.DBM.ZoneSlice(ac.Name())
			if err != nil {
				return nil, err
			}
			sourceSlices[i] = s
			val := ta.ZoneValuation{Lo: s.Lo, Hi: s.Hi, LoOpen: s.LoOpen, HiOpen: s.HiOpen}
			models, err := ataMinimalModelsFor(ata, ta.Location(ac.Location), symbol, val)
			if err != nil {
				return nil, err
			}
			choices = append(choices, ataChoice{loc: ta.Location(ac.Location), models: models})
		}
		combos := cartesianAtaChoices(choices)
		if combos == nil && len(choices) > 0 {
			continue
		}
		if len(combos) == 0 {
			combos = []combo{{}}
		}

		for _, c := range combos {
			proj, err := d.Project(cur.PlantClocks)
			if err != nil {
				return nil, err
			}
			newAtaClocks, nd, err := buildAtaClocks(proj, c, sourceSlices)
			if err != nil {
				continue
			}
			nd.Normalize()
			if !nd.Consistent() {
				continue
			}
			w := &word.ZoneWord{
				PlantLocation: string(tr.Dst),
				PlantClocks:   append([]string{}, cur.PlantClocks...),
				AtaClocks:     newAtaClocks,
				DBM:           nd,
			}
			if err := w.Validate(); err != nil {
				continue
			}
			results = append(results, w)
		}
	}
	return results, nil
}

// buildAtaClocks adds one DBM clock per chosen successor ATA state onto a
// plant-only projected DBM. A reset state gets a fresh clock that is reset
// to zero right here, matching the region variant's "reset -> 0"
// semantics; a non-reset state inherits its
// source choice's zone slice by conjuncting the same [lo,hi] bound onto the
// new clock name.
func buildAtaClocks(d *zone.DBM, c combo, sourceSlices []zone.Slice) ([]word.AtaClock, *zone.DBM, error) {
	counts := make(map[ta.Location]int)
	var out []word.AtaClock
	for i, model := range c {
		for _, s := range model {
			inst := counts[s.Location]
			counts[s.Location]++
			ac := word.AtaClock{Location: string(s.Location), Instance: inst}
			nd, err := d.AddClock(ac.Name())
			if err != nil {
				return nil, nil, err
			}
			d = nd
			if s.Reset {
				d, err = d.Reset(ac.Name())
				if err != nil {
					return nil, nil, err
				}
			} else {
				src := sourceSlices[i]
				d, err = d.Conjunct(ac.Name(), constraint.Atomic{Op: constraint.Ge, K: src.Lo})
				if err != nil {
					return nil, nil, err
				}
				d, err = d.Conjunct(ac.Name(), constraint.Atomic{Op: constraint.Le, K: src.Hi})
				if err != nil {
					return nil, nil, err
				}
			}
			out = append(out, ac)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Location != out[j].Location {
			return out[i].Location < out[j].Location
		}
		return out[i].Instance < out[j].Instance
	})
	return out, d, nil
}
