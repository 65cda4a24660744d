// Package ta specifies the external Plant timed-automaton and Alternating
// Timed Automaton (ATA) interfaces the search core consumes (spec.md §6).
// Construction, MTL->ATA translation, and interval/product-TA utilities are
// deliberately out of scope (spec.md §1): this package only defines the
// read-only surface the rest of the module is built against, plus the
// ATA's positive-Boolean-formula tree and its minimal-model evaluator
// (spec.md §4.5, §9), which is genuinely part of the core.
package ta

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/ticsynth/constraint"
)

// Location and Action are treated as opaque identifiers by the core (spec
// §6); we follow lvlath's core.Vertex/Edge convention of addressing graph
// elements by string ID rather than threading a type parameter through the
// whole module.
type Location string
type Action string

// Sentinel errors for the ta package.
var (
	// ErrUnknownClock indicates a transition references a clock absent
	// from the automaton's declared clock set.
	ErrUnknownClock = errors.New("ta: unknown clock")

	// ErrUnknownLocation indicates a transition references a location
	// absent from the automaton's declared location set.
	ErrUnknownLocation = errors.New("ta: unknown location")

	// ErrNoClocks indicates a TA was constructed with zero clocks, which
	// spec §7 requires rejecting outright.
	ErrNoClocks = errors.New("ta: automaton has no clocks")

	// ErrWrongTransitionType indicates minimal-model extraction was asked
	// to treat a transition object as something it is not (e.g. a time
	// transition queried for a symbol's formula).
	ErrWrongTransitionType = errors.New("ta: wrong transition type")
)

// PlantConfiguration is a concrete plant state: a location plus the current
// real-valued reading of every plant clock.
type PlantConfiguration struct {
	Location  Location
	Valuation map[string]float64
}

// PlantTransition is (src, sym, dst, guards, resets), per spec §3.
type PlantTransition struct {
	Src, Dst Location
	Symbol   Action
	Guards   constraint.Set
	Resets   []string
}

// Plant is the read-only interface the search core consumes for the plant
// timed automaton (spec §6).
type Plant interface {
	InitialConfiguration() PlantConfiguration
	Alphabet() []Action
	Clocks() []string
	Locations() []Location
	FinalLocations() []Location
	LargestConstant() int
	TransitionsFrom(loc Location) []PlantTransition
	IsAccepting(cfg PlantConfiguration) bool
}

// ValidatePlant rejects a malformed plant at construction boundaries (spec
// §7): a transition referencing a nonexistent clock or location, or a TA
// declared with no clocks at all.
func ValidatePlant(p Plant) error {
	if len(p.Clocks()) == 0 {
		return ErrNoClocks
	}
	clocks := make(map[string]bool, len(p.Clocks()))
	for _, c := range p.Clocks() {
		clocks[c] = true
	}
	locs := make(map[Location]bool, len(p.Locations()))
	for _, l := range p.Locations() {
		locs[l] = true
	}
	for _, l := range p.Locations() {
		for _, tr := range p.TransitionsFrom(l) {
			if !locs[tr.Dst] {
				return fmt.Errorf("ta: transition %s->%s on %s: %w", tr.Src, tr.Dst, tr.Symbol, ErrUnknownLocation)
			}
			for c := range tr.Guards {
				if !clocks[c] {
					return fmt.Errorf("ta: transition %s->%s guard clock %q: %w", tr.Src, tr.Dst, c, ErrUnknownClock)
				}
			}
			for _, c := range tr.Resets {
				if !clocks[c] {
					return fmt.Errorf("ta: transition %s->%s reset clock %q: %w", tr.Src, tr.Dst, c, ErrUnknownClock)
				}
			}
		}
	}
	return nil
}

// AtaState is one (location, instance, clock value) entry of an ATA
// configuration, a set of such entries (spec §3).
type AtaState struct {
	Location Location
	Instance int
	Value    float64
}

// AtaTransition is (src, sym, formula), per spec §3.
type AtaTransition struct {
	Src    Location
	Symbol Action
	Formula Formula
}

// ATA is the read-only interface the search core consumes for the
// alternating timed automaton translated from the MTL specification (spec
// §6). The translator itself is out of scope; the core only requires a
// Sink to exist as an absorbing location when the formula is not
// satisfiable from a state.
type ATA interface {
	InitialConfiguration() []AtaState
	Transitions() []AtaTransition
	SinkLocation() (Location, bool)
	IsAccepting(cfg []AtaState) bool
	MinimalModels(f Formula, val ValuationSource) (Antichain, error)
	ClockConstraintsOf(f Formula) constraint.Set
}

// TransitionsOn returns the first transition out of loc on symbol sym, and
// false if there is none -- the ATA contract guarantees at most one (spec
// §4.5 "locate the unique transition on symbol").
func TransitionsOn(a ATA, loc Location, sym Action) (AtaTransition, bool) {
	for _, tr := range a.Transitions() {
		if tr.Src == loc && tr.Symbol == sym {
			return tr, true
		}
	}
	return AtaTransition{}, false
}
