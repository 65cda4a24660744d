package ta

import (
	"sort"
	"strings"

	"github.com/katalvlaran/ticsynth/constraint"
)

// Formula is a positive Boolean combination of (location, reset?) terms and
// clock tests (spec §3, §9). The closed set of variants is FTrue, FFalse,
// FLoc, FClockTest, FAnd, FOr.
type Formula interface{ isFormula() }

// FTrue is the vacuously-satisfied formula (one minimal model: no
// successor locations).
type FTrue struct{}

// FFalse is never satisfied (no minimal models).
type FFalse struct{}

// FLoc asserts transitioning to Location, optionally resetting the ATA's
// clock.
type FLoc struct {
	Location Location
	Reset    bool
}

// FClockTest asserts an atomic constraint on the ATA's single clock; it
// contributes no successor location, only gates the branch it appears in.
type FClockTest struct {
	constraint.Atomic
}

// FAnd is a conjunction.
type FAnd struct{ Left, Right Formula }

// FOr is a disjunction.
type FOr struct{ Left, Right Formula }

func (FTrue) isFormula()      {}
func (FFalse) isFormula()     {}
func (FLoc) isFormula()       {}
func (FClockTest) isFormula() {}
func (FAnd) isFormula()       {}
func (FOr) isFormula()        {}

// SuccessorState is one (location, reset?) element of a minimal model.
type SuccessorState struct {
	Location Location
	Reset    bool
}

// SuccessorSet is one ⊆-minimal satisfying assignment: a set of successor
// states reached simultaneously (the alternating automaton's universal
// branching, spec's GLOSSARY "Minimal model").
type SuccessorSet []SuccessorState

// key canonicalizes a SuccessorSet for equality/subset comparisons.
func (s SuccessorSet) key() string {
	cp := append(SuccessorSet{}, s...)
	sort.Slice(cp, func(i, j int) bool {
		if cp[i].Location != cp[j].Location {
			return cp[i].Location < cp[j].Location
		}
		return !cp[i].Reset && cp[j].Reset
	})
	var b strings.Builder
	for _, e := range cp {
		b.WriteString(string(e.Location))
		if e.Reset {
			b.WriteByte('!')
		}
		b.WriteByte(';')
	}
	return b.String()
}

func (s SuccessorSet) subsetOf(other SuccessorSet) bool {
	has := make(map[SuccessorState]bool, len(other))
	for _, e := range other {
		has[e] = true
	}
	for _, e := range s {
		if !has[e] {
			return false
		}
	}
	return true
}

func unionSets(a, b SuccessorSet) SuccessorSet {
	seen := make(map[SuccessorState]bool, len(a)+len(b))
	out := make(SuccessorSet, 0, len(a)+len(b))
	for _, e := range append(append(SuccessorSet{}, a...), b...) {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// Antichain is a set of ⊆-minimal SuccessorSets.
type Antichain []SuccessorSet

// filterMinimal drops every set that is a strict superset of another set in
// the antichain, keeping it ⊆-minimal (spec §9).
func filterMinimal(sets Antichain) Antichain {
	dedup := make(map[string]SuccessorSet)
	for _, s := range sets {
		dedup[s.key()] = s
	}
	var unique Antichain
	for _, s := range dedup {
		unique = append(unique, s)
	}
	var out Antichain
	for i, s := range unique {
		dominated := false
		for j, t := range unique {
			if i == j {
				continue
			}
			if len(t) < len(s) && t.subsetOf(s) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, s)
		}
	}
	return out
}

func cartesianUnion(a, b Antichain) Antichain {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	var out Antichain
	for _, x := range a {
		for _, y := range b {
			out = append(out, unionSets(x, y))
		}
	}
	return out
}

// ValuationSource answers whether the ATA's single clock currently
// satisfies an atomic constraint; it abstracts over the region variant
// (exact valuation) and the zone variant (a zone slice), per spec §4.5
// "minimal_models(formula, zone_or_valuation)".
type ValuationSource interface {
	Test(a constraint.Atomic) bool
}

// ExactValuation is a concrete real-valued clock reading (the region
// variant's valuation source).
type ExactValuation float64

func (v ExactValuation) Test(a constraint.Atomic) bool {
	x := float64(v)
	k := float64(a.K)
	switch a.Op {
	case constraint.Lt:
		return x < k
	case constraint.Le:
		return x <= k
	case constraint.Eq:
		return x == k
	case constraint.Neq:
		return x != k
	case constraint.Ge:
		return x >= k
	case constraint.Gt:
		return x > k
	default:
		return false
	}
}

// ZoneValuation is a zone's [lo, hi] interval against the ATA clock (the
// zone variant's valuation source): a clock test holds iff every value in
// the interval satisfies it, matching the DBM's "true for the whole zone or
// not at all" semantics used while expanding symbolic successors.
type ZoneValuation struct {
	Lo, Hi         int
	LoOpen, HiOpen bool
}

func (z ZoneValuation) Test(a constraint.Atomic) bool {
	lo, hi := ExactValuation(z.Lo), ExactValuation(z.Hi)
	switch a.Op {
	case constraint.Lt:
		return hi.Test(constraint.Atomic{Op: constraint.Lt, K: a.K}) || (z.HiOpen && z.Hi == a.K)
	case constraint.Le:
		return float64(z.Hi) <= float64(a.K)
	case constraint.Ge:
		return float64(z.Lo) >= float64(a.K)
	case constraint.Gt:
		return lo.Test(constraint.Atomic{Op: constraint.Gt, K: a.K}) || (z.LoOpen && z.Lo == a.K)
	case constraint.Eq:
		return z.Lo == z.Hi && z.Lo == a.K && !z.LoOpen && !z.HiOpen
	default:
		return false
	}
}

// EvaluateMinimalModels recursively evaluates a Formula's antichain of
// minimal models against a valuation source: ∧ is the cartesian product of
// child antichains with set-union; ∨ is the set-union of child antichains;
// both pass through a final minimality filter (spec §9).
func EvaluateMinimalModels(f Formula, val ValuationSource) Antichain {
	switch t := f.(type) {
	case FTrue:
		return Antichain{SuccessorSet{}}
	case FFalse:
		return nil
	case FLoc:
		return Antichain{SuccessorSet{{Location: t.Location, Reset: t.Reset}}}
	case FClockTest:
		if val.Test(t.Atomic) {
			return Antichain{SuccessorSet{}}
		}
		return nil
	case FAnd:
		left := EvaluateMinimalModels(t.Left, val)
		right := EvaluateMinimalModels(t.Right, val)
		return filterMinimal(cartesianUnion(left, right))
	case FOr:
		left := EvaluateMinimalModels(t.Left, val)
		right := EvaluateMinimalModels(t.Right, val)
		return filterMinimal(append(append(Antichain{}, left...), right...))
	default:
		return nil
	}
}

// ClockConstraintsOf collects every atomic clock test appearing in f,
// keyed under the ATA's single clock name "q" (spec §6
// clock_constraints_of).
func ClockConstraintsOf(f Formula) constraint.Set {
	out := constraint.NewSet()
	var walk func(Formula)
	walk = func(f Formula) {
		switch t := f.(type) {
		case FClockTest:
			out.Add("q", t.Atomic)
		case FAnd:
			walk(t.Left)
			walk(t.Right)
		case FOr:
			walk(t.Left)
			walk(t.Right)
		}
	}
	walk(f)
	return out
}
