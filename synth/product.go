package synth

import (
	"strings"

	"github.com/katalvlaran/ticsynth/constraint"
	"github.com/katalvlaran/ticsynth/ta"
)

// pairSep separates the plant and controller halves of a product location
// signature; neither lvlath-style location ever legitimately contains it.
const pairSep = "\x1f"

// product is the synchronous product of a plant and a controller TA: a
// controller only restricts which of the plant's own transitions fire, so
// a symbol advances the product iff both sides offer a transition on it
// from the current pair of locations (spec.md §4.9 "Output controller TA":
// same alphabet, same shape). Grounded on graph/conversions.go's "build one
// representation from a traversal of another" and the original C++
// search/verify_ta_controller.h's create_product, recovered from
// original_source/ (see DESIGN.md / SPEC_FULL.md).
type product struct {
	clocks      []string
	locations   []ta.Location
	finalLocs   map[ta.Location]bool
	transitions map[ta.Location][]ta.PlantTransition
	alphabet    []ta.Action
	initial     ta.Location
	initialVal  map[string]float64
	k           int
	plantFinal  map[ta.Location]bool // ploc -> is plant-accepting, keyed by the *plant's* own location
}

var _ ta.Plant = (*product)(nil)

func encodePair(p, c ta.Location) ta.Location {
	return ta.Location(string(p) + pairSep + string(c))
}

func decodePair(loc ta.Location) (ta.Location, ta.Location) {
	s := string(loc)
	i := strings.Index(s, pairSep)
	if i < 0 {
		return loc, ""
	}
	return ta.Location(s[:i]), ta.Location(s[i+1:])
}

// newProduct builds the synchronous product of plant and controller by BFS
// over reachable location pairs starting from their respective initial
// locations (spec §4.9's output TA is always finite, so this terminates).
func newProduct(plant, controller ta.Plant) *product {
	plantFinal := make(map[ta.Location]bool, len(plant.FinalLocations()))
	for _, l := range plant.FinalLocations() {
		plantFinal[l] = true
	}

	clockSet := make(map[string]bool)
	for _, c := range plant.Clocks() {
		clockSet[c] = true
	}
	for _, c := range controller.Clocks() {
		clockSet[c] = true
	}
	var clocks []string
	for c := range clockSet {
		clocks = append(clocks, c)
	}

	k := plant.LargestConstant()
	if controller.LargestConstant() > k {
		k = controller.LargestConstant()
	}

	pInit := plant.InitialConfiguration()
	cInit := controller.InitialConfiguration().Location
	initial := encodePair(pInit.Location, cInit)

	initVal := make(map[string]float64, len(clocks))
	for _, c := range clocks {
		initVal[c] = pInit.Valuation[c]
	}

	pr := &product{
		clocks:      clocks,
		finalLocs:   make(map[ta.Location]bool),
		transitions: make(map[ta.Location][]ta.PlantTransition),
		alphabet:    plant.Alphabet(),
		initial:     initial,
		initialVal:  initVal,
		k:           k,
		plantFinal:  plantFinal,
	}

	visited := map[ta.Location]bool{initial: true}
	queue := []ta.Location{initial}
	pr.locations = append(pr.locations, initial)
	if plantFinal[pInit.Location] {
		pr.finalLocs[initial] = true
	}

	for len(queue) > 0 {
		loc := queue[0]
		queue = queue[1:]
		ploc, cloc := decodePair(loc)

		cTrans := controller.TransitionsFrom(cloc)
		for _, pTr := range plant.TransitionsFrom(ploc) {
			for _, cTr := range cTrans {
				if cTr.Symbol != pTr.Symbol {
					continue
				}
				guards := constraint.Merge(pTr.Guards, cTr.Guards)
				resets := unionResets(pTr.Resets, cTr.Resets)
				dst := encodePair(pTr.Dst, cTr.Dst)
				pr.transitions[loc] = append(pr.transitions[loc], ta.PlantTransition{
					Src: loc, Dst: dst, Symbol: pTr.Symbol, Guards: guards, Resets: resets,
				})
				if !visited[dst] {
					visited[dst] = true
					pr.locations = append(pr.locations, dst)
					if plantFinal[pTr.Dst] {
						pr.finalLocs[dst] = true
					}
					queue = append(queue, dst)
				}
			}
		}
	}
	return pr
}

func unionResets(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, c := range append(append([]string{}, a...), b...) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func (p *product) InitialConfiguration() ta.PlantConfiguration {
	val := make(map[string]float64, len(p.initialVal))
	for k, v := range p.initialVal {
		val[k] = v
	}
	return ta.PlantConfiguration{Location: p.initial, Valuation: val}
}

func (p *product) Alphabet() []ta.Action    { return append([]ta.Action{}, p.alphabet...) }
func (p *product) Clocks() []string         { return append([]string{}, p.clocks...) }
func (p *product) Locations() []ta.Location { return append([]ta.Location{}, p.locations...) }
func (p *product) LargestConstant() int     { return p.k }

func (p *product) FinalLocations() []ta.Location {
	out := make([]ta.Location, 0, len(p.finalLocs))
	for l := range p.finalLocs {
		out = append(out, l)
	}
	return out
}

func (p *product) TransitionsFrom(loc ta.Location) []ta.PlantTransition {
	return append([]ta.PlantTransition{}, p.transitions[loc]...)
}

// IsAccepting tests only the plant half of the pair against the plant's own
// acceptance set: the product's "bad" states are exactly the plant's own
// accepting locations, regardless of which controller location accompanies
// them (spec §4.9's controller restricts behavior, it does not redefine
// what counts as a safety violation).
func (p *product) IsAccepting(cfg ta.PlantConfiguration) bool {
	return p.finalLocs[cfg.Location]
}
