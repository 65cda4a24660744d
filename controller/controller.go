// Package controller extracts a realizing timed automaton from a
// TOP-labeled search tree (spec.md §4.9): it walks the tree from the root
// over TOP-labeled children only, synthesizes a clock-constraint guard per
// edge from the symbolic states that justify it, and emits a new TA whose
// accepting locations are exactly those derived from TOP nodes.
//
// Grounded on builder/impl_path.go and builder/helpers.go's incremental
// graph construction (allocate locations/transitions while walking a
// structure) and graph/matrix/conversions.go's "build one artifact from a
// traversal of another" style.
package controller

import (
	"errors"
	"fmt"
	"sort"

	"github.com/katalvlaran/ticsynth/constraint"
	"github.com/katalvlaran/ticsynth/ta"
	"github.com/katalvlaran/ticsynth/tree"
	"github.com/katalvlaran/ticsynth/word"
)

// ErrRootNotTop indicates controller extraction was asked to run on a
// search tree whose root is not labeled TOP (spec §7 "the extractor
// refusing to run" on a BOTTOM root).
var ErrRootNotTop = errors.New("controller: root is not labeled TOP")

// TA is the concrete controller automaton Extract emits: the same shape as
// the plant TA the search consumed (spec §6 "Output controller TA").
// Locations are opaque signatures derived from the search tree's node
// identities, so TA also implements ta.Plant and can itself be fed back
// into a synchronous-product verification search.
type TA struct {
	clocks       []string
	clockSet     map[string]bool
	locations    []ta.Location
	locSet       map[ta.Location]bool
	final        map[ta.Location]bool
	transitions  map[ta.Location][]ta.PlantTransition
	alphabet     []ta.Action
	alphabetSet  map[ta.Action]bool
	initial      ta.Location
	k            int
}

func newTA(initial ta.Location, k int) *TA {
	t := &TA{
		clockSet:    make(map[string]bool),
		locSet:      make(map[ta.Location]bool),
		final:       make(map[ta.Location]bool),
		transitions: make(map[ta.Location][]ta.PlantTransition),
		alphabetSet: make(map[ta.Action]bool),
		initial:     initial,
		k:           k,
	}
	t.addLocation(initial)
	return t
}

func (t *TA) addLocation(loc ta.Location) {
	if t.locSet[loc] {
		return
	}
	t.locSet[loc] = true
	t.locations = append(t.locations, loc)
}

func (t *TA) addClock(c string) {
	if t.clockSet[c] {
		return
	}
	t.clockSet[c] = true
	t.clocks = append(t.clocks, c)
}

func (t *TA) addAction(a ta.Action) {
	if t.alphabetSet[a] {
		return
	}
	t.alphabetSet[a] = true
	t.alphabet = append(t.alphabet, a)
}

func (t *TA) markFinal(loc ta.Location) { t.final[loc] = true }

func (t *TA) addTransition(src, dst ta.Location, action ta.Action, guards constraint.Set) {
	for c := range guards {
		t.addClock(c)
	}
	t.addAction(action)
	t.transitions[src] = append(t.transitions[src], ta.PlantTransition{
		Src: src, Dst: dst, Symbol: action, Guards: guards, Resets: nil,
	})
}

// InitialConfiguration implements ta.Plant.
func (t *TA) InitialConfiguration() ta.PlantConfiguration {
	val := make(map[string]float64, len(t.clocks))
	for _, c := range t.clocks {
		val[c] = 0
	}
	return ta.PlantConfiguration{Location: t.initial, Valuation: val}
}

// Alphabet implements ta.Plant.
func (t *TA) Alphabet() []ta.Action { return append([]ta.Action{}, t.alphabet...) }

// Clocks implements ta.Plant.
func (t *TA) Clocks() []string { return append([]string{}, t.clocks...) }

// Locations implements ta.Plant.
func (t *TA) Locations() []ta.Location { return append([]ta.Location{}, t.locations...) }

// FinalLocations implements ta.Plant.
func (t *TA) FinalLocations() []ta.Location {
	out := make([]ta.Location, 0, len(t.final))
	for loc := range t.final {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LargestConstant implements ta.Plant.
func (t *TA) LargestConstant() int { return t.k }

// TransitionsFrom implements ta.Plant.
func (t *TA) TransitionsFrom(loc ta.Location) []ta.PlantTransition {
	return append([]ta.PlantTransition{}, t.transitions[loc]...)
}

// IsAccepting implements ta.Plant.
func (t *TA) IsAccepting(cfg ta.PlantConfiguration) bool { return t.final[cfg.Location] }

// locationOf derives a stable, human-legible location signature from a
// search-tree node's identity (spec §4.9 "a location identified by the
// parent's word-set"; node IDs are already 1:1 with distinct word-sets
// via the Store).
func locationOf(n *tree.Node) ta.Location {
	return ta.Location(fmt.Sprintf("q%d", n.ID))
}

// Extract walks root's TOP-labeled subtree and builds the realizing
// controller TA (spec §4.9). controllerActions distinguishes controller-
// owned actions for the minimize-controller heuristic; k is the largest
// constant to report on the output TA.
func Extract(root *tree.Node, controllerActions map[ta.Action]bool, minimizeController bool, k int) (*TA, error) {
	if root.Label() != tree.Top {
		return nil, ErrRootNotTop
	}
	rootLoc := locationOf(root)
	out := newTA(rootLoc, k)
	out.markFinal(rootLoc)

	visited := map[ta.Location]bool{rootLoc: true}

	var walk func(n *tree.Node, loc ta.Location)
	walk = func(n *tree.Node, loc ta.Location) {
		children := n.ChildrenSnapshot()
		type topEdge struct {
			key   tree.EdgeKey
			child *tree.Node
		}
		var edges []topEdge
		for key, child := range children {
			if child.Label() == tree.Top {
				edges = append(edges, topEdge{key: key, child: child})
			}
		}
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].key.Action != edges[j].key.Action {
				return edges[i].key.Action < edges[j].key.Action
			}
			return edges[i].key.Increment < edges[j].key.Increment
		})

		stoppedControllerAction := false
		for _, e := range edges {
			if minimizeController && stoppedControllerAction {
				break
			}
			guards, err := guardFor(n, e.key.Increment)
			if err != nil {
				continue
			}
			childLoc := locationOf(e.child)
			out.addTransition(loc, childLoc, e.key.Action, guards)
			isNew := !visited[childLoc]
			if isNew {
				visited[childLoc] = true
				out.addLocation(childLoc)
				out.markFinal(childLoc)
				walk(e.child, childLoc)
			}
			if minimizeController && controllerActions[e.key.Action] {
				stoppedControllerAction = true
			}
		}
	}
	walk(root, rootLoc)
	return out, nil
}

// guardFor recovers the clock constraints implied by firing an edge at the
// given region-increment out of n (spec §4.9).
func guardFor(n *tree.Node, increment int) (constraint.Set, error) {
	if len(n.Words) == 0 {
		return constraint.NewSet(), nil
	}
	switch w0 := n.Words[0].(type) {
	case *word.RegionWord:
		return guardForRegion(w0, increment)
	case *word.ZoneWord:
		return guardForZone(w0, increment)
	default:
		return constraint.NewSet(), fmt.Errorf("controller: unsupported word variant %T", w0)
	}
}

func guardForRegion(w *word.RegionWord, increment int) (constraint.Set, error) {
	step := w
	for i := 0; i < increment; i++ {
		next, err := step.TimeSuccessor()
		if err != nil {
			return nil, err
		}
		step = next
	}
	guards := constraint.NewSet()
	for _, p := range step.Partitions {
		for _, s := range p {
			if s.Kind != word.PlantClockSymbol {
				continue
			}
			for _, a := range regionIndexAtoms(s.Region, step.K) {
				guards.Add(s.Clock, a)
			}
		}
	}
	return guards, nil
}

// regionIndexAtoms converts a region index into the atomic constraints that
// pin a clock to that region (spec §4.9 "(>=lo, <hi with strictness
// dictated by parity)"): an exact integer for an even index, an open unit
// interval for an odd index, or an unbounded lower guard for the terminal
// "above K" index.
func regionIndexAtoms(idx, k int) []constraint.Atomic {
	if idx == 2*k+1 {
		return []constraint.Atomic{{Op: constraint.Gt, K: k}}
	}
	if idx%2 == 0 {
		return []constraint.Atomic{{Op: constraint.Eq, K: idx / 2}}
	}
	lo := idx / 2
	return []constraint.Atomic{{Op: constraint.Gt, K: lo}, {Op: constraint.Lt, K: lo + 1}}
}

// guardForZone reads back the DBM that justified a zone-variant edge: an
// increment-0 edge fires directly out of w's own zone, while an
// increment-1 edge fires out of w's delayed zone (the same Delay() call
// succ.Successors uses to build the "wait, then act" branch; see
// succ/timed.go's successorsZone and word.ZoneWord.TimeSuccessor).
func guardForZone(w *word.ZoneWord, increment int) (constraint.Set, error) {
	d := w.DBM
	if increment > 0 {
		delayed, err := w.DBM.TimeSuccessor(0)
		if err != nil {
			return nil, err
		}
		d = delayed
	}
	guards := constraint.NewSet()
	for _, c := range w.PlantClocks {
		s, err := d.ZoneSlice(c)
		if err != nil {
			return nil, err
		}
		if s.Lo == s.Hi && !s.LoOpen && !s.HiOpen {
			guards.Add(c, constraint.Atomic{Op: constraint.Eq, K: s.Lo})
			continue
		}
		loOp := constraint.Ge
		if s.LoOpen {
			loOp = constraint.Gt
		}
		guards.Add(c, constraint.Atomic{Op: loOp, K: s.Lo})
		if s.Hi < d.K() || s.HiOpen {
			hiOp := constraint.Le
			if s.HiOpen {
				hiOp = constraint.Lt
			}
			guards.Add(c, constraint.Atomic{Op: hiOp, K: s.Hi})
		}
	}
	return guards, nil
}
