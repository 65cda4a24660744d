package succ

import (
	"github.com/katalvlaran/ticsynth/ta"
	"github.com/katalvlaran/ticsynth/word"
)

// Edge is one (region_increment, action) -> child produced while expanding
// a node (spec §4.7 "compute children grouped by (increment, action)").
type Edge struct {
	Increment int
	Action    ta.Action
	Child     word.Word
}

// maxRegionChain bounds the region-variant time-successor chain length at
// 2K+2 distinct words (spec §4.4).
func maxRegionChain(k int) int { return 2*k + 2 }

// Successors computes every (increment, action, child) edge out of cur for
// every symbol in alphabet, covering both the zero-delay successors and
// every reachable delayed successor (spec §4.5 "a single call returns
// successors keyed by (region_increment, symbol); each call produces both
// the undelayed and the fully-delayed successors").
//
// The region variant walks the full discrete time-successor chain (at most
// 2K+2 steps, spec §4.4); the zone variant computes only the undelayed
// (increment 0) and the once-delayed (increment 1) successor sets, since
// the zone layer collapses the whole future into a single DBM delay rather
// than enumerating a chain.
func Successors(plant ta.Plant, ata ta.ATA, cur word.Word, alphabet []ta.Action, k int) ([]Edge, error) {
	switch w := cur.(type) {
	case *word.RegionWord:
		return successorsRegion(plant, ata, w, alphabet, k)
	case *word.ZoneWord:
		return successorsZone(plant, ata, w, alphabet)
	default:
		return nil, ErrUnsupportedVariant
	}
}

func successorsRegion(plant ta.Plant, ata ta.ATA, cur *word.RegionWord, alphabet []ta.Action, k int) ([]Edge, error) {
	var edges []Edge
	step := cur
	for inc := 0; inc <= maxRegionChain(k); inc++ {
		for _, sym := range alphabet {
			children, err := SymbolSuccessors(plant, ata, step, sym)
			if err != nil {
				return nil, err
			}
			for _, c := range children {
				edges = append(edges, Edge{Increment: inc, Action: sym, Child: c})
			}
		}
		if step.IsStable() {
			break
		}
		next, err := step.TimeSuccessor()
		if err != nil {
			return nil, err
		}
		step = next
	}
	return edges, nil
}

func successorsZone(plant ta.Plant, ata ta.ATA, cur *word.ZoneWord, alphabet []ta.Action) ([]Edge, error) {
	var edges []Edge
	for _, sym := range alphabet {
		children, err := SymbolSuccessors(plant, ata, cur, sym)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			edges = append(edges, Edge{Increment: 0, Action: sym, Child: c})
		}
	}
	delayed, err := cur.TimeSuccessor()
	if err != nil {
		return nil, err
	}
	if !delayed.DBM.Equal(cur.DBM) {
		for _, sym := range alphabet {
			children, err := SymbolSuccessors(plant, ata, delayed, sym)
			if err != nil {
				return nil, err
			}
			for _, c := range children {
				edges = append(edges, Edge{Increment: 1, Action: sym, Child: c})
			}
		}
	}
	return edges, nil
}
