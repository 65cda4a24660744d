package tree

import (
	"github.com/katalvlaran/ticsynth/word"
	"github.com/katalvlaran/ticsynth/zone"
)

// Dominates reports whether ancestor word a dominates descendant word w:
// every symbol of a appears in w with a region/zone component at least as
// permissive (spec §4.6). Words of different variants never dominate each
// other.
func Dominates(a, w word.Word) bool {
	switch av := a.(type) {
	case *word.RegionWord:
		wv, ok := w.(*word.RegionWord)
		if !ok {
			return false
		}
		return regionDominates(av, wv)
	case *word.ZoneWord:
		wv, ok := w.(*word.ZoneWord)
		if !ok {
			return false
		}
		return zoneDominates(av, wv)
	default:
		return false
	}
}

// regionSymbolID identifies a region symbol's identity independent of its
// region index, so two occurrences of "the same" clock/location across
// words can be matched up.
type regionSymbolID struct {
	kind          word.SymbolKind
	plantLocation string
	clock         string
	ataLocation   string
	ataInstance   int
}

func idOf(s word.RegionSymbol) regionSymbolID {
	return regionSymbolID{
		kind:          s.Kind,
		plantLocation: s.PlantLocation,
		clock:         s.Clock,
		ataLocation:   s.AtaLocation,
		ataInstance:   s.AtaInstance,
	}
}

// regionDominates implements spec §4.6 for the region variant: for every
// symbol in the ancestor, the descendant must carry the same symbol at an
// equal-or-later region index (later indices denote more elapsed time, the
// "gained only clock freedom" permissiveness spec §4.6 describes).
func regionDominates(a, w *word.RegionWord) bool {
	wIdx := make(map[regionSymbolID]int)
	for _, p := range w.Partitions {
		for _, s := range p {
			wIdx[idOf(s)] = s.Region
		}
	}
	for _, p := range a.Partitions {
		for _, s := range p {
			idx, ok := wIdx[idOf(s)]
			if !ok || idx < s.Region {
				return false
			}
		}
	}
	return true
}

// zoneDominates implements spec §4.6 for the zone variant: for every named
// clock in the ancestor's DBM, the descendant's zone slice for that clock
// must contain (be at least as wide as) the ancestor's.
func zoneDominates(a, w *word.ZoneWord) bool {
	if a.PlantLocation != w.PlantLocation {
		return false
	}
	for _, c := range a.PlantClocks {
		as, err := a.DBM.ZoneSlice(c)
		if err != nil {
			return false
		}
		ws, err := w.DBM.ZoneSlice(c)
		if err != nil {
			return false
		}
		if !sliceContains(ws, as) {
			return false
		}
	}
	return true
}

// sliceContains reports whether outer is at least as wide as inner
// (outer.Lo <= inner.Lo and outer.Hi >= inner.Hi, with strictness only
// relaxing containment at equal bounds).
func sliceContains(outer, inner zone.Slice) bool {
	if outer.Lo > inner.Lo || (outer.Lo == inner.Lo && outer.LoOpen && !inner.LoOpen) {
		return false
	}
	if outer.Hi < inner.Hi || (outer.Hi == inner.Hi && outer.HiOpen && !inner.HiOpen) {
		return false
	}
	return true
}

// NodeWordSetDominatedBy reports whether every word in n's word-set is
// dominated by some word in ancestor's word-set (node-level domination
// requires the whole set to be covered, spec §4.6). Words are matched by
// existence, not by position: bucketByRegA and the successor relation give
// no guarantee that the two nodes' Words slices are built in a
// corresponding order, so pairing by raw index would miss dominations that
// hold under a different pairing.
func NodeWordSetDominatedBy(ancestor, n *Node) bool {
	for _, w := range n.Words {
		dominated := false
		for _, a := range ancestor.Words {
			if Dominates(a, w) {
				dominated = true
				break
			}
		}
		if !dominated {
			return false
		}
	}
	return true
}

// FindDominatingAncestor walks n's weak parent back-references (bounded by
// a visited set, since the search graph is a DAG) looking for an ancestor
// whose word-set dominates n's (spec §4.6, §4.7 step 5).
func FindDominatingAncestor(n *Node) (*Node, bool) {
	visited := map[*Node]bool{n: true}
	queue := n.ParentsSnapshot()
	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]
		if visited[a] {
			continue
		}
		visited[a] = true
		if NodeWordSetDominatedBy(a, n) {
			return a, true
		}
		queue = append(queue, a.ParentsSnapshot()...)
	}
	return nil, false
}
