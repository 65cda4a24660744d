// Package heuristic supplies the pluggable cost functions the search
// scheduler uses to prioritize which node to expand next (spec.md §4.7,
// §6). A heuristic is a pure function from a node snapshot to an ordered
// scalar; lower cost means higher priority.
//
// Grounded on builder/options.go's functional-option composition pattern
// (closures combined left-to-right) and tsp/bound_onetree.go's pluggable
// bound/branching strategy selected by an enum.
package heuristic

import (
	"math/rand"
	"sync"
)

// Snapshot is the read-only view of a node a heuristic scores. It
// deliberately does not reference the tree package's Node type: heuristics
// must stay decoupled from the search tree's concurrency machinery (spec
// §6 "a function from a node snapshot... to a totally ordered cost").
type Snapshot struct {
	Depth               int    // BFS distance from the root, in edges
	IncomingAction      string // the action labeling the edge into this node
	IsEnvironmentAction bool   // whether IncomingAction is environment-owned
	WordCount           int    // number of canonical words in this node
	TimeToRoot          int    // sum of minimum region-increments from the root
}

// Func scores a Snapshot; lower is higher priority.
type Func func(Snapshot) float64

// BFS prioritizes shallower nodes first (monotone increasing counter).
func BFS() Func {
	return func(s Snapshot) float64 { return float64(s.Depth) }
}

// DFS prioritizes deeper nodes first (negated depth).
func DFS() Func {
	return func(s Snapshot) float64 { return -float64(s.Depth) }
}

// TimeToRoot prioritizes nodes reachable via the least elapsed time.
func TimeToRoot() Func {
	return func(s Snapshot) float64 { return float64(s.TimeToRoot) }
}

// WordCount prefers compact nodes (fewer canonical words in the set).
func WordCount() Func {
	return func(s Snapshot) float64 { return float64(s.WordCount) }
}

// PreferEnvironment boosts (lowers the cost of) nodes reached via an
// environment action, so the search explores adversarial branches earlier.
func PreferEnvironment() Func {
	return func(s Snapshot) float64 {
		if s.IsEnvironmentAction {
			return float64(s.Depth) - 0.5
		}
		return float64(s.Depth)
	}
}

// Weighted pairs a heuristic with its linear-combination weight for
// Composite.
type Weighted struct {
	Func   Func
	Weight float64
}

// Composite combines several heuristics via a user-weighted linear sum.
func Composite(terms ...Weighted) Func {
	return func(s Snapshot) float64 {
		var total float64
		for _, t := range terms {
			total += t.Weight * t.Func(s)
		}
		return total
	}
}

// Random returns a heuristic that scores nodes independent of their
// content, using a deterministic seeded source so runs stay reproducible
// given the same seed (spec §4.7 lists "random" among the pluggable
// strategies).
func Random(seed int64) Func {
	rng := rand.New(rand.NewSource(seed))
	var mu sync.Mutex
	return func(Snapshot) float64 {
		mu.Lock()
		defer mu.Unlock()
		return rng.Float64()
	}
}
