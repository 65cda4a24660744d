// Labeling implements spec.md §4.8: incremental bottom-up TOP/BOTTOM
// propagation during expansion, plus a global DFS finishing pass over any
// nodes still UNLABELED once the queue drains.
//
// Grounded on dfs/cycle.go's back-edge/on-stack bookkeeping, reused
// directly for "a revisit during the finishing DFS is a cycle, and a cycle
// is always winnable by the defender" (spec §4.8, §9).
package tree

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInconsistentTree indicates the global finishing DFS found a child whose
// parent back-pointer disagreed with the traversal that reached it -- a bug
// in tree construction, not user input (spec.md §7 "Inconsistent tree
// structure during label traversal").
var ErrInconsistentTree = errors.New("tree: inconsistent search tree structure")

// hasParent reports whether p appears in child's parent back-references.
func hasParent(child, p *Node) bool {
	for _, q := range child.ParentsSnapshot() {
		if q == p {
			return true
		}
	}
	return false
}

// propagateToParents re-evaluates every parent's incremental label after a
// child becomes labeled (spec §4.8 incremental propagation), and,
// recursively, their parents in turn. It does nothing when IncrementalLabel
// is off, leaving those parents to the global finishing pass.
func (s *Scheduler) propagateToParents(n *Node) {
	if !s.IncrementalLabel {
		return
	}
	var walk func(*Node, map[*Node]bool)
	walk = func(node *Node, seen map[*Node]bool) {
		for _, p := range node.ParentsSnapshot() {
			if seen[p] {
				continue
			}
			seen[p] = true
			if s.tryLabel(p) {
				walk(p, seen)
			}
		}
	}
	walk(n, map[*Node]bool{n: true})
}

// tryLabel applies spec §4.8's incremental rule to n given its children's
// current labels; returns whether n's label changed.
func (s *Scheduler) tryLabel(n *Node) bool {
	if n.Label() != Unlabeled {
		return false
	}
	children := n.ChildrenSnapshot()
	if len(children) == 0 {
		return false
	}
	const maxStep = int(^uint(0) >> 1)
	firstGood := maxStep
	firstBadEnv := maxStep
	hasEnv := false
	allEnvTop := true
	for key, child := range children {
		lbl := child.Label()
		if s.ControllerActions[key.Action] {
			if lbl == Top && key.Increment < firstGood {
				firstGood = key.Increment
			}
		} else {
			hasEnv = true
			if lbl != Top {
				allEnvTop = false
				if key.Increment < firstBadEnv {
					firstBadEnv = key.Increment
				}
			}
		}
	}
	if firstGood < firstBadEnv {
		return n.SetLabel(Top, GoodControllerActionFirst)
	}
	if hasEnv && allEnvTop {
		return n.SetLabel(Top, NoBadEnvAction)
	}
	if !hasEnv {
		return n.SetLabel(Bottom, AllControllerActionsBad)
	}
	return n.SetLabel(Bottom, BadEnvActionFirst)
}

// finishLabeling runs the global DFS finishing pass over any remaining
// UNLABELED nodes once the queue has drained (spec §4.8 "Global finish"): a
// revisit during the DFS signals a cycle and is treated as TOP. It returns
// ErrInconsistentTree if a child's parent back-pointer disagrees with the
// traversal that reached it (spec §7).
func (s *Scheduler) finishLabeling(root *Node) error {
	visited := make(map[*Node]bool)
	onStack := make(map[*Node]bool)
	var mu sync.Mutex
	var firstErr error
	var dfs func(*Node)
	dfs = func(n *Node) {
		mu.Lock()
		if n.Label() != Unlabeled {
			mu.Unlock()
			return
		}
		if onStack[n] {
			mu.Unlock()
			n.SetLabel(Top, MonotonicDominationReason)
			return
		}
		if visited[n] {
			mu.Unlock()
			return
		}
		visited[n] = true
		onStack[n] = true
		mu.Unlock()

		for _, child := range n.ChildrenSnapshot() {
			if !hasParent(child, n) {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%w: node %d's child %d has no back-pointer to it", ErrInconsistentTree, n.ID, child.ID)
				}
				mu.Unlock()
				continue
			}
			dfs(child)
		}

		mu.Lock()
		onStack[n] = false
		mu.Unlock()
		s.tryLabel(n)
	}
	dfs(root)
	return firstErr
}

