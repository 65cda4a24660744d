// Package tree implements the search tree over joint (plant, ATA) canonical
// AB-words: the content-addressed node store, the priority-queue-driven
// worker pool, monotonic-domination pruning, and cancellation (spec.md
// §4.6, §4.7, §5).
//
// The search graph is a DAG, not a tree: distinct expansion paths routinely
// rediscover the same canonical word-set, so Store keeps one shared Node
// handle per structurally-equal word-set (spec §9 "Shared structural
// graph, not a tree").
package tree

import (
	"sync"
	"sync/atomic"

	"github.com/katalvlaran/ticsynth/ta"
	"github.com/katalvlaran/ticsynth/word"
)

// Label is a node's bottom-up TOP/BOTTOM/CANCELED labeling state.
type Label int32

const (
	Unlabeled Label = iota
	Top
	Bottom
	Canceled
)

func (l Label) String() string {
	switch l {
	case Top:
		return "TOP"
	case Bottom:
		return "BOTTOM"
	case Canceled:
		return "CANCELED"
	default:
		return "UNLABELED"
	}
}

// State is a node's expansion-time classification (spec §4.7 steps 3-6).
type State int32

const (
	Unknown State = iota
	Good
	Bad
	Dead
)

// Reason names why a node received its current label (spec §4.8).
type Reason int

const (
	NoReason Reason = iota
	GoodControllerActionFirst
	NoBadEnvAction
	AllControllerActionsBad
	BadEnvActionFirst
	MonotonicDominationReason
	GoodNodeReason
	DeadNodeReason
	BadNodeReason
)

func (r Reason) String() string {
	switch r {
	case GoodControllerActionFirst:
		return "GOOD_CONTROLLER_ACTION_FIRST"
	case NoBadEnvAction:
		return "NO_BAD_ENV_ACTION"
	case AllControllerActionsBad:
		return "ALL_CONTROLLER_ACTIONS_BAD"
	case BadEnvActionFirst:
		return "BAD_ENV_ACTION_FIRST"
	case MonotonicDominationReason:
		return "MONOTONIC_DOMINATION"
	case GoodNodeReason:
		return "GOOD_NODE"
	case DeadNodeReason:
		return "DEAD_NODE"
	case BadNodeReason:
		return "BAD_NODE"
	default:
		return "NONE"
	}
}

// EdgeKey is the (region_increment, action) pair a child edge is keyed by
// (spec §4.7).
type EdgeKey struct {
	Increment int
	Action    ta.Action
}

// Node is one search-tree vertex: a word-set, its label/state, its parent
// back-references, and its (increment, action) -> child edges (spec §4.7).
//
// label, state, isExpanding and isExpanded are mutated via compare-and-swap
// without holding any lock, per spec §5's concurrency model; Children and
// Parents are guarded by their own mutexes, distinct from the Store's.
type Node struct {
	ID                  uint64
	Words               []word.Word
	Depth               int // BFS distance from the root, in edges
	TimeToRoot          int // sum of minimum region-increments on the path from root
	IncomingAction      ta.Action
	IncomingEnvironment bool

	label Label // atomic (Label)
	state State // atomic (State)
	Reason  Reason
	reasonMu sync.Mutex

	expanding uint32 // atomic bool: 0/1
	expanded  uint32 // atomic bool: 0/1

	childrenMu sync.RWMutex
	Children   map[EdgeKey]*Node

	parentsMu sync.Mutex
	Parents   []*Node
}

// NewNode constructs a fresh, unlabeled, unexpanded node.
func NewNode(id uint64, words []word.Word, depth, timeToRoot int, incomingAction ta.Action, incomingEnv bool) *Node {
	return &Node{
		ID:                  id,
		Words:               words,
		Depth:               depth,
		TimeToRoot:          timeToRoot,
		IncomingAction:      incomingAction,
		IncomingEnvironment: incomingEnv,
		Children:            make(map[EdgeKey]*Node),
	}
}

// Label atomically reads the node's label.
func (n *Node) Label() Label { return Label(atomic.LoadInt32((*int32)(&n.label))) }

// GetReason reads the label reason under its mutex.
func (n *Node) GetReason() Reason {
	n.reasonMu.Lock()
	defer n.reasonMu.Unlock()
	return n.Reason
}

// SetLabel attempts to move the node to label l for reason r. TOP and
// BOTTOM are a one-way latch: once set, SetLabel never changes them again
// (spec §9 "implementers must not reset TOP/BOTTOM, only UNLABELED<->
// CANCELED"). Returns whether this call actually changed the label.
func (n *Node) SetLabel(l Label, r Reason) bool {
	for {
		cur := n.Label()
		if cur == Top || cur == Bottom {
			return false
		}
		if cur == l {
			return false
		}
		if atomic.CompareAndSwapInt32((*int32)(&n.label), int32(cur), int32(l)) {
			if l == Top || l == Bottom {
				n.reasonMu.Lock()
				n.Reason = r
				n.reasonMu.Unlock()
			}
			return true
		}
	}
}

// Cancel marks an UNLABELED node CANCELED (spec §4.7/§5 cooperative
// cancellation); a no-op on any other label.
func (n *Node) Cancel() bool {
	return atomic.CompareAndSwapInt32((*int32)(&n.label), int32(Unlabeled), int32(Canceled))
}

// Resurrect resets a CANCELED node back to UNLABELED so it can be
// re-queued (spec §5 "a rediscovery of a CANCELED node by another parent
// resets it to UNLABELED and re-queues it").
func (n *Node) Resurrect() bool {
	if atomic.CompareAndSwapInt32((*int32)(&n.label), int32(Canceled), int32(Unlabeled)) {
		atomic.StoreUint32(&n.expanding, 0)
		atomic.StoreUint32(&n.expanded, 0)
		return true
	}
	return false
}

// State atomically reads the node's expansion-time state.
func (n *Node) State() State { return State(atomic.LoadInt32((*int32)(&n.state))) }

// SetState moves state from UNKNOWN to its terminal classification; a
// no-op once already set (spec §4.7 steps 3-6 classify a node exactly
// once).
func (n *Node) SetState(s State) bool {
	return atomic.CompareAndSwapInt32((*int32)(&n.state), int32(Unknown), int32(s))
}

// TryBeginExpanding attempts to claim this node for expansion; only one
// worker ever wins (spec §4.7 step 2).
func (n *Node) TryBeginExpanding() bool {
	return atomic.CompareAndSwapUint32(&n.expanding, 0, 1)
}

// MarkExpanded records that expansion finished (successful or not).
func (n *Node) MarkExpanded() { atomic.StoreUint32(&n.expanded, 1) }

// IsExpanded reports whether expansion has finished.
func (n *Node) IsExpanded() bool { return atomic.LoadUint32(&n.expanded) == 1 }

// AddChild inserts (or overwrites) a (increment, action) edge.
func (n *Node) AddChild(key EdgeKey, child *Node) {
	n.childrenMu.Lock()
	n.Children[key] = child
	n.childrenMu.Unlock()
}

// ChildrenSnapshot returns a shallow copy of the current child edges, safe
// to range over without holding the node's lock.
func (n *Node) ChildrenSnapshot() map[EdgeKey]*Node {
	n.childrenMu.RLock()
	defer n.childrenMu.RUnlock()
	out := make(map[EdgeKey]*Node, len(n.Children))
	for k, v := range n.Children {
		out[k] = v
	}
	return out
}

// AddParent records a weak back-reference, used only by domination checks
// and label walks (spec §9).
func (n *Node) AddParent(p *Node) {
	n.parentsMu.Lock()
	for _, existing := range n.Parents {
		if existing == p {
			n.parentsMu.Unlock()
			return
		}
	}
	n.Parents = append(n.Parents, p)
	n.parentsMu.Unlock()
}

// ParentsSnapshot returns a shallow copy of the current parent list.
func (n *Node) ParentsSnapshot() []*Node {
	n.parentsMu.Lock()
	defer n.parentsMu.Unlock()
	out := make([]*Node, len(n.Parents))
	copy(out, n.Parents)
	return out
}
