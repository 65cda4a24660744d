package tree

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/ticsynth/heuristic"
	"github.com/katalvlaran/ticsynth/succ"
	"github.com/katalvlaran/ticsynth/ta"
	"github.com/katalvlaran/ticsynth/word"
)

// Scheduler drives the concurrent, best-first search loop of spec.md §4.7:
// a priority queue feeds a pool of worker goroutines that expand nodes and
// insert children via the Store. Under TerminateEarly the workers stop once
// the root is labeled; the scheduler never marks a node CANCELED, so
// UNLABELED subtrees are left as they are.
//
// Grounded on tsp/bb.go's engine-struct-with-soft-deadline style for the
// expansion loop and on niceyeti-tabular's errgroup fan-out for the worker
// pool; the priority queue itself follows dijkstra/dijkstra.go's
// container/heap idiom (see queue.go).
type Scheduler struct {
	Plant             ta.Plant
	Ata               ta.ATA
	Alphabet          []ta.Action
	ControllerActions map[ta.Action]bool
	K                 int
	Heuristic         heuristic.Func
	Workers           int
	TerminateEarly    bool
	IncrementalLabel  bool
	Logger            zerolog.Logger

	store *Store
	queue *Queue
}

// Result summarizes a finished search.
type Result struct {
	Root            *Node
	TreeSize        int
	PrunedTreeSize  int
}

// NewScheduler constructs a scheduler over plant/ata with the given
// alphabet partitioned into controller vs. environment actions.
func NewScheduler(plant ta.Plant, ata ta.ATA, alphabet []ta.Action, controllerActions map[ta.Action]bool, k int, h heuristic.Func, workers int) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{
		Plant:             plant,
		Ata:               ata,
		Alphabet:          alphabet,
		ControllerActions: controllerActions,
		K:                 k,
		Heuristic:         h,
		Workers:           workers,
		IncrementalLabel:  true,
		store:             NewStore(),
		queue:             NewQueue(),
	}
}

// Store exposes the scheduler's node store (controller extraction and
// Verify walk it read-only after the search completes).
func (s *Scheduler) Store() *Store { return s.store }

// Run builds the initial node from rootWords and drains the queue (or stops
// early once the root is labeled, when TerminateEarly is set), per spec
// §4.7's scheduling model.
func (s *Scheduler) Run(ctx context.Context, rootWords []word.Word) (*Result, error) {
	root, _, _ := s.store.GetOrCreate(rootWords, 0, 0, "", false)
	s.queue.Push(root, s.priority(root))

	g, ctx := errgroup.WithContext(ctx)
	var active int64
	for i := 0; i < s.Workers; i++ {
		g.Go(func() error {
			return s.worker(ctx, root, &active)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if root.Label() == Unlabeled {
		if err := s.finishLabeling(root); err != nil {
			return nil, err
		}
	}

	return &Result{Root: root, TreeSize: s.store.Size(), PrunedTreeSize: s.prunedSize()}, nil
}

// worker pops nodes and expands them until the queue drains, the context is
// canceled, or (when TerminateEarly) the root becomes labeled. active
// tracks in-flight expansions so workers don't exit while a sibling might
// still push new work; a simple drain-until-empty loop is correct here
// because Push always happens before a worker returns from expand.
func (s *Scheduler) worker(ctx context.Context, root *Node, active *int64) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if s.TerminateEarly && root.Label() != Unlabeled {
			return nil
		}
		n, ok := s.queue.Pop()
		if !ok {
			if atomic.LoadInt64(active) == 0 {
				return nil
			}
			runtime.Gosched()
			continue
		}
		atomic.AddInt64(active, 1)
		s.expand(ctx, n)
		atomic.AddInt64(active, -1)
	}
}

// priority converts a node into a heuristic.Snapshot and scores it; lower
// score pops first.
func (s *Scheduler) priority(n *Node) float64 {
	snap := heuristic.Snapshot{
		Depth:               n.Depth,
		IncomingAction:      string(n.IncomingAction),
		IsEnvironmentAction: n.IncomingEnvironment,
		WordCount:           len(n.Words),
		TimeToRoot:          n.TimeToRoot,
	}
	return s.Heuristic(snap)
}

// expand implements spec §4.7's per-node expansion algorithm.
func (s *Scheduler) expand(ctx context.Context, n *Node) {
	if n.Label() != Unlabeled {
		return
	}
	if !n.TryBeginExpanding() {
		return
	}
	defer n.MarkExpanded()

	for _, w := range n.Words {
		if succ.IsJointlyAccepting(s.Plant, s.Ata, w) {
			n.SetState(Bad)
			if n.SetLabel(Bottom, BadNodeReason) {
				s.propagateToParents(n)
			}
			return
		}
	}

	allDead := true
	for _, w := range n.Words {
		if succ.HasSatisfiableAtaConfiguration(s.Ata, w) {
			allDead = false
			break
		}
	}
	if allDead {
		n.SetState(Good)
		if n.SetLabel(Top, GoodNodeReason) {
			s.propagateToParents(n)
		}
		return
	}

	if _, ok := FindDominatingAncestor(n); ok {
		n.SetState(Good)
		if n.SetLabel(Top, MonotonicDominationReason) {
			s.propagateToParents(n)
		}
		return
	}

	grouped := make(map[EdgeKey][]word.Word)
	for _, w := range n.Words {
		edges, err := succ.Successors(s.Plant, s.Ata, w, s.Alphabet, s.K)
		if err != nil {
			s.Logger.Debug().Err(err).Uint64("node", n.ID).Msg("successor computation failed")
			continue
		}
		for _, e := range edges {
			key := EdgeKey{Increment: e.Increment, Action: e.Action}
			grouped[key] = append(grouped[key], e.Child)
		}
	}

	if len(grouped) == 0 {
		n.SetState(Dead)
		if n.SetLabel(Top, DeadNodeReason) {
			s.propagateToParents(n)
		}
		return
	}

	anyExisting := false
	for key, childWords := range grouped {
		bucketed := bucketByRegA(childWords)
		for _, words := range bucketed {
			env := !s.ControllerActions[key.Action]
			child, created, resurrected := s.store.GetOrCreate(words, n.Depth+1, n.TimeToRoot+key.Increment, key.Action, env)
			child.AddParent(n)
			n.AddChild(key, child)
			if created || resurrected {
				s.queue.Push(child, s.priority(child))
			} else {
				anyExisting = true
			}
		}
	}

	if s.IncrementalLabel && anyExisting {
		s.tryLabel(n)
	}
}

// bucketByRegA groups child words sharing the same plant-only projection
// (spec §4.7 "reg_a projection" -- the controller sees the plant, not the
// spec).
func bucketByRegA(words []word.Word) [][]word.Word {
	type bucket struct {
		key   string
		words []word.Word
	}
	var buckets []*bucket
	for _, w := range words {
		key := w.RegA().Key()
		found := false
		for _, b := range buckets {
			if b.key == key {
				b.words = append(b.words, w)
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, &bucket{key: key, words: []word.Word{w}})
		}
	}
	out := make([][]word.Word, len(buckets))
	for i, b := range buckets {
		out[i] = b.words
	}
	return out
}

// prunedSize counts nodes with a non-CANCELED, non-UNLABELED label (spec
// §6 "pruned tree size").
func (s *Scheduler) prunedSize() int {
	count := 0
	for _, n := range s.store.Nodes() {
		if l := n.Label(); l == Top || l == Bottom {
			count++
		}
	}
	return count
}
