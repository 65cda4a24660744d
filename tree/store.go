package tree

import (
	"sort"
	"strings"
	"sync"

	"github.com/katalvlaran/ticsynth/ta"
	"github.com/katalvlaran/ticsynth/word"
)

// Store is the content-addressed node store: a map from word-set to shared
// node handle, guarded by a single mutex acquired only for insert/lookup
// (spec §5 resource (a)). Structural sharing here is a correctness
// requirement, not an optimization: it is what lets cycles in the region
// chain terminate during labeling (spec §9).
type Store struct {
	mu     sync.Mutex
	byKey  map[string]*Node
	nextID uint64
}

// NewStore returns an empty node store.
func NewStore() *Store {
	return &Store{byKey: make(map[string]*Node)}
}

// wordSetKey builds a deterministic key for a word-set: each word's own Key
// joined after sorting, so set order never affects identity.
func wordSetKey(words []word.Word) string {
	keys := make([]string, len(words))
	for i, w := range words {
		keys[i] = w.Key()
	}
	sort.Strings(keys)
	return strings.Join(keys, "\x1f")
}

// GetOrCreate returns the existing node for this word-set, or creates and
// inserts a fresh one. created reports which happened. If the existing node
// is CANCELED, it is resurrected (spec §4.7 step 6, §5 "reset and
// re-queue").
func (s *Store) GetOrCreate(words []word.Word, depth, timeToRoot int, incomingAction ta.Action, incomingEnv bool) (n *Node, created bool, resurrected bool) {
	key := wordSetKey(words)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byKey[key]; ok {
		if existing.Label() == Canceled {
			if existing.Resurrect() {
				resurrected = true
			}
		}
		return existing, false, resurrected
	}
	s.nextID++
	n = NewNode(s.nextID, words, depth, timeToRoot, incomingAction, incomingEnv)
	s.byKey[key] = n
	return n, true, false
}

// Size returns the number of distinct nodes ever created.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byKey)
}

// Nodes returns a snapshot slice of every node in the store.
func (s *Store) Nodes() []*Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Node, 0, len(s.byKey))
	for _, n := range s.byKey {
		out = append(out, n)
	}
	return out
}
