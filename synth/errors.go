package synth

import (
	"errors"

	"github.com/katalvlaran/ticsynth/tree"
)

// Sentinel errors for the synth package (spec.md §7: fatal errors bubble
// up, malformed input is rejected at construction, a BOTTOM root refuses
// extraction).
var (
	// ErrUnrealizable indicates the search concluded no controller exists:
	// the root was labeled BOTTOM. Controller extraction never runs (spec
	// §7 "search termination without a controller yields a root labeled
	// BOTTOM and the extractor refusing to run").
	ErrUnrealizable = errors.New("synth: no controller exists (root labeled BOTTOM)")

	// ErrCrossCheckFailed indicates WithCrossCheck() was set and the
	// extracted controller, re-verified against the opposite canonical-word
	// abstraction, did not also confirm TOP.
	ErrCrossCheckFailed = errors.New("synth: controller failed cross-check verification")

	// ErrInconsistentTree indicates a labeled tree traversal found a child
	// whose parent back-pointer disagreed with the traversal (spec §7
	// "Inconsistent tree structure... indicates a bug, not user input").
	// It is the same sentinel tree.Scheduler.Run's global finishing DFS
	// returns through runSearch; aliased here so callers can errors.Is
	// against the synth package without reaching into tree.
	ErrInconsistentTree = tree.ErrInconsistentTree
)
