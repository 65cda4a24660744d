package synth

import (
	"github.com/rs/zerolog"

	"github.com/katalvlaran/ticsynth/heuristic"
	"github.com/katalvlaran/ticsynth/word"
)

// config collects every tunable Synthesize/Verify accept, applied
// left-to-right by Option closures (spec.md §6 "Heuristic interface", no
// CLI/env vars -- builder.BuilderOption's functional-option discipline).
type config struct {
	variant            word.Variant
	heuristic          heuristic.Func
	workers            int
	terminateEarly     bool
	incrementalLabel   bool
	minimizeController bool
	crossCheck         bool
	logger             zerolog.Logger
}

func defaultConfig() config {
	return config{
		variant:          word.RegionVariant,
		heuristic:        heuristic.BFS(),
		workers:          1,
		incrementalLabel: true,
		logger:           zerolog.Nop(),
	}
}

// Option customizes a Synthesize/Verify run. Option constructors validate
// and panic on meaningless inputs; Synthesize and Verify themselves never
// panic (mirrors builder/options.go's "option constructors validate and
// panic, algorithms never panic" rule, carried into SPEC_FULL.md's ambient
// stack).
type Option func(*config)

// WithVariant selects the region or zone canonical-word encoding (spec.md
// §3). Region is the default.
func WithVariant(v word.Variant) Option {
	return func(c *config) { c.variant = v }
}

// WithHeuristic installs the node-priority function the scheduler pops by
// (spec §4.7, §6). Panics on nil.
func WithHeuristic(h heuristic.Func) Option {
	if h == nil {
		panic("synth: WithHeuristic(nil)")
	}
	return func(c *config) { c.heuristic = h }
}

// WithWorkers sets the number of concurrent expansion workers (spec §5).
// Values below 1 are clamped to 1 by the scheduler itself.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithTerminateEarly stops the search as soon as the root receives a label
// (spec §4.7, §5): workers stop popping the queue. Nodes still UNLABELED are
// left as they are; none is marked CANCELED.
func WithTerminateEarly() Option {
	return func(c *config) { c.terminateEarly = true }
}

// WithoutIncrementalLabeling disables incremental label propagation during
// expansion, relying solely on the global finishing pass (spec §4.8). Useful
// for tests that want to observe the finishing DFS in isolation.
func WithoutIncrementalLabeling() Option {
	return func(c *config) { c.incrementalLabel = false }
}

// WithMinimizeController stops controller extraction from emitting more
// than one controller-owned action per node, per spec §1's single
// heuristic ("stop exploring after the first good controller action").
func WithMinimizeController() Option {
	return func(c *config) { c.minimizeController = true }
}

// WithCrossCheck additionally verifies the extracted controller against the
// *other* abstraction's verifier before returning it (spec §8 property 6;
// recovered from original_source/'s region/zone cross-checking, see
// SPEC_FULL.md). Synthesize returns ErrCrossCheckFailed if the cross-check
// does not also confirm TOP.
func WithCrossCheck() Option {
	return func(c *config) { c.crossCheck = true }
}

// WithLogger installs a zerolog.Logger for scheduler and synthesis
// telemetry (spec §6 "observable counters", SPEC_FULL.md's logging
// section). The default is zerolog.Nop(), matching builder/options.go's
// "no hidden globals" discipline -- callers opt in explicitly.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

func apply(opts []Option) config {
	c := defaultConfig()
	for _, o := range opts {
		o(&c)
	}
	if c.workers < 1 {
		c.workers = 1
	}
	return c
}
