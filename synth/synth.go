// Package synth ties clock constraints, the zone/region symbolic state, the
// successor relation, the search tree, labeling, and controller extraction
// together into Synthesize and Verify (spec.md §1, §2).
package synth

import (
	"context"
	"fmt"

	"github.com/katalvlaran/ticsynth/controller"
	"github.com/katalvlaran/ticsynth/ta"
	"github.com/katalvlaran/ticsynth/tree"
	"github.com/katalvlaran/ticsynth/word"
)

// Result is everything a finished synthesis run reports: the realizing
// controller TA, the search tree's size and pruned size, the controller's
// location count, and a histogram of labeling reasons (spec §6 "Observable
// counters"; the Reason histogram is a SPEC_FULL.md addition recovered from
// original_source/'s LabelReason type -- see DESIGN.md).
type Result struct {
	Controller          *controller.TA
	TreeSize            int
	PrunedTreeSize      int
	ControllerLocations int
	Reasons             map[tree.Reason]int
}

func toActionSet(actions []ta.Action) map[ta.Action]bool {
	out := make(map[ta.Action]bool, len(actions))
	for _, a := range actions {
		out[a] = true
	}
	return out
}

func buildRootWord(plant ta.Plant, ata ta.ATA, variant word.Variant, k int) (word.Word, error) {
	cfg := plant.InitialConfiguration()
	var plantVals []word.ClockValuation
	for _, c := range plant.Clocks() {
		plantVals = append(plantVals, word.ClockValuation{Clock: c, Value: cfg.Valuation[c]})
	}
	var ataVals []word.AtaValuation
	for _, st := range ata.InitialConfiguration() {
		ataVals = append(ataVals, word.AtaValuation{Location: string(st.Location), Instance: st.Instance, Value: st.Value})
	}
	if variant == word.ZoneVariant {
		return word.CanonicalZone(string(cfg.Location), plantVals, ataVals, k)
	}
	return word.CanonicalRegion(string(cfg.Location), plantVals, ataVals, k)
}

// reasonHistogram tallies the labeling Reason of every TOP/BOTTOM node in
// store, for Result.Reasons.
func reasonHistogram(store *tree.Store) map[tree.Reason]int {
	out := make(map[tree.Reason]int)
	for _, n := range store.Nodes() {
		if l := n.Label(); l == tree.Top || l == tree.Bottom {
			out[n.GetReason()]++
		}
	}
	return out
}

// runSearch builds the initial canonical word and drains the scheduler,
// returning the scheduler itself (for its node store) alongside its result.
func runSearch(ctx context.Context, plant ta.Plant, ata ta.ATA, controllerActions map[ta.Action]bool, cfg config) (*tree.Scheduler, *tree.Result, error) {
	if err := ta.ValidatePlant(plant); err != nil {
		return nil, nil, fmt.Errorf("synth: %w", err)
	}
	k := plant.LargestConstant()
	root, err := buildRootWord(plant, ata, cfg.variant, k)
	if err != nil {
		return nil, nil, fmt.Errorf("synth: building root word: %w", err)
	}
	sched := tree.NewScheduler(plant, ata, plant.Alphabet(), controllerActions, k, cfg.heuristic, cfg.workers)
	sched.TerminateEarly = cfg.terminateEarly
	sched.IncrementalLabel = cfg.incrementalLabel
	sched.Logger = cfg.logger

	res, err := sched.Run(ctx, []word.Word{root})
	if err != nil {
		return nil, nil, fmt.Errorf("synth: search: %w", err)
	}
	cfg.logger.Info().
		Int("tree_size", res.TreeSize).
		Int("pruned_tree_size", res.PrunedTreeSize).
		Str("root_label", res.Root.Label().String()).
		Msg("synth: search finished")
	return sched, res, nil
}

// Synthesize decides whether a controller exists for plant against ata's
// forbidden-behavior specification, partitioning plant's alphabet into
// controller-owned actions and environment (uncontrollable) actions via
// controllerActions (spec.md §1, §4.8 "Aᶜ, Aᵉ"). On success it returns the
// realizing controller TA and telemetry; ErrUnrealizable if the root is
// labeled BOTTOM (spec §7).
func Synthesize(ctx context.Context, plant ta.Plant, ata ta.ATA, controllerActions []ta.Action, opts ...Option) (*Result, error) {
	cfg := apply(opts)
	ctrlSet := toActionSet(controllerActions)

	sched, res, err := runSearch(ctx, plant, ata, ctrlSet, cfg)
	if err != nil {
		return nil, err
	}
	if res.Root.Label() != tree.Top {
		return nil, ErrUnrealizable
	}

	ctrl, err := controller.Extract(res.Root, ctrlSet, cfg.minimizeController, plant.LargestConstant())
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}

	if cfg.crossCheck {
		other := word.RegionVariant
		if cfg.variant == word.RegionVariant {
			other = word.ZoneVariant
		}
		ok, verr := Verify(ctx, plant, ctrl, ata, controllerActions, WithVariant(other), WithHeuristic(cfg.heuristic), WithLogger(cfg.logger))
		if verr != nil {
			return nil, fmt.Errorf("synth: cross-check: %w", verr)
		}
		if !ok {
			return nil, ErrCrossCheckFailed
		}
	}

	return &Result{
		Controller:          ctrl,
		TreeSize:            res.TreeSize,
		PrunedTreeSize:      res.PrunedTreeSize,
		ControllerLocations: len(ctrl.Locations()),
		Reasons:             reasonHistogram(sched.Store()),
	}, nil
}

// Verify re-runs the search on the synchronous product of plant and
// controller against ata's specification and reports whether the product's
// root is labeled TOP -- i.e. the controller indeed prevents every run from
// satisfying the forbidden behavior (spec.md §8 properties 6 and 9,
// SPEC_FULL.md's verification harness recovered from original_source/).
func Verify(ctx context.Context, plant ta.Plant, controllerTA ta.Plant, ata ta.ATA, controllerActions []ta.Action, opts ...Option) (bool, error) {
	cfg := apply(opts)
	prod := newProduct(plant, controllerTA)
	ctrlSet := toActionSet(controllerActions)

	_, res, err := runSearch(ctx, prod, ata, ctrlSet, cfg)
	if err != nil {
		return false, err
	}
	return res.Root.Label() == tree.Top, nil
}
