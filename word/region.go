package word

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// epsilon is the fixed tolerance used to compare fractional parts and to
// decide whether a valuation is integral, per spec §4.3's "approximate
// equality comparator with fixed tolerance".
const epsilon = 1e-6

// SymbolKind distinguishes the two kinds of region symbol.
type SymbolKind int

const (
	PlantClockSymbol SymbolKind = iota
	AtaLocationSymbol
)

// RegionSymbol is either (plant_location, clock_name, region_index) or
// (ata_location, region_index), per spec §3.
type RegionSymbol struct {
	Kind          SymbolKind
	PlantLocation string // valid iff Kind == PlantClockSymbol
	Clock         string // valid iff Kind == PlantClockSymbol
	AtaLocation   string // valid iff Kind == AtaLocationSymbol
	AtaInstance   int    // valid iff Kind == AtaLocationSymbol
	Region        int    // region index in [0, 2K+1]
}

// Partition is a nonempty set of region symbols sharing a fractional-part
// group.
type Partition []RegionSymbol

// RegionWord is the region-variant canonical AB-word: an ordered list of
// nonempty partitions, the 0th holding all zero-fraction (even-index)
// symbols, each subsequent partition holding symbols of strictly larger
// shared fractional part.
type RegionWord struct {
	Partitions []Partition
	K          int
}

var _ Word = (*RegionWord)(nil)

func (w *RegionWord) Variant() Variant { return RegionVariant }

// regionIndex maps a clock valuation to its region index, per spec §4.3:
// even if integral (2*floor(v)), else 2*floor(v)+1; 2K+1 once v exceeds K.
func regionIndex(v float64, k int) int {
	if v > float64(k)+epsilon {
		return 2*k + 1
	}
	intPart := math.Floor(v + epsilon)
	frac := v - intPart
	if frac < epsilon {
		return 2 * int(intPart)
	}
	return 2*int(intPart) + 1
}

// fracGroupKey buckets a valuation into one of: "zero" (integral, goes to
// partition 0), "max" (exceeds K, goes to the trailing max partition), or a
// quantized fractional key used to cluster approximately-equal fractions.
func fracGroupKey(v float64, k int) (kind int, key float64) {
	// kind: 0 = zero/integral, 1 = ordinary fractional, 2 = maxed (>K)
	if v > float64(k)+epsilon {
		return 2, 0
	}
	intPart := math.Floor(v + epsilon)
	frac := v - intPart
	if frac < epsilon {
		return 0, 0
	}
	return 1, frac
}

// CanonicalRegion builds the initial region word from a plant location with
// its clock valuations and the ATA's current (location, instance, value)
// configuration. Rejects a plant with zero clocks (spec §4.3).
func CanonicalRegion(plantLocation string, plantVals []ClockValuation, ataVals []AtaValuation, k int) (*RegionWord, error) {
	if len(plantVals) == 0 {
		return nil, ErrNoPlantClocks
	}

	type grouped struct {
		kind int
		key  float64
		syms []RegionSymbol
	}
	var groups []*grouped
	place := func(kind int, key float64, sym RegionSymbol) {
		for _, g := range groups {
			if g.kind == kind && (kind != 1 || math.Abs(g.key-key) < epsilon) {
				g.syms = append(g.syms, sym)
				return
			}
		}
		groups = append(groups, &grouped{kind: kind, key: key, syms: []RegionSymbol{sym}})
	}

	for _, cv := range plantVals {
		kind, key := fracGroupKey(cv.Value, k)
		place(kind, key, RegionSymbol{
			Kind:          PlantClockSymbol,
			PlantLocation: plantLocation,
			Clock:         cv.Clock,
			Region:        regionIndex(cv.Value, k),
		})
	}
	for _, av := range ataVals {
		kind, key := fracGroupKey(av.Value, k)
		place(kind, key, RegionSymbol{
			Kind:        AtaLocationSymbol,
			AtaLocation: av.Location,
			AtaInstance: av.Instance,
			Region:      regionIndex(av.Value, k),
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].kind != groups[j].kind {
			// zero(0) < fractional(1) < maxed(2)
			return groups[i].kind < groups[j].kind
		}
		return groups[i].key < groups[j].key
	})

	w := &RegionWord{K: k}
	for _, g := range groups {
		w.Partitions = append(w.Partitions, Partition(g.syms))
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate checks every structural invariant spec §3/§7 requires.
func (w *RegionWord) Validate() error {
	if len(w.Partitions) == 0 {
		return fmt.Errorf("%w: no partitions", ErrInvalidWord)
	}
	for pi, p := range w.Partitions {
		if len(p) == 0 {
			return fmt.Errorf("%w: empty partition %d", ErrInvalidWord, pi)
		}
		parity := p[0].Region % 2
		for _, s := range p {
			if s.Region < 0 || s.Region > 2*w.K+1 {
				return fmt.Errorf("%w: region index %d out of [0,%d]", ErrInvalidWord, s.Region, 2*w.K+1)
			}
			if s.Region%2 != parity {
				return fmt.Errorf("%w: mixed parity in partition %d", ErrInvalidWord, pi)
			}
		}
		if parity == 0 && pi != 0 {
			return fmt.Errorf("%w: even indices outside partition 0 (partition %d)", ErrInvalidWord, pi)
		}
	}
	return nil
}

// RegA drops every ATA-typed symbol from every partition, removing now-empty
// partitions (spec §4.7 reg_a projection).
func (w *RegionWord) RegA() Word {
	out := &RegionWord{K: w.K}
	for _, p := range w.Partitions {
		var kept Partition
		for _, s := range p {
			if s.Kind == PlantClockSymbol {
				kept = append(kept, s)
			}
		}
		if len(kept) > 0 {
			out.Partitions = append(out.Partitions, kept)
		}
	}
	return out
}

// Equal reports deep structural equality.
func (w *RegionWord) Equal(other Word) bool {
	o, ok := other.(*RegionWord)
	if !ok || o.K != w.K || len(o.Partitions) != len(w.Partitions) {
		return false
	}
	for i, p := range w.Partitions {
		op := o.Partitions[i]
		if len(p) != len(op) {
			return false
		}
		seen := make([]bool, len(op))
		for _, s := range p {
			matched := false
			for j, os := range op {
				if seen[j] {
					continue
				}
				if s == os {
					seen[j] = true
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}

// Clone returns an independent deep copy.
func (w *RegionWord) Clone() Word {
	out := &RegionWord{K: w.K, Partitions: make([]Partition, len(w.Partitions))}
	for i, p := range w.Partitions {
		cp := make(Partition, len(p))
		copy(cp, p)
		out.Partitions[i] = cp
	}
	return out
}

// Decode recovers a representative plant location, clock valuations, and
// ATA valuations from the region word: since every symbol's Region index
// alone fully determines a representative real value within its region
// (the region-equivalence invariant guarantees any such representative
// agrees with every other point in the region on every integer-bounded
// guard), partition membership is not needed to decode a usable valuation.
func (w *RegionWord) Decode() (plantLocation string, plantVals []ClockValuation, ataVals []AtaValuation) {
	for _, p := range w.Partitions {
		for _, s := range p {
			v := regionRepresentative(s.Region, w.K)
			switch s.Kind {
			case PlantClockSymbol:
				plantLocation = s.PlantLocation
				plantVals = append(plantVals, ClockValuation{Clock: s.Clock, Value: v})
			case AtaLocationSymbol:
				ataVals = append(ataVals, AtaValuation{Location: s.AtaLocation, Instance: s.AtaInstance, Value: v})
			}
		}
	}
	return
}

// regionRepresentative returns a concrete real value that lies in the
// region denoted by idx: an exact integer for an even index, the midpoint
// of the open unit interval for an odd index, or K+1 for the terminal
// "above K" index.
func regionRepresentative(idx, k int) float64 {
	if idx == 2*k+1 {
		return float64(k) + 1
	}
	if idx%2 == 0 {
		return float64(idx / 2)
	}
	return float64(idx/2) + 0.5
}

// IsStable reports whether every symbol has already reached the terminal
// 2K+1 ("above K forever") region index, i.e. further time successors are a
// no-op (spec §4.4: the chain has at most 2K+2 distinct words).
func (w *RegionWord) IsStable() bool {
	return w.isStable()
}

func (w *RegionWord) isStable() bool {
	for _, p := range w.Partitions {
		for _, s := range p {
			if s.Region != 2*w.K+1 {
				return false
			}
		}
	}
	return true
}

// Key returns a deterministic string encoding of the word's structural
// content, used by the search tree's content-addressed node store (spec §3
// "Lifecycle": canonical words are keyed by structural equality).
func (w *RegionWord) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "R|K=%d|", w.K)
	for _, p := range w.Partitions {
		cp := append(Partition{}, p...)
		sort.Slice(cp, func(i, j int) bool {
			if cp[i].Kind != cp[j].Kind {
				return cp[i].Kind < cp[j].Kind
			}
			if cp[i].Kind == PlantClockSymbol {
				if cp[i].PlantLocation != cp[j].PlantLocation {
					return cp[i].PlantLocation < cp[j].PlantLocation
				}
				if cp[i].Clock != cp[j].Clock {
					return cp[i].Clock < cp[j].Clock
				}
			} else {
				if cp[i].AtaLocation != cp[j].AtaLocation {
					return cp[i].AtaLocation < cp[j].AtaLocation
				}
				if cp[i].AtaInstance != cp[j].AtaInstance {
					return cp[i].AtaInstance < cp[j].AtaInstance
				}
			}
			return cp[i].Region < cp[j].Region
		})
		b.WriteByte('[')
		for _, s := range cp {
			if s.Kind == PlantClockSymbol {
				fmt.Fprintf(&b, "P(%s,%s,%d)", s.PlantLocation, s.Clock, s.Region)
			} else {
				fmt.Fprintf(&b, "A(%s,%d,%d)", s.AtaLocation, s.AtaInstance, s.Region)
			}
		}
		b.WriteByte(']')
	}
	return b.String()
}

func (w *RegionWord) allEven() bool {
	return len(w.Partitions) == 1 && w.Partitions[0][0].Region%2 == 0
}

// TimeSuccessor advances the region word by one step of the discrete region
// chain (spec §4.4). A word made of a single even partition has every index
// incremented in place. Otherwise the last non-maxed partition is
// incremented and re-merged into partition 0, and any symbol that reaches
// 2K+1 is split into the trailing max partition.
func (w *RegionWord) TimeSuccessor() (*RegionWord, error) {
	if w.isStable() {
		return w.Clone().(*RegionWord), nil
	}
	if w.allEven() {
		out := w.Clone().(*RegionWord)
		for i := range out.Partitions[0] {
			out.Partitions[0][i].Region++
		}
		if err := out.Validate(); err != nil {
			return nil, err
		}
		return out, nil
	}

	// Find the last partition that is not already the terminal max
	// partition (i.e. not all symbols at 2K+1).
	lastIdx := -1
	for i := len(w.Partitions) - 1; i >= 0; i-- {
		allMax := true
		for _, s := range w.Partitions[i] {
			if s.Region != 2*w.K+1 {
				allMax = false
				break
			}
		}
		if !allMax {
			lastIdx = i
			break
		}
	}
	if lastIdx == -1 {
		// everything maxed: already handled by isStable, but guard anyway.
		return w.Clone().(*RegionWord), nil
	}

	incremented := make(Partition, len(w.Partitions[lastIdx]))
	copy(incremented, w.Partitions[lastIdx])
	for i := range incremented {
		incremented[i].Region++
	}

	var newMax, merged0 Partition
	var zero0 Partition
	if w.Partitions[0][0].Region%2 == 0 {
		zero0 = w.Partitions[0]
	}
	for _, s := range incremented {
		if s.Region == 2*w.K+1 {
			newMax = append(newMax, s)
		} else {
			merged0 = append(merged0, s)
		}
	}
	merged0 = append(append(Partition{}, zero0...), merged0...)

	out := &RegionWord{K: w.K}
	startUnchanged := 1
	if len(zero0) == 0 {
		startUnchanged = 0
	}
	if len(merged0) > 0 {
		out.Partitions = append(out.Partitions, merged0)
	}
	for i := startUnchanged; i < lastIdx; i++ {
		out.Partitions = append(out.Partitions, append(Partition{}, w.Partitions[i]...))
	}
	// re-attach any partitions after lastIdx (the pre-existing max
	// partition, if lastIdx wasn't already the last slice index).
	var existingMax Partition
	for i := lastIdx + 1; i < len(w.Partitions); i++ {
		existingMax = append(existingMax, w.Partitions[i]...)
	}
	allMax := append(newMax, existingMax...)
	if len(allMax) > 0 {
		out.Partitions = append(out.Partitions, allMax)
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
