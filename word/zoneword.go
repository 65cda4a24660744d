package word

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/ticsynth/constraint"
	"github.com/katalvlaran/ticsynth/zone"
)

// AtaClock names a single DBM clock standing in for one ATA configuration
// entry's clock (spec §3: "the ATA's single clock is renamed per location,
// yielding one DBM clock per ATA configuration").
type AtaClock struct {
	Location string
	Instance int
}

// Name is the DBM clock name this AtaClock is addressed by.
func (a AtaClock) Name() string { return fmt.Sprintf("ata:%s#%d", a.Location, a.Instance) }

// ZoneWord is the zone-variant canonical AB-word: a single plant location,
// the plant's own clocks, the ATA locations present (each becoming a clock),
// and one shared DBM over their union (spec §3).
type ZoneWord struct {
	PlantLocation string
	PlantClocks   []string
	AtaClocks     []AtaClock
	DBM           *zone.DBM
}

var _ Word = (*ZoneWord)(nil)

func (w *ZoneWord) Variant() Variant { return ZoneVariant }

// CanonicalZone builds the initial zone word: an empty DBM over the union of
// plant and ATA clocks, conjuncting an exact or open-interval constraint per
// valuation, then normalizing (spec §4.3).
func CanonicalZone(plantLocation string, plantVals []ClockValuation, ataVals []AtaValuation, k int) (*ZoneWord, error) {
	if len(plantVals) == 0 {
		return nil, ErrNoPlantClocks
	}
	var clockNames []string
	var plantClocks []string
	for _, cv := range plantVals {
		clockNames = append(clockNames, cv.Clock)
		plantClocks = append(plantClocks, cv.Clock)
	}
	var ataClocks []AtaClock
	for _, av := range ataVals {
		ac := AtaClock{Location: av.Location, Instance: av.Instance}
		ataClocks = append(ataClocks, ac)
		clockNames = append(clockNames, ac.Name())
	}

	d := zone.NewUnconstrained(clockNames, k)
	for _, cv := range plantVals {
		var err error
		d, err = conjunctValuation(d, cv.Clock, cv.Value, k)
		if err != nil {
			return nil, err
		}
	}
	for _, av := range ataVals {
		ac := AtaClock{Location: av.Location, Instance: av.Instance}
		var err error
		d, err = conjunctValuation(d, ac.Name(), av.Value, k)
		if err != nil {
			return nil, err
		}
	}
	d.Normalize()

	w := &ZoneWord{PlantLocation: plantLocation, PlantClocks: plantClocks, AtaClocks: ataClocks, DBM: d}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

func conjunctValuation(d *zone.DBM, clock string, v float64, k int) (*zone.DBM, error) {
	intPart := int(v)
	if float64(intPart) == v {
		return d.Conjunct(clock, constraint.Atomic{Op: constraint.Eq, K: intPart})
	}
	d2, err := d.Conjunct(clock, constraint.Atomic{Op: constraint.Gt, K: intPart})
	if err != nil {
		return nil, err
	}
	return d2.Conjunct(clock, constraint.Atomic{Op: constraint.Lt, K: intPart + 1})
}

// Validate checks every named clock exists in the DBM and vice versa, and
// that the DBM is consistent (spec §3, §7).
func (w *ZoneWord) Validate() error {
	want := make(map[string]bool, len(w.PlantClocks)+len(w.AtaClocks))
	for _, c := range w.PlantClocks {
		want[c] = true
	}
	for _, ac := range w.AtaClocks {
		want[ac.Name()] = true
	}
	have := make(map[string]bool, len(w.DBM.Clocks()))
	for _, c := range w.DBM.Clocks() {
		have[c] = true
	}
	for c := range want {
		if !have[c] {
			return fmt.Errorf("%w: clock %q missing from DBM", ErrClockMismatch, c)
		}
	}
	for c := range have {
		if !want[c] {
			return fmt.Errorf("%w: DBM clock %q not named by word", ErrClockMismatch, c)
		}
	}
	if !w.DBM.Consistent() {
		return fmt.Errorf("%w: %s", ErrInvalidWord, zone.ErrInconsistent)
	}
	return nil
}

// RegA drops every ATA clock from the DBM via projection, keeping only the
// plant's location and clocks (spec §4.7).
func (w *ZoneWord) RegA() Word {
	proj, err := w.DBM.Project(w.PlantClocks)
	if err != nil {
		// plant clocks are always a subset of the DBM's clocks by
		// construction; this cannot fail in practice.
		proj = w.DBM.Clone()
	}
	return &ZoneWord{PlantLocation: w.PlantLocation, PlantClocks: append([]string{}, w.PlantClocks...), DBM: proj}
}

// Equal reports whether both zone words share a plant location and an
// identical (canonical) DBM over the same clocks.
func (w *ZoneWord) Equal(other Word) bool {
	o, ok := other.(*ZoneWord)
	if !ok || o.PlantLocation != w.PlantLocation {
		return false
	}
	return w.DBM.Equal(o.DBM)
}

// Clone returns an independent deep copy.
func (w *ZoneWord) Clone() Word {
	return &ZoneWord{
		PlantLocation: w.PlantLocation,
		PlantClocks:   append([]string{}, w.PlantClocks...),
		AtaClocks:     append([]AtaClock{}, w.AtaClocks...),
		DBM:           w.DBM.Clone(),
	}
}

// Decode recovers a representative plant location, clock valuations, and
// ATA valuations from the zone word: each clock's lower zone-slice bound,
// moved half a unit up when that bound is strict, is a concrete point inside
// its zone (spec §8 property 6's "zone and region encodings agree at the
// language level" relies on any interior point agreeing on every guard the
// zone was built from).
func (w *ZoneWord) Decode() (plantLocation string, plantVals []ClockValuation, ataVals []AtaValuation) {
	sliceRepresentative := func(s zone.Slice) float64 {
		if s.LoOpen {
			return float64(s.Lo) + 0.5
		}
		return float64(s.Lo)
	}
	plantLocation = w.PlantLocation
	for _, c := range w.PlantClocks {
		s, err := w.DBM.ZoneSlice(c)
		if err != nil {
			continue
		}
		plantVals = append(plantVals, ClockValuation{Clock: c, Value: sliceRepresentative(s)})
	}
	for _, ac := range w.AtaClocks {
		s, err := w.DBM.ZoneSlice(ac.Name())
		if err != nil {
			continue
		}
		ataVals = append(ataVals, AtaValuation{Location: ac.Location, Instance: ac.Instance, Value: sliceRepresentative(s)})
	}
	return
}

// TimeSuccessor delays the zone word's shared DBM and renormalizes (spec
// §4.4 zone variant): "the zone layer computes all successors by direct DBM
// delay without enumerating a chain".
func (w *ZoneWord) TimeSuccessor() (*ZoneWord, error) {
	nd, err := w.DBM.TimeSuccessor(0)
	if err != nil {
		return nil, err
	}
	out := w.Clone().(*ZoneWord)
	out.DBM = nd
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Key returns a deterministic string encoding of the zone word's structural
// content, used by the search tree's content-addressed node store.
func (w *ZoneWord) Key() string {
	return fmt.Sprintf("Z|loc=%s|%s", w.PlantLocation, w.DBM.Key())
}

// ToRegionWord views a zone word as a region-style word for display and
// cross-mode compatibility (spec §3): group clocks by equal zone slices,
// sort groups by lower bound, emit partitions of ordinary region symbols
// whose Region is the display-only index from zoneSliceRegionIndex.
func (w *ZoneWord) ToRegionWord() (*RegionWord, error) {
	type entry struct {
		name string
		zone.Slice
		isAta bool
		ac    AtaClock
	}
	var entries []entry
	for _, c := range w.PlantClocks {
		s, err := w.DBM.ZoneSlice(c)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{name: c, Slice: s})
	}
	for _, ac := range w.AtaClocks {
		s, err := w.DBM.ZoneSlice(ac.Name())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{name: ac.Name(), Slice: s, isAta: true, ac: ac})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Lo != entries[j].Lo {
			return entries[i].Lo < entries[j].Lo
		}
		return entries[i].LoOpen == false && entries[j].LoOpen == true
	})

	groups := make(map[string]*Partition)
	var order []string
	k := w.DBM.K()
	for _, e := range entries {
		idx := zoneSliceRegionIndex(e.Slice, k)
		key := fmt.Sprintf("%d:%d:%v", e.Lo, e.Hi, e.LoOpen)
		p, ok := groups[key]
		if !ok {
			p = &Partition{}
			groups[key] = p
			order = append(order, key)
		}
		var sym RegionSymbol
		if e.isAta {
			sym = RegionSymbol{Kind: AtaLocationSymbol, AtaLocation: e.ac.Location, AtaInstance: e.ac.Instance, Region: idx}
		} else {
			sym = RegionSymbol{Kind: PlantClockSymbol, PlantLocation: w.PlantLocation, Clock: e.name, Region: idx}
		}
		*p = append(*p, sym)
	}

	out := &RegionWord{K: k}
	for _, key := range order {
		out.Partitions = append(out.Partitions, *groups[key])
	}
	return out, nil
}

// zoneSliceRegionIndex derives a display-only region index from a zone
// slice: exact point -> even index; open interval -> odd index at its
// floor; above K -> 2K+1.
func zoneSliceRegionIndex(s zone.Slice, k int) int {
	if s.Lo >= k && s.HiOpen == false && s.Hi >= k {
		if s.Lo == s.Hi {
			return 2 * k
		}
	}
	if s.Lo == s.Hi && !s.LoOpen && !s.HiOpen {
		if s.Lo >= k {
			return 2 * k
		}
		return 2 * s.Lo
	}
	if s.Lo >= k {
		return 2*k + 1
	}
	return 2*s.Lo + 1
}
