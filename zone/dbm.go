// Package zone implements the difference-bound matrix (DBM) engine used by
// the zone variant of the canonical AB-word: delay, reset, conjunction,
// Floyd-Warshall normalization, clock projection, zone-slice readback and the
// integer time-increment between two DBMs.
//
// The implementation generalizes lvlath's matrix package: the same row-major
// flat-buffer layout and the same k->i->j Floyd-Warshall closure order from
// matrix/impl_dense.go and matrix/impl_floydwarshall.go, but over (bound,
// strict) difference pairs instead of float64 distances, and over named
// clocks instead of numeric vertex indices.
package zone

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/katalvlaran/ticsynth/constraint"
)

// clamp restricts v to [lo, hi], generalized over any ordered scalar so the
// same helper serves the integer endpoint clamping ZoneSlice needs without
// pinning it to a concrete type.
func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sentinel errors for the zone package.
var (
	// ErrUnknownClock indicates an operation referenced a clock not present
	// in the DBM.
	ErrUnknownClock = errors.New("zone: unknown clock")

	// ErrDuplicateClock indicates AddClock was called with a clock that
	// already exists.
	ErrDuplicateClock = errors.New("zone: clock already present")

	// ErrNegativeDelta indicates a request for a time successor (or an
	// exact shift) with a negative delta.
	ErrNegativeDelta = errors.New("zone: negative time delta")

	// ErrInconsistent indicates an operation was attempted on (or produced)
	// an inconsistent DBM; inconsistency itself is not an error during
	// successor computation (the successor is silently discarded there),
	// but operations that require a consistent DBM as a precondition return
	// this sentinel.
	ErrInconsistent = errors.New("zone: inconsistent DBM")
)

// infVal represents "no explicit bound" (a difference unconstrained above).
// Chosen large enough that repeated Floyd-Warshall additions never overflow
// a machine int, but finite so comparisons stay branch-free.
const infVal = 1 << 30

// Bound encodes a difference constraint c_i - c_j ⋈ Val, strict meaning '<'
// and non-strict meaning '<='.
type Bound struct {
	Val    int
	Strict bool
}

// Inf is the "no constraint" bound.
var Inf = Bound{Val: infVal, Strict: true}

// isInf reports whether b carries no real information.
func (b Bound) isInf() bool { return b.Val >= infVal }

// less reports whether a is a strictly tighter bound than b (smaller Val, or
// equal Val with a strict and b non-strict).
func (a Bound) less(b Bound) bool {
	if a.Val != b.Val {
		return a.Val < b.Val
	}
	return a.Strict && !b.Strict
}

// min returns the tighter of a and b.
func minBound(a, b Bound) Bound {
	if b.less(a) {
		return b
	}
	return a
}

// add saturates at Inf to avoid overflow through repeated closures.
func addBound(a, b Bound) Bound {
	if a.isInf() || b.isInf() {
		return Inf
	}
	return Bound{Val: a.Val + b.Val, Strict: a.Strict || b.Strict}
}

// DBM is a difference-bound matrix over {0, c_1, ..., c_n}. Clock "0" is
// implicit at index 0 and is never part of Clocks(). Entries are stored
// row-major, consistent is tracked lazily and refreshed by Normalize.
type DBM struct {
	index      map[string]int // clock name -> row/col index (>=1)
	clocks     []string       // index-1 -> clock name
	data       []Bound        // (n)*(n) row-major, n = len(clocks)+1
	k          int            // largest constant K
	consistent bool
}

// New returns a DBM over the given clocks with every clock pinned to zero
// (the canonical initial configuration: all clocks just reset).
func New(clocks []string, k int) *DBM {
	d := newEmpty(clocks, k)
	for i := range d.clocks {
		idx := i + 1
		d.set(idx, 0, Bound{0, false})
		d.set(0, idx, Bound{0, false})
	}
	d.Normalize()
	return d
}

// NewUnconstrained returns a DBM over the given clocks with only the
// baseline x>=0 constraint on each clock (no upper bounds, no relation
// between distinct clocks).
func NewUnconstrained(clocks []string, k int) *DBM {
	d := newEmpty(clocks, k)
	return d
}

func newEmpty(clocks []string, k int) *DBM {
	cp := make([]string, len(clocks))
	copy(cp, clocks)
	sort.Strings(cp)
	n := len(cp) + 1
	data := make([]Bound, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				data[i*n+j] = Bound{0, false}
			} else {
				data[i*n+j] = Inf
			}
		}
	}
	idx := make(map[string]int, len(cp))
	for i, c := range cp {
		idx[c] = i + 1
	}
	return &DBM{index: idx, clocks: cp, data: data, k: k, consistent: true}
}

func (d *DBM) n() int { return len(d.clocks) + 1 }

func (d *DBM) at(i, j int) Bound { return d.data[i*d.n()+j] }

func (d *DBM) set(i, j int, b Bound) { d.data[i*d.n()+j] = b }

// Clocks returns the DBM's clock names in canonical (sorted) order.
func (d *DBM) Clocks() []string {
	out := make([]string, len(d.clocks))
	copy(out, d.clocks)
	return out
}

// K returns the largest constant this DBM clamps against.
func (d *DBM) K() int { return d.k }

// Consistent reports whether the DBM's last normalization found no negative
// diagonal cycle.
func (d *DBM) Consistent() bool { return d.consistent }

func (d *DBM) clockIndex(c string) (int, error) {
	i, ok := d.index[c]
	if !ok {
		return 0, fmt.Errorf("zone: clock %q: %w", c, ErrUnknownClock)
	}
	return i, nil
}

// Clone returns a deep, independent copy of d.
func (d *DBM) Clone() *DBM {
	out := &DBM{
		index:      make(map[string]int, len(d.index)),
		clocks:     make([]string, len(d.clocks)),
		data:       make([]Bound, len(d.data)),
		k:          d.k,
		consistent: d.consistent,
	}
	copy(out.clocks, d.clocks)
	for k, v := range d.index {
		out.index[k] = v
	}
	copy(out.data, d.data)
	return out
}

// Delay advances time: removes every upper bound of each clock against the
// zero clock (spec §4.2 "delay"), then renormalizes.
func (d *DBM) Delay() *DBM {
	out := d.Clone()
	n := out.n()
	for i := 1; i < n; i++ {
		out.set(i, 0, Inf)
	}
	out.Normalize()
	return out
}

// Reset sets clock c to zero relative to every other clock (spec §4.2
// "reset"): row 0 supplies the new (0,c)/(c,0) bounds, then every other
// clock j is re-derived via (c,j) = (0,j)+... i.e. c inherits clock j's
// distance from the zero clock.
func (d *DBM) Reset(c string) (*DBM, error) {
	ci, err := d.clockIndex(c)
	if err != nil {
		return nil, err
	}
	out := d.Clone()
	n := out.n()
	out.set(ci, 0, Bound{0, false})
	out.set(0, ci, Bound{0, false})
	for j := 0; j < n; j++ {
		if j == ci || j == 0 {
			continue
		}
		out.set(ci, j, out.at(0, j))
		out.set(j, ci, out.at(j, 0))
	}
	out.Normalize()
	return out, nil
}

// Conjunct tightens the bound on clock c against the zero clock to reflect
// the atomic constraint c ⋈ k, then renormalizes. It never returns an error
// for an inconsistent result: call Consistent() after to check.
func (d *DBM) Conjunct(c string, a constraint.Atomic) (*DBM, error) {
	ci, err := d.clockIndex(c)
	if err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("zone: conjunct %s: %w", c, err)
	}
	out := d.Clone()
	switch a.Op {
	case constraint.Lt:
		out.set(ci, 0, minBound(out.at(ci, 0), Bound{a.K, true}))
	case constraint.Le:
		out.set(ci, 0, minBound(out.at(ci, 0), Bound{a.K, false}))
	case constraint.Eq:
		out.set(ci, 0, minBound(out.at(ci, 0), Bound{a.K, false}))
		out.set(0, ci, minBound(out.at(0, ci), Bound{-a.K, false}))
	case constraint.Ge:
		out.set(0, ci, minBound(out.at(0, ci), Bound{-a.K, false}))
	case constraint.Gt:
		out.set(0, ci, minBound(out.at(0, ci), Bound{-a.K, true}))
	}
	out.Normalize()
	return out, nil
}

// ConjunctDiff tightens the direct difference c_i - c_j ⋈ k edge.
func (d *DBM) ConjunctDiff(ci, cj string, a constraint.Atomic) (*DBM, error) {
	i, err := d.clockIndex(ci)
	if err != nil {
		return nil, err
	}
	j, err := d.clockIndex(cj)
	if err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("zone: conjunct-diff %s-%s: %w", ci, cj, err)
	}
	out := d.Clone()
	switch a.Op {
	case constraint.Lt:
		out.set(i, j, minBound(out.at(i, j), Bound{a.K, true}))
	case constraint.Le:
		out.set(i, j, minBound(out.at(i, j), Bound{a.K, false}))
	case constraint.Eq:
		out.set(i, j, minBound(out.at(i, j), Bound{a.K, false}))
		out.set(j, i, minBound(out.at(j, i), Bound{-a.K, false}))
	case constraint.Ge:
		out.set(j, i, minBound(out.at(j, i), Bound{-a.K, false}))
	case constraint.Gt:
		out.set(j, i, minBound(out.at(j, i), Bound{-a.K, true}))
	}
	out.Normalize()
	return out, nil
}

// Normalize runs Floyd-Warshall closure in place (k->i->j order, mirroring
// matrix/impl_floydwarshall.go) and marks the DBM inconsistent iff any
// diagonal entry becomes negative.
func (d *DBM) Normalize() {
	n := d.n()
	data := d.data
	for k := 0; k < n; k++ {
		baseK := k * n
		for i := 0; i < n; i++ {
			ik := data[i*n+k]
			if ik.isInf() {
				continue
			}
			baseI := i * n
			for j := 0; j < n; j++ {
				kj := data[baseK+j]
				if kj.isInf() {
					continue
				}
				cand := addBound(ik, kj)
				if cand.less(data[baseI+j]) {
					data[baseI+j] = cand
				}
			}
		}
	}
	consistent := true
	for i := 0; i < n; i++ {
		diag := data[i*n+i]
		if diag.Val < 0 || (diag.Val == 0 && diag.Strict) {
			consistent = false
			break
		}
	}
	d.consistent = consistent
}

// AddClock grows the DBM by one clock, unconstrained except for the x>=0
// baseline every clock carries implicitly.
func (d *DBM) AddClock(c string) (*DBM, error) {
	if _, ok := d.index[c]; ok {
		return nil, fmt.Errorf("zone: %w: %s", ErrDuplicateClock, c)
	}
	clocks := append(append([]string{}, d.clocks...), c)
	out := newEmpty(clocks, d.k)
	// copy over existing entries by clock name, not by raw index (the
	// clock list was re-sorted by newEmpty).
	for _, a := range append([]string{"0"}, d.clocks...) {
		for _, b := range append([]string{"0"}, d.clocks...) {
			ai := 0
			bi := 0
			if a != "0" {
				ai = d.index[a]
			}
			if b != "0" {
				bi = d.index[b]
			}
			oa := 0
			ob := 0
			if a != "0" {
				oa = out.index[a]
			}
			if b != "0" {
				ob = out.index[b]
			}
			out.set(oa, ob, d.at(ai, bi))
		}
	}
	out.consistent = d.consistent
	return out, nil
}

// Project returns a new DBM restricted to the given clock subset (plus the
// implicit zero clock). The projection of a closed DBM stays closed, so no
// renormalization is required (spec §4.2 "project").
func (d *DBM) Project(keep []string) (*DBM, error) {
	for _, c := range keep {
		if _, err := d.clockIndex(c); err != nil {
			return nil, err
		}
	}
	out := newEmpty(keep, d.k)
	for _, a := range append([]string{"0"}, keep...) {
		for _, b := range append([]string{"0"}, keep...) {
			ai, oa := 0, 0
			bi, ob := 0, 0
			if a != "0" {
				ai, oa = d.index[a], out.index[a]
			}
			if b != "0" {
				bi, ob = d.index[b], out.index[b]
			}
			out.set(oa, ob, d.at(ai, bi))
		}
	}
	out.consistent = d.consistent
	return out, nil
}

// Slice is the half-open zone interval of a single clock read back from the
// DBM against the zero clock: (lo, hi, loOpen, hiOpen), clamped to [0, K].
type Slice struct {
	Lo, Hi         int
	LoOpen, HiOpen bool
}

// ZoneSlice reads back clock c's interval against the zero clock.
func (d *DBM) ZoneSlice(c string) (Slice, error) {
	ci, err := d.clockIndex(c)
	if err != nil {
		return Slice{}, err
	}
	upper := d.at(ci, 0) // c - 0 <= upper
	lower := d.at(0, ci) // 0 - c <= lower  => c >= -lower
	lo := clamp(-lower.Val, 0, d.k)
	hi := d.k
	hiOpen := false
	if !upper.isInf() {
		hi = upper.Val
		hiOpen = upper.Strict
	}
	if clamped := hi > d.k; clamped {
		hiOpen = false
	}
	hi = clamp(hi, 0, d.k)
	return Slice{Lo: lo, Hi: hi, LoOpen: lower.Strict, HiOpen: hiOpen}, nil
}

// Key returns a deterministic string encoding of the DBM's canonical form,
// clocks sorted by name so two structurally-equal DBMs built in different
// clock-insertion orders still hash identically.
func (d *DBM) Key() string {
	order := append([]string{}, d.clocks...)
	sort.Strings(order)
	var b strings.Builder
	fmt.Fprintf(&b, "k=%d;", d.k)
	for _, c := range order {
		b.WriteString(c)
		b.WriteByte(',')
	}
	b.WriteByte(';')
	all := append([]string{"0"}, order...)
	for _, a := range all {
		ai := 0
		if a != "0" {
			ai = d.index[a]
		}
		for _, c := range all {
			ci := 0
			if c != "0" {
				ci = d.index[c]
			}
			bnd := d.at(ai, ci)
			fmt.Fprintf(&b, "%d:%v|", bnd.Val, bnd.Strict)
		}
	}
	return b.String()
}

// Equal reports whether d and other have the same clock set and identical
// canonical (normalized) bounds.
func (d *DBM) Equal(other *DBM) bool {
	if len(d.clocks) != len(other.clocks) {
		return false
	}
	for i, c := range d.clocks {
		if other.clocks[i] != c {
			return false
		}
	}
	for i := range d.data {
		if d.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// shiftExact translates every clock's value by exactly delta time units: the
// upper bound against zero grows by delta, the lower bound (stored as -c
// against zero) shrinks by delta, all inter-clock differences are preserved
// exactly (uniform time shift changes no clock difference).
func (d *DBM) shiftExact(delta int) *DBM {
	out := d.Clone()
	n := out.n()
	for i := 1; i < n; i++ {
		up := out.at(i, 0)
		if !up.isInf() {
			out.set(i, 0, Bound{up.Val + delta, up.Strict})
		}
		lo := out.at(0, i)
		if !lo.isInf() {
			out.set(0, i, Bound{lo.Val - delta, lo.Strict})
		}
	}
	out.Normalize()
	return out
}

// Increment computes the smallest integer delay d >= 0 such that shifting d
// by exactly d time units reproduces other's canonical form, searching
// d in [0, 2K+2] (the region-chain length bound from spec §4.4). Returns
// (0, false) if no such d exists in range, matching the Open-Questions
// decision in DESIGN.md: an exact, bounded scan rather than an undocumented
// binary search.
func (d *DBM) Increment(other *DBM) (int, bool) {
	bound := 2*d.k + 2
	for delta := 0; delta <= bound; delta++ {
		if d.shiftExact(delta).Equal(other) {
			return delta, true
		}
	}
	return 0, false
}

// TimeSuccessor computes the zone word's time successor: delay the DBM and
// renormalize (spec §4.4 zone variant). Delta 0 delays without bound (the
// zone layer computes the full future in one step rather than enumerating a
// chain); a positive delta shifts every clock by exactly delta time units; a
// negative delta is rejected.
func (d *DBM) TimeSuccessor(delta int) (*DBM, error) {
	if delta < 0 {
		return nil, ErrNegativeDelta
	}
	if delta == 0 {
		return d.Delay(), nil
	}
	return d.shiftExact(delta), nil
}
