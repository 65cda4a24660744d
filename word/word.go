// Package word implements the canonical AB-word: the symbolic joint state of
// a plant timed automaton (A) and an alternating timed automaton (B),
// normalized so that semantically equivalent concrete states compare equal.
//
// Two variants are provided: a region encoding (RegionWord, a partitioned
// list of region symbols ordered by fractional part) and a more compact
// zone encoding (ZoneWord, a single shared DBM). Both satisfy the Word
// interface so the rest of the search machinery (succ, tree, label,
// controller) can stay variant-agnostic wherever possible, per the "sum
// type with a common trait" design in spec.md §9.
package word

import (
	"errors"
	"fmt"
)

// Sentinel errors for the word package.
var (
	// ErrNoPlantClocks indicates a plant configuration with zero clocks was
	// passed to CanonicalRegion or CanonicalZone; spec.md §4.3 requires
	// rejecting this.
	ErrNoPlantClocks = errors.New("word: plant has no clocks")

	// ErrInvalidWord is raised by RegionWord.Validate for any of: empty
	// word, an empty partition, mixed parity within a partition, an
	// even-indexed partition other than the 0th, or an index exceeding
	// 2K+1; and by ZoneWord.Validate for an inconsistent DBM. The returned
	// error wraps it with a short description of the violated invariant;
	// the offending word itself is not attached.
	ErrInvalidWord = errors.New("word: invalid canonical word")

	// ErrClockMismatch indicates a ZoneWord's named clocks do not exactly
	// match its DBM's clock set.
	ErrClockMismatch = errors.New("word: clock/DBM mismatch")
)

// Variant distinguishes the two AB-word encodings.
type Variant int

const (
	RegionVariant Variant = iota
	ZoneVariant
)

func (v Variant) String() string {
	if v == ZoneVariant {
		return "zone"
	}
	return "region"
}

// Word is implemented by *RegionWord and *ZoneWord.
type Word interface {
	// Variant reports which encoding this word uses.
	Variant() Variant
	// Validate checks every structural invariant for this word.
	Validate() error
	// RegA projects the word onto its plant-only components, dropping all
	// ATA information (spec §4.7 "reg_a projection").
	RegA() Word
	// Equal reports structural equality with another word of the same
	// variant; words of different variants are never equal.
	Equal(other Word) bool
	// Clone returns an independent deep copy.
	Clone() Word
	// Key returns a deterministic string encoding of the word's structural
	// content, used to key the search tree's content-addressed node store.
	Key() string
}

// ClockValuation is a named clock's current real-valued reading, used only
// to construct the initial canonical word (spec §4.3); clock c belongs to
// the plant.
type ClockValuation struct {
	Clock string
	Value float64
}

// AtaValuation is one (location, instance, clock value) triple from an ATA
// configuration. Instance disambiguates multiple concurrent copies of the
// same ATA location with distinct clock valuations (a set of (location,
// valuation) pairs, per spec §3).
type AtaValuation struct {
	Location string
	Instance int
	Value    float64
}
