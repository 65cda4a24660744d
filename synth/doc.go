// Package synth is the top-level entry point: it wires the region/zone
// canonical word, the successor relation, the search scheduler, labeling,
// and controller extraction into the two operations spec.md §1 asks for --
// Synthesize (decide realizability and emit a controller TA) and Verify
// (re-run the search on a synchronous product to confirm a controller is
// correct, spec §8 properties 6 and 9).
//
// Grounded on graph/conversions.go's "build one graph representation from
// another" pattern for the synchronous-product construction Verify needs,
// and on the original C++ search/verify_ta_controller.h's create_product
// strategy recovered from original_source/ (see DESIGN.md).
package synth
