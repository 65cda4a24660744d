// Package ticsynth synthesizes a controller timed automaton realizing a
// metric-temporal-logic specification against a plant timed automaton, via
// alternating-timed-automaton translation and a concurrent best-first search
// over the canonical region/zone word graph.
//
// Subpackages:
//
//	constraint/ — clock-constraint atoms & satisfiability
//	zone/       — difference-bound-matrix engine
//	word/       — canonical region/zone AB-words
//	ta/         — plant TA and ATA external interfaces
//	succ/       — symbol & time successor relation
//	tree/       — search tree, scheduler, domination, labeling
//	heuristic/  — pluggable node-priority functions
//	controller/ — controller TA extraction from a TOP-labeled tree
//	synth/      — top-level Synthesize/Verify entry points
package ticsynth
