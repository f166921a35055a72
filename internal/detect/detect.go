// Package detect implements the per-column pattern detectors (C4):
// sequential range (D1), repetition (D2), alternation/toggle (D3), and
// composite repeated-range/repeated-toggle (D4). Detectors are pure and
// independent across columns.
package detect

import (
	"als/internal/model"
	"als/internal/operator"
)

// Result is one DetectionResult: a candidate operator covering
// [Start, Start+Length) cells, plus the predicted encoded byte length used
// by the optimizer's cost comparison.
type Result struct {
	Pattern     Pattern
	Start       int
	Length      int
	Op          *operator.Op
	EncodedSize int
}

// Pattern identifies which detector produced a Result. Ordinal order is
// significant: the optimizer's tie-break rule favors lower ordinals
// (D1 < D3 < D2 < D4).
type Pattern uint8

const (
	PatternRange Pattern = iota // D1
	PatternToggle               // D3
	PatternRepeat                // D2
	PatternComposite              // D4
)

// Options bounds detector behavior.
type Options struct {
	MinPatternLength int
	MaxRangeExpansion int64
}

// DefaultOptions returns the defaults used when no configuration overrides them.
func DefaultOptions() Options {
	return Options{MinPatternLength: 3, MaxRangeExpansion: 1_000_000_000}
}

// Detect runs D1-D4 over a single column and returns every candidate found.
// Detection never fails: an undetected pattern simply yields no Result for
// that span, falling back to Raw via the optimizer.
func Detect(vs []model.Value, colType model.ColumnType, opts Options) []Result {
	var results []Result
	results = append(results, detectRanges(vs, colType, opts)...)
	results = append(results, detectRepetition(vs, opts)...)
	toggles := detectAlternation(vs, opts)
	results = append(results, toggles...)
	results = append(results, detectComposite(vs, results, opts)...)
	return results
}
