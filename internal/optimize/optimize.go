// Package optimize implements the cost-based cover selection (C5): a
// dynamic-programming pass choosing a disjoint partition of a column into
// detector candidates (plus an implicit per-cell Raw fallback) that
// minimizes total encoded byte length.
package optimize

import (
	"als/internal/detect"
	"als/internal/model"
	"als/internal/operator"
	"als/internal/serialize"
)

// rawOrdinal is the tie-break ordinal assigned to the implicit per-cell Raw
// candidate. It is deliberately higher (lower priority) than every
// detector's ordinal (detect.PatternComposite), so that among equally-cheap
// covers a detected pattern is preferred over falling back to Raw.
const rawOrdinal = int(detect.PatternComposite) + 1

// candidate is an internal DP edge: a span [Start, Start+Length) coverable
// by Op at cost EncodedSize, carrying the pattern ordinal for tie-breaks.
type candidate struct {
	start, length int
	op            *operator.Op
	size          int
	ordinal       int
}

// Cover is the chosen disjoint partition of a column: operators in
// left-to-right order together with the total byte cost of the stream
// (operator sizes plus inter-operator separators, no trailing separator).
type Cover struct {
	Ops       []*operator.Op
	TotalSize int
}

// Optimize runs the DP cover-selection pass over a column's values given
// the detection results already found for it.
func Optimize(vs []model.Value, results []detect.Result) Cover {
	n := len(vs)
	if n == 0 {
		return Cover{}
	}

	// candidatesEndingAt[i] holds every candidate covering some
	// [j, i) ending exactly at i.
	candidatesEndingAt := make([][]candidate, n+1)
	for _, r := range results {
		end := r.Start + r.Length
		if end < 1 || end > n {
			continue
		}
		candidatesEndingAt[end] = append(candidatesEndingAt[end], candidate{
			start:   r.Start,
			length:  r.Length,
			op:      r.Op,
			size:    r.EncodedSize,
			ordinal: int(r.Pattern),
		})
	}

	const sep = 1 // "," separator charged per chosen operator, trimmed once at the end.

	dp := make([]int, n+1)
	choice := make([]candidate, n+1) // choice[i] is the winning candidate ending at i
	present := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		// Implicit per-cell Raw fallback, always available.
		best := candidate{
			start:   i - 1,
			length:  1,
			op:      operator.Raw(vs[i-1]),
			size:    serialize.OpSize(operator.Raw(vs[i-1])),
			ordinal: rawOrdinal,
		}
		bestCost := dp[i-1] + best.size + sep

		for _, c := range candidatesEndingAt[i] {
			cost := dp[c.start] + c.size + sep
			if cost < bestCost || (cost == bestCost && betterTie(c, best)) {
				bestCost = cost
				best = c
			}
		}
		dp[i] = bestCost
		choice[i] = best
		present[i] = true
	}

	// Reconstruct the cover by walking backpointers from n to 0.
	var ops []*operator.Op
	for i := n; i > 0; {
		c := choice[i]
		ops = append(ops, c.op)
		i = c.start
	}
	for l, r := 0, len(ops)-1; l < r; l, r = l+1, r-1 {
		ops[l], ops[r] = ops[r], ops[l]
	}

	total := dp[n]
	if total > 0 {
		total-- // no trailing separator after the last operator
	}
	return Cover{Ops: ops, TotalSize: total}
}

// betterTie reports whether candidate a should win a tie against the
// current best b: lower pattern ordinal first, then the longer span.
func betterTie(a, b candidate) bool {
	if a.ordinal != b.ordinal {
		return a.ordinal < b.ordinal
	}
	return a.length > b.length
}
