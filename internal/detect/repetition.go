package detect

import (
	"als/internal/kernel"
	"als/internal/model"
	"als/internal/operator"
	"als/internal/serialize"
)

// detectRepetition runs D2: a greedy run of identical values of length >=
// opts.MinPatternLength (default 3), for any column type, using the active
// Kernel's FindRuns capability. Identity uses Value.Equal, which is
// bitwise for floats to preserve precision. The data model itself floors
// the usable minimum at 2 (operator.NewMultiply rejects n < 2, since a
// "repeat" of a single value isn't a repetition); a configured
// MinPatternLength of 1 is honored as 2 rather than silently promoted to
// D1's unrelated floor of 3.
func detectRepetition(vs []model.Value, opts Options) []Result {
	minLen := opts.MinPatternLength
	if minLen < 2 {
		minLen = 2
	}
	spans := kernel.Active().FindRuns(vs, minLen)
	results := make([]Result, 0, len(spans))
	for _, sp := range spans {
		op, err := operator.NewMultiply(operator.Raw(vs[sp.Start]), sp.Len())
		if err != nil {
			continue
		}
		results = append(results, Result{
			Pattern:     PatternRepeat,
			Start:       sp.Start,
			Length:      sp.Len(),
			Op:          op,
			EncodedSize: serialize.OpSize(op),
		})
	}
	return results
}
