package detect

import (
	"als/internal/kernel"
	"als/internal/model"
	"als/internal/operator"
	"als/internal/serialize"
)

// detectAlternation runs D3: detects a,b,a,b,... with a != b, length >= 4,
// truncating at the first break to an even length, for any column type.
func detectAlternation(vs []model.Value, opts Options) []Result {
	minLen := 4
	spans := kernel.Active().FindAlternations(vs, minLen)
	results := make([]Result, 0, len(spans))
	for _, sp := range spans {
		op, err := operator.NewToggle(vs[sp.Start], vs[sp.Start+1], sp.Len())
		if err != nil {
			continue
		}
		results = append(results, Result{
			Pattern:     PatternToggle,
			Start:       sp.Start,
			Length:      sp.Len(),
			Op:          op,
			EncodedSize: serialize.OpSize(op),
		})
	}
	return results
}
