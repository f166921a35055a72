package detect

import (
	"sort"

	"als/internal/model"
	"als/internal/operator"
	"als/internal/serialize"
)

// detectComposite runs D4: repeated range (Multiply(Range(...), k)) and
// repeated alternation (Multiply(Toggle(...), k)), discovered by matching
// identical adjacent sub-sequences already produced by D1/D3. It never
// looks at raw values directly; it only merges existing Results.
func detectComposite(vs []model.Value, found []Result, opts Options) []Result {
	var composites []Result
	composites = append(composites, mergeAdjacent(found, PatternRange, func(a, b *operator.Op) bool {
		return a.RangeStart.Equal(b.RangeStart) && a.RangeEnd.Equal(b.RangeEnd) && a.RangeStep.Equal(b.RangeStep)
	})...)
	composites = append(composites, mergeAdjacent(found, PatternToggle, func(a, b *operator.Op) bool {
		return a.ToggleA.Equal(b.ToggleA) && a.ToggleB.Equal(b.ToggleB) && a.ToggleN == b.ToggleN
	})...)
	return composites
}

// mergeAdjacent finds maximal chains of adjacent Results of the given
// pattern whose operators satisfy same(a, b), and emits one Multiply
// Result per chain of length >= 2.
func mergeAdjacent(found []Result, pattern Pattern, same func(a, b *operator.Op) bool) []Result {
	var matching []Result
	for _, r := range found {
		if r.Pattern == pattern {
			matching = append(matching, r)
		}
	}
	if len(matching) < 2 {
		return nil
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i].Start < matching[j].Start })

	var out []Result
	i := 0
	for i < len(matching) {
		j := i + 1
		for j < len(matching) &&
			matching[j].Start == matching[j-1].Start+matching[j-1].Length &&
			same(matching[j].Op, matching[i].Op) {
			j++
		}
		chain := j - i
		if chain >= 2 {
			op, err := operator.NewMultiply(matching[i].Op, chain)
			if err == nil {
				start := matching[i].Start
				length := 0
				for k := i; k < j; k++ {
					length += matching[k].Length
				}
				out = append(out, Result{
					Pattern:     PatternComposite,
					Start:       start,
					Length:      length,
					Op:          op,
					EncodedSize: serialize.OpSize(op),
				})
			}
		}
		i = j
	}
	return out
}
