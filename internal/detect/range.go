package detect

import (
	"math"

	"als/internal/model"
	"als/internal/operator"
	"als/internal/serialize"
)

// floatEpsilonScale is the platform epsilon scale factor used for float step
// equality: 2^-52 * max(|a|, |b|).
const floatEpsilonScale = 1.0 / (1 << 52)

func floatEqual(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= floatEpsilonScale*scale
}

// detectRanges runs D1: a greedy left-to-right scan extending a run while
// the step between adjacent cells stays fixed and nonzero, for numeric
// columns only, emitting Range(start, end, step) once a run covers at
// least 3 cells.
func detectRanges(vs []model.Value, colType model.ColumnType, opts Options) []Result {
	if colType != model.TypeInteger && colType != model.TypeFloat {
		return nil
	}
	var results []Result
	i := 0
	for i < len(vs) {
		if vs[i].IsNull() {
			i++
			continue
		}
		j := i + 1
		var step model.Value
		haveStep := false
		for j < len(vs) && !vs[j].IsNull() {
			s, ok := stepBetween(vs[j-1], vs[j])
			if !ok {
				break
			}
			if !haveStep {
				step = s
				haveStep = true
			} else if !stepEqual(step, s) {
				break
			}
			j++
		}
		runLen := j - i
		if haveStep && runLen >= 3 {
			op, err := operator.NewRange(vs[i], vs[j-1], step, opts.MaxRangeExpansion)
			if err == nil {
				results = append(results, Result{
					Pattern:     PatternRange,
					Start:       i,
					Length:      runLen,
					Op:          op,
					EncodedSize: serialize.OpSize(op),
				})
			}
		}
		i = j
	}
	return results
}

func stepBetween(a, b model.Value) (model.Value, bool) {
	if a.Kind == model.KindInteger && b.Kind == model.KindInteger {
		diff := b.Int - a.Int
		if diff == 0 {
			return model.Value{}, false
		}
		return model.Integer(diff), true
	}
	if (a.Kind == model.KindInteger || a.Kind == model.KindFloat) &&
		(b.Kind == model.KindInteger || b.Kind == model.KindFloat) {
		af := toF(a)
		bf := toF(b)
		diff := bf - af
		if diff == 0 {
			return model.Value{}, false
		}
		return model.Float(diff), true
	}
	return model.Value{}, false
}

func toF(v model.Value) float64 {
	if v.Kind == model.KindInteger {
		return float64(v.Int)
	}
	return v.Flt
}

func stepEqual(a, b model.Value) bool {
	if a.Kind == model.KindInteger && b.Kind == model.KindInteger {
		return a.Int == b.Int
	}
	return floatEqual(toF(a), toF(b))
}
