package kernel

import "als/internal/model"

// scalarKernel is the baseline, always-available Kernel implementation: a
// plain sequential scan with no vectorization assumptions. Runtime CPU
// feature detection for alternative kernels would register another Kernel
// and rely on the same interface; none is needed to satisfy this
// repository's scope, so scalar is the only implementation shipped.
type scalarKernel struct{}

func (scalarKernel) Name() string { return "scalar" }

func (scalarKernel) ExpandRange(start, step model.Value, count int) []model.Value {
	out := make([]model.Value, count)
	if start.Kind == model.KindInteger {
		s, st := start.Int, step.Int
		for i := 0; i < count; i++ {
			out[i] = model.Integer(s + int64(i)*st)
		}
		return out
	}
	var s, st float64
	if start.Kind == model.KindFloat {
		s = start.Flt
	} else {
		s = float64(start.Int)
	}
	if step.Kind == model.KindFloat {
		st = step.Flt
	} else {
		st = float64(step.Int)
	}
	for i := 0; i < count; i++ {
		out[i] = model.Float(s + float64(i)*st)
	}
	return out
}

func (scalarKernel) FindRuns(vs []model.Value, minLen int) []Span {
	var spans []Span
	i := 0
	for i < len(vs) {
		j := i + 1
		for j < len(vs) && vs[j].Equal(vs[i]) {
			j++
		}
		if j-i >= minLen {
			spans = append(spans, Span{i, j})
		}
		i = j
	}
	return spans
}

func (scalarKernel) FindAlternations(vs []model.Value, minLen int) []Span {
	var spans []Span
	i := 0
	for i+1 < len(vs) {
		if vs[i].Equal(vs[i+1]) {
			i++
			continue
		}
		a, b := vs[i], vs[i+1]
		j := i + 2
		for j < len(vs) {
			expected := a
			if (j-i)%2 == 1 {
				expected = b
			}
			if !vs[j].Equal(expected) {
				break
			}
			j++
		}
		// Truncate to even length at the first break.
		length := j - i
		if length%2 != 0 {
			length--
		}
		if length >= minLen {
			spans = append(spans, Span{i, i + length})
		}
		i = j
	}
	return spans
}
