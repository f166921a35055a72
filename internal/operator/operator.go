// Package operator defines the tagged AlsOperator representation (Raw,
// Range, Multiply, Toggle, DictRef) used by every other core component.
package operator

import (
	"fmt"
	"math"

	"als/internal/kernel"
	"als/internal/model"
)

// Kind identifies which AlsOperator variant is populated.
type Kind uint8

const (
	KindRaw Kind = iota
	KindRange
	KindMultiply
	KindToggle
	KindDictRef
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindRange:
		return "range"
	case KindMultiply:
		return "multiply"
	case KindToggle:
		return "toggle"
	case KindDictRef:
		return "dictref"
	default:
		return "unknown"
	}
}

// Op is a tagged AlsOperator: a single Kind field selects which of the
// variant-specific fields below are meaningful, in the usual Go
// tagged-union style (dispatch on Kind, ignore the rest).
type Op struct {
	Kind Kind

	// KindRaw
	Raw model.Value

	// KindRange
	RangeStart model.Value
	RangeEnd   model.Value
	RangeStep  model.Value

	// KindMultiply
	MulOp *Op
	MulN  int

	// KindToggle
	ToggleA model.Value
	ToggleB model.Value
	ToggleN int

	// KindDictRef
	DictID     string
	LocalIndex int
}

// Raw builds a literal-scalar operator.
func Raw(v model.Value) *Op { return &Op{Kind: KindRaw, Raw: v} }

// Len reports how many cells this operator expands to.
func (o *Op) Len() int {
	switch o.Kind {
	case KindRaw, KindDictRef:
		return 1
	case KindRange:
		n, _ := RangeCount(o.RangeStart, o.RangeEnd, o.RangeStep)
		return n
	case KindMultiply:
		return o.MulOp.Len() * o.MulN
	case KindToggle:
		return o.ToggleN
	default:
		return 0
	}
}

// NewRange constructs a Range operator, validating step != 0 and bounding
// the expansion count by maxExpansion. Supports descending sequences
// (step < 0) and is overflow-safe: it never materializes the progression
// to count it.
func NewRange(start, end, step model.Value, maxExpansion int64) (*Op, error) {
	n, err := RangeCount(start, end, step)
	if err != nil {
		return nil, err
	}
	if int64(n) > maxExpansion {
		return nil, fmt.Errorf("range expansion count %d exceeds max_range_expansion %d", n, maxExpansion)
	}
	return &Op{Kind: KindRange, RangeStart: start, RangeEnd: end, RangeStep: step}, nil
}

// RangeCount computes floor((end-start)/step)+1 without overflow, for both
// integer and float progressions.
func RangeCount(start, end, step model.Value) (int, error) {
	if start.Kind == model.KindInteger && end.Kind == model.KindInteger && step.Kind == model.KindInteger {
		return intRangeCount(start.Int, end.Int, step.Int)
	}
	s, ok1 := asFloat(start)
	e, ok2 := asFloat(end)
	st, ok3 := asFloat(step)
	if !ok1 || !ok2 || !ok3 {
		return 0, fmt.Errorf("range operands must be numeric")
	}
	return floatRangeCount(s, e, st)
}

func asFloat(v model.Value) (float64, bool) {
	switch v.Kind {
	case model.KindInteger:
		return float64(v.Int), true
	case model.KindFloat:
		return v.Flt, true
	default:
		return 0, false
	}
}

func intRangeCount(start, end, step int64) (int, error) {
	if step == 0 {
		return 0, fmt.Errorf("range step must not be zero")
	}
	// (end - start) computed in big-int-safe steps to avoid signed overflow
	// when start and end sit near the int64 extremes.
	diff := new(bigDiff).sub(end, start)
	if step > 0 && diff.negative {
		return 0, fmt.Errorf("range with positive step must have end >= start")
	}
	if step < 0 && !diff.negative && diff.mag != 0 {
		return 0, fmt.Errorf("range with negative step must have end <= start")
	}
	q := diff.mag / absInt64(step)
	if q > uint64(math.MaxInt64-1) {
		return 0, fmt.Errorf("range expansion count overflows")
	}
	return int(q) + 1, nil
}

func floatRangeCount(start, end, step float64) (int, error) {
	if step == 0 {
		return 0, fmt.Errorf("range step must not be zero")
	}
	if step > 0 && end < start {
		return 0, fmt.Errorf("range with positive step must have end >= start")
	}
	if step < 0 && end > start {
		return 0, fmt.Errorf("range with negative step must have end <= start")
	}
	q := (end - start) / step
	if math.IsInf(q, 0) || math.IsNaN(q) {
		return 0, fmt.Errorf("range expansion count is not finite")
	}
	return int(math.Floor(q+1e-9)) + 1, nil
}

// bigDiff computes an overflow-safe end-start for int64 operands by working
// in unsigned space and tracking sign separately.
type bigDiff struct {
	mag      uint64
	negative bool
}

func (d *bigDiff) sub(end, start int64) *bigDiff {
	if end >= start {
		d.mag = uint64(end) - uint64(start)
		d.negative = false
	} else {
		d.mag = uint64(start) - uint64(end)
		d.negative = true
	}
	return d
}

func absInt64(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

// expandRange materializes a Range into its arithmetic progression via the
// active Kernel's ExpandRange capability.
func (o *Op) expandRange() []model.Value {
	n, _ := RangeCount(o.RangeStart, o.RangeEnd, o.RangeStep)
	return kernel.Active().ExpandRange(o.RangeStart, o.RangeStep, n)
}

// NewMultiply constructs a Multiply operator repeating op's yield n times
// (n >= 2).
func NewMultiply(op *Op, n int) (*Op, error) {
	if n < 2 {
		return nil, fmt.Errorf("multiply count must be >= 2, got %d", n)
	}
	switch op.Kind {
	case KindRaw, KindRange, KindToggle:
	default:
		return nil, fmt.Errorf("multiply operand must be raw, range, or toggle, got %s", op.Kind)
	}
	return &Op{Kind: KindMultiply, MulOp: op, MulN: n}, nil
}

// NewToggle constructs a Toggle operator alternating a,b n times (n >= 4,
// always even per the D3 detector's truncation rule, but the constructor
// itself only enforces the data-model minimum of 2 so optimizer-built
// toggles of length >=2 remain representable).
func NewToggle(a, b model.Value, n int) (*Op, error) {
	if n < 2 {
		return nil, fmt.Errorf("toggle count must be >= 2, got %d", n)
	}
	if a.Equal(b) {
		return nil, fmt.Errorf("toggle operands must differ")
	}
	return &Op{Kind: KindToggle, ToggleA: a, ToggleB: b, ToggleN: n}, nil
}

// NewDictRef constructs a DictRef operator.
func NewDictRef(dictID string, localIndex int) *Op {
	return &Op{Kind: KindDictRef, DictID: dictID, LocalIndex: localIndex}
}

// Expand yields the Values this operator represents, resolving DictRef
// through resolve (nil for operators that cannot contain one, i.e. any
// context where DictRef resolution is not needed).
func (o *Op) Expand(resolve func(dictID string, idx int) (model.Value, error)) ([]model.Value, error) {
	switch o.Kind {
	case KindRaw:
		return []model.Value{o.Raw}, nil
	case KindRange:
		return o.expandRange(), nil
	case KindMultiply:
		inner, err := o.MulOp.Expand(resolve)
		if err != nil {
			return nil, err
		}
		out := make([]model.Value, 0, len(inner)*o.MulN)
		for i := 0; i < o.MulN; i++ {
			out = append(out, inner...)
		}
		return out, nil
	case KindToggle:
		out := make([]model.Value, o.ToggleN)
		for i := 0; i < o.ToggleN; i++ {
			if i%2 == 0 {
				out[i] = o.ToggleA
			} else {
				out[i] = o.ToggleB
			}
		}
		return out, nil
	case KindDictRef:
		if resolve == nil {
			return nil, fmt.Errorf("dictref encountered without a resolver")
		}
		v, err := resolve(o.DictID, o.LocalIndex)
		if err != nil {
			return nil, err
		}
		return []model.Value{v}, nil
	default:
		return nil, fmt.Errorf("unknown operator kind %d", o.Kind)
	}
}

// Dictionary is an ordered, append-only list of UTF-8 strings. Positional
// reference (index) is the referent identity, not the string's value:
// duplicates may legally coexist, and entries must never be reordered or
// deduplicated once emission begins.
type Dictionary struct {
	ID      string
	Entries []string
}

// IndexOf returns the position of s if already present, or -1.
func (d *Dictionary) IndexOf(s string) int {
	for i, e := range d.Entries {
		if e == s {
			return i
		}
	}
	return -1
}

// Append adds s unconditionally and returns its new index.
func (d *Dictionary) Append(s string) int {
	d.Entries = append(d.Entries, s)
	return len(d.Entries) - 1
}
