// Package serialize emits ALS document text: a formatter-per-operator-kind
// assembly built on strings.Builder.
package serialize

import (
	"strconv"

	"als/internal/escape"
	"als/internal/model"
	"als/internal/operator"
)

// OpSize returns the exact ASCII byte length that op would occupy in a
// serialized op_seq, excluding the "," that separates it from a sibling
// operator. The optimizer (C5) and dictionary builder (C6) use this as
// their authoritative cost function, rather than an estimate, so the DP
// cover-selection pass and the dictionary break-even inequality compare
// like-for-like against what the serializer will actually emit. The one
// exception is a Mixed column: OpSize has no column type and omits the
// one-byte kind prefix EncodeScalarForColumn adds to each scalar there.
func OpSize(op *operator.Op) int {
	switch op.Kind {
	case operator.KindRaw:
		return scalarSize(op.Raw)
	case operator.KindRange:
		n := scalarSize(op.RangeStart) + 1 + scalarSize(op.RangeEnd)
		if needsExplicitStep(op) {
			n += 1 + scalarSize(op.RangeStep)
		}
		return n
	case operator.KindMultiply:
		return OpSize(op.MulOp) + 1 + len(strconv.Itoa(op.MulN))
	case operator.KindToggle:
		return scalarSize(op.ToggleA) + 1 + scalarSize(op.ToggleB) + 1 + len(strconv.Itoa(op.ToggleN))
	case operator.KindDictRef:
		return 1 + len(op.DictID) + 1 + len(strconv.Itoa(op.LocalIndex))
	default:
		return 0
	}
}

// needsExplicitStep reports whether a Range must carry an explicit ":step"
// suffix: the grammar's step is optional only when it can be inferred as
// +1 for integers (the common case worth not paying a separator for).
func needsExplicitStep(op *operator.Op) bool {
	if op.RangeStep.Kind != model.KindInteger {
		return true
	}
	return op.RangeStep.Int != 1
}

// scalarSize is the exact size of a raw escaped scalar token, including the
// reserved Null/EmptyString tokens.
func scalarSize(v model.Value) int {
	return len(ScalarToken(v))
}

// ScalarToken renders v as it would appear in the als|raw| grammar
// position: the reserved token for Null/EmptyString, or the escaped
// textual form of the scalar otherwise.
func ScalarToken(v model.Value) string {
	switch v.Kind {
	case model.KindNull:
		return escape.EncodeNull()
	case model.KindString:
		if v.Str == "" {
			return escape.EncodeEmpty()
		}
		return escape.Escape(v.Str)
	case model.KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case model.KindFloat:
		return formatFloat(v.Flt)
	case model.KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// formatFloat renders a float64 with the minimum digits that round-trip
// exactly (strconv's shortest round-trip mode), preserving IEEE-754
// bit-equality on reparse (P12), including a canonical "NaN" spelling.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
