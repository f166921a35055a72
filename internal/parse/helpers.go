package parse

import (
	"math"
	"strconv"

	"als/internal/alserr"
	"als/internal/escape"
	"als/internal/model"
)

// splitUnescaped splits s on every unescaped occurrence of sep, leaving
// backslash escapes in each returned piece untouched for later
// unescaping. A backslash always escapes exactly the one byte following
// it, matching internal/escape's Escape/Unescape contract.
func splitUnescaped(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == sep {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// firstUnescapedIndex returns the index of the first unescaped occurrence
// of target in s, or -1.
func firstUnescapedIndex(s string, target byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == target {
			return i
		}
	}
	return -1
}

// lastUnescapedIndex returns the index of the last unescaped occurrence of
// target in s, or -1.
func lastUnescapedIndex(s string, target byte) int {
	found := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == target {
			found = i
		}
	}
	return found
}

func unescapeWithOffset(s string, basePos int) (string, error) {
	v, err := escape.Unescape(s)
	if err != nil {
		if ae, ok := err.(*alserr.Error); ok {
			off, _ := ae.Offset()
			return "", ae.AtOffset(off + int64(basePos))
		}
		return "", err
	}
	return v, nil
}

// decodeScalar parses a raw (still backslash-escaped where relevant) token
// from a raw/range/toggle scalar position into a Value, per colType. The
// reserved Null ("\N") and EmptyString ("\E") tokens are recognized before
// any type-directed decoding. For a Mixed column, non-null, non-empty
// tokens additionally carry a one-byte kind prefix written by
// serialize.EncodeScalarForColumn, since the schema's single declared type
// no longer determines how to parse a bare token.
func (p *parser) decodeScalar(tok string, colType model.ColumnType) (model.Value, error) {
	if escape.IsNullToken(tok) {
		return model.Null, nil
	}
	if escape.IsEmptyToken(tok) {
		return model.EmptyString, nil
	}
	if colType == model.TypeMixed {
		return p.decodeMixedScalar(tok)
	}
	return p.decodeTypedScalar(tok, colType)
}

func (p *parser) decodeMixedScalar(tok string) (model.Value, error) {
	if len(tok) < 1 {
		return model.Value{}, alserr.New(alserr.CodeAlsSyntax, "empty scalar in mixed column").AtOffset(int64(p.pos))
	}
	kind, rest := tok[0], tok[1:]
	switch kind {
	case 'i':
		return p.decodeTypedScalar(rest, model.TypeInteger)
	case 'f':
		return p.decodeTypedScalar(rest, model.TypeFloat)
	case 'b':
		return p.decodeTypedScalar(rest, model.TypeBoolean)
	case 's':
		return p.decodeTypedScalar(rest, model.TypeString)
	default:
		return model.Value{}, alserr.Newf(alserr.CodeAlsSyntax, "unknown mixed-column kind prefix %q", kind).AtOffset(int64(p.pos))
	}
}

func (p *parser) decodeTypedScalar(tok string, colType model.ColumnType) (model.Value, error) {
	switch colType {
	case model.TypeInteger:
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return model.Value{}, alserr.Newf(alserr.CodeAlsSyntax, "malformed integer %q", tok).AtOffset(int64(p.pos))
		}
		return model.Integer(n), nil
	case model.TypeFloat:
		if tok == "NaN" {
			return model.Float(math.NaN()), nil
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return model.Value{}, alserr.Newf(alserr.CodeAlsSyntax, "malformed float %q", tok).AtOffset(int64(p.pos))
		}
		return model.Float(f), nil
	case model.TypeBoolean:
		switch tok {
		case "true":
			return model.Boolean(true), nil
		case "false":
			return model.Boolean(false), nil
		default:
			return model.Value{}, alserr.Newf(alserr.CodeAlsSyntax, "malformed boolean %q", tok).AtOffset(int64(p.pos))
		}
	case model.TypeString:
		s, err := unescapeWithOffset(tok, p.pos)
		if err != nil {
			return model.Value{}, err
		}
		return model.String(s), nil
	default:
		return model.Value{}, alserr.Newf(alserr.CodeAlsSyntax, "unsupported scalar type for token %q", tok).AtOffset(int64(p.pos))
	}
}
