package serialize

import (
	"fmt"
	"strconv"
	"strings"

	"als/internal/document"
	"als/internal/escape"
	"als/internal/model"
	"als/internal/operator"
)

// ctxDirective marks a CTX (verbatim passthrough) document, written on its
// own line immediately after the version line.
const ctxDirective = "!ctx"

// Serialize renders doc as ALS document text. In pretty mode it inserts
// blank lines between the version, dictionaries, schema, and streams
// sections, and appends a trailing block of "; "-prefixed comment lines
// giving each column's name, type, and operator count; comments are never significant to
// Parse and are not part of the canonical round-trip.
func Serialize(doc *document.Document, pretty bool) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "!v%d.%d\n", doc.Version.Major, doc.Version.Minor)

	if doc.Format == document.FormatCtx {
		b.WriteString(ctxDirective)
		b.WriteByte('\n')
		b.WriteString(doc.CtxBody)
		return b.String(), nil
	}

	if pretty {
		b.WriteByte('\n')
	}

	for _, d := range doc.Dicts {
		if err := writeDict(&b, d); err != nil {
			return "", err
		}
	}

	if pretty && len(doc.Dicts) > 0 {
		b.WriteByte('\n')
	}

	if err := writeSchema(&b, doc.Schema); err != nil {
		return "", err
	}

	if pretty {
		b.WriteByte('\n')
	}

	if err := writeStreams(&b, doc); err != nil {
		return "", err
	}

	if pretty {
		b.WriteByte('\n')
		writePrettyComments(&b, doc)
	}

	return b.String(), nil
}

func writeDict(b *strings.Builder, d *operator.Dictionary) error {
	if strings.ContainsAny(d.ID, ":|,>*~$#!\n") {
		return fmt.Errorf("dictionary id %q contains reserved characters", d.ID)
	}
	b.WriteByte('$')
	b.WriteString(d.ID)
	b.WriteByte(':')
	for i, e := range d.Entries {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escape.Escape(e))
	}
	b.WriteByte('\n')
	return nil
}

func writeSchema(b *strings.Builder, cols []document.SchemaColumn) error {
	b.WriteByte('#')
	for i, c := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escape.Escape(c.Name))
		b.WriteByte(':')
		b.WriteString(c.Type.String())
	}
	b.WriteByte('\n')
	return nil
}

func writeStreams(b *strings.Builder, doc *document.Document) error {
	if len(doc.Schema) != len(doc.Streams) {
		return fmt.Errorf("schema has %d column(s) but document has %d stream(s)", len(doc.Schema), len(doc.Streams))
	}
	for i, stream := range doc.Streams {
		if i > 0 {
			b.WriteByte('|')
		}
		colType := doc.Schema[i].Type
		for j, op := range stream {
			if j > 0 {
				b.WriteByte(',')
			}
			s, err := WriteOp(op, colType)
			if err != nil {
				return err
			}
			b.WriteString(s)
		}
	}
	return nil
}

func writePrettyComments(b *strings.Builder, doc *document.Document) {
	for i, stream := range doc.Streams {
		if i >= len(doc.Schema) {
			break
		}
		col := doc.Schema[i]
		b.WriteString("; ")
		b.WriteString(col.Name)
		b.WriteString(" (")
		b.WriteString(col.Type.String())
		b.WriteString("): ")
		b.WriteString(strconv.Itoa(len(stream)))
		b.WriteString(" operator(s)\n")
	}
}

// WriteOp renders a single operator as it appears in a streams op_seq.
// colType selects whether scalars need the Mixed-column kind prefix (see
// EncodeScalarForColumn).
func WriteOp(op *operator.Op, colType model.ColumnType) (string, error) {
	switch op.Kind {
	case operator.KindRaw:
		return EncodeScalarForColumn(op.Raw, colType), nil
	case operator.KindRange:
		return writeRange(op, colType)
	case operator.KindMultiply:
		inner, err := WriteOp(op.MulOp, colType)
		if err != nil {
			return "", err
		}
		return inner + "*" + strconv.Itoa(op.MulN), nil
	case operator.KindToggle:
		a := EncodeScalarForColumn(op.ToggleA, colType)
		b := EncodeScalarForColumn(op.ToggleB, colType)
		return a + "~" + b + "*" + strconv.Itoa(op.ToggleN), nil
	case operator.KindDictRef:
		return "$" + op.DictID + "." + strconv.Itoa(op.LocalIndex), nil
	default:
		return "", fmt.Errorf("unknown operator kind %d", op.Kind)
	}
}

func writeRange(op *operator.Op, colType model.ColumnType) (string, error) {
	start := EncodeScalarForColumn(op.RangeStart, colType)
	end := EncodeScalarForColumn(op.RangeEnd, colType)
	if !needsExplicitStep(op) {
		return start + ">" + end, nil
	}
	step := EncodeScalarForColumn(op.RangeStep, colType)
	return start + ">" + end + ":" + step, nil
}

// mixedKind prefixes disambiguate a Raw scalar's Value.Kind inside a Mixed
// column, where the schema's declared type alone no longer determines how
// to parse a bare token (per-cell wire disambiguation for Mixed columns is
// this implementation's own resolution, recorded in DESIGN.md).
const (
	mixedKindInteger = 'i'
	mixedKindFloat   = 'f'
	mixedKindBoolean = 'b'
	mixedKindString  = 's'
)

// EncodeScalarForColumn renders v as it appears in raw/range/toggle scalar
// position within a column of the given declared type. Null and
// EmptyString always use their reserved tokens, prefix-free. Non-null
// values in a Mixed column additionally carry a one-byte kind prefix so
// the parser can recover the per-cell Kind that the schema's single
// declared type can no longer imply.
func EncodeScalarForColumn(v model.Value, colType model.ColumnType) string {
	if colType != model.TypeMixed || v.IsNull() || (v.Kind == model.KindString && v.Str == "") {
		return ScalarToken(v)
	}
	switch v.Kind {
	case model.KindInteger:
		return string(mixedKindInteger) + ScalarToken(v)
	case model.KindFloat:
		return string(mixedKindFloat) + ScalarToken(v)
	case model.KindBoolean:
		return string(mixedKindBoolean) + ScalarToken(v)
	case model.KindString:
		return string(mixedKindString) + ScalarToken(v)
	default:
		return ScalarToken(v)
	}
}
