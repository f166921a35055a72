package model

import "als/internal/alserr"

// ColumnType is the inferred type for a Column.
type ColumnType uint8

const (
	TypeInteger ColumnType = iota
	TypeFloat
	TypeBoolean
	TypeString
	TypeMixed
)

func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "bool"
	case TypeString:
		return "str"
	case TypeMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// ParseColumnType resolves a schema type_tag back to a ColumnType. Unknown
// tags are rejected by the caller (C8 parser).
func ParseColumnType(tag string) (ColumnType, bool) {
	switch tag {
	case "int":
		return TypeInteger, true
	case "float":
		return TypeFloat, true
	case "bool":
		return TypeBoolean, true
	case "str":
		return TypeString, true
	case "mixed":
		return TypeMixed, true
	default:
		return 0, false
	}
}

// Column is an ordered sequence of Values of a single inferred ColumnType.
// Invariant: len(Values) equals the owning TabularData's row count.
type Column struct {
	Name   string
	Type   ColumnType
	Values []Value
}

// InferColumnType derives the narrowest ColumnType that covers every
// non-null value in vs. A column is Mixed the instant two non-null cells
// disagree on Kind: unlike a majority-vote schema sniffer, ALS needs
// per-cell fidelity, so a single outlier forces Mixed rather than being
// outvoted.
func InferColumnType(vs []Value) ColumnType {
	seen := KindNull
	have := false
	for _, v := range vs {
		if v.IsNull() {
			continue
		}
		if !have {
			seen = v.Kind
			have = true
			continue
		}
		if v.Kind != seen {
			return TypeMixed
		}
	}
	if !have {
		return TypeString
	}
	switch seen {
	case KindInteger:
		return TypeInteger
	case KindFloat:
		return TypeFloat
	case KindBoolean:
		return TypeBoolean
	default:
		return TypeString
	}
}

// NewColumn builds a Column, inferring its type from vs.
func NewColumn(name string, vs []Value) *Column {
	return &Column{Name: name, Type: InferColumnType(vs), Values: vs}
}

// TabularData is an ordered sequence of Columns plus the row count. Column
// order and row order are preserved end to end.
type TabularData struct {
	Columns  []*Column
	RowCount int
}

// Validate checks the length-uniformity invariant (every column has
// RowCount values) and name uniqueness.
func (t *TabularData) Validate() error {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			return alserr.New(alserr.CodeColumnMismatch, "column name must be non-empty")
		}
		if _, dup := seen[c.Name]; dup {
			return alserr.Newf(alserr.CodeColumnMismatch, "duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if len(c.Values) != t.RowCount {
			return alserr.Newf(alserr.CodeColumnMismatch, "column %q has %d values, want %d", c.Name, len(c.Values), t.RowCount)
		}
	}
	return nil
}

// FindColumn returns the column named name, or nil.
func (t *TabularData) FindColumn(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}
