// Package document defines the document data model: a format version, a
// set of dictionaries, a schema, one ColumnStream per schema column, and a
// FormatIndicator selecting between the ALS and CTX wire shapes. It is the
// value type internal/serialize emits and internal/parse reconstructs.
package document

import (
	"als/internal/alserr"
	"als/internal/model"
	"als/internal/operator"
)

// Version is the format's major.minor pair. The current version is 1.0; a
// document with an unrecognized major fails to parse with
// VersionMismatch.
type Version struct {
	Major int
	Minor int
}

// CurrentVersion is the version this implementation writes.
var CurrentVersion = Version{Major: 1, Minor: 0}

// FormatIndicator selects between the compressed ALS body and the CTX
// verbatim-passthrough fallback.
type FormatIndicator uint8

const (
	FormatAls FormatIndicator = iota
	FormatCtx
)

// SchemaColumn names one column and its declared ColumnType, in the order
// columns appear in the schema directive.
type SchemaColumn struct {
	Name string
	Type model.ColumnType
}

// ColumnStream is the sequence of AlsOperators that, expanded in order,
// yields one column's Values.
type ColumnStream []*operator.Op

// Document is the full in-memory representation of a parsed or
// about-to-be-serialized document: version, dictionaries, schema, one
// ColumnStream per schema column (same order as the schema), and a
// FormatIndicator. When Format is FormatCtx, CtxBody carries the original
// input verbatim and every other field besides Version is unused.
type Document struct {
	Version Version
	Format  FormatIndicator

	Dicts   []*operator.Dictionary
	Schema  []SchemaColumn
	Streams []ColumnStream

	CtxBody string
}

// Dictionary returns the dictionary with the given id, or nil.
func (d *Document) Dictionary(id string) *operator.Dictionary {
	for _, dict := range d.Dicts {
		if dict.ID == id {
			return dict
		}
	}
	return nil
}

// Validate checks structural consistency against an already-expanded row
// count: schema and stream counts match, and every stream's
// operator-implied length equals rowCount (approximated here via
// operator.Op.Len before DictRef resolution is available; full
// verification happens during expansion in internal/parse.ExpandToTable,
// which has dictionary context).
func (d *Document) Validate(rowCount int) error {
	if len(d.Schema) != len(d.Streams) {
		return schemaStreamMismatch(len(d.Schema), len(d.Streams))
	}
	for i, stream := range d.Streams {
		n := 0
		for _, op := range stream {
			n += op.Len()
		}
		if n != rowCount {
			return columnLengthMismatch(d.Schema[i].Name, n, rowCount)
		}
	}
	return nil
}

func schemaStreamMismatch(schemaCols, streamCols int) error {
	return alserr.Newf(alserr.CodeColumnMismatch,
		"schema declares %d column(s) but document has %d stream(s)", schemaCols, streamCols)
}

func columnLengthMismatch(name string, got, want int) error {
	return alserr.Newf(alserr.CodeColumnMismatch,
		"column %q expands to %d value(s), want %d", name, got, want)
}
