package parse

import (
	"als/internal/alserr"
	"als/internal/document"
	"als/internal/model"
)

// ExpandToTable resolves every DictRef in doc against its declared
// dictionary, expands each ColumnStream into a Column's Values buffer, and
// verifies every stream expands to as many rows as the first one (the
// document itself declares no row count). It is the last step of C8, invoked by the compressor façade's
// Decompress path once Parse has produced a structurally valid Document.
func ExpandToTable(doc *document.Document) (*model.TabularData, error) {
	if doc.Format == document.FormatCtx {
		return nil, alserr.New(alserr.CodeAlsSyntax, "cannot expand a CTX document to a table; read CtxBody directly")
	}
	if len(doc.Schema) != len(doc.Streams) {
		return nil, alserr.Newf(alserr.CodeColumnMismatch,
			"schema declares %d column(s) but document has %d stream(s)", len(doc.Schema), len(doc.Streams))
	}

	resolve := makeResolver(doc)

	rowCount := -1
	cols := make([]*model.Column, len(doc.Schema))
	for i, sc := range doc.Schema {
		var values []model.Value
		for _, op := range doc.Streams[i] {
			vs, err := op.Expand(resolve)
			if err != nil {
				return nil, alserr.Newf(alserr.CodeInvalidDictRef, "column %q: %v", sc.Name, err)
			}
			values = append(values, vs...)
		}
		if rowCount == -1 {
			rowCount = len(values)
		} else if len(values) != rowCount {
			return nil, alserr.Newf(alserr.CodeColumnMismatch,
				"column %q has %d row(s), want %d", sc.Name, len(values), rowCount)
		}
		cols[i] = &model.Column{Name: sc.Name, Type: sc.Type, Values: values}
	}
	if rowCount == -1 {
		rowCount = 0
	}

	table := &model.TabularData{Columns: cols, RowCount: rowCount}
	if err := table.Validate(); err != nil {
		return nil, alserr.Newf(alserr.CodeColumnMismatch, "%v", err)
	}
	return table, nil
}

// makeResolver builds the DictRef resolver used during expansion,
// returning InvalidDictRef for an unknown dictionary id or an
// out-of-range local index.
func makeResolver(doc *document.Document) func(dictID string, idx int) (model.Value, error) {
	return func(dictID string, idx int) (model.Value, error) {
		d := doc.Dictionary(dictID)
		if d == nil {
			return model.Value{}, alserr.Newf(alserr.CodeInvalidDictRef, "unknown dictionary %q", dictID)
		}
		if idx < 0 || idx >= len(d.Entries) {
			return model.Value{}, alserr.Newf(alserr.CodeInvalidDictRef, "index %d out of range for dictionary %q (%d entries)", idx, dictID, len(d.Entries))
		}
		return model.String(d.Entries[idx]), nil
	}
}
