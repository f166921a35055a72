// Package ingest implements the external CSV and JSON readers/writers that
// feed TabularData into the compressor façade, and the matching writers
// used on the decompress path. RFC 4180 handling comes straight from
// encoding/csv.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"als/internal/alserr"
	"als/internal/model"
)

// CSVOptions controls the RFC 4180 reader/writer's null-sentinel handling.
type CSVOptions struct {
	// NullSentinel is the cell text that decodes to Null. A literal empty
	// cell decodes to Null when NullSentinel is itself empty (the
	// default); otherwise a literal empty cell decodes to EmptyString and
	// only a cell matching NullSentinel decodes to Null.
	NullSentinel string
}

// DefaultCSVOptions is the default: an empty cell is Null. Quoted and
// unquoted empty cells are not told apart, so under this default no cell
// decodes to EmptyString.
func DefaultCSVOptions() CSVOptions { return CSVOptions{NullSentinel: ""} }

// ParseCSV reads an RFC 4180 CSV document whose first row is the header.
func ParseCSV(data []byte, opts CSVOptions) (*model.TabularData, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // validated manually below for a clearer error

	header, err := r.Read()
	if err != nil {
		return nil, alserr.Newf(alserr.CodeCSVParse, "reading header: %v", err)
	}
	names := make([]string, len(header))
	copy(names, header)

	raw := make([][]string, 0, 64)
	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, alserr.Newf(alserr.CodeCSVParse, "reading row %d: %v", len(raw)+2, err)
		}
		if len(record) != len(names) {
			return nil, alserr.Newf(alserr.CodeCSVParse,
				"row %d has %d field(s), header declares %d", len(raw)+2, len(record), len(names))
		}
		raw = append(raw, record)
	}

	cols := make([]*model.Column, len(names))
	for ci, name := range names {
		vals := make([]model.Value, len(raw))
		for ri, record := range raw {
			vals[ri] = parseCSVCell(record[ci], opts)
		}
		cols[ci] = model.NewColumn(name, vals)
	}

	return &model.TabularData{Columns: cols, RowCount: len(raw)}, nil
}

func parseCSVCell(raw string, opts CSVOptions) model.Value {
	if raw == opts.NullSentinel {
		return model.Null
	}
	if raw == "" {
		return model.EmptyString
	}
	return inferScalar(raw)
}

// inferScalar guesses the narrowest Value Kind for a raw CSV cell: integer,
// then float, then boolean, falling back to string.
func inferScalar(raw string) model.Value {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return model.Integer(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return model.Float(f)
	}
	switch raw {
	case "true":
		return model.Boolean(true)
	case "false":
		return model.Boolean(false)
	}
	return model.String(raw)
}

// WriteCSV renders table back to RFC 4180 CSV text: header row followed by
// one row per Value, using opts.NullSentinel for Null cells.
func WriteCSV(table *model.TabularData, opts CSVOptions) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col.Name
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}

	for r := 0; r < table.RowCount; r++ {
		record := make([]string, len(table.Columns))
		for ci, col := range table.Columns {
			record[ci] = formatCSVCell(col.Values[r], opts)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing CSV row %d: %w", r, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV output: %w", err)
	}
	return buf.Bytes(), nil
}

func formatCSVCell(v model.Value, opts CSVOptions) string {
	switch v.Kind {
	case model.KindNull:
		return opts.NullSentinel
	case model.KindString:
		return v.Str
	case model.KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case model.KindFloat:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	case model.KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
