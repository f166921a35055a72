package ingest

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"als/internal/alserr"
	"als/internal/model"
)

// ParseJSON reads a JSON array-of-objects document into a TabularData:
// nested objects flatten to dot-notation column names (a.b.c), arrays are
// rejected, a row missing a key decodes that cell as Null, and
// json.Number is split into Integer or Float by its lexical shape (an
// exponent or decimal point means Float). Column order is the sorted union
// of every row's flattened keys; round-tripping is defined modulo key
// ordering, so this doesn't need to preserve source key order.
func ParseJSON(data []byte) (*model.TabularData, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rows []map[string]interface{}
	if err := dec.Decode(&rows); err != nil {
		return nil, alserr.Newf(alserr.CodeJSONParse, "decoding JSON array: %v", err)
	}

	flat := make([]map[string]model.Value, len(rows))
	colSet := make(map[string]struct{})
	for i, row := range rows {
		out := make(map[string]model.Value)
		if err := flattenObject("", row, out); err != nil {
			return nil, alserr.Newf(alserr.CodeJSONParse, "row %d: %v", i, err)
		}
		flat[i] = out
		for k := range out {
			colSet[k] = struct{}{}
		}
	}

	names := make([]string, 0, len(colSet))
	for k := range colSet {
		names = append(names, k)
	}
	sort.Strings(names)

	cols := make([]*model.Column, len(names))
	for ci, name := range names {
		vals := make([]model.Value, len(flat))
		for ri, row := range flat {
			if v, ok := row[name]; ok {
				vals[ri] = v
			} else {
				vals[ri] = model.Null
			}
		}
		cols[ci] = model.NewColumn(name, vals)
	}

	return &model.TabularData{Columns: cols, RowCount: len(flat)}, nil
}

// flattenObject walks v (a decoded JSON value) recursively, writing leaf
// scalars into out keyed by their dot-joined path. Arrays are rejected:
// this format has no list-valued cell to hold one.
func flattenObject(prefix string, v interface{}, out map[string]model.Value) error {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, vv := range val {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if err := flattenObject(key, vv, out); err != nil {
				return err
			}
		}
	case []interface{}:
		return alserr.Newf(alserr.CodeJSONParse, "array values are not supported (key %q)", prefix)
	case nil:
		out[prefix] = model.Null
	case json.Number:
		out[prefix] = numberValue(val)
	case string:
		out[prefix] = model.String(val)
	case bool:
		out[prefix] = model.Boolean(val)
	default:
		return alserr.Newf(alserr.CodeJSONParse, "unsupported JSON value for key %q", prefix)
	}
	return nil
}

// numberValue classifies a json.Number as Integer or Float by its lexical
// shape: any '.', 'e', or 'E' makes it Float, matching how the encoder
// chose to print the number in the source document.
func numberValue(n json.Number) model.Value {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if iv, err := n.Int64(); err == nil {
			return model.Integer(iv)
		}
	}
	fv, err := n.Float64()
	if err != nil {
		return model.String(s)
	}
	return model.Float(fv)
}

// WriteJSON renders table back to a JSON array of objects, unflattening
// dot-notation column names into nested objects. Null cells are written
// explicitly as JSON null so a round trip preserves row shape.
func WriteJSON(table *model.TabularData) ([]byte, error) {
	rows := make([]map[string]interface{}, table.RowCount)
	for r := 0; r < table.RowCount; r++ {
		obj := make(map[string]interface{})
		for _, col := range table.Columns {
			setNested(obj, strings.Split(col.Name, "."), jsonValue(col.Values[r]))
		}
		rows[r] = obj
	}

	out, err := json.Marshal(rows)
	if err != nil {
		return nil, alserr.Newf(alserr.CodeJSONParse, "encoding JSON array: %v", err)
	}
	return out, nil
}

func jsonValue(v model.Value) interface{} {
	switch v.Kind {
	case model.KindNull:
		return nil
	case model.KindInteger:
		return v.Int
	case model.KindFloat:
		return v.Flt
	case model.KindBoolean:
		return v.Bool
	case model.KindString:
		return v.Str
	default:
		return nil
	}
}

// setNested writes value into obj at the nested path given by parts,
// creating intermediate maps as needed (the inverse of flattenObject's
// dot-notation split).
func setNested(obj map[string]interface{}, parts []string, value interface{}) {
	if len(parts) == 1 {
		obj[parts[0]] = value
		return
	}
	child, ok := obj[parts[0]].(map[string]interface{})
	if !ok {
		child = make(map[string]interface{})
		obj[parts[0]] = child
	}
	setNested(child, parts[1:], value)
}
