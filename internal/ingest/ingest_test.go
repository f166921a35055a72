package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"als/internal/model"
)

func TestParseCSVBasicTypes(t *testing.T) {
	data := []byte("id,name,score,active\n1,alice,1.5,true\n2,bob,2.5,false\n")
	table, err := ParseCSV(data, DefaultCSVOptions())
	require.NoError(t, err)
	require.Equal(t, 2, table.RowCount)

	id := table.FindColumn("id")
	require.NotNil(t, id)
	assert.Equal(t, model.TypeInteger, id.Type)
	assert.Equal(t, model.Integer(1), id.Values[0])

	active := table.FindColumn("active")
	require.NotNil(t, active)
	assert.Equal(t, model.TypeBoolean, active.Type)
	assert.Equal(t, model.Boolean(true), active.Values[0])
}

func TestParseCSVDefaultNullSentinelIsEmptyCell(t *testing.T) {
	data := []byte("a,b\n1,\n,2\n")
	table, err := ParseCSV(data, DefaultCSVOptions())
	require.NoError(t, err)

	a := table.FindColumn("a")
	b := table.FindColumn("b")
	assert.True(t, a.Values[1].IsNull())
	assert.True(t, b.Values[0].IsNull())
}

func TestParseCSVConfiguredNullSentinelFreesEmptyStringRule(t *testing.T) {
	// A wholly blank line (no fields at all) is skipped by encoding/csv, so
	// the empty-field case here needs a second column to keep the row
	// non-blank.
	data := []byte("a,b\nNULL,z\n,z\nx,z\n")
	table, err := ParseCSV(data, CSVOptions{NullSentinel: "NULL"})
	require.NoError(t, err)

	a := table.FindColumn("a")
	assert.True(t, a.Values[0].IsNull())
	assert.Equal(t, model.EmptyString, a.Values[1])
	assert.Equal(t, model.String("x"), a.Values[2])
}

func TestParseCSVRejectsRowLengthMismatch(t *testing.T) {
	data := []byte("a,b\n1,2,3\n")
	_, err := ParseCSV(data, DefaultCSVOptions())
	require.Error(t, err)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	data := []byte("id,name\n1,alice\n2,bob\n")
	table, err := ParseCSV(data, DefaultCSVOptions())
	require.NoError(t, err)

	out, err := WriteCSV(table, DefaultCSVOptions())
	require.NoError(t, err)

	table2, err := ParseCSV(out, DefaultCSVOptions())
	require.NoError(t, err)
	require.Equal(t, table.RowCount, table2.RowCount)
	for i, col := range table.Columns {
		for r := range col.Values {
			assert.True(t, col.Values[r].Equal(table2.Columns[i].Values[r]))
		}
	}
}

func TestParseJSONFlattensNestedObjects(t *testing.T) {
	data := []byte(`[{"id":1,"addr":{"city":"nyc","zip":"10001"}},{"id":2,"addr":{"city":"la"}}]`)
	table, err := ParseJSON(data)
	require.NoError(t, err)
	require.Equal(t, 2, table.RowCount)

	city := table.FindColumn("addr.city")
	require.NotNil(t, city)
	assert.Equal(t, model.String("nyc"), city.Values[0])
	assert.Equal(t, model.String("la"), city.Values[1])

	zip := table.FindColumn("addr.zip")
	require.NotNil(t, zip)
	assert.True(t, zip.Values[1].IsNull())
}

func TestParseJSONRejectsArrays(t *testing.T) {
	data := []byte(`[{"tags":["a","b"]}]`)
	_, err := ParseJSON(data)
	require.Error(t, err)
}

func TestParseJSONNumberClassification(t *testing.T) {
	data := []byte(`[{"a":1,"b":1.5,"c":1e2}]`)
	table, err := ParseJSON(data)
	require.NoError(t, err)

	assert.Equal(t, model.TypeInteger, table.FindColumn("a").Type)
	assert.Equal(t, model.TypeFloat, table.FindColumn("b").Type)
	assert.Equal(t, model.TypeFloat, table.FindColumn("c").Type)
}

func TestWriteJSONRoundTrip(t *testing.T) {
	data := []byte(`[{"id":1,"addr":{"city":"nyc"}},{"id":2,"addr":{"city":"la"}}]`)
	table, err := ParseJSON(data)
	require.NoError(t, err)

	out, err := WriteJSON(table)
	require.NoError(t, err)

	table2, err := ParseJSON(out)
	require.NoError(t, err)
	require.Equal(t, table.RowCount, table2.RowCount)
	for i, col := range table.Columns {
		col2 := table2.FindColumn(col.Name)
		require.NotNil(t, col2)
		for r := range col.Values {
			assert.True(t, col.Values[r].Equal(col2.Values[r]))
		}
	}
}
