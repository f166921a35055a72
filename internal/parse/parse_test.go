package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"als/internal/document"
	"als/internal/model"
	"als/internal/operator"
	"als/internal/serialize"
)

func mustRange(t *testing.T, start, end, step model.Value) *operator.Op {
	t.Helper()
	op, err := operator.NewRange(start, end, step, 1_000_000_000)
	require.NoError(t, err)
	return op
}

func mustToggle(t *testing.T, a, b model.Value, n int) *operator.Op {
	t.Helper()
	op, err := operator.NewToggle(a, b, n)
	require.NoError(t, err)
	return op
}

func mustMultiply(t *testing.T, op *operator.Op, n int) *operator.Op {
	t.Helper()
	mul, err := operator.NewMultiply(op, n)
	require.NoError(t, err)
	return mul
}

func TestParseSerializeRoundTripAllOperatorKinds(t *testing.T) {
	dict := &operator.Dictionary{ID: "dabc123", Entries: []string{"alice", "bob"}}

	doc := &document.Document{
		Version: document.CurrentVersion,
		Format:  document.FormatAls,
		Dicts:   []*operator.Dictionary{dict},
		Schema: []document.SchemaColumn{
			{Name: "id", Type: model.TypeInteger},
			{Name: "name", Type: model.TypeString},
			{Name: "flag", Type: model.TypeBoolean},
		},
		Streams: []document.ColumnStream{
			{
				mustRange(t, model.Integer(0), model.Integer(3), model.Integer(1)),
				operator.Raw(model.Integer(4)),
			},
			{
				operator.NewDictRef(dict.ID, 0),
				operator.NewDictRef(dict.ID, 1),
				operator.Raw(model.Null),
				mustMultiply(t, operator.Raw(model.String("carol")), 2),
			},
			{
				mustToggle(t, model.Boolean(true), model.Boolean(false), 4),
				operator.Raw(model.Boolean(true)),
			},
		},
	}

	text, err := serialize.Serialize(doc, false)
	require.NoError(t, err)

	got, err := Parse(text, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, doc.Version, got.Version)
	assert.Equal(t, doc.Format, got.Format)
	require.Len(t, got.Dicts, 1)
	assert.Equal(t, dict.Entries, got.Dicts[0].Entries)
	require.Len(t, got.Streams, 3)

	table, err := ExpandToTable(got)
	require.NoError(t, err)
	assert.Equal(t, 5, table.RowCount)

	id := table.FindColumn("id")
	require.NotNil(t, id)
	assert.Equal(t, model.Integer(0), id.Values[0])
	assert.Equal(t, model.Integer(4), id.Values[4])

	name := table.FindColumn("name")
	require.NotNil(t, name)
	assert.Equal(t, model.String("alice"), name.Values[0])
	assert.Equal(t, model.String("bob"), name.Values[1])
	assert.True(t, name.Values[2].IsNull())

	flag := table.FindColumn("flag")
	require.NotNil(t, flag)
	assert.Equal(t, model.Boolean(true), flag.Values[0])
	assert.Equal(t, model.Boolean(false), flag.Values[1])
}

func TestParseRejectsVersionMismatch(t *testing.T) {
	_, err := Parse("!v2.0\n#a:int\na\n", DefaultOptions())
	require.Error(t, err)
}

func TestParseRejectsMissingSchema(t *testing.T) {
	_, err := Parse("!v1.0\n1,2,3\n", DefaultOptions())
	require.Error(t, err)
}

func TestParseCtxDocument(t *testing.T) {
	doc, err := Parse("!v1.0\n!ctx\nraw,verbatim\nbody\n", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, document.FormatCtx, doc.Format)
	assert.Equal(t, "raw,verbatim\nbody\n", doc.CtxBody)
}

func TestParseMixedColumnKindPrefixRoundTrip(t *testing.T) {
	doc := &document.Document{
		Version: document.CurrentVersion,
		Format:  document.FormatAls,
		Schema:  []document.SchemaColumn{{Name: "v", Type: model.TypeMixed}},
		Streams: []document.ColumnStream{
			{
				operator.Raw(model.Integer(7)),
				operator.Raw(model.String("hi")),
				operator.Raw(model.Boolean(true)),
				operator.Raw(model.Null),
				operator.Raw(model.EmptyString),
			},
		},
	}
	text, err := serialize.Serialize(doc, false)
	require.NoError(t, err)

	got, err := Parse(text, DefaultOptions())
	require.NoError(t, err)
	table, err := ExpandToTable(got)
	require.NoError(t, err)

	v := table.FindColumn("v")
	require.NotNil(t, v)
	assert.Equal(t, model.Integer(7), v.Values[0])
	assert.Equal(t, model.String("hi"), v.Values[1])
	assert.Equal(t, model.Boolean(true), v.Values[2])
	assert.True(t, v.Values[3].IsNull())
	assert.Equal(t, model.EmptyString, v.Values[4])
}
