package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"als/internal/model"
	"als/internal/operator"
)

func TestValidateDetectsSchemaStreamMismatch(t *testing.T) {
	doc := &Document{
		Schema:  []SchemaColumn{{Name: "a", Type: model.TypeInteger}},
		Streams: []ColumnStream{},
	}
	err := doc.Validate(0)
	require.Error(t, err)
}

func TestValidateDetectsColumnLengthMismatch(t *testing.T) {
	doc := &Document{
		Schema: []SchemaColumn{{Name: "a", Type: model.TypeInteger}},
		Streams: []ColumnStream{
			{operator.Raw(model.Integer(1)), operator.Raw(model.Integer(2))},
		},
	}
	err := doc.Validate(3)
	require.Error(t, err)
}

func TestValidateAcceptsMatchingCounts(t *testing.T) {
	doc := &Document{
		Schema: []SchemaColumn{{Name: "a", Type: model.TypeInteger}},
		Streams: []ColumnStream{
			{operator.Raw(model.Integer(1)), operator.Raw(model.Integer(2))},
		},
	}
	require.NoError(t, doc.Validate(2))
}

func TestDictionaryLookup(t *testing.T) {
	doc := &Document{Dicts: []*operator.Dictionary{{ID: "d1", Entries: []string{"x"}}}}
	assert.NotNil(t, doc.Dictionary("d1"))
	assert.Nil(t, doc.Dictionary("missing"))
}
