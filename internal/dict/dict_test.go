package dict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"als/internal/model"
	"als/internal/operator"
	"als/internal/stats"
)

func TestFinalizeAdmitsFrequentStrings(t *testing.T) {
	b := NewBuilder(DefaultOptions())
	// "repeated" appears often enough and is long enough to clear the
	// break-even admission bound (A1).
	values := make([]model.Value, 0, 40)
	for i := 0; i < 40; i++ {
		values = append(values, model.String("repeated-long-string-value"))
	}
	col := model.NewColumn("c", values)
	b.ScanColumn(col)

	result := b.Finalize([]string{"c"})
	require.NotNil(t, result.Dict)
	assert.Contains(t, result.Index, "repeated-long-string-value")
}

func TestFinalizeEnumPromotionFoldsBooleanCaseVariants(t *testing.T) {
	b := NewBuilder(DefaultOptions())
	col := model.NewColumn("flag", []model.Value{
		model.String("TRUE"), model.String("yes"), model.String("no"), model.String("false"),
	})
	b.ScanColumn(col)

	result := b.Finalize([]string{"flag"})
	require.NotNil(t, result.Dict)

	trueIdx, ok := result.Index["TRUE"]
	require.True(t, ok)
	yesIdx, ok := result.Index["yes"]
	require.True(t, ok)
	assert.Equal(t, trueIdx, yesIdx, "TRUE and yes should fold to the same canonical dictionary entry")
	assert.Equal(t, "true", result.Dict.Entries[trueIdx])

	falseIdx, ok := result.Index["false"]
	require.True(t, ok)
	noIdx, ok := result.Index["no"]
	require.True(t, ok)
	assert.Equal(t, falseIdx, noIdx)
	assert.Equal(t, "false", result.Dict.Entries[falseIdx])

	// Only two canonical entries should exist despite four distinct inputs.
	assert.Len(t, result.Dict.Entries, 2)
}

func TestRewriteColumnUsesDictRefWhenSmaller(t *testing.T) {
	b := NewBuilder(DefaultOptions())
	values := make([]model.Value, 0, 40)
	for i := 0; i < 40; i++ {
		values = append(values, model.String("a-fairly-long-repeated-value"))
	}
	col := model.NewColumn("c", values)
	b.ScanColumn(col)
	result := b.Finalize([]string{"c"})
	require.NotNil(t, result.Dict)

	ops := []*operator.Op{operator.Raw(model.String("a-fairly-long-repeated-value"))}
	rec := stats.New()
	rewritten := result.RewriteColumn(ops, rec)
	require.Len(t, rewritten, 1)
	assert.Equal(t, operator.KindDictRef, rewritten[0].Kind)
	assert.Equal(t, int64(1), rec.Snapshot().DictHits)
	assert.Equal(t, int64(0), rec.Snapshot().DictMisses)
}

func TestRewriteColumnLeavesUnadmittedStringsAsRaw(t *testing.T) {
	result := Result{}
	ops := []*operator.Op{operator.Raw(model.String("anything"))}
	assert.Equal(t, ops, result.RewriteColumn(ops, nil))
}

func TestRewriteColumnRecordsDictMissWhenRefIsNotSmaller(t *testing.T) {
	// A one-value column is promoted whole by A2, so "only-once" is
	// admitted; its DictRef token ($d + 8 id chars + ".0", 12 bytes) is
	// longer than the 9-byte raw string, so the rewrite keeps Raw.
	b := NewBuilder(DefaultOptions())
	col := model.NewColumn("c", []model.Value{model.String("only-once")})
	b.ScanColumn(col)
	result := b.Finalize([]string{"c"})

	ops := []*operator.Op{operator.Raw(model.String("only-once"))}
	rec := stats.New()
	rewritten := result.RewriteColumn(ops, rec)
	require.Len(t, rewritten, 1)
	assert.Equal(t, operator.KindRaw, rewritten[0].Kind)
	assert.Equal(t, int64(0), rec.Snapshot().DictHits)
	assert.Equal(t, int64(1), rec.Snapshot().DictMisses)
}
