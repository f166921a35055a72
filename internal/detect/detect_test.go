package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"als/internal/model"
)

func ints(vs ...int64) []model.Value {
	out := make([]model.Value, len(vs))
	for i, v := range vs {
		out[i] = model.Integer(v)
	}
	return out
}

func TestDetectFindsSequentialRange(t *testing.T) {
	vs := ints(0, 1, 2, 3, 4, 5)
	results := Detect(vs, model.TypeInteger, DefaultOptions())

	found := false
	for _, r := range results {
		if r.Pattern == PatternRange && r.Start == 0 && r.Length == len(vs) {
			found = true
		}
	}
	assert.True(t, found, "expected a full-span range detection, got %+v", results)
}

func TestDetectFindsRepetition(t *testing.T) {
	vs := []model.Value{model.String("x"), model.String("x"), model.String("x"), model.String("x")}
	results := Detect(vs, model.TypeString, DefaultOptions())

	found := false
	for _, r := range results {
		if r.Pattern == PatternRepeat && r.Length == len(vs) {
			found = true
		}
	}
	assert.True(t, found, "expected a full-span repetition detection, got %+v", results)
}

func TestDetectFindsAlternation(t *testing.T) {
	vs := []model.Value{
		model.Boolean(true), model.Boolean(false), model.Boolean(true), model.Boolean(false),
		model.Boolean(true), model.Boolean(false),
	}
	results := Detect(vs, model.TypeBoolean, DefaultOptions())

	found := false
	for _, r := range results {
		if r.Pattern == PatternToggle && r.Length == len(vs) {
			found = true
		}
	}
	assert.True(t, found, "expected a full-span toggle detection, got %+v", results)
}

func TestDetectRespectsMinPatternLength(t *testing.T) {
	vs := ints(0, 1)
	opts := Options{MinPatternLength: 3, MaxRangeExpansion: 1000}
	results := Detect(vs, model.TypeInteger, opts)
	for _, r := range results {
		require.GreaterOrEqual(t, r.Length, opts.MinPatternLength)
	}
}
