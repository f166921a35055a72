package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferColumnTypeHomogeneous(t *testing.T) {
	assert.Equal(t, TypeInteger, InferColumnType([]Value{Integer(1), Integer(2), Null}))
	assert.Equal(t, TypeFloat, InferColumnType([]Value{Float(1.5), Null, Float(2.5)}))
	assert.Equal(t, TypeBoolean, InferColumnType([]Value{Boolean(true), Boolean(false)}))
	assert.Equal(t, TypeString, InferColumnType([]Value{String("a"), EmptyString}))
	assert.Equal(t, TypeString, InferColumnType([]Value{Null, Null}))
}

func TestInferColumnTypeMixedOnFirstDisagreement(t *testing.T) {
	assert.Equal(t, TypeMixed, InferColumnType([]Value{Integer(1), String("x")}))
	assert.Equal(t, TypeMixed, InferColumnType([]Value{Null, Integer(1), Boolean(true)}))
}

func TestValueEqualCanonicalizesNaN(t *testing.T) {
	a := Float(math.NaN())
	b := Float(math.Copysign(math.NaN(), -1))
	assert.True(t, a.Equal(b))
}

func TestValueEqualDistinguishesNullAndEmptyString(t *testing.T) {
	assert.False(t, Null.Equal(EmptyString))
	assert.True(t, Null.IsNull())
	assert.False(t, EmptyString.IsNull())
}

func TestTabularDataValidateRejectsRowCountMismatch(t *testing.T) {
	table := &TabularData{
		Columns:  []*Column{NewColumn("a", []Value{Integer(1), Integer(2)})},
		RowCount: 3,
	}
	err := table.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a")
}

func TestTabularDataValidateRejectsDuplicateNames(t *testing.T) {
	table := &TabularData{
		Columns: []*Column{
			NewColumn("a", []Value{Integer(1)}),
			NewColumn("a", []Value{Integer(2)}),
		},
		RowCount: 1,
	}
	require.Error(t, table.Validate())
}

func TestFindColumn(t *testing.T) {
	table := &TabularData{
		Columns:  []*Column{NewColumn("a", []Value{Integer(1)})},
		RowCount: 1,
	}
	assert.NotNil(t, table.FindColumn("a"))
	assert.Nil(t, table.FindColumn("b"))
}

func TestParseColumnType(t *testing.T) {
	ct, ok := ParseColumnType("mixed")
	require.True(t, ok)
	assert.Equal(t, TypeMixed, ct)

	_, ok = ParseColumnType("nope")
	assert.False(t, ok)
}
