//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package ejson

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedMapBasics(t *testing.T) {
	m := &OrderedMap{}
	assert.Equal(t, 0, m.Len())

	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 10)
	assert.Equal(t, 2, m.Len())

	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)

	// Overwriting keeps the original position.
	assert.Equal(t, []interface{}{"a", "b"}, m.Keys())

	assert.True(t, m.Delete("a"))
	assert.False(t, m.Delete("a"))
	assert.Equal(t, []interface{}{"b"}, m.Keys())

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestOrderedMapNaNKey(t *testing.T) {
	m := &OrderedMap{}
	m.Set(math.NaN(), "iee754")
	v, ok := m.Get(math.NaN())
	require.True(t, ok, "a NaN key must be retrievable")
	assert.Equal(t, "iee754", v)

	m.Set(math.NaN(), "updated")
	assert.Equal(t, 1, m.Len(), "a NaN key must not duplicate on Set")
	v, _ = m.Get(math.NaN())
	assert.Equal(t, "updated", v)
}

func TestOrderedMapNonComparableKey(t *testing.T) {
	m := &OrderedMap{}
	m.Set([]interface{}{1, 2}, "list-keyed")
	v, ok := m.Get([]interface{}{1, 2})
	require.True(t, ok)
	assert.Equal(t, "list-keyed", v)
}

func TestOrderedMapEqualIsPositional(t *testing.T) {
	a := NewOrderedMap(Pair{Key: "x", Value: 1}, Pair{Key: "y", Value: 2})
	b := NewOrderedMap(Pair{Key: "x", Value: 1}, Pair{Key: "y", Value: 2})
	c := NewOrderedMap(Pair{Key: "y", Value: 2}, Pair{Key: "x", Value: 1})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "same entries in a different order are not Equal")

	assert.True(t, a.EqualMap(map[string]interface{}{"x": 1, "y": 2}))
	assert.True(t, c.EqualMap(map[string]interface{}{"x": 1, "y": 2}),
		"EqualMap ignores order")
	assert.False(t, a.EqualMap(map[string]interface{}{"x": 1}))
}

func TestOrderedMapMarshalJSON(t *testing.T) {
	m := NewOrderedMap(
		Pair{Key: "first", Value: "f"},
		Pair{Key: "second", Value: 2},
	)
	data, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"first":"f","second":2}`, string(data))

	bad := NewOrderedMap(Pair{Key: 7, Value: "x"})
	_, err = bad.MarshalJSON()
	assert.Error(t, err, "non-string keys cannot become JSON object members")
}
