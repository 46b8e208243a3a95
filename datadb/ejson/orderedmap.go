//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package ejson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Pair is a single key-value entry of an OrderedMap.
type Pair struct {
	Key   interface{}
	Value interface{}
}

// OrderedMap is an associative container backed by a slice of key-value
// pairs. It preserves insertion order and supports arbitrary keys,
// including NaN and values Go maps cannot use as keys, such as slices.
//
// Lookup is a linear equality scan. This is deliberate: a hash-backed
// implementation could not support NaN keys (NaN never equals itself under
// the IEEE rules Go map lookup uses) nor non-comparable keys. Do not
// replace the scan with a map.
//
// OrderedMap is not safe for concurrent mutation.
type OrderedMap struct {
	pairs []Pair
}

// NewOrderedMap creates an OrderedMap holding the given pairs, in order.
// Later duplicate keys overwrite earlier ones, keeping the earlier
// position, the same way repeated Set calls would.
func NewOrderedMap(pairs ...Pair) *OrderedMap {
	m := &OrderedMap{}
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// keysEqual compares two keys, treating NaN as equal to itself so that a
// NaN key can be stored and retrieved.
func keysEqual(a, b interface{}) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok && math.IsNaN(af) && math.IsNaN(bf) {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.pairs)
}

// Get returns the value stored under the given key and whether it was
// found.
func (m *OrderedMap) Get(key interface{}) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	for _, p := range m.pairs {
		if keysEqual(p.Key, key) {
			return p.Value, true
		}
	}
	return nil, false
}

// Set stores a value under the given key, replacing the value in place if
// the key is already present, appending otherwise.
func (m *OrderedMap) Set(key, value interface{}) {
	for i, p := range m.pairs {
		if keysEqual(p.Key, key) {
			m.pairs[i].Value = value
			return
		}
	}
	m.pairs = append(m.pairs, Pair{Key: key, Value: value})
}

// Delete removes the entry stored under the given key, reporting whether
// an entry was removed.
func (m *OrderedMap) Delete(key interface{}) bool {
	for i, p := range m.pairs {
		if keysEqual(p.Key, key) {
			m.pairs = append(m.pairs[:i], m.pairs[i+1:]...)
			return true
		}
	}
	return false
}

// Pairs returns the entries in insertion order. The returned slice must
// not be modified.
func (m *OrderedMap) Pairs() []Pair {
	if m == nil {
		return nil
	}
	return m.pairs
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []interface{} {
	if m == nil {
		return nil
	}
	keys := make([]interface{}, len(m.pairs))
	for i, p := range m.pairs {
		keys[i] = p.Key
	}
	return keys
}

// Equal reports whether two OrderedMaps hold equal key-value sequences in
// the same positions. Order matters: two maps with the same entries in a
// different order are not equal.
func (m *OrderedMap) Equal(other *OrderedMap) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i, p := range m.Pairs() {
		op := other.pairs[i]
		if !keysEqual(p.Key, op.Key) || !reflect.DeepEqual(p.Value, op.Value) {
			return false
		}
	}
	return true
}

// EqualMap reports whether this OrderedMap holds exactly the entries of a
// plain map, ignoring order since Go maps are unordered.
func (m *OrderedMap) EqualMap(other map[string]interface{}) bool {
	if m.Len() != len(other) {
		return false
	}
	for _, p := range m.Pairs() {
		k, ok := p.Key.(string)
		if !ok {
			return false
		}
		v, ok := other[k]
		if !ok || !reflect.DeepEqual(p.Value, v) {
			return false
		}
	}
	return true
}

// MarshalJSON serializes the map as a JSON object with members in
// insertion order. Every key must be a string; other key types cannot be
// represented as JSON object members.
//
// This implements the json.Marshaler interface.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m.Pairs() {
		k, ok := p.Key.(string)
		if !ok {
			return nil, fmt.Errorf("ejson: cannot marshal OrderedMap with non-string key of type %T", p.Key)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
