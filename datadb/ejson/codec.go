//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

// Package ejson implements the extended-JSON convention used on the wire by
// the Data API: non-JSON-native scalars travel as single-key tagged
// mappings such as {"$date": 1716223200000} or {"$uuid": "..."}.
//
// Normalize converts native Go values into their wire form, Restore
// converts a decoded wire body back into native values. Marshal and
// Unmarshal wrap encoding/json with the numeric rules the API requires.
package ejson

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Wire tags recognized by the codec.
const (
	tagDate     = "$date"
	tagUUID     = "$uuid"
	tagObjectID = "$objectId"
	tagBinary   = "$binary"
	tagVector   = "$vector"
)

// SerdesOptions controls the numeric rules applied when converting between
// payload values and bytes.
type SerdesOptions struct {
	// AllowDecimals permits arbitrary-precision numbers in payloads.
	// When enabled, json.Number values marshal verbatim and response
	// numbers are decoded as json.Number, preserving full precision.
	// When disabled (the default for collections), a json.Number in an
	// outgoing payload is rejected and response numbers decode as int64
	// or float64.
	AllowDecimals bool
}

// Vector is a dense embedding vector. It travels on the wire as a plain
// JSON array of numbers under the "$vector" key.
type Vector []float32

// Normalize converts a native value into its wire form, recursively,
// producing a new structure and leaving the input untouched:
//
//   - time.Time becomes {"$date": <epoch milliseconds>}
//   - uuid.UUID becomes {"$uuid": "<canonical string>"}
//   - ObjectID becomes {"$objectId": "<hex>"}
//   - []byte becomes {"$binary": "<base64>"}
//   - Duration becomes its literal string form
//   - a value under a "$vector" key is coerced to a plain array of
//     floats, unless the key appears as projection.$vector, which is
//     passed through untouched
//
// Everything else passes through unchanged. Normalize fails only on a
// vector value that cannot be coerced to numbers.
func Normalize(v interface{}) (interface{}, error) {
	return normalizeValue(nil, v)
}

func normalizeValue(path []string, v interface{}) (interface{}, error) {
	if atVectorPath(path) {
		return coerceVector(path, v)
	}

	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			nv, err := normalizeValue(append(path, k), item)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case *OrderedMap:
		out := &OrderedMap{}
		for _, p := range val.Pairs() {
			elemPath := path
			if ks, ok := p.Key.(string); ok {
				elemPath = append(path, ks)
			}
			nv, err := normalizeValue(elemPath, p.Value)
			if err != nil {
				return nil, err
			}
			out.Set(p.Key, nv)
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			nv, err := normalizeValue(append(path, ""), item)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case time.Time:
		return map[string]interface{}{tagDate: val.UnixMilli()}, nil
	case []byte:
		return map[string]interface{}{tagBinary: base64.StdEncoding.EncodeToString(val)}, nil
	case uuid.UUID:
		return map[string]interface{}{tagUUID: val.String()}, nil
	case ObjectID:
		return map[string]interface{}{tagObjectID: val.Hex()}, nil
	case Duration:
		return val.String(), nil
	case Vector:
		return vectorToFloats(path, val)
	default:
		return v, nil
	}
}

// atVectorPath reports whether the current value sits under a "$vector"
// key that is not projection.$vector.
func atVectorPath(path []string) bool {
	n := len(path)
	if n == 0 || path[n-1] != tagVector {
		return false
	}
	return n < 2 || path[n-2] != "projection"
}

// coerceVector turns a vector-like value into a plain []float64, unless it
// already is a list of plain numbers.
func coerceVector(path []string, v interface{}) (interface{}, error) {
	switch vec := v.(type) {
	case []float64:
		return vec, nil
	case []interface{}:
		if isListOfFloats(vec) {
			return vec, nil
		}
		return vectorToFloats(path, vec)
	default:
		return vectorToFloats(path, v)
	}
}

// isListOfFloats determines cheaply whether the list is already plain
// numbers, on the assumption that if the first item is numeric all are.
func isListOfFloats(vec []interface{}) bool {
	if len(vec) == 0 {
		return true
	}
	switch vec[0].(type) {
	case float64, float32, int, int32, int64, json.Number:
		return true
	}
	return false
}

func vectorToFloats(path []string, v interface{}) ([]float64, error) {
	toFloat := func(item interface{}) (float64, error) {
		switch n := item.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int32:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case json.Number:
			return n.Float64()
		default:
			return 0, fmt.Errorf("ejson: cannot coerce value of type %T to a vector component at %q",
				item, strings.Join(path, "."))
		}
	}

	switch vec := v.(type) {
	case Vector:
		out := make([]float64, len(vec))
		for i, item := range vec {
			out[i] = float64(item)
		}
		return out, nil
	case []float32:
		out := make([]float64, len(vec))
		for i, item := range vec {
			out[i] = float64(item)
		}
		return out, nil
	case []int:
		out := make([]float64, len(vec))
		for i, item := range vec {
			out[i] = float64(item)
		}
		return out, nil
	case []interface{}:
		out := make([]float64, len(vec))
		for i, item := range vec {
			f, err := toFloat(item)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("ejson: cannot coerce value of type %T to a vector at %q",
			v, strings.Join(path, "."))
	}
}

// Restore converts a decoded wire value back into native values,
// recursively. A mapping with exactly one key is checked against the
// known tags in order: $date yields a time.Time (UTC, millisecond
// precision), $uuid a uuid.UUID, $objectId an ObjectID, $binary a []byte.
// Mappings whose single key matches no tag, or with more than one key,
// are recursed into as ordinary mappings.
//
// A genuine user document holding exactly one field named like a tag is
// indistinguishable from a tagged value and is restored as the native
// type. This ambiguity is inherent to the wire convention and shared by
// every client of the API; Restore deliberately does not attempt to
// disambiguate.
//
// Tagged values whose payload has an unexpected type or an unparseable
// content are left as plain mappings rather than reported as errors.
func Restore(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		if len(val) == 1 {
			if restored, ok := restoreTagged(val); ok {
				return restored
			}
		}
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = Restore(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = Restore(item)
		}
		return out
	default:
		return v
	}
}

func restoreTagged(val map[string]interface{}) (interface{}, bool) {
	if raw, ok := val[tagDate]; ok {
		if ms, ok := asMillis(raw); ok {
			return time.UnixMilli(ms).UTC(), true
		}
		return nil, false
	}
	if raw, ok := val[tagUUID]; ok {
		if s, ok := raw.(string); ok {
			if u, err := uuid.Parse(s); err == nil {
				return u, true
			}
		}
		return nil, false
	}
	if raw, ok := val[tagObjectID]; ok {
		if s, ok := raw.(string); ok {
			if id, err := ParseObjectID(s); err == nil {
				return id, true
			}
		}
		return nil, false
	}
	if raw, ok := val[tagBinary]; ok {
		if s, ok := raw.(string); ok {
			if b, err := base64.StdEncoding.DecodeString(s); err == nil {
				return b, true
			}
		}
		return nil, false
	}
	return nil, false
}

func asMillis(raw interface{}) (int64, bool) {
	switch n := raw.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		ms, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return ms, true
	}
	return 0, false
}

// Marshal serializes a normalized payload to compact JSON bytes.
//
// Non-finite floats (NaN, infinities) are rejected by the underlying
// encoder. Arbitrary-precision numbers carried as json.Number are
// rejected unless opts.AllowDecimals is enabled.
func Marshal(v interface{}, opts SerdesOptions) ([]byte, error) {
	if !opts.AllowDecimals {
		if path, found := findDecimal(nil, v); found {
			return nil, fmt.Errorf("ejson: arbitrary-precision number at %q in payload; "+
				"enable AllowDecimals to send it", path)
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func findDecimal(path []string, v interface{}) (string, bool) {
	switch val := v.(type) {
	case json.Number:
		return strings.Join(path, "."), true
	case map[string]interface{}:
		for k, item := range val {
			if p, found := findDecimal(append(path, k), item); found {
				return p, true
			}
		}
	case *OrderedMap:
		for _, pair := range val.Pairs() {
			ks, _ := pair.Key.(string)
			if p, found := findDecimal(append(path, ks), pair.Value); found {
				return p, true
			}
		}
	case []interface{}:
		for _, item := range val {
			if p, found := findDecimal(append(path, ""), item); found {
				return p, true
			}
		}
	}
	return "", false
}

// Unmarshal parses JSON bytes into a generic mapping. When
// opts.AllowDecimals is enabled, numbers are decoded as json.Number so
// that arbitrary-precision values survive the round trip losslessly;
// otherwise numbers decode as float64.
func Unmarshal(data []byte, opts SerdesOptions) (map[string]interface{}, error) {
	var out map[string]interface{}
	if opts.AllowDecimals {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnmarshalAny parses JSON bytes of any shape, including top-level
// arrays, applying the same numeric rules as Unmarshal.
func UnmarshalAny(data []byte, opts SerdesOptions) (interface{}, error) {
	var out interface{}
	if opts.AllowDecimals {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
