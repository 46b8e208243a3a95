//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package dataerr

import (
	"fmt"
	"strings"
)

// APIFamily selects which of the two services an error originated from.
// The Data API and DevOps API error payloads share their overall shape but
// are reported through distinct values so callers always know which
// service failed.
type APIFamily int

const (
	// DataAPI is the document/table database API.
	DataAPI APIFamily = iota

	// DevOpsAPI is the control-plane API for database lifecycle management.
	DevOpsAPI
)

// String returns a string representation for the API family.
//
// This implements the fmt.Stringer interface.
func (f APIFamily) String() string {
	switch f {
	case DataAPI:
		return "DataAPI"
	case DevOpsAPI:
		return "DevOpsAPI"
	default:
		return "N/A"
	}
}

// knownDescriptorFields are the recognized members of a Data API error or
// warning item. Anything else lands in the descriptor's Attributes.
var knownDescriptorFields = map[string]bool{
	"title":     true,
	"errorCode": true,
	"message":   true,
	"family":    true,
	"scope":     true,
	"id":        true,
}

// ErrorDescriptor represents a single error or warning item as returned by
// the Data API, typically with an error code, a text message and other
// properties. One HTTP response may carry zero, one or many of these in
// its "errors" array, and warnings in its "status.warnings" array use the
// same shape.
type ErrorDescriptor struct {
	// Title is the text found in the item's "title" field.
	Title string

	// ErrorCode is the string code found in the item's "errorCode" field.
	ErrorCode string

	// Message is the text found in the item's "message" field.
	Message string

	// Family is the text found in the item's "family" field.
	Family string

	// Scope is the text found in the item's "scope" field.
	Scope string

	// ID is the text found in the item's "id" field.
	ID string

	// Attributes collects any further key-value pairs returned by the API.
	Attributes map[string]interface{}
}

// ParseErrorDescriptor builds a descriptor from one element of an "errors"
// or "warnings" array. The element is usually an object; a bare string is
// accepted and becomes the Message. Other types yield an empty descriptor.
func ParseErrorDescriptor(raw interface{}) ErrorDescriptor {
	switch item := raw.(type) {
	case string:
		return ErrorDescriptor{Message: item}
	case map[string]interface{}:
		d := ErrorDescriptor{
			Title:     stringField(item, "title"),
			ErrorCode: stringField(item, "errorCode"),
			Message:   stringField(item, "message"),
			Family:    stringField(item, "family"),
			Scope:     stringField(item, "scope"),
			ID:        stringField(item, "id"),
		}
		for k, v := range item {
			if !knownDescriptorFields[k] {
				if d.Attributes == nil {
					d.Attributes = map[string]interface{}{}
				}
				d.Attributes[k] = v
			}
		}
		return d
	default:
		return ErrorDescriptor{}
	}
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// Summary returns a succinct single-line description of the descriptor.
// The precise format depends on which fields are set: "title: message
// (errorCode)" when all three are present, degrading gracefully as fields
// are missing, down to the empty string when none are set.
func (d ErrorDescriptor) Summary() string {
	var nonCodePart string
	switch {
	case d.Title != "" && d.Message != "":
		nonCodePart = fmt.Sprintf("%s: %s", d.Title, d.Message)
	case d.Title != "":
		nonCodePart = d.Title
	case d.Message != "":
		nonCodePart = d.Message
	}
	if d.ErrorCode != "" {
		if nonCodePart != "" {
			return fmt.Sprintf("%s (%s)", nonCodePart, d.ErrorCode)
		}
		return d.ErrorCode
	}
	return nonCodePart
}

// String implements the fmt.Stringer interface.
func (d ErrorDescriptor) String() string {
	return d.Summary()
}

// DevOpsErrorDescriptor represents a single error returned from the DevOps
// API, typically with a numeric code and a text message.
type DevOpsErrorDescriptor struct {
	// ID is the numeric code found in the item's "ID" field, zero when
	// absent.
	ID int64

	// Message is the text found in the item's "message" field.
	Message string

	// Attributes collects any further key-value pairs returned by the API.
	Attributes map[string]interface{}
}

// ParseDevOpsErrorDescriptor builds a descriptor from one element of a
// DevOps API "errors" array.
func ParseDevOpsErrorDescriptor(raw interface{}) DevOpsErrorDescriptor {
	item, ok := raw.(map[string]interface{})
	if !ok {
		if s, ok := raw.(string); ok {
			return DevOpsErrorDescriptor{Message: s}
		}
		return DevOpsErrorDescriptor{}
	}
	d := DevOpsErrorDescriptor{
		Message: stringField(item, "message"),
	}
	switch id := item["ID"].(type) {
	case float64:
		d.ID = int64(id)
	case int64:
		d.ID = id
	case int:
		d.ID = int64(id)
	}
	for k, v := range item {
		if k != "ID" && k != "message" {
			if d.Attributes == nil {
				d.Attributes = map[string]interface{}{}
			}
			d.Attributes[k] = v
		}
	}
	return d
}

// DetailedErrorDescriptor groups the error descriptors parsed from exactly
// one HTTP response together with that response's command and raw body.
// It is the unit of per-request error context within a multi-request
// operation.
type DetailedErrorDescriptor struct {
	// ErrorDescriptors holds the descriptors from this response's
	// "errors" array. It may be empty.
	ErrorDescriptors []ErrorDescriptor

	// Command is the payload that was sent to the API.
	Command map[string]interface{}

	// RawResponse is the full parsed response body.
	RawResponse map[string]interface{}
}

// ParseErrorDescriptors extracts the descriptors from a parsed response
// body's "errors" array. A missing or empty array yields nil; it is not
// an error.
func ParseErrorDescriptors(rawResponse map[string]interface{}) []ErrorDescriptor {
	items, ok := rawResponse["errors"].([]interface{})
	if !ok || len(items) == 0 {
		return nil
	}
	out := make([]ErrorDescriptor, len(items))
	for i, item := range items {
		out[i] = ParseErrorDescriptor(item)
	}
	return out
}

// ParseWarningDescriptors extracts the descriptors from a parsed response
// body's "status.warnings" array, which uses the same item shape as
// errors. A missing or empty array yields nil.
func ParseWarningDescriptors(rawResponse map[string]interface{}) []ErrorDescriptor {
	status, ok := rawResponse["status"].(map[string]interface{})
	if !ok {
		return nil
	}
	items, ok := status["warnings"].([]interface{})
	if !ok || len(items) == 0 {
		return nil
	}
	out := make([]ErrorDescriptor, len(items))
	for i, item := range items {
		out[i] = ParseErrorDescriptor(item)
	}
	return out
}

// composeHeadline derives the top-level message from a list of summaries:
// the summary verbatim when there is exactly one, a composite
// "[N errors collected] [1] ...; [2] ..." when there are more. The
// asymmetry between the two branches is a wire-level display convention
// shared with the API's other clients and must not be unified.
func composeHeadline(summaries []string) string {
	switch len(summaries) {
	case 0:
		return ""
	case 1:
		return summaries[0]
	default:
		parts := make([]string, len(summaries))
		for i, s := range summaries {
			parts[i] = fmt.Sprintf("[%d] %s", i+1, s)
		}
		return fmt.Sprintf("[%d errors collected] %s", len(summaries), strings.Join(parts, "; "))
	}
}
