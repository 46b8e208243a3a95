//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package datadb

// Cumulative-operation errors. A multi-request operation is not atomic:
// when it fails partway, the caller needs to know what state the database
// is actually in. Each of these errors wraps the underlying typed error
// and carries a partial result shaped exactly like the success-path
// return value, reflecting every sub-operation that completed before the
// failure.

// InsertManyError is returned when an InsertMany operation fails after
// possibly inserting some of its documents.
type InsertManyError struct {
	// Cause is the underlying error: a *dataerr.ResponseError when the
	// API reported per-document failures, or the transport/timeout error
	// that interrupted the operation.
	Cause error

	// PartialResult reflects the documents inserted before the failure.
	PartialResult InsertManyResult
}

// Error implements the error interface.
func (e *InsertManyError) Error() string {
	return e.Cause.Error()
}

// Unwrap returns the underlying error, making the dataerr predicates and
// errors.As work through this wrapper.
func (e *InsertManyError) Unwrap() error {
	return e.Cause
}

// DeleteManyError is returned when a DeleteMany operation fails after
// possibly deleting some documents.
type DeleteManyError struct {
	// Cause is the underlying error.
	Cause error

	// PartialResult reflects the deletions completed before the failure.
	PartialResult DeleteManyResult
}

// Error implements the error interface.
func (e *DeleteManyError) Error() string {
	return e.Cause.Error()
}

// Unwrap returns the underlying error.
func (e *DeleteManyError) Unwrap() error {
	return e.Cause
}

// UpdateManyError is returned when an UpdateMany operation fails after
// possibly updating some documents.
type UpdateManyError struct {
	// Cause is the underlying error.
	Cause error

	// PartialResult reflects the updates completed before the failure.
	PartialResult UpdateManyResult
}

// Error implements the error interface.
func (e *UpdateManyError) Error() string {
	return e.Cause.Error()
}

// Unwrap returns the underlying error.
func (e *UpdateManyError) Unwrap() error {
	return e.Cause
}

// TooManyDocumentsError is returned by CountDocuments when the count
// exceeds either the caller's upper bound or the hard limit imposed by
// the API.
type TooManyDocumentsError struct {
	// ServerMaxCountExceeded is true when the count limit imposed by the
	// API was reached. In that case increasing the upper bound in the
	// method invocation is of no help.
	ServerMaxCountExceeded bool

	text string
}

// Error implements the error interface.
func (e *TooManyDocumentsError) Error() string {
	return e.text
}
