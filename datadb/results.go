//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package datadb

// InsertOneResult represents the outcome of an InsertOne operation.
type InsertOneResult struct {
	// InsertedID is the identifier of the inserted document, as assigned
	// by the server or supplied in the document's _id field.
	InsertedID interface{}

	// RawResult is the decoded API response.
	RawResult map[string]interface{}
}

// InsertManyResult represents the outcome of an InsertMany operation.
// When an InsertManyError is returned instead, its PartialResult has this
// same shape and reflects the documents inserted before the failure.
type InsertManyResult struct {
	// InsertedIDs are the identifiers of the inserted documents, keyed
	// to their originating input order.
	InsertedIDs []interface{}

	// RawResults are the decoded API responses, one per request issued.
	RawResults []map[string]interface{}
}

// DeleteManyResult represents the outcome of a DeleteMany operation.
type DeleteManyResult struct {
	// DeletedCount is the total number of documents deleted, accumulated
	// across every request of the operation.
	DeletedCount int64

	// RawResults are the decoded API responses, one per request issued.
	RawResults []map[string]interface{}
}

// UpdateManyResult represents the outcome of an UpdateMany operation.
type UpdateManyResult struct {
	// MatchedCount is the total number of documents matched.
	MatchedCount int64

	// ModifiedCount is the total number of documents modified.
	ModifiedCount int64

	// RawResults are the decoded API responses, one per request issued.
	RawResults []map[string]interface{}
}

// DatabaseInfo describes one database as reported by the DevOps API.
type DatabaseInfo struct {
	// ID is the database identifier.
	ID string

	// Name is the database name.
	Name string

	// Status is the lifecycle status, such as "PENDING", "ACTIVE",
	// "TERMINATING" or "TERMINATED".
	Status string

	// Region is the cloud region hosting the database.
	Region string

	// Raw is the full decoded DevOps API item.
	Raw map[string]interface{}
}

// parseDatabaseInfo extracts a DatabaseInfo from one decoded DevOps API
// database object.
func parseDatabaseInfo(raw map[string]interface{}) DatabaseInfo {
	di := DatabaseInfo{Raw: raw}
	if id, ok := raw["id"].(string); ok {
		di.ID = id
	}
	if status, ok := raw["status"].(string); ok {
		di.Status = status
	}
	if info, ok := raw["info"].(map[string]interface{}); ok {
		if name, ok := info["name"].(string); ok {
			di.Name = name
		}
		if region, ok := info["region"].(string); ok {
			di.Region = region
		}
	}
	return di
}
