//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package datadb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/oracle/dataapi-go-sdk/datadb/dataerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDocStore is a minimal in-memory Data API endpoint covering the
// commands the Collection methods issue. Documents are keyed by their
// "_id"; inserting a duplicate reports a per-document error the way the
// API does, inserting the rest of the chunk regardless.
type fakeDocStore struct {
	mu       sync.Mutex
	ids      map[string]bool
	requests []map[string]interface{}

	// deleteBatches and updatePages script the paginated responses for
	// deleteMany and updateMany, consumed front to back.
	deleteBatches []map[string]interface{}
	updatePages   []map[string]interface{}

	// count is the canned countDocuments status.
	count map[string]interface{}
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{ids: map[string]bool{}}
}

func (s *fakeDocStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var command map[string]interface{}
	if err := json.Unmarshal(data, &command); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, command)
	var response map[string]interface{}
	switch {
	case command["insertMany"] != nil:
		response = s.insertMany(command["insertMany"].(map[string]interface{}))
	case command["insertOne"] != nil:
		args := command["insertOne"].(map[string]interface{})
		doc := args["document"].(map[string]interface{})
		id := fmt.Sprintf("%v", doc["_id"])
		s.ids[id] = true
		response = map[string]interface{}{
			"status": map[string]interface{}{"insertedIds": []interface{}{id}},
		}
	case command["deleteMany"] != nil:
		response = s.deleteBatches[0]
		s.deleteBatches = s.deleteBatches[1:]
	case command["updateMany"] != nil:
		response = s.updatePages[0]
		s.updatePages = s.updatePages[1:]
	case command["countDocuments"] != nil:
		response = map[string]interface{}{"status": s.count}
	case command["estimatedDocumentCount"] != nil:
		response = map[string]interface{}{"status": map[string]interface{}{"count": 12345}}
	default:
		response = map[string]interface{}{"status": map[string]interface{}{}}
	}
	s.mu.Unlock()

	body, _ := json.Marshal(response)
	w.Write(body)
}

func (s *fakeDocStore) insertMany(args map[string]interface{}) map[string]interface{} {
	docs := args["documents"].([]interface{})
	options, _ := args["options"].(map[string]interface{})
	ordered, _ := options["ordered"].(bool)

	var inserted []interface{}
	var errs []interface{}
	for _, item := range docs {
		doc := item.(map[string]interface{})
		id := fmt.Sprintf("%v", doc["_id"])
		if s.ids[id] {
			errs = append(errs, map[string]interface{}{
				"message":   fmt.Sprintf("Document already exists with the given _id: %s", id),
				"errorCode": "DOCUMENT_ALREADY_EXISTS",
			})
			if ordered {
				break
			}
			continue
		}
		s.ids[id] = true
		inserted = append(inserted, id)
	}

	response := map[string]interface{}{
		"status": map[string]interface{}{"insertedIds": inserted},
	}
	if len(errs) > 0 {
		response["errors"] = errs
	}
	return response
}

func (s *fakeDocStore) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func docsWithIDs(ids ...int) []map[string]interface{} {
	docs := make([]map[string]interface{}, len(ids))
	for i, id := range ids {
		docs[i] = map[string]interface{}{"_id": fmt.Sprintf("doc%d", id), "i": id}
	}
	return docs
}

func newCollectionAgainst(t *testing.T, handler http.Handler) *Collection {
	t.Helper()
	client, _ := newTestClient(t, handler, nil)
	return client.Database("ks").Collection("things")
}

func TestInsertOne(t *testing.T) {
	store := newFakeDocStore()
	coll := newCollectionAgainst(t, store)

	res, err := coll.InsertOne(context.Background(),
		map[string]interface{}{"_id": "doc1", "v": 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, "doc1", res.InsertedID)
}

func TestInsertManyPartialFailure(t *testing.T) {
	// Eight documents in chunks of two, sequentially; documents 1, 2 and
	// 4 already exist. Every chunk is attempted, the duplicates fail,
	// everything else lands.
	store := newFakeDocStore()
	store.ids["doc1"] = true
	store.ids["doc2"] = true
	store.ids["doc4"] = true
	coll := newCollectionAgainst(t, store)

	_, err := coll.InsertMany(context.Background(), docsWithIDs(0, 1, 2, 3, 4, 5, 6, 7),
		&InsertManyOptions{ChunkSize: 2, Concurrency: 1})
	require.Error(t, err)

	var ime *InsertManyError
	require.ErrorAs(t, err, &ime)
	assert.ElementsMatch(t,
		[]interface{}{"doc0", "doc3", "doc5", "doc6", "doc7"},
		ime.PartialResult.InsertedIDs)
	assert.Equal(t, 4, store.requestCount(), "all four chunks must be attempted")

	var rerr *dataerr.ResponseError
	require.ErrorAs(t, err, &rerr)
	assert.Len(t, rerr.ErrorDescriptors, 3, "one flattened descriptor per duplicate")
	assert.Len(t, rerr.DetailedErrorDescriptors, 3, "one detailed entry per failing request")
	for _, d := range rerr.ErrorDescriptors {
		assert.Equal(t, "DOCUMENT_ALREADY_EXISTS", d.ErrorCode)
	}
}

func TestInsertManyOrderedStopsAtFirstFailure(t *testing.T) {
	store := newFakeDocStore()
	store.ids["doc1"] = true
	coll := newCollectionAgainst(t, store)

	_, err := coll.InsertMany(context.Background(), docsWithIDs(0, 1, 2, 3, 4, 5, 6, 7),
		&InsertManyOptions{Ordered: true, ChunkSize: 2})
	require.Error(t, err)

	var ime *InsertManyError
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, []interface{}{"doc0"}, ime.PartialResult.InsertedIDs)
	assert.Equal(t, 1, store.requestCount(), "later chunks must not be sent")
}

func TestInsertManySuccess(t *testing.T) {
	store := newFakeDocStore()
	coll := newCollectionAgainst(t, store)

	res, err := coll.InsertMany(context.Background(), docsWithIDs(0, 1, 2, 3, 4),
		&InsertManyOptions{ChunkSize: 2, Concurrency: 3})
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]interface{}{"doc0", "doc1", "doc2", "doc3", "doc4"},
		res.InsertedIDs)
	assert.Equal(t, 3, store.requestCount())
}

func TestInsertManyOrderedRejectsConcurrency(t *testing.T) {
	store := newFakeDocStore()
	coll := newCollectionAgainst(t, store)

	_, err := coll.InsertMany(context.Background(), docsWithIDs(0, 1),
		&InsertManyOptions{Ordered: true, Concurrency: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ordered")
}

func TestFindOne(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"document":{"_id":"doc1","v":1}}}`))
	})
	coll := newCollectionAgainst(t, handler)

	doc, err := coll.FindOne(context.Background(),
		map[string]interface{}{"_id": "doc1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "doc1", doc["_id"])
}

func TestFindOneNoMatch(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"document":null}}`))
	})
	coll := newCollectionAgainst(t, handler)

	doc, err := coll.FindOne(context.Background(),
		map[string]interface{}{"_id": "nope"}, nil)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestDeleteManyPaginates(t *testing.T) {
	store := newFakeDocStore()
	store.deleteBatches = []map[string]interface{}{
		{"status": map[string]interface{}{"deletedCount": 20, "moreData": true}},
		{"status": map[string]interface{}{"deletedCount": 20, "moreData": true}},
		{"status": map[string]interface{}{"deletedCount": 5}},
	}
	coll := newCollectionAgainst(t, store)

	res, err := coll.DeleteMany(context.Background(),
		map[string]interface{}{"active": false}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(45), res.DeletedCount)
	assert.Len(t, res.RawResults, 3)
}

func TestDeleteManyPartialOnFailure(t *testing.T) {
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"status":{"deletedCount":20,"moreData":true}}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"errors":[{"message":"boom"}]}`))
	})
	coll := newCollectionAgainst(t, handler)

	_, err := coll.DeleteMany(context.Background(), map[string]interface{}{}, nil)
	require.Error(t, err)

	var dme *DeleteManyError
	require.ErrorAs(t, err, &dme)
	assert.Equal(t, int64(20), dme.PartialResult.DeletedCount)
	assert.True(t, dataerr.IsHTTPError(err), "the wrapper must expose the underlying failure")
}

func TestUpdateManyPaginates(t *testing.T) {
	store := newFakeDocStore()
	store.updatePages = []map[string]interface{}{
		{"status": map[string]interface{}{"matchedCount": 10, "modifiedCount": 9, "nextPageState": "p2"}},
		{"status": map[string]interface{}{"matchedCount": 4, "modifiedCount": 4}},
	}
	coll := newCollectionAgainst(t, store)

	res, err := coll.UpdateMany(context.Background(),
		map[string]interface{}{"active": true},
		map[string]interface{}{"$set": map[string]interface{}{"active": false}},
		nil)
	require.NoError(t, err)
	assert.Equal(t, int64(14), res.MatchedCount)
	assert.Equal(t, int64(13), res.ModifiedCount)

	// The second request must carry the page state forward.
	second := store.requests[1]["updateMany"].(map[string]interface{})
	options := second["options"].(map[string]interface{})
	assert.Equal(t, "p2", options["pageState"])
}

func TestCountDocuments(t *testing.T) {
	store := newFakeDocStore()
	store.count = map[string]interface{}{"count": 42}
	coll := newCollectionAgainst(t, store)

	n, err := coll.CountDocuments(context.Background(), map[string]interface{}{}, 100, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	// Exceeding the caller's bound.
	_, err = coll.CountDocuments(context.Background(), map[string]interface{}{}, 10, nil)
	var tme *TooManyDocumentsError
	require.ErrorAs(t, err, &tme)
	assert.False(t, tme.ServerMaxCountExceeded)

	// Exceeding the server's own ceiling.
	store.count = map[string]interface{}{"count": 1000, "moreData": true}
	_, err = coll.CountDocuments(context.Background(), map[string]interface{}{}, 2000, nil)
	require.ErrorAs(t, err, &tme)
	assert.True(t, tme.ServerMaxCountExceeded)

	_, err = coll.CountDocuments(context.Background(), map[string]interface{}{}, 0, nil)
	assert.Error(t, err, "upperBound must be positive")
}

func TestEstimatedDocumentCount(t *testing.T) {
	store := newFakeDocStore()
	coll := newCollectionAgainst(t, store)

	n, err := coll.EstimatedDocumentCount(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), n)
}

func TestInsertManyWrapperUnwraps(t *testing.T) {
	cause := dataerr.NewTimeoutError(dataerr.DataAPI, "Operation timed out.", dataerr.TimeoutGeneric)
	var err error = &InsertManyError{Cause: cause}
	assert.True(t, dataerr.IsTimeout(err))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "Operation timed out.", err.Error())
}
