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
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oracle/dataapi-go-sdk/datadb/dataerr"
)

const (
	// defaultInsertManyChunkSize is the number of documents sent per
	// insertMany request when the caller does not specify one.
	defaultInsertManyChunkSize = 50

	// defaultInsertManyConcurrency is the worker count for unordered
	// InsertMany when the caller does not specify one.
	defaultInsertManyConcurrency = 20

	// serverMaxCountLimit is the hard ceiling the API imposes on
	// countDocuments results.
	serverMaxCountLimit = 1000
)

// Collection is a handle on one collection. Its methods build commands
// and delegate them to the Commander, reshaping the decoded responses
// into typed results.
type Collection struct {
	db        *Database
	name      string
	commander *Commander
}

// Name returns the collection name.
func (coll *Collection) Name() string {
	return coll.name
}

// Database returns the Database handle this collection was derived from.
func (coll *Collection) Database() *Database {
	return coll.db
}

// InsertOneOptions carries the settings accepted by InsertOne.
type InsertOneOptions struct {
	// TimeoutOverrides are the caller's explicit per-call timeouts.
	TimeoutOverrides TimeoutOverrides
}

// InsertOne inserts a single document.
func (coll *Collection) InsertOne(ctx context.Context, document map[string]interface{},
	opts *InsertOneOptions) (InsertOneResult, error) {

	var overrides TimeoutOverrides
	if opts != nil {
		overrides = opts.TimeoutOverrides
	}
	payload := map[string]interface{}{
		"insertOne": map[string]interface{}{"document": document},
	}
	body, err := coll.commander.Request(ctx, http.MethodPost, payload, &RequestOptions{
		TimeoutOverrides: overrides,
	})
	if err != nil {
		return InsertOneResult{}, err
	}

	ids, ok := statusOf(body)["insertedIds"].([]interface{})
	if !ok || len(ids) == 0 {
		return InsertOneResult{}, dataerr.NewUnexpectedResponseError(dataerr.DataAPI,
			"API response has no 'status.insertedIds' field", body)
	}
	return InsertOneResult{
		InsertedID: ids[0],
		RawResult:  body,
	}, nil
}

// InsertManyOptions carries the settings accepted by InsertMany.
type InsertManyOptions struct {
	// Ordered selects sequential left-to-right insertion that stops at
	// the first failure. Unordered mode (the default) issues chunks with
	// bounded parallelism and attempts all of them.
	Ordered bool

	// ChunkSize is the number of documents per request, 50 by default.
	ChunkSize int

	// Concurrency bounds the number of in-flight requests in unordered
	// mode, 20 by default. It must be 1 in ordered mode.
	Concurrency int

	// TimeoutOverrides are the caller's explicit timeouts: the
	// whole-method budget and the per-request cap.
	TimeoutOverrides TimeoutOverrides
}

// insertManyChunkOutcome records what one insertMany request achieved.
type insertManyChunkOutcome struct {
	ids       []interface{}
	raw       map[string]interface{}
	command   map[string]interface{}
	apiErrors bool
	err       error
	done      bool
}

// InsertMany inserts the documents, splitting them into chunks of
// ChunkSize, each sent as one insertMany request under the shared
// whole-method budget.
//
// In ordered mode chunk i+1 is never started until chunk i has fully
// completed, and the operation stops at the first failure. In unordered
// mode up to Concurrency chunks are in flight at once and every chunk is
// attempted regardless of other chunks' failures; no ordering guarantee
// exists between chunks, but InsertedIDs are reported keyed to their
// originating input order.
//
// On failure the returned error is an *InsertManyError carrying a
// partial result that reflects every document inserted before (or, in
// unordered mode, despite) the failure.
func (coll *Collection) InsertMany(ctx context.Context, documents []map[string]interface{},
	opts *InsertManyOptions) (InsertManyResult, error) {

	if opts == nil {
		opts = &InsertManyOptions{}
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultInsertManyChunkSize
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		if opts.Ordered {
			concurrency = 1
		} else {
			concurrency = defaultInsertManyConcurrency
		}
	}
	if opts.Ordered && concurrency > 1 {
		return InsertManyResult{}, errors.New("cannot run ordered InsertMany concurrently")
	}

	manager, cap := coll.multiCallBudget(opts.TimeoutOverrides)

	numChunks := (len(documents) + chunkSize - 1) / chunkSize
	outcomes := make([]insertManyChunkOutcome, numChunks)

	runChunk := func(i int) insertManyChunkOutcome {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(documents) {
			end = len(documents)
		}
		chunk := documents[start:end]

		command := map[string]interface{}{
			"insertMany": map[string]interface{}{
				"documents": chunk,
				"options": map[string]interface{}{
					"ordered":                 opts.Ordered,
					"returnDocumentResponses": false,
				},
			},
		}

		tc, err := manager.RemainingTimeout(cap, labelRequestTimeout)
		if err != nil {
			return insertManyChunkOutcome{command: command, err: err, done: true}
		}

		body, err := coll.commander.Request(ctx, http.MethodPost, command, &RequestOptions{
			TimeoutContext:    &tc,
			SkipAPIErrorCheck: true,
		})
		if err != nil {
			return insertManyChunkOutcome{command: command, err: err, done: true}
		}

		out := insertManyChunkOutcome{command: command, raw: body, done: true}
		if ids, ok := statusOf(body)["insertedIds"].([]interface{}); ok {
			out.ids = ids
		}
		if items, ok := body["errors"].([]interface{}); ok && len(items) > 0 {
			out.apiErrors = true
		}
		return out
	}

	if concurrency == 1 {
		for i := 0; i < numChunks; i++ {
			outcomes[i] = runChunk(i)
			if opts.Ordered && (outcomes[i].err != nil || outcomes[i].apiErrors) {
				break
			}
		}
	} else {
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for i := 0; i < numChunks; i++ {
			i := i
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				out := runChunk(i)
				mu.Lock()
				outcomes[i] = out
				mu.Unlock()
				return nil
			})
		}
		// Workers record their outcomes rather than returning errors, so
		// every chunk is attempted.
		_ = g.Wait()
	}

	var result InsertManyResult
	var failedCommands, failedResponses []map[string]interface{}
	var hardErr error
	for _, out := range outcomes {
		if !out.done {
			continue
		}
		result.InsertedIDs = append(result.InsertedIDs, out.ids...)
		if out.raw != nil {
			result.RawResults = append(result.RawResults, out.raw)
		}
		if out.err != nil && hardErr == nil {
			hardErr = out.err
		}
		if out.apiErrors {
			failedCommands = append(failedCommands, out.command)
			failedResponses = append(failedResponses, out.raw)
		}
	}

	if hardErr != nil {
		return InsertManyResult{}, &InsertManyError{Cause: hardErr, PartialResult: result}
	}
	if len(failedResponses) > 0 {
		cause := dataerr.NewResponseErrorFromResponses(dataerr.DataAPI,
			failedCommands, failedResponses)
		return InsertManyResult{}, &InsertManyError{Cause: cause, PartialResult: result}
	}
	return result, nil
}

// FindOneOptions carries the settings accepted by FindOne.
type FindOneOptions struct {
	// Projection selects which fields of the document to return.
	Projection map[string]interface{}

	// Sort imposes an ordering before picking the first match. It may
	// include a "$vector" member for similarity search.
	Sort map[string]interface{}

	// TimeoutOverrides are the caller's explicit per-call timeouts.
	TimeoutOverrides TimeoutOverrides
}

// FindOne returns the first document matching the filter, or nil when
// nothing matches.
func (coll *Collection) FindOne(ctx context.Context, filter map[string]interface{},
	opts *FindOneOptions) (map[string]interface{}, error) {

	if opts == nil {
		opts = &FindOneOptions{}
	}
	args := map[string]interface{}{}
	if filter != nil {
		args["filter"] = filter
	}
	if opts.Projection != nil {
		args["projection"] = opts.Projection
	}
	if opts.Sort != nil {
		args["sort"] = opts.Sort
	}
	payload := map[string]interface{}{"findOne": args}

	body, err := coll.commander.Request(ctx, http.MethodPost, payload, &RequestOptions{
		TimeoutOverrides: opts.TimeoutOverrides,
	})
	if err != nil {
		return nil, err
	}

	data, ok := body["data"].(map[string]interface{})
	if !ok {
		return nil, dataerr.NewUnexpectedResponseError(dataerr.DataAPI,
			"API response has no 'data' field", body)
	}
	document, _ := data["document"].(map[string]interface{})
	return document, nil
}

// DeleteManyOptions carries the settings accepted by DeleteMany.
type DeleteManyOptions struct {
	// TimeoutOverrides are the caller's explicit timeouts: the
	// whole-method budget and the per-request cap.
	TimeoutOverrides TimeoutOverrides
}

// DeleteMany deletes every document matching the filter. The API deletes
// in bounded batches, so one call may span several requests under the
// shared whole-method budget; chunk i+1 never starts before chunk i has
// completed.
//
// On failure the returned error is a *DeleteManyError carrying the count
// of deletions that completed before the failure.
func (coll *Collection) DeleteMany(ctx context.Context, filter map[string]interface{},
	opts *DeleteManyOptions) (DeleteManyResult, error) {

	if opts == nil {
		opts = &DeleteManyOptions{}
	}
	manager, cap := coll.multiCallBudget(opts.TimeoutOverrides)

	var result DeleteManyResult
	for {
		tc, err := manager.RemainingTimeout(cap, labelRequestTimeout)
		if err != nil {
			return DeleteManyResult{}, &DeleteManyError{Cause: err, PartialResult: result}
		}

		payload := map[string]interface{}{
			"deleteMany": map[string]interface{}{"filter": filter},
		}
		body, err := coll.commander.Request(ctx, http.MethodPost, payload, &RequestOptions{
			TimeoutContext: &tc,
		})
		if err != nil {
			return DeleteManyResult{}, &DeleteManyError{Cause: err, PartialResult: result}
		}

		status := statusOf(body)
		if n, ok := asInt64(status["deletedCount"]); ok {
			result.DeletedCount += n
		}
		result.RawResults = append(result.RawResults, body)

		if more, _ := status["moreData"].(bool); !more {
			return result, nil
		}
	}
}

// UpdateManyOptions carries the settings accepted by UpdateMany.
type UpdateManyOptions struct {
	// Upsert inserts a new document from the filter and update when
	// nothing matches.
	Upsert bool

	// TimeoutOverrides are the caller's explicit timeouts: the
	// whole-method budget and the per-request cap.
	TimeoutOverrides TimeoutOverrides
}

// UpdateMany applies the update to every document matching the filter,
// paginating through matches as directed by the API under the shared
// whole-method budget.
//
// On failure the returned error is an *UpdateManyError carrying the
// counts accumulated before the failure.
func (coll *Collection) UpdateMany(ctx context.Context, filter, update map[string]interface{},
	opts *UpdateManyOptions) (UpdateManyResult, error) {

	if opts == nil {
		opts = &UpdateManyOptions{}
	}
	manager, cap := coll.multiCallBudget(opts.TimeoutOverrides)

	var result UpdateManyResult
	var pageState interface{}
	for {
		tc, err := manager.RemainingTimeout(cap, labelRequestTimeout)
		if err != nil {
			return UpdateManyResult{}, &UpdateManyError{Cause: err, PartialResult: result}
		}

		options := map[string]interface{}{"upsert": opts.Upsert}
		if pageState != nil {
			options["pageState"] = pageState
		}
		payload := map[string]interface{}{
			"updateMany": map[string]interface{}{
				"filter":  filter,
				"update":  update,
				"options": options,
			},
		}
		body, err := coll.commander.Request(ctx, http.MethodPost, payload, &RequestOptions{
			TimeoutContext: &tc,
		})
		if err != nil {
			return UpdateManyResult{}, &UpdateManyError{Cause: err, PartialResult: result}
		}

		status := statusOf(body)
		if n, ok := asInt64(status["matchedCount"]); ok {
			result.MatchedCount += n
		}
		if n, ok := asInt64(status["modifiedCount"]); ok {
			result.ModifiedCount += n
		}
		result.RawResults = append(result.RawResults, body)

		pageState = status["nextPageState"]
		if pageState == nil {
			return result, nil
		}
	}
}

// CountOptions carries the settings accepted by the counting operations.
type CountOptions struct {
	// TimeoutOverrides are the caller's explicit per-call timeouts.
	TimeoutOverrides TimeoutOverrides
}

// CountDocuments counts the documents matching the filter, exactly. The
// count must not exceed upperBound, nor the hard ceiling the API imposes;
// either excess is reported as a *TooManyDocumentsError.
func (coll *Collection) CountDocuments(ctx context.Context, filter map[string]interface{},
	upperBound int64, opts *CountOptions) (int64, error) {

	if upperBound <= 0 {
		return 0, errors.New("upperBound must be a positive number")
	}
	var overrides TimeoutOverrides
	if opts != nil {
		overrides = opts.TimeoutOverrides
	}

	payload := map[string]interface{}{
		"countDocuments": map[string]interface{}{"filter": filter},
	}
	body, err := coll.commander.Request(ctx, http.MethodPost, payload, &RequestOptions{
		TimeoutOverrides: overrides,
	})
	if err != nil {
		return 0, err
	}

	status := statusOf(body)
	if more, _ := status["moreData"].(bool); more {
		return 0, &TooManyDocumentsError{
			ServerMaxCountExceeded: true,
			text: fmt.Sprintf("the count exceeds the maximum count the API can provide (%d)",
				serverMaxCountLimit),
		}
	}
	count, ok := asInt64(status["count"])
	if !ok {
		return 0, dataerr.NewUnexpectedResponseError(dataerr.DataAPI,
			"API response has no 'status.count' field", body)
	}
	if count > upperBound {
		return 0, &TooManyDocumentsError{
			text: fmt.Sprintf("the count exceeds the provided upper bound (%d)", upperBound),
		}
	}
	return count, nil
}

// EstimatedDocumentCount returns the server's cheap estimate of the total
// number of documents in the collection.
func (coll *Collection) EstimatedDocumentCount(ctx context.Context, opts *CountOptions) (int64, error) {
	var overrides TimeoutOverrides
	if opts != nil {
		overrides = opts.TimeoutOverrides
	}

	payload := map[string]interface{}{
		"estimatedDocumentCount": map[string]interface{}{},
	}
	body, err := coll.commander.Request(ctx, http.MethodPost, payload, &RequestOptions{
		TimeoutOverrides: overrides,
	})
	if err != nil {
		return 0, err
	}

	count, ok := asInt64(statusOf(body)["count"])
	if !ok {
		return 0, dataerr.NewUnexpectedResponseError(dataerr.DataAPI,
			"API response has no 'status.count' field", body)
	}
	return count, nil
}

// multiCallBudget builds the timeout manager and per-request cap for a
// multi-request operation from the caller's overrides and the configured
// defaults.
func (coll *Collection) multiCallBudget(overrides TimeoutOverrides) (*MultiCallTimeoutManager, time.Duration) {
	overall := overrides.GeneralMethodTimeout
	overallLabel := labelGeneralMethodTimeout
	if overall == 0 {
		if overrides.Timeout != 0 {
			overall = overrides.Timeout
			overallLabel = labelTimeout
		} else {
			overall = coll.commander.defaults.DefaultGeneralMethodTimeout()
		}
	}
	cap := overrides.RequestTimeout
	if cap == 0 {
		cap = coll.commander.defaults.DefaultRequestTimeout()
	}
	return NewMultiCallTimeoutManager(overall, overallLabel, coll.commander.family), cap
}

// asInt64 extracts an integer from a decoded JSON number, which may be a
// float64 or, with AllowDecimals enabled, a json.Number.
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}
