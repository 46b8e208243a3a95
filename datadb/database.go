//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package datadb

import (
	"context"
	"net/http"

	"github.com/oracle/dataapi-go-sdk/datadb/dataerr"
)

// Database is a handle on one keyspace of a database. It builds
// schema-level commands and delegates them to its Commander; it never
// touches the HTTP transport, the codec or the timeout internals
// directly.
type Database struct {
	client    *Client
	keyspace  string
	commander *Commander
}

// Keyspace returns the keyspace this handle addresses.
func (db *Database) Keyspace() string {
	return db.keyspace
}

// Collection returns a handle on the named collection of this keyspace.
func (db *Database) Collection(name string) *Collection {
	path := db.commander.path + "/" + name
	return &Collection{
		db:        db,
		name:      name,
		commander: newCommander(&db.client.config, db.client.executor, dataerr.DataAPI, path, nil),
	}
}

// CommandOptions carries the settings accepted by schema-level
// operations.
type CommandOptions struct {
	// TimeoutOverrides are the caller's explicit per-call timeouts.
	TimeoutOverrides TimeoutOverrides
}

// collectionAdminTimeoutContext resolves the timeout for a
// collection-level schema operation: explicit overrides win as usual,
// otherwise the collection-admin default applies under its own label.
func (db *Database) collectionAdminTimeoutContext(opts *CommandOptions) *TimeoutContext {
	if opts != nil && (opts.TimeoutOverrides.Timeout != 0 ||
		opts.TimeoutOverrides.RequestTimeout != 0 ||
		opts.TimeoutOverrides.GeneralMethodTimeout != 0) {
		tc := resolveSingleRequestTimeout(opts.TimeoutOverrides, db.commander.defaults)
		return &tc
	}
	ms := toMillis(db.commander.defaults.DefaultCollectionAdminTimeout())
	return &TimeoutContext{
		NominalMS: ms,
		RequestMS: ms,
		Label:     labelCollectionAdminTimeout,
	}
}

// CreateCollection creates a collection in this keyspace. options, which
// may be nil, is the collection definition passed through verbatim, such
// as vector or indexing settings.
func (db *Database) CreateCollection(ctx context.Context, name string,
	options map[string]interface{}, opts *CommandOptions) error {

	definition := map[string]interface{}{"name": name}
	if options != nil {
		definition["options"] = options
	}
	payload := map[string]interface{}{"createCollection": definition}
	_, err := db.commander.Request(ctx, http.MethodPost, payload, &RequestOptions{
		TimeoutContext: db.collectionAdminTimeoutContext(opts),
	})
	return err
}

// DropCollection removes a collection and all of its documents from this
// keyspace.
func (db *Database) DropCollection(ctx context.Context, name string, opts *CommandOptions) error {
	payload := map[string]interface{}{
		"deleteCollection": map[string]interface{}{"name": name},
	}
	_, err := db.commander.Request(ctx, http.MethodPost, payload, &RequestOptions{
		TimeoutContext: db.collectionAdminTimeoutContext(opts),
	})
	return err
}

// ListCollectionNames returns the names of the collections in this
// keyspace.
func (db *Database) ListCollectionNames(ctx context.Context, opts *CommandOptions) ([]string, error) {
	payload := map[string]interface{}{
		"findCollections": map[string]interface{}{},
	}
	body, err := db.commander.Request(ctx, http.MethodPost, payload, &RequestOptions{
		TimeoutContext: db.collectionAdminTimeoutContext(opts),
	})
	if err != nil {
		return nil, err
	}

	status := statusOf(body)
	items, ok := status["collections"].([]interface{})
	if !ok {
		return nil, dataerr.NewUnexpectedResponseError(dataerr.DataAPI,
			"API response has no 'status.collections' field", body)
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if name, ok := item.(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Command sends an arbitrary command to this keyspace and returns the
// decoded response. It is the escape hatch for operations the typed
// surface does not cover.
func (db *Database) Command(ctx context.Context, command map[string]interface{},
	opts *RequestOptions) (map[string]interface{}, error) {

	return db.commander.Request(ctx, http.MethodPost, command, opts)
}

// statusOf returns the response's "status" object, or an empty map when
// absent.
func statusOf(body map[string]interface{}) map[string]interface{} {
	if status, ok := body["status"].(map[string]interface{}); ok {
		return status
	}
	return map[string]interface{}{}
}
