//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package datadb

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/oracle/dataapi-go-sdk/datadb/dataerr"
)

const (
	// defaultAdminPollInterval is the pause between successive status
	// polls of a database lifecycle operation.
	defaultAdminPollInterval = 15 * time.Second

	// Terminal lifecycle statuses reported by the DevOps API.
	DatabaseStatusActive     = "ACTIVE"
	DatabaseStatusTerminated = "TERMINATED"
	DatabaseStatusError      = "ERROR"
)

// AdminClient is a handle on the DevOps API for database lifecycle
// management. It is obtained from Client.Admin.
type AdminClient struct {
	client    *Client
	commander *Commander

	// PollInterval is the pause between successive status polls during
	// lifecycle operations. It defaults to 15 seconds.
	PollInterval time.Duration
}

// AdminOptions carries the settings accepted by the lifecycle operations.
type AdminOptions struct {
	// TimeoutOverrides are the caller's explicit timeouts. For the
	// polling operations the whole-method budget covers the initial
	// request and every subsequent poll.
	TimeoutOverrides TimeoutOverrides
}

// adminBudget builds the timeout manager and per-request cap for a
// lifecycle operation, which polls under the database-admin budget.
func (a *AdminClient) adminBudget(overrides TimeoutOverrides) (*MultiCallTimeoutManager, time.Duration) {
	overall := overrides.GeneralMethodTimeout
	overallLabel := labelGeneralMethodTimeout
	if overall == 0 {
		if overrides.Timeout != 0 {
			overall = overrides.Timeout
			overallLabel = labelTimeout
		} else {
			overall = a.commander.defaults.DefaultDatabaseAdminTimeout()
			overallLabel = labelDatabaseAdminTimeout
		}
	}
	cap := overrides.RequestTimeout
	if cap == 0 {
		cap = a.commander.defaults.DefaultRequestTimeout()
	}
	return NewMultiCallTimeoutManager(overall, overallLabel, dataerr.DevOpsAPI), cap
}

// ListDatabases returns the databases visible to the configured token.
func (a *AdminClient) ListDatabases(ctx context.Context, opts *AdminOptions) ([]DatabaseInfo, error) {
	var overrides TimeoutOverrides
	if opts != nil {
		overrides = opts.TimeoutOverrides
	}

	// The response is a top-level JSON array, so the object-shaped
	// Request path does not apply.
	_, parsed, err := a.commander.RequestRaw(ctx, http.MethodGet, nil, &RequestOptions{
		AdditionalPath:   "databases",
		TimeoutOverrides: overrides,
	})
	if err != nil {
		return nil, err
	}

	items, ok := parsed.([]interface{})
	if !ok {
		return nil, dataerr.NewUnexpectedResponseError(dataerr.DevOpsAPI,
			"API response for 'databases' is not a JSON array", nil)
	}
	infos := make([]DatabaseInfo, 0, len(items))
	for _, item := range items {
		if raw, ok := item.(map[string]interface{}); ok {
			infos = append(infos, parseDatabaseInfo(raw))
		}
	}
	return infos, nil
}

// GetDatabase returns the descriptor of one database.
func (a *AdminClient) GetDatabase(ctx context.Context, id string, opts *AdminOptions) (DatabaseInfo, error) {
	var overrides TimeoutOverrides
	if opts != nil {
		overrides = opts.TimeoutOverrides
	}

	body, err := a.commander.Request(ctx, http.MethodGet, nil, &RequestOptions{
		AdditionalPath:   "databases/" + id,
		TimeoutOverrides: overrides,
	})
	if err != nil {
		return DatabaseInfo{}, err
	}
	return parseDatabaseInfo(body), nil
}

// getDatabaseWithin is the polling variant of GetDatabase, drawing its
// timeout from the operation's shared budget.
func (a *AdminClient) getDatabaseWithin(ctx context.Context, id string,
	manager *MultiCallTimeoutManager, cap time.Duration) (DatabaseInfo, error) {

	tc, err := manager.RemainingTimeout(cap, labelRequestTimeout)
	if err != nil {
		return DatabaseInfo{}, err
	}
	body, err := a.commander.Request(ctx, http.MethodGet, nil, &RequestOptions{
		AdditionalPath: "databases/" + id,
		TimeoutContext: &tc,
	})
	if err != nil {
		return DatabaseInfo{}, err
	}
	return parseDatabaseInfo(body), nil
}

// waitInterval pauses for the poll interval, honoring context
// cancellation.
func (a *AdminClient) waitInterval(ctx context.Context) error {
	interval := a.PollInterval
	if interval <= 0 {
		interval = defaultAdminPollInterval
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// CreateDatabaseOptions describes the database to create.
type CreateDatabaseOptions struct {
	// Name is the database name. Required.
	Name string

	// Region is the cloud region to host the database in. Required.
	Region string

	// CloudProvider is the hosting cloud, such as "AWS", "GCP" or
	// "AZURE". Required.
	CloudProvider string

	// Keyspace is the initial keyspace name. Empty selects the default
	// keyspace.
	Keyspace string

	// WaitUntilActive blocks the call until the database reaches ACTIVE.
	// When false the method returns as soon as the creation request is
	// accepted.
	WaitUntilActive bool

	// TimeoutOverrides are the caller's explicit timeouts.
	TimeoutOverrides TimeoutOverrides
}

// CreateDatabase creates a database and, when WaitUntilActive is set,
// polls its status until it reaches ACTIVE, an ERROR status, or the
// database-admin budget runs out.
func (a *AdminClient) CreateDatabase(ctx context.Context, opts CreateDatabaseOptions) (DatabaseInfo, error) {
	if opts.Name == "" || opts.Region == "" || opts.CloudProvider == "" {
		return DatabaseInfo{}, errors.New("Name, Region and CloudProvider must be specified")
	}
	keyspace := opts.Keyspace
	if keyspace == "" {
		keyspace = DefaultKeyspace
	}
	manager, cap := a.adminBudget(opts.TimeoutOverrides)

	payload := map[string]interface{}{
		"name":          opts.Name,
		"region":        opts.Region,
		"cloudProvider": opts.CloudProvider,
		"keyspace":      keyspace,
	}
	tc, err := manager.RemainingTimeout(cap, labelRequestTimeout)
	if err != nil {
		return DatabaseInfo{}, err
	}
	resp, parsed, err := a.commander.RequestRaw(ctx, http.MethodPost, payload, &RequestOptions{
		AdditionalPath: "databases",
		TimeoutContext: &tc,
	})
	// A successful creation may carry an empty body, with the new
	// database addressed only by the Location header.
	if err != nil && !(dataerr.IsFaultyResponse(err) && resp != nil && len(resp.Body) == 0) {
		return DatabaseInfo{}, err
	}

	id := databaseIDFromResponse(resp.Headers.Get("Location"), parsed)
	if id == "" {
		return DatabaseInfo{}, dataerr.NewUnexpectedResponseError(dataerr.DevOpsAPI,
			"API response carries no database identifier", nil)
	}
	if !opts.WaitUntilActive {
		return DatabaseInfo{ID: id, Status: "PENDING"}, nil
	}

	for {
		info, err := a.getDatabaseWithin(ctx, id, manager, cap)
		if err != nil {
			return DatabaseInfo{}, err
		}
		switch info.Status {
		case DatabaseStatusActive:
			return info, nil
		case DatabaseStatusError, DatabaseStatusTerminated:
			return info, dataerr.NewUnexpectedResponseError(dataerr.DevOpsAPI,
				"database entered status "+info.Status+" while waiting for ACTIVE", info.Raw)
		}
		if err := a.waitInterval(ctx); err != nil {
			return DatabaseInfo{}, err
		}
	}
}

// databaseIDFromResponse extracts the new database identifier from the
// Location header, falling back to the response body.
func databaseIDFromResponse(location string, parsed interface{}) string {
	if location != "" {
		trimmed := strings.TrimRight(location, "/")
		if idx := strings.LastIndexByte(trimmed, '/'); idx >= 0 {
			return trimmed[idx+1:]
		}
		return trimmed
	}
	if body, ok := parsed.(map[string]interface{}); ok {
		if id, ok := body["id"].(string); ok {
			return id
		}
	}
	return ""
}

// TerminateDatabase requests termination of a database and, when wait is
// true, polls until it reaches TERMINATED or disappears.
func (a *AdminClient) TerminateDatabase(ctx context.Context, id string, wait bool, opts *AdminOptions) error {
	var overrides TimeoutOverrides
	if opts != nil {
		overrides = opts.TimeoutOverrides
	}
	manager, cap := a.adminBudget(overrides)

	tc, err := manager.RemainingTimeout(cap, labelRequestTimeout)
	if err != nil {
		return err
	}
	resp, _, err := a.commander.RequestRaw(ctx, http.MethodPost, nil, &RequestOptions{
		AdditionalPath: "databases/" + id + "/terminate",
		TimeoutContext: &tc,
	})
	// Termination is accepted with an empty body.
	if err != nil && !(dataerr.IsFaultyResponse(err) && resp != nil && len(resp.Body) == 0) {
		return err
	}
	if !wait {
		return nil
	}

	for {
		info, err := a.getDatabaseWithin(ctx, id, manager, cap)
		if err != nil {
			// A database that is gone entirely is terminated.
			var herr *dataerr.HTTPError
			if errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound {
				return nil
			}
			return err
		}
		if info.Status == DatabaseStatusTerminated {
			return nil
		}
		if err := a.waitInterval(ctx); err != nil {
			return err
		}
	}
}
