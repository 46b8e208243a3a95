//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package datadb

import (
	"errors"

	"github.com/oracle/dataapi-go-sdk/datadb/dataerr"
	"github.com/oracle/dataapi-go-sdk/datadb/httputil"
	"github.com/oracle/dataapi-go-sdk/internal/sdkutil"
)

// Client is the entry point of the SDK. It holds the configuration and
// the single pooled HTTP transport shared by every resource object
// derived from it.
//
// A Client is immutable and safe for concurrent use by multiple
// goroutines.
type Client struct {
	config   Config
	executor httputil.RequestExecutor
}

// NewClient creates a Client with the specified configuration. The Config
// instance is copied; later modifications of it have no effect on the
// Client.
func NewClient(config Config) (*Client, error) {
	cfg := config
	if err := cfg.parseEndpoint(); err != nil {
		return nil, err
	}
	if cfg.protocol == "https" {
		cfg.HTTPConfig.UseHTTPS = true
	}

	executor, err := httputil.NewHTTPClient(cfg.HTTPConfig)
	if err != nil {
		return nil, err
	}

	return &Client{
		config:   cfg,
		executor: executor,
	}, nil
}

// Version returns the SDK version.
func (c *Client) Version() string {
	return sdkutil.SDKVersion()
}

// Database returns a handle on the given keyspace of the database behind
// the configured endpoint. An empty keyspace selects the default
// keyspace.
func (c *Client) Database(keyspace string) *Database {
	if keyspace == "" {
		keyspace = DefaultKeyspace
	}
	path := sdkutil.DataAPIVersionPath + "/" + keyspace
	return &Database{
		client:    c,
		keyspace:  keyspace,
		commander: newCommander(&c.config, c.executor, dataerr.DataAPI, path, nil),
	}
}

// Admin returns a handle on the DevOps API for database lifecycle
// management. The configuration's DevOpsEndpoint must be set.
func (c *Client) Admin() (*AdminClient, error) {
	if c.config.DevOpsEndpoint == "" {
		return nil, errors.New("DevOpsEndpoint must be specified to use the admin client")
	}

	protocol, host, port, err := parseEndpoint(c.config.DevOpsEndpoint)
	if err != nil {
		return nil, err
	}
	adminCfg := c.config
	adminCfg.Endpoint = protocol + "://" + host + ":" + port

	return &AdminClient{
		client:       c,
		commander:    newCommander(&adminCfg, c.executor, dataerr.DevOpsAPI, sdkutil.DevOpsAPIVersionPath, nil),
		PollInterval: defaultAdminPollInterval,
	}, nil
}
