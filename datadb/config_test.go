//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package datadb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"db.example.com", "https://db.example.com:443", true},
		{"db.example.com:443", "https://db.example.com:443", true},
		{"db.example.com:8888", "http://db.example.com:8888", true},
		{"https://db.example.com", "https://db.example.com:443", true},
		{"http://db.example.com", "http://db.example.com:8080", true},
		{"http://db.example.com:9090", "http://db.example.com:9090", true},
		{"https://db.example.com:8080", "https://db.example.com:8080", true},
		{"https://db.example.com/", "https://db.example.com:443", true},
		{"localhost:8181", "http://localhost:8181", true},

		{"", "", false},
		{"ftp://db.example.com", "", false},
		{"https://", "", false},
		{"db.example.com:-1", "", false},
		{"db.example.com:port", "", false},
	}

	for _, r := range tests {
		cfg := &Config{Endpoint: r.input}
		err := cfg.parseEndpoint()
		if !r.ok {
			assert.Errorf(t, err, "parseEndpoint(%q) should have failed", r.input)
			continue
		}
		if assert.NoErrorf(t, err, "parseEndpoint(%q) got error %v", r.input, err) {
			assert.Equalf(t, r.want, cfg.Endpoint, "parseEndpoint(%q) got unexpected result", r.input)
		}
	}
}

func TestTimeoutOptionDefaults(t *testing.T) {
	var opts *TimeoutOptions
	assert.Equal(t, 10*time.Second, opts.DefaultRequestTimeout())
	assert.Equal(t, 30*time.Second, opts.DefaultGeneralMethodTimeout())
	assert.Equal(t, 60*time.Second, opts.DefaultCollectionAdminTimeout())
	assert.Equal(t, 10*time.Minute, opts.DefaultDatabaseAdminTimeout())

	opts = &TimeoutOptions{
		RequestTimeout:       time.Second,
		GeneralMethodTimeout: 2 * time.Second,
	}
	assert.Equal(t, time.Second, opts.DefaultRequestTimeout())
	assert.Equal(t, 2*time.Second, opts.DefaultGeneralMethodTimeout())
	assert.Equal(t, 60*time.Second, opts.DefaultCollectionAdminTimeout())
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)

	c, err := NewClient(Config{Endpoint: "http://localhost:8181", Token: "t"})
	if assert.NoError(t, err) {
		assert.NotEmpty(t, c.Version())
	}
}

func TestClientDatabaseDefaults(t *testing.T) {
	c, err := NewClient(Config{Endpoint: "http://localhost:8181", Token: "t"})
	if !assert.NoError(t, err) {
		return
	}
	db := c.Database("")
	assert.Equal(t, DefaultKeyspace, db.Keyspace())

	db = c.Database("my_keyspace")
	assert.Equal(t, "my_keyspace", db.Keyspace())

	// Admin needs a control-plane endpoint.
	_, err = c.Admin()
	assert.Error(t, err)
}
