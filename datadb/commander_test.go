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
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/oracle/dataapi-go-sdk/datadb/dataerr"
	"github.com/oracle/dataapi-go-sdk/datadb/observer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingObserver collects every event it receives.
type recordingObserver struct {
	mu     sync.Mutex
	events []observer.Event
}

func (o *recordingObserver) Receive(event observer.Event, sender, functionName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) byKind(kind observer.EventKind) []observer.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []observer.Event
	for _, e := range o.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// newTestClient starts an httptest server with the given handler and
// returns a Client pointed at it.
func newTestClient(t *testing.T, handler http.Handler, mutate func(*Config)) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := Config{Endpoint: server.URL, Token: "test-token"}
	if mutate != nil {
		mutate(&cfg)
	}
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client, server
}

func TestCommanderRequestHeadersAndURL(t *testing.T) {
	var gotPath, gotToken, gotContentType, gotEmbedding string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("Token")
		gotContentType = r.Header.Get("Content-Type")
		gotEmbedding = r.Header.Get("X-Embedding-Api-Key")
		w.Write([]byte(`{"status":{"ok":1}}`))
	})
	client, _ := newTestClient(t, handler, func(cfg *Config) {
		cfg.EmbeddingAPIKey = "embed-key"
	})

	db := client.Database("ks")
	_, err := db.Command(context.Background(),
		map[string]interface{}{"findCollections": map[string]interface{}{}}, nil)
	require.NoError(t, err)

	assert.Equal(t, "/api/json/v1/ks", gotPath)
	assert.Equal(t, "test-token", gotToken)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "embed-key", gotEmbedding)
}

func TestCommanderStatusVersusInBandErrors(t *testing.T) {
	// The same error body must classify differently depending on the
	// HTTP status it arrives with.
	errorBody := `{"errors":[{"message":"bad filter","errorCode":"INVALID"}]}`
	var status int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(errorBody))
	})
	client, server := newTestClient(t, handler, nil)
	db := client.Database("ks")
	command := map[string]interface{}{"findOne": map[string]interface{}{}}

	status = http.StatusOK
	_, err := db.Command(context.Background(), command, nil)
	require.Error(t, err)
	assert.True(t, dataerr.IsResponseError(err))
	assert.False(t, dataerr.IsHTTPError(err))
	assert.Equal(t, "bad filter (INVALID)", err.Error())

	status = http.StatusInternalServerError
	_, err = db.Command(context.Background(), command, nil)
	require.Error(t, err)
	assert.True(t, dataerr.IsHTTPError(err))
	assert.False(t, dataerr.IsResponseError(err))
	assert.Contains(t, err.Error(), "server returned HTTP 500 for POST "+server.URL)
	assert.Contains(t, err.Error(), "bad filter")
}

func TestCommanderUnparseableBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	})
	client, _ := newTestClient(t, handler, nil)
	db := client.Database("ks")

	_, err := db.Command(context.Background(), map[string]interface{}{
		"updateMany": map[string]interface{}{},
		"aSecondKey": true,
	}, nil)
	require.Error(t, err)
	assert.True(t, dataerr.IsFaultyResponse(err))
	assert.Equal(t, "Unparseable response from API 'aSecondKey,updateMany' command.", err.Error())
}

func TestCommanderSkipAPIErrorCheck(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"dup"}],"status":{"insertedIds":["a"]}}`))
	})
	client, _ := newTestClient(t, handler, nil)
	db := client.Database("ks")

	body, err := db.Command(context.Background(),
		map[string]interface{}{"insertMany": map[string]interface{}{}},
		&RequestOptions{SkipAPIErrorCheck: true})
	require.NoError(t, err)
	assert.Contains(t, body, "errors")
}

func TestCommanderRestoresResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"document":{"when":{"$date":1716228000000}}}}`))
	})
	client, _ := newTestClient(t, handler, nil)
	coll := client.Database("ks").Collection("events")

	doc, err := coll.FindOne(context.Background(), map[string]interface{}{}, nil)
	require.NoError(t, err)
	assert.Equal(t, time.UnixMilli(1716228000000).UTC(), doc["when"])
}

func TestCommanderTimeout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"status":{}}`))
	})
	client, _ := newTestClient(t, handler, nil)
	db := client.Database("ks")

	_, err := db.Command(context.Background(),
		map[string]interface{}{"findOne": map[string]interface{}{}},
		&RequestOptions{TimeoutOverrides: TimeoutOverrides{RequestTimeout: 30 * time.Millisecond}})
	require.Error(t, err)
	assert.True(t, dataerr.IsTimeout(err))
	assert.Contains(t, err.Error(), "(timeout honoured: 30 ms)")
}

func TestCommanderWarningsObserved(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":{"count":1,"warnings":[{"title":"Deprecated","message":"old syntax"}]}}`))
	})
	rec := &recordingObserver{}
	client, _ := newTestClient(t, handler, func(cfg *Config) {
		cfg.Observers = observer.NewRegistry(rec)
	})
	db := client.Database("ks")

	_, err := db.Command(context.Background(),
		map[string]interface{}{"countDocuments": map[string]interface{}{}}, nil)
	require.NoError(t, err)

	warnings := rec.byKind(observer.Warning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Deprecated: old syntax", warnings[0].Message)
	assert.Len(t, rec.byKind(observer.Request), 1)
	assert.Len(t, rec.byKind(observer.Response), 1)
}

func TestCommanderEqual(t *testing.T) {
	cfg := Config{Endpoint: "http://localhost:8181", Token: "t"}
	require.NoError(t, cfg.parseEndpoint())

	a := newCommander(&cfg, nil, dataerr.DataAPI, "api/json/v1/ks", nil)
	b := newCommander(&cfg, nil, dataerr.DataAPI, "api/json/v1/ks", nil)
	c := newCommander(&cfg, nil, dataerr.DataAPI, "api/json/v1/other", nil)
	d := newCommander(&cfg, nil, dataerr.DevOpsAPI, "api/json/v1/ks", nil)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.False(t, a.Equal(nil))
}

func TestLoggableHeadersRedaction(t *testing.T) {
	cfg := Config{
		Endpoint:        "http://localhost:8181",
		Token:           "secret-token",
		EmbeddingAPIKey: "secret-embed",
		RedactedHeaders: []string{"X-Custom-Secret"},
	}
	require.NoError(t, cfg.parseEndpoint())
	c := newCommander(&cfg, nil, dataerr.DataAPI, "api/json/v1/ks",
		map[string]string{"X-Custom-Secret": "hide-me", "X-Plain": "visible"})

	headers := c.loggableHeaders()
	assert.Equal(t, "***", headers["Token"])
	assert.Equal(t, "***", headers["X-Embedding-Api-Key"])
	assert.Equal(t, "***", headers["X-Custom-Secret"])
	assert.Equal(t, "visible", headers["X-Plain"])
}

func TestCommanderHeadersByFamily(t *testing.T) {
	cfg := Config{Endpoint: "http://localhost:8181", Token: "tok", EmbeddingAPIKey: "emb"}
	require.NoError(t, cfg.parseEndpoint())

	data := newCommander(&cfg, nil, dataerr.DataAPI, "p", nil)
	assert.Equal(t, "tok", data.headers["Token"])
	assert.Equal(t, "emb", data.headers["X-Embedding-Api-Key"])
	assert.NotContains(t, data.headers, "Authorization")

	ops := newCommander(&cfg, nil, dataerr.DevOpsAPI, "p", nil)
	assert.Equal(t, "Bearer tok", ops.headers["Authorization"])
	assert.NotContains(t, ops.headers, "Token")
	assert.NotContains(t, ops.headers, "X-Embedding-Api-Key")

	// Empty extra header values are dropped, not sent blank.
	extra := newCommander(&cfg, nil, dataerr.DataAPI, "p", map[string]string{"X-Blank": ""})
	assert.NotContains(t, extra.headers, "X-Blank")
}

func TestJoinRequestURL(t *testing.T) {
	tests := []struct {
		endpoint, path, additional, want string
	}{
		{"http://h:1", "api/json/v1/ks", "", "http://h:1/api/json/v1/ks"},
		{"http://h:1/", "/api/json/v1/ks/", "", "http://h:1/api/json/v1/ks"},
		{"http://h:1", "v2", "databases/abc", "http://h:1/v2/databases/abc"},
		{"http://h:1", "v2", "/databases/abc/", "http://h:1/v2/databases/abc"},
		{"http://h:1", "", "", "http://h:1"},
	}
	for _, r := range tests {
		assert.Equal(t, r.want, joinRequestURL(r.endpoint, r.path, r.additional))
	}
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "GET", commandName("GET", nil))
	assert.Equal(t, "findOne", commandName("POST",
		map[string]interface{}{"findOne": nil}))
	assert.Equal(t, "alpha,beta", commandName("POST",
		map[string]interface{}{"beta": nil, "alpha": nil}))
}
