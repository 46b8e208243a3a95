//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package datadb

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/oracle/dataapi-go-sdk/datadb/dataerr"
	"github.com/oracle/dataapi-go-sdk/datadb/ejson"
	"github.com/oracle/dataapi-go-sdk/datadb/httputil"
	"github.com/oracle/dataapi-go-sdk/datadb/logger"
	"github.com/oracle/dataapi-go-sdk/datadb/observer"
	"github.com/oracle/dataapi-go-sdk/internal/sdkutil"
)

const (
	headerContentType  = "Content-Type"
	headerAccept       = "Accept"
	headerUserAgent    = "User-Agent"
	headerToken        = "Token"
	headerAuth         = "Authorization"
	headerEmbeddingKey = "X-Embedding-Api-Key"

	contentTypeJSON = "application/json"

	// redactedPlaceholder replaces redacted header values in log lines.
	redactedPlaceholder = "***"
)

// Commander drives logical HTTP requests against one resource path of one
// API family: it composes URL, headers and body from a command, applies
// the codec and the timeout resolution, interprets the HTTP and in-band
// outcomes, and returns the decoded body or a typed error.
//
// A Commander is immutable after construction and safe for concurrent
// use. Higher-level resource objects each hold one Commander; one pooled
// HTTP executor backs all requests a Commander issues over its lifetime.
type Commander struct {
	endpoint string
	path     string
	family   dataerr.APIFamily

	// headers is the fixed header set stamped on every request.
	headers map[string]string

	// redactedHeaders holds uppercased names of headers whose values are
	// masked in log output.
	redactedHeaders map[string]bool

	serdes    ejson.SerdesOptions
	defaults  *TimeoutOptions
	executor  httputil.RequestExecutor
	logger    *logger.Logger
	observers *observer.Registry
}

// newCommander builds a Commander for the given family and resource path.
// extraHeaders are merged on top of the computed set; entries with empty
// values are dropped rather than sent.
func newCommander(cfg *Config, executor httputil.RequestExecutor,
	family dataerr.APIFamily, path string, extraHeaders map[string]string) *Commander {

	headers := map[string]string{
		headerContentType: contentTypeJSON,
		headerAccept:      contentTypeJSON,
		headerUserAgent:   composeUserAgent(cfg.Callers),
	}
	switch family {
	case dataerr.DevOpsAPI:
		if cfg.Token != "" {
			headers[headerAuth] = "Bearer " + cfg.Token
		}
	default:
		if cfg.Token != "" {
			headers[headerToken] = cfg.Token
		}
		if cfg.EmbeddingAPIKey != "" {
			headers[headerEmbeddingKey] = cfg.EmbeddingAPIKey
		}
	}
	for k, v := range extraHeaders {
		if v == "" {
			continue
		}
		headers[k] = v
	}

	redacted := map[string]bool{
		strings.ToUpper(headerToken):        true,
		strings.ToUpper(headerAuth):         true,
		strings.ToUpper(headerEmbeddingKey): true,
	}
	for _, h := range cfg.RedactedHeaders {
		redacted[strings.ToUpper(h)] = true
	}

	return &Commander{
		endpoint:        cfg.Endpoint,
		path:            path,
		family:          family,
		headers:         headers,
		redactedHeaders: redacted,
		serdes:          cfg.SerdesOptions,
		defaults:        &cfg.TimeoutOptions,
		executor:        executor,
		logger:          cfg.Logger,
		observers:       cfg.Observers,
	}
}

func composeUserAgent(callers []Caller) string {
	scs := make([]sdkutil.Caller, len(callers))
	for i, c := range callers {
		scs[i] = sdkutil.Caller{Name: c.Name, Version: c.Version}
	}
	return sdkutil.ComposeUserAgent(scs)
}

// Family returns the API family this Commander addresses.
func (c *Commander) Family() dataerr.APIFamily {
	return c.family
}

// Equal reports whether two Commanders were built from equal construction
// parameters: endpoint, path, family, header set, redaction set and
// serdes options. Higher layers use this to decide whether a derived
// resource object can share an existing Commander.
func (c *Commander) Equal(other *Commander) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.endpoint == other.endpoint &&
		c.path == other.path &&
		c.family == other.family &&
		c.serdes == other.serdes &&
		reflect.DeepEqual(c.headers, other.headers) &&
		reflect.DeepEqual(c.redactedHeaders, other.redactedHeaders)
}

// RequestOptions carries the per-call settings of a Commander request.
// The zero value selects a bodyless default: no additional path, no query
// parameters, timeouts resolved from the configured defaults, in-band
// API errors reported as errors.
type RequestOptions struct {
	// AdditionalPath is appended to the Commander's resource path,
	// slash-trimmed on both sides.
	AdditionalPath string

	// Params holds flat query parameters.
	Params map[string]string

	// TimeoutOverrides are the caller's explicit per-call timeouts.
	TimeoutOverrides TimeoutOverrides

	// TimeoutContext, when non-nil, bypasses per-call resolution; it is
	// supplied by a MultiCallTimeoutManager within multi-request
	// operations.
	TimeoutContext *TimeoutContext

	// SkipAPIErrorCheck suppresses translation of a non-empty in-band
	// "errors" array into a ResponseError, for operations that inspect
	// partial successes themselves.
	SkipAPIErrorCheck bool
}

// joinRequestURL composes endpoint, path and additional path, trimming
// redundant slashes at every seam.
func joinRequestURL(endpoint, path, additionalPath string) string {
	url := strings.TrimRight(endpoint, "/")
	if p := strings.Trim(path, "/"); p != "" {
		url += "/" + p
	}
	if ap := strings.Trim(additionalPath, "/"); ap != "" {
		url += "/" + ap
	}
	return url
}

// commandName returns the operation's top-level key(s) for diagnostics,
// sorted for stability, or the HTTP method for bodyless requests.
func commandName(httpMethod string, payload map[string]interface{}) string {
	if len(payload) == 0 {
		return httpMethod
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// loggableHeaders returns the header set with redacted values masked.
func (c *Commander) loggableHeaders() map[string]string {
	out := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		if c.redactedHeaders[strings.ToUpper(k)] {
			out[k] = redactedPlaceholder
		} else {
			out[k] = v
		}
	}
	return out
}

func (c *Commander) emit(kind observer.EventKind, message string, payload interface{}, functionName string) {
	if c.observers.Len() == 0 {
		return
	}
	c.observers.Emit(observer.Event{
		Kind:    kind,
		Message: message,
		Payload: payload,
	}, "datadb.Commander", functionName)
}

// RequestRaw drives one HTTP request up to and including JSON parsing of
// the response body, returning the transport response alongside the
// parsed body, which may be of any JSON shape. Most callers want Request
// instead; RequestRaw exists for DevOps API endpoints whose responses are
// top-level arrays or whose interesting content is in the transport
// response itself.
//
// In-band error checking, warning logging and extended-JSON restoration
// are not applied here.
func (c *Commander) RequestRaw(ctx context.Context, httpMethod string,
	payload map[string]interface{}, opts *RequestOptions) (*httputil.Response, interface{}, error) {

	if opts == nil {
		opts = &RequestOptions{}
	}
	fn := commandName(httpMethod, payload)

	var tc TimeoutContext
	if opts.TimeoutContext != nil {
		tc = *opts.TimeoutContext
	} else {
		tc = resolveSingleRequestTimeout(opts.TimeoutOverrides, c.defaults)
	}

	var data []byte
	if payload != nil {
		normalized, err := ejson.Normalize(payload)
		if err != nil {
			return nil, nil, err
		}
		data, err = ejson.Marshal(normalized, c.serdes)
		if err != nil {
			return nil, nil, err
		}
	}

	url := joinRequestURL(c.endpoint, c.path, opts.AdditionalPath)
	c.logger.LogWithFn(logger.Fine, func() string {
		return fmt.Sprintf("request %s %s params=%v headers=%v payload=%s (%s=%d ms)",
			httpMethod, url, opts.Params, c.loggableHeaders(), string(data), tc.Label, tc.RequestMS)
	})
	c.emit(observer.Request, fmt.Sprintf("%s %s", httpMethod, url), string(data), fn)

	httpReq, err := httputil.NewRequest(httpMethod, url, opts.Params, data, c.headers)
	if err != nil {
		return nil, nil, err
	}

	resp, err := httputil.ExecuteRequest(ctx, c.executor, tc.requestDuration(), httpReq)
	if err != nil {
		if dataerr.IsTimeoutCause(err) {
			terr := dataerr.NewTimeoutErrorFromTransport(c.family, err,
				tc.honouredMS(), url, string(data))
			c.emit(observer.Error, terr.Error(), nil, fn)
			return nil, nil, terr
		}
		return nil, nil, err
	}

	if resp.Code < 200 || resp.Code > 299 {
		// Descriptor extraction from the error body is best effort and
		// must never itself fail.
		parsedBody, _ := ejson.Unmarshal(resp.Body, c.serdes)
		herr := dataerr.NewHTTPError(c.family, resp.Code, httpMethod, url,
			resp.Body, parsedBody)
		c.logger.Fine("request %s %s failed: %s", httpMethod, url, herr.Error())
		c.emit(observer.Error, herr.Error(), nil, fn)
		return resp, nil, herr
	}

	parsed, err := ejson.UnmarshalAny(resp.Body, c.serdes)
	if err != nil {
		ferr := dataerr.NewFaultyResponseError(c.family, payload, resp.Body)
		c.emit(observer.Error, ferr.Error(), nil, fn)
		return resp, nil, ferr
	}

	return resp, parsed, nil
}

// Request drives one logical HTTP request from a command to a decoded
// result:
//
//  1. resolve the effective timeout,
//  2. normalize and serialize the payload,
//  3. log the outgoing request with redacted headers,
//  4. issue the HTTP call,
//  5. translate transport timeouts, non-2xx statuses, unparseable
//     bodies and (unless suppressed) non-empty in-band "errors" arrays
//     into their typed errors,
//  6. for the Data API family, log any "status.warnings" entries,
//  7. restore the body's extended-JSON values and return it.
//
// The input payload is not mutated; normalization produces a new
// structure.
func (c *Commander) Request(ctx context.Context, httpMethod string,
	payload map[string]interface{}, opts *RequestOptions) (map[string]interface{}, error) {

	if opts == nil {
		opts = &RequestOptions{}
	}
	fn := commandName(httpMethod, payload)

	_, parsed, err := c.RequestRaw(ctx, httpMethod, payload, opts)
	if err != nil {
		return nil, err
	}

	body, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, dataerr.NewUnexpectedResponseError(c.family,
			fmt.Sprintf("API response for '%s' is not a JSON object", fn), nil)
	}

	if !opts.SkipAPIErrorCheck {
		if items, present := body["errors"].([]interface{}); present && len(items) > 0 {
			rerr := dataerr.NewResponseError(c.family, payload, body)
			c.emit(observer.Error, rerr.Error(), body, fn)
			return nil, rerr
		}
	}

	if c.family == dataerr.DataAPI {
		for _, w := range dataerr.ParseWarningDescriptors(body) {
			c.logger.Warning("API warning for '%s': %s", fn, w.Summary())
			c.emit(observer.Warning, w.Summary(), w, fn)
		}
	}

	restored, ok := ejson.Restore(body).(map[string]interface{})
	if !ok {
		restored = body
	}
	c.emit(observer.Response, fmt.Sprintf("response for '%s'", fn), restored, fn)
	return restored, nil
}
