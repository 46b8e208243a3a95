//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package httputil

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RequestExecutor represents an interface used to execute an HTTP request.
//
// *HTTPClient implements this interface. Tests may substitute their own
// implementations.
type RequestExecutor interface {
	// Do sends an http request to the server, returns an http response
	// and an error if one occurred during execution.
	Do(req *http.Request) (*http.Response, error)
}

// Response contains the content, status code and headers of an
// http.Response returned from the server, with the body fully read and
// the connection released back to the pool.
type Response struct {
	Body    []byte      // HTTP response body.
	Code    int         // HTTP response status code.
	Headers http.Header // HTTP response headers.
}

// NewRequest creates an http request using the specified method, url, query
// parameters, body data and headers. A nil or empty data means a bodyless
// request.
func NewRequest(method string, rawURL string, params map[string]string,
	data []byte, headers map[string]string) (*http.Request, error) {

	var rd io.Reader
	if len(data) > 0 {
		rd = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequest(method, rawURL, rd)
	if err != nil {
		return nil, err
	}

	if len(params) > 0 {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}

// ExecuteRequest sends the given request through the executor, applying the
// specified timeout via the request context when timeout is greater than
// zero, and drains the response body.
//
// ExecuteRequest performs a single attempt. Interpreting the status code,
// classifying transport errors and deciding whether anything should be
// retried are the caller's responsibility.
func ExecuteRequest(ctx context.Context, executor RequestExecutor,
	timeout time.Duration, httpReq *http.Request) (*Response, error) {

	if timeout > 0 {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		ctx = reqCtx
	}

	httpReq = httpReq.WithContext(ctx)
	httpResp, err := executor.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		Code:    httpResp.StatusCode,
		Body:    body,
		Headers: httpResp.Header,
	}, nil
}
