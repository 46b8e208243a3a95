//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

// Package dataerr defines the errors reported by the Data API SDK.
//
// Four kinds of failure can come out of a request: the HTTP transport
// returned a non-2xx status (HTTPError), the transport succeeded but the
// response body reports API errors (ResponseError), a deadline was
// exceeded (TimeoutError), or the response body could not be parsed or
// lacked an expected shape (FaultyResponseError, UnexpectedResponseError).
// These outcomes are mutually exclusive for any one request.
//
// Every error value carries the APIFamily of the service that produced
// it. Use the Is* functions, or errors.As with the concrete types, to
// classify an error returned by the SDK.
package dataerr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
)

// HTTPError is returned when a request results in an HTTP 4xx or 5xx
// response. Parsing the response body for error descriptors is best
// effort: when the body is not valid JSON the descriptor lists stay
// empty and only the transport-level information is available.
type HTTPError struct {
	// Family identifies the service that failed.
	Family APIFamily

	// StatusCode is the HTTP response status code.
	StatusCode int

	// Method and URL identify the failed request.
	Method string
	URL    string

	// RawBody is the response body as received.
	RawBody string

	// ErrorDescriptors holds the descriptors parsed from the body for
	// Data API responses.
	ErrorDescriptors []ErrorDescriptor

	// DevOpsErrorDescriptors holds the descriptors parsed from the body
	// for DevOps API responses.
	DevOpsErrorDescriptors []DevOpsErrorDescriptor

	text string
}

// NewHTTPError builds an HTTPError from a non-2xx response, parsing the
// body for descriptors on a best-effort basis. parsedBody may be nil when
// the body was not valid JSON.
func NewHTTPError(family APIFamily, statusCode int, method, url string,
	rawBody []byte, parsedBody map[string]interface{}) *HTTPError {

	e := &HTTPError{
		Family:     family,
		StatusCode: statusCode,
		Method:     method,
		URL:        url,
		RawBody:    string(rawBody),
	}

	base := fmt.Sprintf("server returned HTTP %d for %s %s", statusCode, method, url)
	var firstMessage string
	if parsedBody != nil {
		switch family {
		case DevOpsAPI:
			if items, ok := parsedBody["errors"].([]interface{}); ok {
				for _, item := range items {
					e.DevOpsErrorDescriptors = append(e.DevOpsErrorDescriptors,
						ParseDevOpsErrorDescriptor(item))
				}
			}
			if len(e.DevOpsErrorDescriptors) > 0 {
				firstMessage = e.DevOpsErrorDescriptors[0].Message
			}
		default:
			e.ErrorDescriptors = ParseErrorDescriptors(parsedBody)
			if len(e.ErrorDescriptors) > 0 {
				firstMessage = e.ErrorDescriptors[0].Message
			}
		}
	}

	if firstMessage != "" {
		e.text = fmt.Sprintf("%s. %s", firstMessage, base)
	} else {
		e.text = base
	}
	return e
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return e.text
}

// ResponseError is returned when the API answers with HTTP 200 but the
// response body's "errors" array is non-empty. Depending on the command
// semantics the response may express a partial success alongside the
// errors.
type ResponseError struct {
	// Family identifies the service that failed.
	Family APIFamily

	// ErrorDescriptors flattens the descriptors of every response
	// involved, across all requests of the originating operation.
	ErrorDescriptors []ErrorDescriptor

	// DetailedErrorDescriptors holds one entry per request performed by
	// the originating operation, in order, each retaining its own
	// command and raw response. Single-request operations always have
	// exactly one entry, possibly with an empty descriptor list.
	DetailedErrorDescriptors []DetailedErrorDescriptor

	// WarningDescriptors holds descriptors from the "status.warnings"
	// arrays, if any were present.
	WarningDescriptors []ErrorDescriptor

	text string
}

// NewResponseError builds a ResponseError from a single command/response
// pair.
func NewResponseError(family APIFamily, command, rawResponse map[string]interface{}) *ResponseError {
	return NewResponseErrorFromResponses(family,
		[]map[string]interface{}{command},
		[]map[string]interface{}{rawResponse})
}

// NewResponseErrorFromResponses builds a ResponseError from the commands
// and raw responses of a multi-request operation. commands and
// rawResponses must have equal length; every response contributes one
// DetailedErrorDescriptor even when its error list is empty, and the
// flattened descriptor list concatenates all of them in request order.
func NewResponseErrorFromResponses(family APIFamily,
	commands, rawResponses []map[string]interface{}) *ResponseError {

	e := &ResponseError{Family: family}
	for i, raw := range rawResponses {
		var command map[string]interface{}
		if i < len(commands) {
			command = commands[i]
		}
		descriptors := ParseErrorDescriptors(raw)
		e.ErrorDescriptors = append(e.ErrorDescriptors, descriptors...)
		e.WarningDescriptors = append(e.WarningDescriptors, ParseWarningDescriptors(raw)...)
		e.DetailedErrorDescriptors = append(e.DetailedErrorDescriptors, DetailedErrorDescriptor{
			ErrorDescriptors: descriptors,
			Command:          command,
			RawResponse:      raw,
		})
	}

	summaries := make([]string, len(e.ErrorDescriptors))
	for i, d := range e.ErrorDescriptors {
		summaries[i] = d.Summary()
	}
	e.text = composeHeadline(summaries)
	return e
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return e.text
}

// TimeoutPhase denotes the phase of an HTTP request during which a
// timeout occurred.
type TimeoutPhase string

const (
	// TimeoutConnect is a timeout while establishing the connection.
	TimeoutConnect TimeoutPhase = "connect"

	// TimeoutRead is a timeout while reading the response.
	TimeoutRead TimeoutPhase = "read"

	// TimeoutWrite is a timeout while sending the request.
	TimeoutWrite TimeoutPhase = "write"

	// TimeoutPool is a timeout while waiting for a connection from the
	// pool. It is part of the taxonomy for parity with the API's other
	// clients; the Go transport does not report this phase distinctly.
	TimeoutPool TimeoutPhase = "pool"

	// TimeoutGeneric is a timeout with no specific request phase, such
	// as an overall operation deadline expiring between requests.
	TimeoutGeneric TimeoutPhase = "generic"
)

// TimeoutError is returned when an operation exceeds a deadline: either a
// single HTTP request timed out, or the overall budget of a multi-request
// operation ran out between requests.
type TimeoutError struct {
	// Family identifies the service the operation was addressing.
	Family APIFamily

	// Phase is the request phase during which the timeout occurred.
	Phase TimeoutPhase

	// Endpoint is the URL the request was targeting, empty when the
	// timeout is not tied to a specific request.
	Endpoint string

	// RawPayload is the outgoing payload as text, empty when not tied to
	// a specific request.
	RawPayload string

	text  string
	cause error
}

// NewTimeoutError builds a TimeoutError with an explicit message, used
// for deadline expirations not tied to a specific request.
func NewTimeoutError(family APIFamily, text string, phase TimeoutPhase) *TimeoutError {
	return &TimeoutError{
		Family: family,
		Phase:  phase,
		text:   text,
	}
}

// NewTimeoutErrorFromTransport translates a transport-level timeout into
// a TimeoutError, classifying the request phase and recording which
// timeout value was being honoured. timeoutMS of zero omits the
// honoured-timeout note.
func NewTimeoutErrorFromTransport(family APIFamily, cause error, timeoutMS int64,
	endpoint, rawPayload string) *TimeoutError {

	text := "timed out"
	if cause != nil && cause.Error() != "" {
		text = cause.Error()
	}
	if timeoutMS > 0 {
		text = fmt.Sprintf("%s (timeout honoured: %d ms)", text, timeoutMS)
	}
	return &TimeoutError{
		Family:     family,
		Phase:      ClassifyTimeoutPhase(cause),
		Endpoint:   endpoint,
		RawPayload: rawPayload,
		text:       text,
		cause:      cause,
	}
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return e.text
}

// Unwrap returns the transport-level cause, if any.
func (e *TimeoutError) Unwrap() error {
	return e.cause
}

// ClassifyTimeoutPhase maps a transport error onto the phase taxonomy:
// dial failures classify as connect, read and write failures as their
// respective phases, anything else (including a context deadline
// expiring while the request was in flight) as generic.
func ClassifyTimeoutPhase(err error) TimeoutPhase {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch opErr.Op {
		case "dial":
			return TimeoutConnect
		case "read":
			return TimeoutRead
		case "write":
			return TimeoutWrite
		}
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return TimeoutRead
	}
	return TimeoutGeneric
}

// IsTimeoutCause reports whether a transport error represents a timeout,
// as opposed to some other network failure.
func IsTimeoutCause(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// FaultyResponseError is returned when a response body cannot be parsed
// as JSON at all.
type FaultyResponseError struct {
	// Family identifies the service that failed.
	Family APIFamily

	// RawBody is the unparseable body as received.
	RawBody string

	text string
}

// NewFaultyResponseError builds a FaultyResponseError naming the
// attempted command's top-level key(s) for context, sorted for a stable
// message.
func NewFaultyResponseError(family APIFamily, command map[string]interface{}, rawBody []byte) *FaultyResponseError {
	keys := make([]string, 0, len(command))
	for k := range command {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &FaultyResponseError{
		Family:  family,
		RawBody: string(rawBody),
		text:    fmt.Sprintf("Unparseable response from API '%s' command.", strings.Join(keys, ",")),
	}
}

// Error implements the error interface.
func (e *FaultyResponseError) Error() string {
	return e.text
}

// UnexpectedResponseError is returned when a response parses as JSON but
// does not have an expected field, or the field has the wrong type.
type UnexpectedResponseError struct {
	// Family identifies the service that failed.
	Family APIFamily

	// RawResponse is the parsed response body.
	RawResponse map[string]interface{}

	text string
}

// NewUnexpectedResponseError builds an UnexpectedResponseError with a
// message describing the missing or malformed field.
func NewUnexpectedResponseError(family APIFamily, text string, rawResponse map[string]interface{}) *UnexpectedResponseError {
	return &UnexpectedResponseError{
		Family:      family,
		RawResponse: rawResponse,
		text:        text,
	}
}

// Error implements the error interface.
func (e *UnexpectedResponseError) Error() string {
	return e.text
}

// familyCarrier is implemented by every error in this package.
type familyCarrier interface {
	apiFamily() APIFamily
}

func (e *HTTPError) apiFamily() APIFamily               { return e.Family }
func (e *ResponseError) apiFamily() APIFamily           { return e.Family }
func (e *TimeoutError) apiFamily() APIFamily            { return e.Family }
func (e *FaultyResponseError) apiFamily() APIFamily     { return e.Family }
func (e *UnexpectedResponseError) apiFamily() APIFamily { return e.Family }

// IsHTTPError reports whether err is, or wraps, an HTTP-status failure.
func IsHTTPError(err error) bool {
	var e *HTTPError
	return errors.As(err, &e)
}

// IsResponseError reports whether err is, or wraps, an in-band API
// failure (HTTP 200 with a non-empty errors array).
func IsResponseError(err error) bool {
	var e *ResponseError
	return errors.As(err, &e)
}

// IsTimeout reports whether err is, or wraps, a timeout failure.
func IsTimeout(err error) bool {
	var e *TimeoutError
	return errors.As(err, &e)
}

// IsFaultyResponse reports whether err is, or wraps, an unparseable or
// malformed response failure.
func IsFaultyResponse(err error) bool {
	var fe *FaultyResponseError
	if errors.As(err, &fe) {
		return true
	}
	var ue *UnexpectedResponseError
	return errors.As(err, &ue)
}

// FamilyOf extracts the API family from an error of this package,
// unwrapping as needed. ok is false when err does not originate here.
func FamilyOf(err error) (family APIFamily, ok bool) {
	for err != nil {
		if fc, isFC := err.(familyCarrier); isFC {
			return fc.apiFamily(), true
		}
		err = errors.Unwrap(err)
	}
	return 0, false
}

// IsDataAPIError reports whether err originates from the Data API.
func IsDataAPIError(err error) bool {
	f, ok := FamilyOf(err)
	return ok && f == DataAPI
}

// IsDevOpsAPIError reports whether err originates from the DevOps API.
func IsDevOpsAPIError(err error) bool {
	f, ok := FamilyOf(err)
	return ok && f == DevOpsAPI
}
