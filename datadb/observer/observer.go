//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

// Package observer provides an event hook that lets host applications watch
// the SDK's request/response traffic and in-band warnings and errors without
// modifying the SDK itself.
//
// Observers are a pure side channel: they never affect the result returned
// or the error reported by the operation that emitted the event.
package observer

// EventKind tags the kind of an observed event.
type EventKind int

const (
	// Log is a generic diagnostic event.
	Log EventKind = iota

	// Warning is emitted for each warning the API reports inside a
	// successful response.
	Warning

	// Error is emitted when a request fails, before the error is returned
	// to the caller.
	Error

	// Request is emitted just before a request is sent, carrying the
	// normalized payload.
	Request

	// Response is emitted after a response body has been received and
	// parsed.
	Response
)

// String returns a string representation for the event kind.
//
// This implements the fmt.Stringer interface.
func (k EventKind) String() string {
	switch k {
	case Log:
		return "Log"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	case Request:
		return "Request"
	case Response:
		return "Response"
	default:
		return "N/A"
	}
}

// Event is a single observed occurrence.
type Event struct {
	// Kind tags what happened.
	Kind EventKind

	// Message is a human-readable description of the event.
	Message string

	// Payload carries kind-specific data: the normalized command for
	// Request events, the parsed body for Response events, the warning
	// descriptor for Warning events. It may be nil.
	Payload interface{}
}

// Observer receives events. Implementations must be safe for concurrent use
// if the host issues SDK operations from multiple goroutines.
type Observer interface {
	// Receive is called synchronously for every event. sender identifies
	// the emitting component, functionName the operation in progress.
	//
	// A panic inside Receive propagates to the caller of the SDK
	// operation; the registry does not recover it.
	Receive(event Event, sender string, functionName string)
}

// Registry holds an ordered list of observers and fans events out to them.
//
// The zero value is an empty registry ready for use. A nil *Registry is
// valid and emits nothing.
type Registry struct {
	observers []Observer
}

// NewRegistry creates a registry pre-populated with the given observers,
// in order.
func NewRegistry(observers ...Observer) *Registry {
	r := &Registry{}
	for _, o := range observers {
		r.Register(o)
	}
	return r
}

// Register appends an observer. Observers are notified in registration
// order. A nil observer is ignored.
func (r *Registry) Register(o Observer) {
	if o == nil {
		return
	}
	r.observers = append(r.observers, o)
}

// Emit delivers the event to every registered observer, synchronously and
// in registration order.
func (r *Registry) Emit(event Event, sender string, functionName string) {
	if r == nil {
		return
	}
	for _, o := range r.observers {
		o.Receive(event, sender, functionName)
	}
}

// Len reports the number of registered observers.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.observers)
}
