//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package datadb

import (
	"time"

	"github.com/oracle/dataapi-go-sdk/datadb/dataerr"
)

// NoTimeout is passed as an explicit timeout override to request that a
// dimension be unbounded, as opposed to the zero value which means
// "not specified, use the defaults".
const NoTimeout time.Duration = -1

// TimeoutContext is the resolved timeout for exactly one HTTP call. It is
// created fresh per call, never mutated, and discarded after the call.
type TimeoutContext struct {
	// NominalMS is the overall budget the caller configured for the
	// logical operation this call belongs to, zero when unbounded.
	NominalMS int64

	// RequestMS is what remains of the budget and is actually given to
	// the transport for this call, zero when unbounded.
	RequestMS int64

	// Label names the setting responsible for RequestMS, for diagnostics.
	Label string
}

// HasTimeout reports whether the call is bounded at all.
func (tc TimeoutContext) HasTimeout() bool {
	return tc.RequestMS > 0
}

// requestDuration returns the transport timeout, zero when unbounded.
func (tc TimeoutContext) requestDuration() time.Duration {
	if tc.RequestMS <= 0 {
		return 0
	}
	return time.Duration(tc.RequestMS) * time.Millisecond
}

// honouredMS returns the timeout value to mention in timeout error
// messages: the nominal budget when one exists, the per-request value
// otherwise.
func (tc TimeoutContext) honouredMS() int64 {
	if tc.NominalMS > 0 {
		return tc.NominalMS
	}
	return tc.RequestMS
}

// TimeoutOverrides carries the explicit per-call timeout settings a caller
// may supply on any operation. A zero field is unspecified; NoTimeout
// makes that dimension explicitly unbounded.
type TimeoutOverrides struct {
	// Timeout is a raw override applying to the whole call.
	Timeout time.Duration

	// RequestTimeout overrides the single-request timeout.
	RequestTimeout time.Duration

	// GeneralMethodTimeout overrides the whole-method timeout.
	GeneralMethodTimeout time.Duration
}

// labeledTimeout pairs a millisecond value with the name of the setting
// it came from. ms of zero means unbounded.
type labeledTimeout struct {
	ms    int64
	label string
}

func toMillis(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(d / time.Millisecond)
}

// minLabeledTimeout picks the smallest bounded value among the given
// labeled timeouts, keeping its label. Unbounded (zero) entries never
// win; if every entry is unbounded the result is unbounded.
func minLabeledTimeout(candidates ...labeledTimeout) labeledTimeout {
	best := labeledTimeout{}
	for _, c := range candidates {
		if c.ms <= 0 {
			continue
		}
		if best.ms <= 0 || c.ms < best.ms {
			best = c
		}
	}
	return best
}

// resolveSingleRequestTimeout computes the timeout for a standalone HTTP
// call. When the caller supplies any explicit override, the minimum of
// the explicit values wins, labeled by whichever setting produced it.
// With no explicit overrides, the two relevant configured defaults are
// compared and the smaller wins, labeled accordingly.
func resolveSingleRequestTimeout(overrides TimeoutOverrides, defaults *TimeoutOptions) TimeoutContext {
	explicit := make([]labeledTimeout, 0, 3)
	if overrides.Timeout != 0 {
		explicit = append(explicit, labeledTimeout{toMillis(overrides.Timeout), labelTimeout})
	}
	if overrides.RequestTimeout != 0 {
		explicit = append(explicit, labeledTimeout{toMillis(overrides.RequestTimeout), labelRequestTimeout})
	}
	if overrides.GeneralMethodTimeout != 0 {
		explicit = append(explicit, labeledTimeout{toMillis(overrides.GeneralMethodTimeout), labelGeneralMethodTimeout})
	}

	var winner labeledTimeout
	if len(explicit) > 0 {
		winner = minLabeledTimeout(explicit...)
	} else {
		winner = minLabeledTimeout(
			labeledTimeout{toMillis(defaults.DefaultRequestTimeout()), labelRequestTimeout},
			labeledTimeout{toMillis(defaults.DefaultGeneralMethodTimeout()), labelGeneralMethodTimeout},
		)
	}

	return TimeoutContext{
		NominalMS: winner.ms,
		RequestMS: winner.ms,
		Label:     winner.label,
	}
}

// MultiCallTimeoutManager keeps track of timing and deadline in a
// multi-call method context. One manager is created per logical
// operation, consulted before each constituent HTTP request, and
// discarded when the operation completes or fails.
//
// The manager never cancels an in-flight request; once the deadline has
// passed it refuses to start a new one by returning a timeout error.
type MultiCallTimeoutManager struct {
	// OverallTimeoutMS is the budget being tracked, zero when unbounded.
	OverallTimeoutMS int64

	// StartedMS is the construction timestamp in epoch milliseconds.
	StartedMS int64

	// DeadlineMS is the absolute deadline in epoch milliseconds, zero
	// when unbounded.
	DeadlineMS int64

	label  string
	family dataerr.APIFamily
}

// NewMultiCallTimeoutManager creates a manager tracking the given overall
// budget. A non-positive overall means no deadline. label names the
// setting the budget came from, family selects which service's timeout
// error is produced on expiry.
func NewMultiCallTimeoutManager(overall time.Duration, label string, family dataerr.APIFamily) *MultiCallTimeoutManager {
	m := &MultiCallTimeoutManager{
		OverallTimeoutMS: toMillis(overall),
		StartedMS:        time.Now().UnixMilli(),
		label:            label,
		family:           family,
	}
	if m.OverallTimeoutMS > 0 {
		m.DeadlineMS = m.StartedMS + m.OverallTimeoutMS
	}
	return m
}

// RemainingTimeout ensures the deadline, if any, is not yet in the past,
// and computes the timeout context for the next request. If the deadline
// has passed it returns a timeout error instead; the returned remaining
// value is always strictly positive.
//
// cap, when positive, bounds the single next request even if the overall
// budget allows more; when the cap wins it is labeled with capLabel
// rather than the overall budget's label.
func (m *MultiCallTimeoutManager) RemainingTimeout(cap time.Duration, capLabel string) (TimeoutContext, error) {
	capMS := toMillis(cap)
	if m.DeadlineMS == 0 {
		return TimeoutContext{
			NominalMS: m.OverallTimeoutMS,
			RequestMS: capMS,
			Label:     capLabel,
		}, nil
	}

	now := time.Now().UnixMilli()
	if now >= m.DeadlineMS {
		return TimeoutContext{}, dataerr.NewTimeoutError(m.family,
			"Operation timed out.", dataerr.TimeoutGeneric)
	}

	remaining := m.DeadlineMS - now
	if capMS > 0 && capMS < remaining {
		return TimeoutContext{
			NominalMS: m.OverallTimeoutMS,
			RequestMS: capMS,
			Label:     capLabel,
		}, nil
	}
	return TimeoutContext{
		NominalMS: m.OverallTimeoutMS,
		RequestMS: remaining,
		Label:     m.label,
	}, nil
}
