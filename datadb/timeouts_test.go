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

	"github.com/oracle/dataapi-go-sdk/datadb/dataerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSingleRequestTimeout(t *testing.T) {
	defaults := &TimeoutOptions{}

	tests := []struct {
		desc      string
		overrides TimeoutOverrides
		wantMS    int64
		wantLabel string
	}{
		{
			desc:      "no overrides: the smaller configured default wins",
			overrides: TimeoutOverrides{},
			wantMS:    10000,
			wantLabel: labelRequestTimeout,
		},
		{
			desc:      "single explicit value wins with its own label",
			overrides: TimeoutOverrides{Timeout: 3 * time.Second},
			wantMS:    3000,
			wantLabel: labelTimeout,
		},
		{
			desc: "minimum of several explicit values",
			overrides: TimeoutOverrides{
				Timeout:              8 * time.Second,
				RequestTimeout:       2 * time.Second,
				GeneralMethodTimeout: 5 * time.Second,
			},
			wantMS:    2000,
			wantLabel: labelRequestTimeout,
		},
		{
			desc: "general method timeout can be the minimum",
			overrides: TimeoutOverrides{
				Timeout:              8 * time.Second,
				GeneralMethodTimeout: 4 * time.Second,
			},
			wantMS:    4000,
			wantLabel: labelGeneralMethodTimeout,
		},
		{
			desc:      "explicit NoTimeout makes the call unbounded",
			overrides: TimeoutOverrides{Timeout: NoTimeout},
			wantMS:    0,
			wantLabel: "",
		},
	}

	for _, r := range tests {
		tc := resolveSingleRequestTimeout(r.overrides, defaults)
		assert.Equalf(t, r.wantMS, tc.RequestMS, "%s: got unexpected timeout", r.desc)
		assert.Equalf(t, r.wantLabel, tc.Label, "%s: got unexpected label", r.desc)
	}
}

func TestResolveSingleRequestTimeoutConfiguredDefaults(t *testing.T) {
	defaults := &TimeoutOptions{
		RequestTimeout:       45 * time.Second,
		GeneralMethodTimeout: 20 * time.Second,
	}
	tc := resolveSingleRequestTimeout(TimeoutOverrides{}, defaults)
	assert.Equal(t, int64(20000), tc.RequestMS)
	assert.Equal(t, labelGeneralMethodTimeout, tc.Label)
}

func TestTimeoutContextHonouredMS(t *testing.T) {
	tc := TimeoutContext{NominalMS: 30000, RequestMS: 1200, Label: labelRequestTimeout}
	assert.Equal(t, int64(30000), tc.honouredMS())
	assert.True(t, tc.HasTimeout())

	tc = TimeoutContext{RequestMS: 1200}
	assert.Equal(t, int64(1200), tc.honouredMS())

	tc = TimeoutContext{}
	assert.False(t, tc.HasTimeout())
	assert.Equal(t, time.Duration(0), tc.requestDuration())
}

func TestMultiCallTimeoutManager(t *testing.T) {
	m := NewMultiCallTimeoutManager(30*time.Second, labelGeneralMethodTimeout, dataerr.DataAPI)

	// Well within the budget: remaining is strictly positive and capped.
	tc, err := m.RemainingTimeout(10*time.Second, labelRequestTimeout)
	require.NoError(t, err)
	assert.Greater(t, tc.RequestMS, int64(0))
	assert.LessOrEqual(t, tc.RequestMS, int64(10000))
	assert.Equal(t, labelRequestTimeout, tc.Label, "the cap wins and brings its own label")
	assert.Equal(t, int64(30000), tc.NominalMS)

	// No cap: the remaining budget itself, under the budget's label.
	tc, err = m.RemainingTimeout(0, labelRequestTimeout)
	require.NoError(t, err)
	assert.Greater(t, tc.RequestMS, int64(0))
	assert.LessOrEqual(t, tc.RequestMS, int64(30000))
	assert.Equal(t, labelGeneralMethodTimeout, tc.Label)
}

func TestMultiCallTimeoutManagerExpiry(t *testing.T) {
	m := NewMultiCallTimeoutManager(30*time.Second, labelGeneralMethodTimeout, dataerr.DataAPI)
	m.DeadlineMS = time.Now().UnixMilli() - 1

	_, err := m.RemainingTimeout(10*time.Second, labelRequestTimeout)
	require.Error(t, err)
	assert.True(t, dataerr.IsTimeout(err))
	assert.Equal(t, "Operation timed out.", err.Error())
}

func TestMultiCallTimeoutManagerUnbounded(t *testing.T) {
	m := NewMultiCallTimeoutManager(0, labelGeneralMethodTimeout, dataerr.DataAPI)

	tc, err := m.RemainingTimeout(2*time.Second, labelRequestTimeout)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), tc.RequestMS)
	assert.Equal(t, labelRequestTimeout, tc.Label)

	tc, err = m.RemainingTimeout(0, labelRequestTimeout)
	require.NoError(t, err)
	assert.False(t, tc.HasTimeout())
}

func TestMultiCallTimeoutManagerRemainingShrinks(t *testing.T) {
	m := NewMultiCallTimeoutManager(500*time.Millisecond, labelGeneralMethodTimeout, dataerr.DataAPI)

	first, err := m.RemainingTimeout(0, labelRequestTimeout)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	second, err := m.RemainingTimeout(0, labelRequestTimeout)
	require.NoError(t, err)
	assert.Less(t, second.RequestMS, first.RequestMS)
}
