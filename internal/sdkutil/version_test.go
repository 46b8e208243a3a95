//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package sdkutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSDKVersion(t *testing.T) {
	assert.Equal(t, "1.0.0", SDKVersion())
	assert.True(t, strings.HasPrefix(UserAgent(), "DataAPI-GoSDK/1.0.0 ("))
}

func TestComposeUserAgent(t *testing.T) {
	tests := []struct {
		desc    string
		callers []Caller
		want    string
	}{
		{
			desc:    "no callers",
			callers: nil,
			want:    UserAgent(),
		},
		{
			desc:    "caller with version",
			callers: []Caller{{Name: "myframework", Version: "1.2.0"}},
			want:    "myframework/1.2.0 " + UserAgent(),
		},
		{
			desc:    "caller without version",
			callers: []Caller{{Name: "myapp"}},
			want:    "myapp " + UserAgent(),
		},
		{
			desc: "nameless callers are skipped",
			callers: []Caller{
				{Name: "", Version: "9.9"},
				{Name: "kept", Version: "1.0"},
			},
			want: "kept/1.0 " + UserAgent(),
		},
	}

	for _, r := range tests {
		assert.Equalf(t, r.want, ComposeUserAgent(r.callers), "%s: got unexpected User-Agent", r.desc)
	}
}
