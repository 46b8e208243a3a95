//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

// Package sdkutil provides internal utilities for the Data API SDK.
package sdkutil

import (
	"fmt"
	"runtime"
	"strings"
)

const (
	// Major, minor and patch versions for the SDK.
	major = 1
	minor = 0
	patch = 0

	// DataAPIVersionPath is the versioned base path for Data API requests.
	DataAPIVersionPath = "api/json/v1"

	// DevOpsAPIVersionPath is the versioned base path for DevOps API requests.
	DevOpsAPIVersionPath = "v2"
)

var sdkVersion, sdkUserAgent string

func init() {
	sdkVersion = fmt.Sprintf("%d.%d.%d", major, minor, patch)
	// A sample User-Agent header: DataAPI-GoSDK/1.0.0 (go1.18; linux/amd64)
	sdkUserAgent = fmt.Sprintf("DataAPI-GoSDK/%s (%s; %s/%s)",
		sdkVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// SDKVersion returns the Data API Go SDK version.
func SDKVersion() string {
	return sdkVersion
}

// UserAgent returns a descriptive string identifying this SDK that can be
// set in the "User-Agent" header of HTTP requests.
func UserAgent() string {
	return sdkUserAgent
}

// Caller identifies an application or framework sitting on top of the SDK.
// It is reported, along with the SDK identity, in the User-Agent header.
type Caller struct {
	// Name is the caller name, such as "myframework". Callers with an empty
	// name are skipped when composing the User-Agent header.
	Name string

	// Version is the caller version, such as "1.2.0". It may be empty.
	Version string
}

// ComposeUserAgent builds the full User-Agent header value from the given
// caller identities followed by the SDK identity. Each caller contributes
// "name/version", or just "name" when its version is empty.
func ComposeUserAgent(callers []Caller) string {
	parts := make([]string, 0, len(callers)+1)
	for _, c := range callers {
		if c.Name == "" {
			continue
		}
		if c.Version == "" {
			parts = append(parts, c.Name)
		} else {
			parts = append(parts, fmt.Sprintf("%s/%s", c.Name, c.Version))
		}
	}
	parts = append(parts, sdkUserAgent)
	return strings.Join(parts, " ")
}
