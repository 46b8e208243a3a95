//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package datadb

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/oracle/dataapi-go-sdk/datadb/ejson"
	"github.com/oracle/dataapi-go-sdk/datadb/httputil"
	"github.com/oracle/dataapi-go-sdk/datadb/logger"
	"github.com/oracle/dataapi-go-sdk/datadb/observer"
)

const (
	// The default timeout value for a single HTTP request.
	defaultRequestTimeout = 10 * time.Second

	// The default overall timeout value for a whole method, which may
	// span several HTTP requests.
	defaultGeneralMethodTimeout = 30 * time.Second

	// The default timeout value for collection-level schema operations.
	defaultCollectionAdminTimeout = 60 * time.Second

	// The default timeout value for DevOps database lifecycle operations,
	// which poll until the database reaches a terminal state.
	defaultDatabaseAdminTimeout = 10 * time.Minute

	// The default keyspace used when none is specified.
	DefaultKeyspace = "default_keyspace"
)

// Timeout setting labels, reported in timeout error messages to identify
// which setting produced the value that was exceeded.
const (
	labelTimeout                = "timeout_ms"
	labelRequestTimeout         = "request_timeout_ms"
	labelGeneralMethodTimeout   = "general_method_timeout_ms"
	labelCollectionAdminTimeout = "collection_admin_timeout_ms"
	labelDatabaseAdminTimeout   = "database_admin_timeout_ms"
)

// Caller identifies an application or framework sitting on top of the SDK.
// Callers are reported, along with the SDK identity, in the User-Agent
// header of every request.
type Caller struct {
	// Name is the caller name. Callers with an empty name are skipped.
	Name string

	// Version is the caller version. It may be empty.
	Version string
}

// Config represents a group of configuration parameters for a Client.
//
// When creating a Client, the Config instance is copied so modifications
// on the instance have no effect on the existing Client, which is
// immutable.
//
// Most of the configuration parameters are optional and have default
// values if not specified. The only required parameters are the Endpoint
// and the Token.
type Config struct {
	// Endpoint specifies the database endpoint that the client connects
	// to. It is required.
	// It must include the target address, and may include protocol and
	// port. The syntax is:
	//
	//	[http[s]://]host[:port]
	//
	// If port is omitted, the endpoint defaults to 443.
	// If protocol is omitted, the endpoint uses https if the port is 443,
	// and http in all other cases.
	Endpoint string

	// Token is the access token used to authenticate requests. It is sent
	// in the "Token" header for Data API requests and as a bearer token
	// for DevOps API requests.
	Token string

	// DevOpsEndpoint specifies the control-plane endpoint used by the
	// admin client. It follows the same syntax and defaulting rules as
	// Endpoint, and is only required when Admin() is used.
	DevOpsEndpoint string

	// Configurations for timeouts.
	TimeoutOptions

	// Configurations for the HTTP client.
	httputil.HTTPConfig

	// SerdesOptions controls the numeric rules applied when payloads are
	// converted to and from bytes. The zero value forbids
	// arbitrary-precision numbers, which is the collection default.
	SerdesOptions ejson.SerdesOptions

	// Callers identifies the applications or frameworks sitting on top of
	// the SDK, for the User-Agent header.
	Callers []Caller

	// RedactedHeaders lists additional header names whose values must be
	// masked in diagnostic logs. The authentication and embedding headers
	// are always redacted.
	RedactedHeaders []string

	// EmbeddingAPIKey, if set, is sent with each Data API request in the
	// header reserved for vector-embedding providers.
	EmbeddingAPIKey string

	// Logger specifies the logger for diagnostic messages. If nil,
	// logging is disabled.
	Logger *logger.Logger

	// Observers, if non-nil, receives request/response/warning/error
	// events for every operation issued through the client.
	Observers *observer.Registry

	host     string
	port     string
	protocol string
}

// parseEndpoint tries to parse the specified Endpoint, returning an error
// if Endpoint does not conform to the syntax:
//
//	[http[s]://]host[:port]
//
// The following rules are applied to the Endpoint:
//
// 1. If protocol and port are both omitted, the Endpoint uses https with
// port 443.
//
// 2. If port is omitted, the Endpoint uses 443 for https, or 8080 for
// http.
//
// 3. If protocol is omitted, the Endpoint uses https if the port is 443,
// and http in all other cases.
func (c *Config) parseEndpoint() (err error) {
	c.protocol, c.host, c.port, err = parseEndpoint(c.Endpoint)
	if err != nil {
		return
	}

	c.Endpoint = c.protocol + "://" + c.host + ":" + c.port
	return nil
}

func parseEndpoint(endpoint string) (protocol, host, port string, err error) {
	if endpoint == "" {
		err = errors.New("Endpoint must be specified")
		return
	}

	if idx := strings.Index(endpoint, "://"); idx == -1 {
		host = endpoint
	} else {
		protocol = strings.ToLower(endpoint[:idx])
		if protocol != "https" && protocol != "http" {
			return "", "", "", fmt.Errorf("the specified protocol %q is not supported. "+
				"Must use \"https\" or \"http\"", protocol)
		}
		host = endpoint[idx+3:]
	}

	// Strip the ending slashes.
	host = strings.TrimRight(host, "/")

	bracket := strings.IndexByte(host, ']')
	colon := strings.LastIndexByte(host, ':')
	if colon > bracket {
		host, port, err = net.SplitHostPort(host)
		if err != nil {
			return "", "", "", err
		}
		if port != "" {
			portNum, err := strconv.Atoi(port)
			if err != nil || portNum < 0 {
				return "", "", "", fmt.Errorf("invalid port number %s", port)
			}
		}
	}

	if host == "" {
		return "", "", "", fmt.Errorf("invalid endpoint %q", endpoint)
	}

	switch {
	case protocol == "" && port == "":
		protocol = "https"
		port = "443"

	case protocol == "":
		if port == "443" {
			protocol = "https"
		} else {
			protocol = "http"
		}

	case port == "":
		if protocol == "https" {
			port = "443"
		} else {
			port = "8080"
		}
	}

	return
}

// TimeoutOptions represents a group of configuration parameters for
// timeouts. All values are optional; a zero value selects the documented
// default for that setting.
type TimeoutOptions struct {
	// RequestTimeout specifies a timeout value for a single HTTP request.
	RequestTimeout time.Duration

	// GeneralMethodTimeout specifies an overall timeout value for a whole
	// method, which may span several HTTP requests.
	GeneralMethodTimeout time.Duration

	// CollectionAdminTimeout specifies a timeout value for
	// collection-level schema operations such as createCollection.
	CollectionAdminTimeout time.Duration

	// DatabaseAdminTimeout specifies an overall timeout value for DevOps
	// database lifecycle operations, which poll until the database
	// reaches a terminal state.
	DatabaseAdminTimeout time.Duration
}

// DefaultRequestTimeout returns the default timeout value for a single
// HTTP request. If there is no configured timeout or it is configured as
// 0, a default value of 10 seconds is used.
func (t *TimeoutOptions) DefaultRequestTimeout() time.Duration {
	if t == nil || t.RequestTimeout == 0 {
		return defaultRequestTimeout
	}
	return t.RequestTimeout
}

// DefaultGeneralMethodTimeout returns the default overall timeout value
// for a whole method. If there is no configured timeout or it is
// configured as 0, a default value of 30 seconds is used.
func (t *TimeoutOptions) DefaultGeneralMethodTimeout() time.Duration {
	if t == nil || t.GeneralMethodTimeout == 0 {
		return defaultGeneralMethodTimeout
	}
	return t.GeneralMethodTimeout
}

// DefaultCollectionAdminTimeout returns the default timeout value for
// collection-level schema operations. If there is no configured timeout
// or it is configured as 0, a default value of 60 seconds is used.
func (t *TimeoutOptions) DefaultCollectionAdminTimeout() time.Duration {
	if t == nil || t.CollectionAdminTimeout == 0 {
		return defaultCollectionAdminTimeout
	}
	return t.CollectionAdminTimeout
}

// DefaultDatabaseAdminTimeout returns the default overall timeout value
// for DevOps database lifecycle operations. If there is no configured
// timeout or it is configured as 0, a default value of 10 minutes is
// used.
func (t *TimeoutOptions) DefaultDatabaseAdminTimeout() time.Duration {
	if t == nil || t.DatabaseAdminTimeout == 0 {
		return defaultDatabaseAdminTimeout
	}
	return t.DatabaseAdminTimeout
}
