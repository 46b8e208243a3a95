//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

/*
This is the Go SDK for the JSON document Data API.

The datadb package is the entry point: create a datadb.Client with a
datadb.Config, derive Database and Collection handles from it, and use
their methods to run document and schema operations. Database lifecycle
management goes through the AdminClient obtained from Client.Admin.

Supporting packages:

datadb/ejson provides the extended-JSON codec used for request and
response payloads, including the Duration, ObjectID and OrderedMap types.

datadb/dataerr defines the typed errors an operation can return and the
error descriptors parsed out of API responses.

datadb/logger provides the leveled logger accepted by datadb.Config.

datadb/observer lets applications receive request, response, warning and
error events for every operation issued through a client.
*/
package dataapi
