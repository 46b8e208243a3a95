//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

/*
Package datadb provides the public APIs for Go applications to use the
JSON document Data API and its companion DevOps API.

This package also provides configuration and common operational structs,
such as the option and result types used for document operations, the
timeout machinery shared by all operations, and the Commander that drives
the HTTP requests.
*/
package datadb
