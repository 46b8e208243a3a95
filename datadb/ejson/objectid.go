//
// Copyright (c) 2024, 2025 Oracle and/or its affiliates. All rights reserved.
//
// Licensed under the Universal Permissive License v 1.0 as shown at
//  https://oss.oracle.com/licenses/upl/
//

package ejson

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// ObjectID is a 12-byte document identifier, represented on the wire as the
// tagged value {"$objectId": "<24 hex characters>"}.
//
// The layout is a 4-byte big-endian timestamp in seconds, a 5-byte random
// process value and a 3-byte big-endian counter.
type ObjectID [12]byte

var objectIDCounter uint32
var objectIDProcess [5]byte

func init() {
	if _, err := rand.Read(objectIDProcess[:]); err != nil {
		panic(fmt.Sprintf("ejson: cannot seed ObjectID generation: %v", err))
	}
	var seed [4]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic(fmt.Sprintf("ejson: cannot seed ObjectID counter: %v", err))
	}
	objectIDCounter = binary.BigEndian.Uint32(seed[:])
}

// NewObjectID generates a new identifier stamped with the current time.
func NewObjectID() ObjectID {
	var id ObjectID
	binary.BigEndian.PutUint32(id[0:4], uint32(time.Now().Unix()))
	copy(id[4:9], objectIDProcess[:])
	n := atomic.AddUint32(&objectIDCounter, 1)
	id[9] = byte(n >> 16)
	id[10] = byte(n >> 8)
	id[11] = byte(n)
	return id
}

// ParseObjectID parses the 24-character hexadecimal representation.
func ParseObjectID(s string) (ObjectID, error) {
	var id ObjectID
	if len(s) != 24 {
		return id, fmt.Errorf("ejson: invalid ObjectID %q: must be 24 hexadecimal characters", s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("ejson: invalid ObjectID %q: %v", s, err)
	}
	copy(id[:], b)
	return id, nil
}

// Hex returns the 24-character hexadecimal representation.
func (id ObjectID) Hex() string {
	return hex.EncodeToString(id[:])
}

// String implements the fmt.Stringer interface.
func (id ObjectID) String() string {
	return id.Hex()
}

// Timestamp returns the creation time embedded in the identifier,
// with second precision.
func (id ObjectID) Timestamp() time.Time {
	secs := int64(binary.BigEndian.Uint32(id[0:4]))
	return time.Unix(secs, 0).UTC()
}
