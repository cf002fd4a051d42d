//
// hash.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package gate

import (
	"golang.org/x/crypto/sha3"
)

// H is the single fixed hash function used identically for every
// preimage in this protocol: Keccak-256. Implementations MUST NOT
// substitute an alternative hash per call site.
func H(parts ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// lowBit returns bit 0 of byte 31 of a 32-byte digest.
func lowBit(d [32]byte) byte {
	return d[31] & 1
}
