//
// layout.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package commitment

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/fairmillion/protocol/gate"
)

// layoutLeaf hashes a gate's layout preimage:
// gateIndex(32) || gateType(1) || wireA(2) || wireB(2) || wireC(2).
func layoutLeaf(gateIndex gate.GateIndex, desc gate.Descriptor) [32]byte {
	var idx [32]byte
	binary.BigEndian.PutUint64(idx[24:], uint64(gateIndex))

	var wireA, wireB, wireC [2]byte
	binary.BigEndian.PutUint16(wireA[:], uint16(desc.WireA))
	binary.BigEndian.PutUint16(wireB[:], uint16(desc.WireB))
	binary.BigEndian.PutUint16(wireC[:], uint16(desc.WireC))

	return gate.H(idx[:], []byte{byte(desc.Type)}, wireA[:], wireB[:], wireC[:])
}

// sortedPair returns H(min(a,b) || max(a,b)), the standard sorted-pair
// Merkle combination: order is fixed by value, not by tree position,
// so proofs need no left/right direction bits.
func sortedPair(a, b [32]byte) [32]byte {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return gate.H(a[:], b[:])
	}
	return gate.H(b[:], a[:])
}

// BuildLayoutRoot computes circuitLayoutRoot over an ordered gate list.
func BuildLayoutRoot(gates []gate.Descriptor) [32]byte {
	level := make([][32]byte, len(gates))
	for i, g := range gates {
		level[i] = layoutLeaf(gate.GateIndex(i), g)
	}
	return reduceTree(level)
}

func reduceTree(level [][32]byte) [32]byte {
	if len(level) == 0 {
		return [32]byte{}
	}
	for len(level) > 1 {
		var next [][32]byte
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, sortedPair(level[i], level[i+1]))
			} else {
				// Odd leftover: duplicate it into the next level.
				next = append(next, sortedPair(level[i], level[i]))
			}
		}
		level = next
	}
	return level[0]
}

// LayoutProof is the sibling path from a queried gate's layout leaf up
// to circuitLayoutRoot.
type LayoutProof struct {
	Siblings [][32]byte
}

// BuildLayoutProof builds the sibling path for gate index k.
func BuildLayoutProof(gates []gate.Descriptor, k int) (LayoutProof, error) {
	if k < 0 || k >= len(gates) {
		return LayoutProof{}, fmt.Errorf("commitment: gate index %d out of range [0,%d)", k, len(gates))
	}

	level := make([][32]byte, len(gates))
	for i, g := range gates {
		level[i] = layoutLeaf(gate.GateIndex(i), g)
	}

	var proof LayoutProof
	idx := k
	for len(level) > 1 {
		var sibling [32]byte
		if idx^1 < len(level) {
			sibling = level[idx^1]
		} else {
			sibling = level[idx]
		}
		proof.Siblings = append(proof.Siblings, sibling)

		var next [][32]byte
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, sortedPair(level[i], level[i+1]))
			} else {
				next = append(next, sortedPair(level[i], level[i]))
			}
		}
		level = next
		idx /= 2
	}
	return proof, nil
}

// Verify checks the sibling path for (gateIndex, desc) against root.
func (p LayoutProof) Verify(gateIndex gate.GateIndex, desc gate.Descriptor, root [32]byte) bool {
	cur := layoutLeaf(gateIndex, desc)
	for _, s := range p.Siblings {
		cur = sortedPair(cur, s)
	}
	return cur == root
}
