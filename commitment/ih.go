//
// ih.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package commitment

import (
	"encoding/binary"
	"fmt"

	"github.com/fairmillion/protocol/gate"
)

// ihLeafBlock hashes one gate's IH leaf preimage: gateIndex(32) || leafBytes(71).
func ihLeafBlock(gateIndex gate.GateIndex, leafBytes []byte) [32]byte {
	var idx [32]byte
	binary.BigEndian.PutUint64(idx[24:], uint64(gateIndex))
	return gate.H(idx[:], leafBytes)
}

// BuildIHChain folds the ordered gate leaves of one instance into the
// IH chain terminal state rootGC, per §4.2:
//
//	IH_0 = H(0x00...00 || H(0 || leafBytes_0))
//	IH_k = H(IH_{k-1} || H(k || leafBytes_k))
func BuildIHChain(leaves [][]byte) [32]byte {
	var state [32]byte
	for k, leaf := range leaves {
		block := ihLeafBlock(gate.GateIndex(k), leaf)
		state = gate.H(state[:], block[:])
	}
	return state
}

// IHProof is the evidence needed to verify one queried gate's leaf
// against the instance's rootGC without replaying the whole chain.
type IHProof struct {
	// Prefix is IH_{k-1}, the folded state just before the queried
	// gate. Zero (and Present=false) when the queried gate is index 0.
	Prefix  [32]byte
	Present bool
	// Suffix holds, in order, the per-gate IH leaf blocks for every
	// gate after the queried one.
	Suffix [][32]byte
}

// BuildIHProof builds the IH proof for gate index k given the
// instance's ordered leaves.
func BuildIHProof(leaves [][]byte, k int) (IHProof, error) {
	if k < 0 || k >= len(leaves) {
		return IHProof{}, fmt.Errorf("commitment: gate index %d out of range [0,%d)", k, len(leaves))
	}

	var proof IHProof
	if k > 0 {
		proof.Prefix = BuildIHChain(leaves[:k])
		proof.Present = true
	}
	for j := k + 1; j < len(leaves); j++ {
		proof.Suffix = append(proof.Suffix, ihLeafBlock(gate.GateIndex(j), leaves[j]))
	}
	return proof, nil
}

// Verify reconstructs the IH chain's terminal state from the queried
// gate's leaf and the proof, and reports whether it equals rootGC.
func (p IHProof) Verify(gateIndex gate.GateIndex, leafBytes []byte, rootGC [32]byte) bool {
	state := [32]byte{}
	if p.Present {
		state = p.Prefix
	}
	block := ihLeafBlock(gateIndex, leafBytes)
	state = gate.H(state[:], block[:])

	for _, s := range p.Suffix {
		state = gate.H(state[:], s[:])
	}
	return state == rootGC
}
