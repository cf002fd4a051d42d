//
// commitment.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package commitment

import (
	"github.com/fairmillion/protocol/gate"
)

// InstanceCommitment is the on-ledger commitment record for one
// cut-and-choose instance, published atomically with the other N-1.
type InstanceCommitment struct {
	// ComSeed = H(seed[i]).
	ComSeed [32]byte
	// RootGC is the IH chain's terminal state over the instance's
	// ordered gate leaves.
	RootGC [32]byte
	// RootXG and RootOT are reserved, opaque roots over the
	// Garbler-input-label and OT-transcript messages. The dispute core
	// does not consume them (§9 Open Question); callers may populate
	// them from their own transport layer or leave them zero.
	RootXG [32]byte
	RootOT [32]byte
	// H0, H1 are the result anchors the adjudicator settles against:
	// H0 = H(L_out(1)), the output label for x > y (result true), and
	// H1 = H(L_out(0)), the output label for x <= y (result false).
	H0 [32]byte
	H1 [32]byte
}

// SeedCommitment computes comSeed = H(seed).
func SeedCommitment(seed gate.Seed) [32]byte {
	return gate.H(seed[:])
}

// BuildInstance garbles every gate of one instance and returns its
// commitment record plus the ordered leaf bytes (kept by the Garbler
// for later IH/layout proof construction during Dispute).
func BuildInstance(seed gate.Seed, instance gate.InstanceID, circuitID gate.CircuitID,
	gates []gate.Descriptor, outputWire gate.WireID) (InstanceCommitment, [][]byte, error) {

	aliases := gate.BuildAliasMap(gates)
	d := gate.NewDeriver(seed, instance, circuitID, aliases)

	leaves := make([][]byte, len(gates))
	for i, g := range gates {
		leaf, err := gate.BuildLeaf(d, gate.GateIndex(i), g)
		if err != nil {
			return InstanceCommitment{}, nil, err
		}
		leaves[i] = leaf
	}

	l0 := d.Label(outputWire, 0)
	l1 := d.Label(outputWire, 1)

	// The comparator's output bit 1 means x > y, which settles as
	// result true, so its label is anchored by H0.
	ic := InstanceCommitment{
		ComSeed: SeedCommitment(seed),
		RootGC:  BuildIHChain(leaves),
		H0:      gate.H(l1[:]),
		H1:      gate.H(l0[:]),
	}
	return ic, leaves, nil
}

// RecomputeLeaf rebuilds the expected leaf bytes for a single gate
// directly from its revealed seed and descriptor, per §4.1. It does
// not require the surrounding circuit: this is correct for any circuit
// whose NOT gates (if any) never feed another gate as an input — the
// comparator circuit this protocol commits to never emits a NOT gate
// (see circuitbuilder), so that caveat never arises in practice.
func RecomputeLeaf(seed gate.Seed, instance gate.InstanceID, circuitID gate.CircuitID,
	gateIndex gate.GateIndex, desc gate.Descriptor) ([]byte, error) {

	d := gate.NewDeriver(seed, instance, circuitID, nil)
	return gate.BuildLeaf(d, gateIndex, desc)
}
