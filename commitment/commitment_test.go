//
// commitment_test.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package commitment

import (
	"testing"

	"github.com/fairmillion/protocol/gate"
)

func testSeed(fill byte) gate.Seed {
	var s gate.Seed
	for i := range s {
		s[i] = fill + byte(i)
	}
	return s
}

func testGates() []gate.Descriptor {
	return []gate.Descriptor{
		{Type: gate.XOR, WireA: 0, WireB: 1, WireC: 2},
		{Type: gate.AND, WireA: 0, WireB: 1, WireC: 3},
		{Type: gate.AND, WireA: 2, WireB: 3, WireC: 4},
	}
}

// TestHonestChallengeAlwaysSucceeds checks: "An honest Garbler's
// commitments pass any gate challenge on any opened index."
func TestHonestChallengeAlwaysSucceeds(t *testing.T) {
	seed := testSeed(1)
	circuitID := gate.CircuitID{0xAA}
	gates := testGates()

	ic, leaves, err := BuildInstance(seed, 2, circuitID, gates, 4)
	if err != nil {
		t.Fatal(err)
	}

	for k := range gates {
		ihProof, err := BuildIHProof(leaves, k)
		if err != nil {
			t.Fatal(err)
		}
		layoutRoot := BuildLayoutRoot(gates)
		layoutProof, err := BuildLayoutProof(gates, k)
		if err != nil {
			t.Fatal(err)
		}

		if !layoutProof.Verify(gate.GateIndex(k), gates[k], layoutRoot) {
			t.Fatalf("gate %d: layout proof failed", k)
		}
		if !ihProof.Verify(gate.GateIndex(k), leaves[k], ic.RootGC) {
			t.Fatalf("gate %d: IH proof failed", k)
		}

		recomputed, err := RecomputeLeaf(seed, 2, circuitID, gate.GateIndex(k), gates[k])
		if err != nil {
			t.Fatal(err)
		}
		if string(recomputed) != string(leaves[k]) {
			t.Fatalf("gate %d: recomputed leaf differs from committed leaf", k)
		}
	}
}

// TestTamperedLeafFailsChallenge checks that a tampered leaf produces
// a mismatching recomputation (the basis for the adjudicator slashing
// the Garbler).
func TestTamperedLeafFailsChallenge(t *testing.T) {
	seed := testSeed(2)
	circuitID := gate.CircuitID{0xBB}
	gates := testGates()

	_, leaves, err := BuildInstance(seed, 0, circuitID, gates, 4)
	if err != nil {
		t.Fatal(err)
	}

	tampered := append([]byte(nil), leaves[1]...)
	tampered[10] ^= 0xFF

	recomputed, err := RecomputeLeaf(seed, 0, circuitID, 1, gates[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(recomputed) == string(tampered) {
		t.Fatal("tampered leaf unexpectedly matches recomputation")
	}
}

// TestBadIHProofRejected checks invariant 5: a gate-leaf challenge
// whose IH proof fails must be rejected without changing any state
// (exercised at the adjudicator layer; here we just check the proof
// predicate itself is sound).
func TestBadIHProofRejected(t *testing.T) {
	seed := testSeed(3)
	circuitID := gate.CircuitID{0xCC}
	gates := testGates()

	ic, leaves, err := BuildInstance(seed, 1, circuitID, gates, 4)
	if err != nil {
		t.Fatal(err)
	}

	proof, err := BuildIHProof(leaves, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Corrupt the suffix so the folded state can't reach rootGC.
	if len(proof.Suffix) > 0 {
		proof.Suffix[0][0] ^= 0xFF
	} else {
		proof.Prefix[0] ^= 0xFF
		proof.Present = true
	}
	if proof.Verify(0, leaves[0], ic.RootGC) {
		t.Fatal("corrupted IH proof unexpectedly verified")
	}
}
// The hardcoded (seed, instance, circuitId, gateIndex, gateDesc) ->
// leafBytes conformance vectors live in vectors_test.go, computed
// independently of this package's own code.
