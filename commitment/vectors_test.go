//
// vectors_test.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package commitment

import (
	"encoding/hex"
	"testing"

	"github.com/fairmillion/protocol/gate"
)

// TestLeafConformanceVectors pins two hand-computed
// (seed, instance, circuitId, gateIndex, gateDesc) -> leafBytes pairs,
// independently derived from the Keccak-256 construction in gate/, to
// catch any accidental drift in the leaf byte layout (gate type,
// wire ordering, row ordering) that a self-consistency check — calling
// RecomputeLeaf twice and comparing the two outputs — would never
// detect, since both calls would walk the same, possibly-broken code
// path.
func TestLeafConformanceVectors(t *testing.T) {
	cases := []struct {
		name       string
		seed       gate.Seed
		circuitID  gate.CircuitID
		instance   gate.InstanceID
		gateIndex  gate.GateIndex
		desc       gate.Descriptor
		wantLeaf   string
	}{
		{
			name:      "AND gate, ascending seed, descending circuitID",
			seed:      seedRange(0),
			circuitID: circuitIDDescending(),
			instance:  5,
			gateIndex: 9,
			desc:      gate.Descriptor{Type: gate.AND, WireA: 1, WireB: 2, WireC: 3},
			wantLeaf:  "00000100020003641bedd82ab0e0e8811f45d382cefacec7d0504323459db40668cb335133b66dcb9174b2e42ca5c24892be49d8f654286f6042805ef8f83efe4f12cd03c9abb8",
		},
		{
			name:      "XOR gate, affine seed, single-byte circuitID",
			seed:      seedAffine(),
			circuitID: gate.CircuitID{0x01},
			instance:  0,
			gateIndex: 0,
			desc:      gate.Descriptor{Type: gate.XOR, WireA: 0, WireB: 1, WireC: 2},
			wantLeaf:  "01000000010002af74d99135a36308ccd982593dd2fced8e0d42720050c397a516d9b851fe32958659d3f103209be53f26ee31fcc091abae1d8497ab0394c50bc9c3163cb96e0c",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RecomputeLeaf(tc.seed, tc.instance, tc.circuitID, tc.gateIndex, tc.desc)
			if err != nil {
				t.Fatal(err)
			}
			want, err := hex.DecodeString(tc.wantLeaf)
			if err != nil {
				t.Fatal(err)
			}
			if len(want) != gate.LeafSize {
				t.Fatalf("test vector itself has length %d, want %d", len(want), gate.LeafSize)
			}
			if string(got) != string(want) {
				t.Fatalf("leaf mismatch:\n got  %x\n want %x", got, want)
			}
		})
	}
}

func seedRange(offset byte) gate.Seed {
	var s gate.Seed
	for i := range s {
		s[i] = offset + byte(i)
	}
	return s
}

func circuitIDDescending() gate.CircuitID {
	var c gate.CircuitID
	for i := range c {
		c[i] = 0xFF - byte(i)
	}
	return c
}

func seedAffine() gate.Seed {
	var s gate.Seed
	for i := range s {
		s[i] = byte(i*7 + 3)
	}
	return s
}
