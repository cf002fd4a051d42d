//
// comparator_test.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package circuitbuilder

import (
	"testing"

	"github.com/fairmillion/protocol/gate"
)

// evalPlain runs the gate list in plaintext over a bit assignment, to
// check the comparator's Boolean semantics independent of garbling.
func evalPlain(c *Circuit, x, y uint64) bool {
	bits := make(map[gate.WireID]byte, c.NumWires)
	for i, w := range c.XWires {
		bits[w] = byte((x >> i) & 1)
	}
	for i, w := range c.YWires {
		bits[w] = byte((y >> i) & 1)
	}
	for _, g := range c.Gates {
		a := bits[g.WireA]
		switch g.Type {
		case gate.AND:
			bits[g.WireC] = a & bits[g.WireB]
		case gate.XOR:
			bits[g.WireC] = a ^ bits[g.WireB]
		case gate.NOT:
			bits[g.WireC] = a ^ 1
		}
	}
	return bits[c.OutputWire] == 1
}

func TestComparatorSemantics(t *testing.T) {
	for _, bitWidth := range []int{1, 2, 4, 8} {
		c, err := NewComparator(bitWidth)
		if err != nil {
			t.Fatal(err)
		}
		max := uint64(1) << bitWidth
		for x := uint64(0); x < max; x++ {
			for y := uint64(0); y < max; y++ {
				got := evalPlain(c, x, y)
				want := x > y
				if got != want {
					t.Fatalf("bitWidth=%d x=%d y=%d: got %v want %v", bitWidth, x, y, got, want)
				}
			}
		}
	}
}

func TestComparatorNoNotGates(t *testing.T) {
	c, err := NewComparator(16)
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range c.Gates {
		if g.Type == gate.NOT {
			t.Fatalf("comparator unexpectedly emitted a NOT gate: %+v", g)
		}
	}
}

func TestComparatorDeterministic(t *testing.T) {
	a, err := NewComparator(8)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewComparator(8)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Gates) != len(b.Gates) {
		t.Fatalf("gate count differs: %d vs %d", len(a.Gates), len(b.Gates))
	}
	for i := range a.Gates {
		if a.Gates[i] != b.Gates[i] {
			t.Fatalf("gate %d differs: %+v vs %+v", i, a.Gates[i], b.Gates[i])
		}
	}
	if a.OutputWire != b.OutputWire {
		t.Fatal("output wire differs across builds")
	}
}

func TestRejectsInvalidBitWidth(t *testing.T) {
	if _, err := NewComparator(0); err == nil {
		t.Fatal("expected error for zero bit width")
	}
}
