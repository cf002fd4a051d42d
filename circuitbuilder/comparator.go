//
// comparator.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package circuitbuilder

import (
	"fmt"

	"github.com/fairmillion/protocol/gate"
)

// Circuit is the agreed n-bit "is x > y" comparator: an ordered gate
// list plus the wire ids the two parties bind their inputs to.
type Circuit struct {
	BitWidth int
	// XWires are Alice's input wires, bit 0 (least significant) first.
	XWires []gate.WireID
	// YWires are Bob's input wires, bit 0 (least significant) first.
	YWires []gate.WireID
	// OutputWire carries the comparator's result: semantic 1 means
	// x > y.
	OutputWire gate.WireID
	Gates      []gate.Descriptor
	NumWires   int
}

type builder struct {
	next  gate.WireID
	gates []gate.Descriptor
}

func (b *builder) wire() gate.WireID {
	w := b.next
	b.next++
	return w
}

func (b *builder) and(a, c gate.WireID) gate.WireID {
	out := b.wire()
	b.gates = append(b.gates, gate.Descriptor{Type: gate.AND, WireA: a, WireB: c, WireC: out})
	return out
}

func (b *builder) xor(a, c gate.WireID) gate.WireID {
	out := b.wire()
	b.gates = append(b.gates, gate.Descriptor{Type: gate.XOR, WireA: a, WireB: c, WireC: out})
	return out
}

// halfLt returns a wire carrying a < b, for one bit: NOT(a) AND b,
// computed as b XOR (a AND b).
func (b *builder) halfLt(a, c gate.WireID) gate.WireID {
	ab := b.and(a, c)
	return b.xor(c, ab)
}

// fullLt returns a wire carrying a < b with incoming borrow bin,
// mirroring the teacher's full subtractor-comparator but with every
// inverter absorbed into an AND/XOR pair.
func (b *builder) fullLt(a, c, bin gate.WireID) gate.WireID {
	w3 := b.xor(a, c)                 // a XOR b
	ab := b.and(a, c)                 // a AND b
	w5 := b.xor(c, ab)                // b AND NOT(a)
	w3bin := b.and(w3, bin)           // (a XOR b) AND bin
	w7 := b.xor(bin, w3bin)           // bin AND NOT(a XOR b)
	w5w7 := b.and(w5, w7)
	orSum := b.xor(w5, w7)
	return b.xor(orSum, w5w7) // OR(w5,w7) = w5 XOR w7 XOR (w5 AND w7)
}

// NewComparator builds the n-bit "is x > y" circuit. It is a pure
// function of bitWidth: calling it twice with the same bitWidth
// produces byte-identical gate lists and wire assignments, which both
// parties rely on to agree on circuitLayoutRoot independently.
func NewComparator(bitWidth int) (*Circuit, error) {
	if bitWidth < 1 {
		return nil, fmt.Errorf("circuitbuilder: bit width must be >= 1, got %d", bitWidth)
	}
	if bitWidth > 4096 {
		return nil, fmt.Errorf("circuitbuilder: bit width %d exceeds wire id range", bitWidth)
	}

	b := &builder{}

	xWires := make([]gate.WireID, bitWidth)
	for i := range xWires {
		xWires[i] = b.wire()
	}
	yWires := make([]gate.WireID, bitWidth)
	for i := range yWires {
		yWires[i] = b.wire()
	}

	// x > y iff y < x: run the subtractor-comparator with operands
	// swapped.
	bin := b.halfLt(yWires[0], xWires[0])
	for i := 1; i < bitWidth; i++ {
		bin = b.fullLt(yWires[i], xWires[i], bin)
	}

	return &Circuit{
		BitWidth:   bitWidth,
		XWires:     xWires,
		YWires:     yWires,
		OutputWire: bin,
		Gates:      b.gates,
		NumWires:   int(b.next),
	}, nil
}
