//
// leaf.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package gate

import "fmt"

// LeafSize is the fixed byte length of a gate leaf.
const LeafSize = 71

// BuildLeaf assembles the 71-byte leaf for one gate:
//
//	gateType(1) || wireA(2) || wireB(2) || wireC(2) ||
//	row0(16) || row1(16) || row2(16) || row3(16)
//
// with big-endian wire ids. It is the single function both the
// commitment builder and the dispute verifier call, so a NOT gate's
// all-zero rows agree on both sides by construction.
func BuildLeaf(d *Deriver, gateIndex GateIndex, desc Descriptor) ([]byte, error) {
	rows, err := Garble(d, gateIndex, desc)
	if err != nil {
		return nil, err
	}
	return AssembleLeaf(desc, rows), nil
}

// AssembleLeaf concatenates a gate descriptor and its four garbled
// rows into the normative 71-byte leaf layout.
func AssembleLeaf(desc Descriptor, rows [4]Label) []byte {
	out := make([]byte, 0, LeafSize)
	out = append(out, byte(desc.Type))
	out = append(out, putUint16(desc.WireA)...)
	out = append(out, putUint16(desc.WireB)...)
	out = append(out, putUint16(desc.WireC)...)
	for _, r := range rows {
		out = append(out, r[:]...)
	}
	return out
}

// ParseLeaf decodes a 71-byte leaf back into its descriptor and rows.
func ParseLeaf(leaf []byte) (Descriptor, [4]Label, error) {
	var desc Descriptor
	var rows [4]Label
	if len(leaf) != LeafSize {
		return desc, rows, fmt.Errorf("gate: leaf has length %d, want %d", len(leaf), LeafSize)
	}
	desc.Type = Type(leaf[0])
	desc.WireA = WireID(uint16(leaf[1])<<8 | uint16(leaf[2]))
	desc.WireB = WireID(uint16(leaf[3])<<8 | uint16(leaf[4]))
	desc.WireC = WireID(uint16(leaf[5])<<8 | uint16(leaf[6]))
	for i := 0; i < 4; i++ {
		copy(rows[i][:], leaf[7+i*16:7+(i+1)*16])
	}
	return desc, rows, nil
}
