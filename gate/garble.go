//
// garble.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package gate

import "fmt"

// rowKey computes rowKey(permA,permB) per §4.1.
func rowKey(circuitID CircuitID, i InstanceID, gateIndex GateIndex, permA, permB byte, labelA, labelB Label) [32]byte {
	return H([]byte("K"), circuitID[:], putUint32(uint32(i)), putUint32(uint32(gateIndex)),
		[]byte{permA}, []byte{permB}, labelA[:], labelB[:])
}

// pad computes the 16-byte pad for a row key.
func pad(key [32]byte) Label {
	raw := H([]byte("PAD"), key[:])
	var l Label
	copy(l[:], raw[:16])
	return l
}

func outBit(t Type, bitA, bitB byte) byte {
	switch t {
	case AND:
		return bitA & bitB
	case XOR:
		return bitA ^ bitB
	default:
		panic("outBit called for NOT gate")
	}
}

// Garble computes the four garbled rows for a binary (AND/XOR) gate.
// For NOT gates it returns four zero rows, per §4.1: "NOT: no rows;
// leaf carries zeros."
func Garble(d *Deriver, gateIndex GateIndex, desc Descriptor) ([4]Label, error) {
	var rows [4]Label

	switch desc.Type {
	case NOT:
		return rows, nil

	case AND, XOR:
		flipA := d.Flip(desc.WireA)
		flipB := d.Flip(desc.WireB)

		for permA := byte(0); permA < 2; permA++ {
			for permB := byte(0); permB < 2; permB++ {
				bitA := permA ^ flipA
				bitB := permB ^ flipB
				bit := outBit(desc.Type, bitA, bitB)

				labelA := d.Label(desc.WireA, bitA)
				labelB := d.Label(desc.WireB, bitB)
				outLabel := d.Label(desc.WireC, bit)

				key := rowKey(d.circuitID, d.instance, gateIndex, permA, permB, labelA, labelB)
				rows[2*permA+permB] = outLabel.Xor(pad(key))
			}
		}
		return rows, nil

	default:
		return rows, fmt.Errorf("gate: invalid gate type %s", desc.Type)
	}
}

// Decrypt recovers a gate's output label from one garbled row, given
// the evaluator's two observed input labels. It is the inverse of the
// row computation in Garble: row = outLabel XOR pad(rowKey), so
// outLabel = row XOR pad(rowKey).
func Decrypt(circuitID CircuitID, instance InstanceID, gateIndex GateIndex, labelA, labelB, row Label) Label {
	permA := labelA.PermBit()
	permB := labelB.PermBit()
	key := rowKey(circuitID, instance, gateIndex, permA, permB, labelA, labelB)
	return row.Xor(pad(key))
}
