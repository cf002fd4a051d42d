//
// evaluator.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package evaluator

import (
	"fmt"

	"github.com/fairmillion/protocol/gate"
)

// Payload is the Garbler's published garbled circuit for one instance:
// the agreed gate list plus the four rows garbled for each gate (all
// zero for NOT gates).
type Payload struct {
	Gates []gate.Descriptor
	Rows  [][4]gate.Label
}

// ParsePayload decodes a payload from the instance's ordered 71-byte
// leaves, checking each leaf's descriptor against the agreed circuit
// layout.
func ParsePayload(gates []gate.Descriptor, leaves [][]byte) (*Payload, error) {
	if len(leaves) != len(gates) {
		return nil, fmt.Errorf("evaluator: got %d leaves, want %d", len(leaves), len(gates))
	}
	rows := make([][4]gate.Label, len(leaves))
	for i, leaf := range leaves {
		desc, r, err := gate.ParseLeaf(leaf)
		if err != nil {
			return nil, fmt.Errorf("evaluator: gate %d: %w", i, err)
		}
		if desc != gates[i] {
			return nil, fmt.Errorf("evaluator: gate %d: leaf descriptor %+v does not match agreed layout %+v", i, desc, gates[i])
		}
		rows[i] = r
	}
	return &Payload{Gates: gates, Rows: rows}, nil
}

// Evaluate walks the circuit in gate order, resolving each gate's
// output label from its two input labels, and returns the label on
// the circuit's designated output wire.
//
// inputLabels must already carry a label for every input wire: the
// Evaluator's own labels (obtained via OT, out of scope here per
// spec.md §1) and the Garbler's labels for her input wires, revealed
// at the Labels stage.
func Evaluate(payload *Payload, circuitID gate.CircuitID, instance gate.InstanceID,
	outputWire gate.WireID, inputLabels map[gate.WireID]gate.Label) (gate.Label, error) {

	wireLabels := make(map[gate.WireID]gate.Label, len(inputLabels)+len(payload.Gates))
	for w, l := range inputLabels {
		wireLabels[w] = l
	}

	for i, g := range payload.Gates {
		a, ok := wireLabels[g.WireA]
		if !ok {
			return gate.Label{}, fmt.Errorf("evaluator: gate %d: wire %d has no label", i, g.WireA)
		}

		switch g.Type {
		case gate.NOT:
			// Free NOT: the output wire's labels are the input wire's
			// labels with the semantic bit flipped (§9 Open Question),
			// so the observed label carries over unchanged.
			wireLabels[g.WireC] = a

		case gate.AND, gate.XOR:
			b, ok := wireLabels[g.WireB]
			if !ok {
				return gate.Label{}, fmt.Errorf("evaluator: gate %d: wire %d has no label", i, g.WireB)
			}
			idx := 2*a.PermBit() + b.PermBit()
			row := payload.Rows[i][idx]
			wireLabels[g.WireC] = gate.Decrypt(circuitID, instance, gate.GateIndex(i), a, b, row)

		default:
			return gate.Label{}, fmt.Errorf("evaluator: gate %d: invalid gate type %s", i, g.Type)
		}
	}

	out, ok := wireLabels[outputWire]
	if !ok {
		return gate.Label{}, fmt.Errorf("evaluator: output wire %d was never computed", outputWire)
	}
	return out, nil
}
