//
// derive.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package gate

// flipBit computes flip(seed,i,w) = lowBit(H("P" || circuitId || i || w || seed)).
func flipBit(seed Seed, i InstanceID, circuitID CircuitID, w WireID) byte {
	d := H([]byte("P"), circuitID[:], putUint32(uint32(i)), putUint16(w), seed[:])
	return lowBit(d)
}

// deriveLabel computes the semantic-bit label for wire w without any
// NOT-gate aliasing:
//
//	raw = H("L" || circuitId || i || w || b || seed)
//	label = first 16 bytes of raw, byte 0 patched so its LSB carries
//	        the permutation bit flip(seed,i,w) XOR b.
func deriveLabel(seed Seed, i InstanceID, circuitID CircuitID, w WireID, b byte) Label {
	raw := H([]byte("L"), circuitID[:], putUint32(uint32(i)), putUint16(w), []byte{b}, seed[:])

	var l Label
	copy(l[:], raw[:16])
	p := flipBit(seed, i, circuitID, w) ^ (b & 1)
	l[0] = (l[0] &^ 1) | p
	return l
}

// AliasMap maps a NOT gate's output wire to its single input wire. A
// NOT gate is garbled for free: its output wire's labels are defined
// to be its input wire's labels with the semantic bit flipped, so
// L(wireC, b) = L(wireA, 1-b). This keeps the leaf's four rows zero
// (per §4.1) without needing a lookup table at evaluation time — the
// evaluator simply forwards the input label unchanged as the output
// label of a NOT gate.
type AliasMap map[WireID]WireID

// BuildAliasMap scans an ordered gate list and records the wireC ->
// wireA alias introduced by every NOT gate.
func BuildAliasMap(gates []Descriptor) AliasMap {
	aliases := make(AliasMap)
	for _, g := range gates {
		if g.Type == NOT {
			aliases[g.WireC] = g.WireA
		}
	}
	return aliases
}

// Deriver derives labels and flip bits for one (seed, instance,
// circuit) triple, resolving NOT-gate aliases along the way.
type Deriver struct {
	seed      Seed
	instance  InstanceID
	circuitID CircuitID
	aliases   AliasMap
}

// NewDeriver creates a label/flip deriver for one instance.
func NewDeriver(seed Seed, instance InstanceID, circuitID CircuitID, aliases AliasMap) *Deriver {
	return &Deriver{seed: seed, instance: instance, circuitID: circuitID, aliases: aliases}
}

// Flip returns flip(seed,instance,w), resolving NOT aliases.
func (d *Deriver) Flip(w WireID) byte {
	if src, ok := d.aliases[w]; ok {
		return d.Flip(src) ^ 1
	}
	return flipBit(d.seed, d.instance, d.circuitID, w)
}

// Label returns L(w,b), resolving NOT aliases.
func (d *Deriver) Label(w WireID, b byte) Label {
	if src, ok := d.aliases[w]; ok {
		return d.Label(src, (b^1)&1)
	}
	return deriveLabel(d.seed, d.instance, d.circuitID, w, b)
}
