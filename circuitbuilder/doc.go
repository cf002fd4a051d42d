//
// doc.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

// Package circuitbuilder builds the agreed comparator circuit (the
// fixed, external `circuitLayout` spec.md §1 treats as a collaborator
// input): an n-bit "is x > y" Boolean circuit expressed purely as
// AND/XOR gates.
//
// The construction is grounded on the teacher's bit-serial subtractor
// comparator (compiler/circuits/circ_comparators.go), which chains a
// half-comparator and n-1 full-comparators propagating a borrow bit.
// That construction uses INV (NOT) gates; since this protocol's gate
// set is {AND, XOR, NOT} and NOT gates carry no garbled rows (§4.1),
// every inverter the teacher's construction needs is absorbed into an
// adjacent AND/XOR pair via the GF(2) identity
//
//	NOT(a) AND b == b XOR (a AND b)
//
// so the circuit this package emits never contains a NOT gate. This
// sidesteps the §9 Open Question about NOT-gate output wires feeding
// further gates: it simply never happens here.
package circuitbuilder
