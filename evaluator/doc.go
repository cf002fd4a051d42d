//
// doc.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

// Package evaluator implements component D: given the chosen
// instance's garbled payload and the two parties' input labels, walk
// the circuit in topological order and produce the output label to
// submit for settlement.
//
// Grounded on the teacher's circuit.Eval walk (circuit/eval.go):
// resolve each gate's two input labels, select the row their observed
// permutation bits index, decrypt it, move on.
package evaluator
