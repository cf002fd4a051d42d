//
// doc.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

// Package gate implements the deterministic label and garbled-row
// derivation shared byte-for-byte between the Garbler, the Evaluator,
// and the adjudicator's dispute verifier.
//
// Every function in this package is pure: all outputs are derived from
// (seed, instanceId, circuitId, gateIndex, gateDesc) with no implicit
// state. That is the contract the whole protocol leans on — a single
// mismatched byte here breaks adjudication.
package gate
