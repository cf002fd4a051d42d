//
// doc.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

// Package commitment builds per-instance commitments over a Garbler's
// gate leaves and produces the incremental-hash (IH) and layout Merkle
// proofs the adjudicator's dispute verifier consumes. It depends only
// on package gate for leaf derivation; it holds no protocol state of
// its own.
package commitment

// N is the fixed cut-and-choose instance count the protocol commits
// to: one instance is evaluated, N-1 are opened for audit.
const N = 10
