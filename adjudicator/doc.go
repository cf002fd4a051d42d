//
// doc.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

// Package adjudicator implements the optimistic state machine that
// ties the cryptographic evidence of packages gate and commitment to
// economic outcomes: a seven-stage protocol with per-stage deadlines,
// a collateral vault, and two-way slashing on a proven gate-leaf
// dispute.
//
// The adjudicator stands in for the ledger/contract layer spec.md §1
// treats as an external collaborator: a real deployment would compile
// this state machine to a smart contract (per original_source/, the
// protocol's origin). Here it is an in-process, mutex-guarded Go
// struct — spec.md §5 requires a single-threaded, totally-ordered
// environment where every transition is atomic, which a single mutex
// models directly; there is no separate ledger client in this repo.
package adjudicator
