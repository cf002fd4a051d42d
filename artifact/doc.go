//
// doc.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

// Package artifact reads and writes the protocol's persisted
// work-directory layout: per-instance seed, leaf, and root files that
// let the Garbler hand off state to the Evaluator (or to a later CLI
// invocation of her own) without an always-on process holding it in
// memory.
package artifact
