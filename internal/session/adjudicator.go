//
// adjudicator.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fairmillion/protocol/adjudicator"
	"github.com/fairmillion/protocol/gate"
	"github.com/rs/zerolog"
)

// Alice and Bob are the two fixed party identities used across the
// garbler, evaluator, and adjudicator-cli binaries. There is no
// ledger/identity layer in this demo (spec.md §1's explicit
// non-goal), so the names are hardcoded rather than derived from any
// key material.
const (
	Alice adjudicator.Party = "alice"
	Bob   adjudicator.Party = "bob"
)

// FixedCircuitID returns the single agreed circuit id this reference
// demo negotiates out of band (spec.md §1 treats circuit-id agreement
// as an external concern); every binary calls this instead of picking
// its own, so all three independently derive the same id.
func FixedCircuitID() gate.CircuitID {
	var id gate.CircuitID
	id[0] = 0x01
	return id
}

// stateFileName is the shared work-directory file the three separate
// cmd/ processes use in place of a real on-chain ledger: each
// subcommand invocation opens it, applies one transition, and writes
// it back.
const stateFileName = "adjudicator-state.json"

func statePath(workDir string) string {
	return filepath.Join(workDir, stateFileName)
}

// InitAdjudicator creates a brand-new session rooted at circuitID and
// layoutRoot and persists it to cfg.WorkDir. derive-anchors builds its
// session the same way inline (adjudicator.New, then SaveAdjudicator)
// rather than through this helper; every other subcommand calls
// OpenAdjudicator.
func InitAdjudicator(cfg Config, circuitID gate.CircuitID, layoutRoot [32]byte, logger zerolog.Logger) (*adjudicator.Adjudicator, error) {
	if err := EnsureWorkDir(cfg); err != nil {
		return nil, err
	}
	acfg := adjudicator.Config{
		DepositGarbler:   cfg.DepositGarbler,
		DepositEvaluator: cfg.DepositEvaluator,
	}
	a := adjudicator.New(acfg, Alice, Bob, circuitID, layoutRoot, nil, logger)
	if err := SaveAdjudicator(cfg, a); err != nil {
		return nil, err
	}
	return a, nil
}

// OpenAdjudicator restores the session persisted under cfg.WorkDir.
func OpenAdjudicator(cfg Config, logger zerolog.Logger) (*adjudicator.Adjudicator, error) {
	path := statePath(cfg.WorkDir)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("session: reading %s: %w", path, err)
	}
	var st adjudicator.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("session: parsing %s: %w", path, err)
	}
	return adjudicator.Restore(st, nil, logger)
}

// SaveAdjudicator persists a's current state to cfg.WorkDir, overwriting
// any prior snapshot. Every subcommand that mutates the adjudicator
// calls this before exiting, since each subcommand is a fresh process.
func SaveAdjudicator(cfg Config, a *adjudicator.Adjudicator) error {
	if err := EnsureWorkDir(cfg); err != nil {
		return err
	}
	st := a.ExportState()
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshaling adjudicator state: %w", err)
	}
	path := statePath(cfg.WorkDir)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("session: writing %s: %w", path, err)
	}
	return nil
}

// EnsureWorkDir creates cfg.WorkDir if it does not already exist.
func EnsureWorkDir(cfg Config) error {
	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return fmt.Errorf("session: creating work dir %s: %w", cfg.WorkDir, err)
	}
	return nil
}
