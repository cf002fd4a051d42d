//
// session.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

// Package session wires the shared configuration and logger every
// cmd/ binary needs to open or attach to an adjudicator session, in
// the small injected-config style of the teacher's env.Config.
package session

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config is the global configuration shared by the garbler, evaluator,
// and adjudicator-cli binaries. It must not be mutated after being
// handed to a command: every subcommand reads it, none of them own it.
type Config struct {
	// WorkDir is the artifact work directory (instance seed/leaf/root
	// files live here).
	WorkDir string
	// BitWidth is the agreed comparator's bit width.
	BitWidth int
	// Verbose enables debug-level logging.
	Verbose bool
	// DepositGarbler and DepositEvaluator are the collateral amounts
	// each party must deposit before Commitments may begin.
	DepositGarbler   uint64
	DepositEvaluator uint64
}

// Logger returns the process-wide structured logger, configured from
// cfg.Verbose. Every cmd/ binary calls this once at startup.
func (cfg Config) Logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// Validate checks the fields every subcommand needs populated.
func (cfg Config) Validate() error {
	if cfg.WorkDir == "" {
		return fmt.Errorf("session: --work-dir is required")
	}
	if cfg.BitWidth < 1 {
		return fmt.Errorf("session: --bit-width must be >= 1, got %d", cfg.BitWidth)
	}
	return nil
}
