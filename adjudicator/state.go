//
// state.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package adjudicator

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/fairmillion/protocol/commitment"
	"github.com/fairmillion/protocol/gate"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// instanceCommitmentState is the hex-encoded, JSON-friendly mirror of
// commitment.InstanceCommitment — the adjudicator's own fixed-size
// byte arrays don't survive encoding/json's default array handling
// (it marshals [32]byte as a JSON array of numbers, not a string), so
// State stores hex text throughout, matching the rest of the repo's
// hex-based artifact conventions.
type instanceCommitmentState struct {
	ComSeed string
	RootGC  string
	RootXG  string
	RootOT  string
	H0      string
	H1      string
}

func encodeInstanceCommitment(ic commitment.InstanceCommitment) instanceCommitmentState {
	return instanceCommitmentState{
		ComSeed: hex.EncodeToString(ic.ComSeed[:]),
		RootGC:  hex.EncodeToString(ic.RootGC[:]),
		RootXG:  hex.EncodeToString(ic.RootXG[:]),
		RootOT:  hex.EncodeToString(ic.RootOT[:]),
		H0:      hex.EncodeToString(ic.H0[:]),
		H1:      hex.EncodeToString(ic.H1[:]),
	}
}

func (s instanceCommitmentState) decode() (commitment.InstanceCommitment, error) {
	var ic commitment.InstanceCommitment
	fields := []struct {
		dst *[32]byte
		src string
		name string
	}{
		{&ic.ComSeed, s.ComSeed, "ComSeed"},
		{&ic.RootGC, s.RootGC, "RootGC"},
		{&ic.RootXG, s.RootXG, "RootXG"},
		{&ic.RootOT, s.RootOT, "RootOT"},
		{&ic.H0, s.H0, "H0"},
		{&ic.H1, s.H1, "H1"},
	}
	for _, f := range fields {
		b, err := hex.DecodeString(f.src)
		if err != nil {
			return ic, fmt.Errorf("adjudicator: decoding %s: %w", f.name, err)
		}
		if len(b) != 32 {
			return ic, fmt.Errorf("adjudicator: %s has %d bytes, want 32", f.name, len(b))
		}
		copy(f.dst[:], b)
	}
	return ic, nil
}

// State is the adjudicator's serializable snapshot: every field an
// out-of-process CLI invocation needs to pick the session back up,
// persisted by internal/session between one cmd/ subcommand's
// invocation and the next (there is no long-running adjudicator
// process; each subcommand is a single transition).
type State struct {
	SessionID         string
	Alice             Party
	Bob               Party
	CircuitID         string
	CircuitLayoutRoot string
	Cfg               Config
	Stage             Stage
	Deadlines         map[Stage]time.Time

	AliceBalance uint64
	BobBalance   uint64

	Commitments     [N]instanceCommitmentState
	HaveCommitments bool

	M             int
	Chosen        bool
	SOpen         []int
	RevealedSeeds map[int]string

	GarblerLabels  []string
	LabelsRevealed bool

	Result *bool
}

// ExportState snapshots the adjudicator's current state.
func (a *Adjudicator) ExportState() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := State{
		SessionID:         a.SessionID.String(),
		Alice:             a.alice,
		Bob:               a.bob,
		CircuitID:         hex.EncodeToString(a.circuitID[:]),
		CircuitLayoutRoot: hex.EncodeToString(a.circuitLayoutRoot[:]),
		Cfg:               a.cfg,
		Stage:             a.stage,
		Deadlines:         make(map[Stage]time.Time, len(a.deadlines)),
		AliceBalance:      a.vault.Balance(a.alice),
		BobBalance:        a.vault.Balance(a.bob),
		HaveCommitments:   a.haveCommitments,
		M:                 a.m,
		Chosen:            a.chosen,
		SOpen:             append([]int(nil), a.sOpen...),
		RevealedSeeds:     make(map[int]string, len(a.revealedSeeds)),
		GarblerLabels:     make([]string, len(a.garblerLabels)),
		LabelsRevealed:    a.labelsRevealed,
		Result:            a.result,
	}
	for k, v := range a.deadlines {
		st.Deadlines[k] = v
	}
	for i, ic := range a.commitments {
		st.Commitments[i] = encodeInstanceCommitment(ic)
	}
	for k, v := range a.revealedSeeds {
		st.RevealedSeeds[k] = hex.EncodeToString(v[:])
	}
	for i, l := range a.garblerLabels {
		st.GarblerLabels[i] = hex.EncodeToString(l[:])
	}
	return st
}

// Restore rebuilds an Adjudicator from a previously exported State.
// clock defaults to time.Now when nil, matching New.
func Restore(st State, clock func() time.Time, logger zerolog.Logger) (*Adjudicator, error) {
	if clock == nil {
		clock = time.Now
	}

	sessionID, err := uuid.Parse(st.SessionID)
	if err != nil {
		return nil, fmt.Errorf("adjudicator: parsing session id: %w", err)
	}

	circuitIDBytes, err := hex.DecodeString(st.CircuitID)
	if err != nil || len(circuitIDBytes) != 32 {
		return nil, fmt.Errorf("adjudicator: invalid circuitID in state")
	}
	var circuitID gate.CircuitID
	copy(circuitID[:], circuitIDBytes)

	layoutRootBytes, err := hex.DecodeString(st.CircuitLayoutRoot)
	if err != nil || len(layoutRootBytes) != 32 {
		return nil, fmt.Errorf("adjudicator: invalid circuitLayoutRoot in state")
	}
	var layoutRoot [32]byte
	copy(layoutRoot[:], layoutRootBytes)

	a := &Adjudicator{
		SessionID:         sessionID,
		cfg:               st.Cfg,
		clock:             clock,
		logger:            logger.With().Str("session", sessionID.String()).Logger(),
		alice:             st.Alice,
		bob:               st.Bob,
		circuitID:         circuitID,
		circuitLayoutRoot: layoutRoot,
		stage:             st.Stage,
		deadlines:         make(map[Stage]time.Time, len(st.Deadlines)),
		vault:             newVault(),
		haveCommitments:   st.HaveCommitments,
		m:                 st.M,
		chosen:            st.Chosen,
		sOpen:             append([]int(nil), st.SOpen...),
		revealedSeeds:     make(map[int]gate.Seed, len(st.RevealedSeeds)),
		labelsRevealed:    st.LabelsRevealed,
		result:            st.Result,
	}
	for k, v := range st.Deadlines {
		a.deadlines[k] = v
	}
	if st.AliceBalance > 0 {
		a.vault.deposit(a.alice, st.AliceBalance)
	}
	if st.BobBalance > 0 {
		a.vault.deposit(a.bob, st.BobBalance)
	}
	for i, cs := range st.Commitments {
		ic, err := cs.decode()
		if err != nil {
			return nil, fmt.Errorf("adjudicator: instance %d: %w", i, err)
		}
		a.commitments[i] = ic
	}
	for k, v := range st.RevealedSeeds {
		b, err := hex.DecodeString(v)
		if err != nil || len(b) != 32 {
			return nil, fmt.Errorf("adjudicator: invalid revealed seed for instance %d", k)
		}
		var seed gate.Seed
		copy(seed[:], b)
		a.revealedSeeds[k] = seed
	}
	a.garblerLabels = make([]gate.Label, len(st.GarblerLabels))
	for i, v := range st.GarblerLabels {
		b, err := hex.DecodeString(v)
		if err != nil || len(b) != 16 {
			return nil, fmt.Errorf("adjudicator: invalid garbler label at index %d", i)
		}
		copy(a.garblerLabels[i][:], b)
	}
	return a, nil
}
