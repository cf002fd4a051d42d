//
// dispute.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package adjudicator

import (
	"github.com/fairmillion/protocol/commitment"
	"github.com/fairmillion/protocol/gate"
)

// GateChallenge bundles everything the Evaluator must supply to query
// a single gate leaf of an opened instance: the gate's plaintext
// descriptor, its published garbled leaf bytes, and the two inclusion
// proofs binding that leaf to the instance's committed roots.
type GateChallenge struct {
	Instance    int
	GateIndex   gate.GateIndex
	Desc        gate.Descriptor
	LeafBytes   []byte
	IHProof     commitment.IHProof
	LayoutProof commitment.LayoutProof
}

// ChallengeGateLeaf lets the Evaluator accuse the Garbler of having
// garbled an opened instance inconsistently with the seed she revealed
// for it in Stage 3. Stage 4 only, per spec.md §4.3 Stage 4:
//
//  1. The instance must be one of the N-1 opened instances, never the
//     chosen instance m — m has no revealed seed to recompute from;
//     a dispute over m is instead resolved by the Garbler's Stage-5
//     label reveal and the Evaluator's Stage-6 settle.
//  2. The submitted leaf must authenticate against rootGC via its IH
//     proof, and the submitted descriptor must authenticate against
//     circuitLayoutRoot via its layout proof — otherwise the Evaluator
//     has proven nothing about what the Garbler actually published.
//  3. The leaf recomputed from the revealed seed and the agreed
//     descriptor must match the published leaf bytewise. A mismatch is
//     conclusive proof of double garbling and slashes the Garbler's
//     entire deposit to the Evaluator; a match proves the challenge was
//     unfounded and slashes the Evaluator's entire deposit to the
//     Garbler instead — spec.md §8's two-way slashing.
func (a *Adjudicator) ChallengeGateLeaf(caller Party, c GateChallenge) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.bob {
		return wrapf(ErrAuthorization, "only the Evaluator may challenge a gate leaf")
	}
	if a.stage != StageDispute {
		return wrapf(ErrStage, "challengeGateLeaf only valid in %s, current stage is %s", StageDispute, a.stage)
	}
	if err := a.checkDeadline(StageDispute); err != nil {
		return err
	}
	if len(c.LeafBytes) != gate.LeafSize {
		return wrapf(ErrProof, "leaf has length %d, want %d", len(c.LeafBytes), gate.LeafSize)
	}
	if c.Instance == a.m {
		return wrapf(ErrCommitment, "instance %d is the chosen instance, it has no revealed seed", c.Instance)
	}
	if c.Instance < 0 || c.Instance >= N {
		return wrapf(ErrCommitment, "instance %d out of range [0,%d)", c.Instance, N)
	}
	seed, ok := a.revealedSeeds[c.Instance]
	if !ok {
		return wrapf(ErrCommitment, "instance %d has no revealed seed on record", c.Instance)
	}

	ic := a.commitments[c.Instance]

	if !c.IHProof.Verify(c.GateIndex, c.LeafBytes, ic.RootGC) {
		return wrapf(ErrProof, "IH proof does not authenticate leaf at index %d against rootGC", c.GateIndex)
	}
	if !c.LayoutProof.Verify(c.GateIndex, c.Desc, a.circuitLayoutRoot) {
		return wrapf(ErrProof, "layout proof does not authenticate descriptor at index %d against circuitLayoutRoot", c.GateIndex)
	}

	expected, err := commitment.RecomputeLeaf(seed, gate.InstanceID(c.Instance), a.circuitID, c.GateIndex, c.Desc)
	if err != nil {
		return wrapf(ErrProof, "could not recompute expected leaf: %v", err)
	}

	logEvent := a.logger.Info().
		Int("instance", c.Instance).
		Uint32("gateIndex", uint32(c.GateIndex))

	if !bytesEqual(expected, c.LeafBytes) {
		// Proven fraud: the Garbler's published leaf disagrees with the
		// leaf her own revealed seed deterministically produces.
		amt := a.vault.payAllTo(a.alice, a.bob)
		a.credit(a.bob, amt)
		logEvent.Msg("adjudicator: gate leaf challenge proven, slashing Garbler")
		a.advance(StageClosed)
		return nil
	}

	// The leaf matches: the challenge was unfounded, slash the
	// Evaluator instead.
	amt := a.vault.payAllTo(a.alice, a.bob)
	a.credit(a.alice, amt)
	logEvent.Msg("adjudicator: gate leaf challenge refuted, slashing Evaluator")
	a.advance(StageClosed)
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
