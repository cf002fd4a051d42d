//
// stage.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package adjudicator

import "fmt"

// Stage is one of the eight variants of the protocol's state machine.
type Stage int

// Stages, in strict linear order. Closed is the single terminal stage.
const (
	StageDeposits Stage = iota
	StageCommitments
	StageChoose
	StageOpen
	StageDispute
	StageLabels
	StageSettle
	StageClosed
)

// String implements fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case StageDeposits:
		return "Deposits"
	case StageCommitments:
		return "Commitments"
	case StageChoose:
		return "Choose"
	case StageOpen:
		return "Open"
	case StageDispute:
		return "Dispute"
	case StageLabels:
		return "Labels"
	case StageSettle:
		return "Settle"
	case StageClosed:
		return "Closed"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// advance moves the state machine to next and installs its deadline,
// pairing stage promotion with deadline installation in a single
// place as spec.md §9 recommends.
func (a *Adjudicator) advance(next Stage) {
	a.stage = next
	if next != StageClosed {
		a.deadlines[next] = a.clock().Add(a.cfg.durationFor(next))
	}
	a.logger.Info().
		Str("stage", next.String()).
		Msg("adjudicator: stage transition")
}
