//
// errors.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package adjudicator

import (
	"errors"
	"fmt"
)

// The seven error kinds of spec.md §7. Every public operation either
// succeeds or reverts with one of these, wrapped with a detail
// message; callers can test the category with errors.Is.
var (
	// ErrStage: caller's transition illegal in the current stage.
	ErrStage = errors.New("stage error")
	// ErrAuthorization: caller is not the party authorized for this
	// transition.
	ErrAuthorization = errors.New("authorization error")
	// ErrDeadline: transition attempted after deadline, or abort
	// attempted before deadline.
	ErrDeadline = errors.New("deadline error")
	// ErrEconomic: wrong deposit amount, double deposit.
	ErrEconomic = errors.New("economic error")
	// ErrCommitment: revealed seed's hash does not match comSeed, or
	// reveal set has wrong cardinality, or includes m.
	ErrCommitment = errors.New("commitment error")
	// ErrProof: bad layout proof, bad IH proof, wrong leaf length.
	ErrProof = errors.New("proof error")
	// ErrOutput: output label in settle matches neither anchor.
	ErrOutput = errors.New("output error")
)

func wrapf(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
