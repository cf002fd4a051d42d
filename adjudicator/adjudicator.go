//
// adjudicator.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package adjudicator

import (
	"sync"
	"time"

	"github.com/fairmillion/protocol/commitment"
	"github.com/fairmillion/protocol/gate"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// N is the fixed cut-and-choose instance count.
const N = commitment.N

// Config configures deposit amounts and per-stage deadlines.
type Config struct {
	DepositGarbler   uint64
	DepositEvaluator uint64
	// StageDuration is the default Δ applied to every stage's deadline
	// when entered. 1 hour in the reference configuration.
	StageDuration time.Duration
	// StageDurations overrides StageDuration for individual stages.
	StageDurations map[Stage]time.Duration
}

func (c Config) durationFor(s Stage) time.Duration {
	if d, ok := c.StageDurations[s]; ok {
		return d
	}
	if c.StageDuration > 0 {
		return c.StageDuration
	}
	return time.Hour
}

// PayoutFunc is invoked whenever the vault disburses funds to a party.
// It stands in for the external ledger's balance-credit operation
// (spec.md §1 treats the ledger/transaction layer as an external
// collaborator); the adjudicator itself only accounts for escrow.
type PayoutFunc func(to Party, amount uint64)

// Adjudicator is the on-ledger state machine. Every exported method
// takes its own lock and is atomic with respect to every other method
// call — spec.md §5's single-threaded, totally-ordered execution
// model.
type Adjudicator struct {
	mu sync.Mutex

	// SessionID disambiguates this session's logs and persisted
	// artifacts from any other concurrently running session. It plays
	// no role in any hash preimage.
	SessionID uuid.UUID

	cfg    Config
	clock  func() time.Time
	logger zerolog.Logger
	payout PayoutFunc

	alice Party // Garbler
	bob   Party // Evaluator

	circuitID         gate.CircuitID
	circuitLayoutRoot [32]byte

	stage     Stage
	deadlines map[Stage]time.Time

	vault *Vault

	commitments     [N]commitment.InstanceCommitment
	haveCommitments bool

	m             int
	chosen        bool
	sOpen         []int
	revealedSeeds map[int]gate.Seed

	garblerLabels  []gate.Label
	labelsRevealed bool

	result *bool
}

// New creates an adjudicator session for a fixed (alice, bob) pair and
// a fixed, agreed circuit. clock defaults to time.Now when nil.
func New(cfg Config, alice, bob Party, circuitID gate.CircuitID, circuitLayoutRoot [32]byte,
	clock func() time.Time, logger zerolog.Logger) *Adjudicator {

	if clock == nil {
		clock = time.Now
	}
	sessionID := uuid.New()
	a := &Adjudicator{
		SessionID:         sessionID,
		cfg:               cfg,
		clock:             clock,
		logger:            logger.With().Str("session", sessionID.String()).Logger(),
		alice:             alice,
		bob:               bob,
		circuitID:         circuitID,
		circuitLayoutRoot: circuitLayoutRoot,
		stage:             StageDeposits,
		deadlines:         make(map[Stage]time.Time),
		vault:             newVault(),
		revealedSeeds:     make(map[int]gate.Seed),
	}
	a.deadlines[StageDeposits] = clock().Add(cfg.durationFor(StageDeposits))
	return a
}

// SetPayoutHook installs the callback invoked on every vault payout.
func (a *Adjudicator) SetPayoutHook(f PayoutFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.payout = f
}

func (a *Adjudicator) credit(to Party, amount uint64) {
	if amount == 0 {
		return
	}
	if a.payout != nil {
		a.payout(to, amount)
	}
}

func (a *Adjudicator) other(p Party) Party {
	if p == a.alice {
		return a.bob
	}
	return a.alice
}

func (a *Adjudicator) isParty(p Party) bool {
	return p == a.alice || p == a.bob
}

func (a *Adjudicator) checkDeadline(stage Stage) error {
	if a.clock().After(a.deadlines[stage]) {
		return wrapf(ErrDeadline, "%s deadline has passed", stage)
	}
	return nil
}

func (a *Adjudicator) checkExpired(stage Stage) error {
	if !a.clock().After(a.deadlines[stage]) {
		return wrapf(ErrDeadline, "%s deadline has not yet passed", stage)
	}
	return nil
}

// Deposit locks caller's collateral. Stage 0.
func (a *Adjudicator) Deposit(caller Party, amount uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.isParty(caller) {
		return wrapf(ErrAuthorization, "caller %q is not a session party", caller)
	}
	if a.stage != StageDeposits {
		return wrapf(ErrStage, "deposit only valid in %s, current stage is %s", StageDeposits, a.stage)
	}
	if err := a.checkDeadline(StageDeposits); err != nil {
		return err
	}
	if a.vault.Balance(caller) != 0 {
		return wrapf(ErrEconomic, "%q has already deposited", caller)
	}

	want := a.cfg.DepositEvaluator
	if caller == a.alice {
		want = a.cfg.DepositGarbler
	}
	if amount != want {
		return wrapf(ErrEconomic, "wrong deposit amount: got %d, want %d", amount, want)
	}

	a.vault.deposit(caller, amount)

	if a.vault.Balance(a.alice) != 0 && a.vault.Balance(a.bob) != 0 {
		a.advance(StageCommitments)
	}
	return nil
}

// Refund returns caller's own deposit during Deposits. Pre-deadline it
// is only allowed if the counterparty has not deposited; post-deadline
// it is always allowed.
func (a *Adjudicator) Refund(caller Party) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.isParty(caller) {
		return wrapf(ErrAuthorization, "caller %q is not a session party", caller)
	}
	if a.stage != StageDeposits {
		return wrapf(ErrStage, "refund only valid in %s, current stage is %s", StageDeposits, a.stage)
	}
	if a.vault.Balance(caller) == 0 {
		return wrapf(ErrEconomic, "%q has nothing to refund", caller)
	}

	expired := a.clock().After(a.deadlines[StageDeposits])
	if !expired && a.vault.Balance(a.other(caller)) != 0 {
		return wrapf(ErrStage, "cannot refund before deadline once the counterparty has deposited")
	}

	amt := a.vault.refundOwn(caller)
	a.credit(caller, amt)
	return nil
}

// SubmitCommitments publishes the N instance commitments. Stage 1.
func (a *Adjudicator) SubmitCommitments(caller Party, commitments [N]commitment.InstanceCommitment) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.alice {
		return wrapf(ErrAuthorization, "only the Garbler may submit commitments")
	}
	if a.stage != StageCommitments {
		return wrapf(ErrStage, "submitCommitments only valid in %s, current stage is %s", StageCommitments, a.stage)
	}
	if err := a.checkDeadline(StageCommitments); err != nil {
		return err
	}

	a.commitments = commitments
	a.haveCommitments = true
	a.advance(StageChoose)
	return nil
}

// AbortPhase2 lets the Evaluator claim both deposits if the Garbler
// fails to submit commitments in time.
func (a *Adjudicator) AbortPhase2(caller Party) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.bob {
		return wrapf(ErrAuthorization, "only the Evaluator may abort at Commitments")
	}
	if a.stage != StageCommitments {
		return wrapf(ErrStage, "abortPhase2 only valid in %s, current stage is %s", StageCommitments, a.stage)
	}
	if err := a.checkExpired(StageCommitments); err != nil {
		return err
	}

	amt := a.vault.payAllTo(a.alice, a.bob)
	a.credit(a.bob, amt)
	a.advance(StageClosed)
	return nil
}

// Choose records the Evaluator's chosen instance index m. Stage 2.
func (a *Adjudicator) Choose(caller Party, m int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.bob {
		return wrapf(ErrAuthorization, "only the Evaluator may choose")
	}
	if a.stage != StageChoose {
		return wrapf(ErrStage, "choose only valid in %s, current stage is %s", StageChoose, a.stage)
	}
	if err := a.checkDeadline(StageChoose); err != nil {
		return err
	}
	if m < 0 || m >= N {
		return wrapf(ErrCommitment, "m=%d out of range [0,%d)", m, N)
	}

	a.m = m
	a.chosen = true
	a.sOpen = a.sOpen[:0]
	for i := 0; i < N; i++ {
		if i != m {
			a.sOpen = append(a.sOpen, i)
		}
	}
	a.advance(StageOpen)
	return nil
}

// AbortPhase3 lets the Garbler claim both deposits if the Evaluator
// fails to choose in time.
func (a *Adjudicator) AbortPhase3(caller Party) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.alice {
		return wrapf(ErrAuthorization, "only the Garbler may abort at Choose")
	}
	if a.stage != StageChoose {
		return wrapf(ErrStage, "abortPhase3 only valid in %s, current stage is %s", StageChoose, a.stage)
	}
	if err := a.checkExpired(StageChoose); err != nil {
		return err
	}

	amt := a.vault.payAllTo(a.alice, a.bob)
	a.credit(a.alice, amt)
	a.advance(StageClosed)
	return nil
}

// RevealOpenings reveals the N-1 opened instances' seeds. Stage 3.
func (a *Adjudicator) RevealOpenings(caller Party, indices []int, seeds []gate.Seed) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.alice {
		return wrapf(ErrAuthorization, "only the Garbler may reveal openings")
	}
	if a.stage != StageOpen {
		return wrapf(ErrStage, "revealOpenings only valid in %s, current stage is %s", StageOpen, a.stage)
	}
	if err := a.checkDeadline(StageOpen); err != nil {
		return err
	}
	if len(indices) != N-1 || len(seeds) != N-1 {
		return wrapf(ErrCommitment, "expected %d openings, got %d indices and %d seeds", N-1, len(indices), len(seeds))
	}

	seen := make(map[int]bool, len(indices))
	for j, idx := range indices {
		if idx == a.m {
			return wrapf(ErrCommitment, "opening set includes chosen instance m=%d", a.m)
		}
		if idx < 0 || idx >= N {
			return wrapf(ErrCommitment, "index %d out of range [0,%d)", idx, N)
		}
		if seen[idx] {
			return wrapf(ErrCommitment, "duplicate index %d", idx)
		}
		seen[idx] = true

		got := gate.H(seeds[j][:])
		if got != a.commitments[idx].ComSeed {
			return wrapf(ErrCommitment, "seed for instance %d does not match comSeed", idx)
		}
	}
	if len(seen) != N-1 {
		return wrapf(ErrCommitment, "opening set must cover exactly N-1 distinct instances")
	}

	for j, idx := range indices {
		a.revealedSeeds[idx] = seeds[j]
	}
	a.advance(StageDispute)
	return nil
}

// AbortPhase4 lets the Evaluator claim both deposits if the Garbler
// fails to reveal openings in time.
func (a *Adjudicator) AbortPhase4(caller Party) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.bob {
		return wrapf(ErrAuthorization, "only the Evaluator may abort at Open")
	}
	if a.stage != StageOpen {
		return wrapf(ErrStage, "abortPhase4 only valid in %s, current stage is %s", StageOpen, a.stage)
	}
	if err := a.checkExpired(StageOpen); err != nil {
		return err
	}

	amt := a.vault.payAllTo(a.alice, a.bob)
	a.credit(a.bob, amt)
	a.advance(StageClosed)
	return nil
}

// CloseDispute advances from Dispute to Labels without a proven
// challenge: the Evaluator may do this at any time (implicit "I am
// satisfied"); the Garbler only after the dispute deadline expires.
func (a *Adjudicator) CloseDispute(caller Party) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stage != StageDispute {
		return wrapf(ErrStage, "closeDispute only valid in %s, current stage is %s", StageDispute, a.stage)
	}

	switch caller {
	case a.bob:
		// Evaluator may close unilaterally at any time.
	case a.alice:
		if err := a.checkExpired(StageDispute); err != nil {
			return err
		}
	default:
		return wrapf(ErrAuthorization, "caller %q is not a session party", caller)
	}

	a.advance(StageLabels)
	return nil
}

// RevealGarblerLabels publishes the Garbler's input-wire labels for
// instance m. Stage 5.
func (a *Adjudicator) RevealGarblerLabels(caller Party, labels []gate.Label) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.alice {
		return wrapf(ErrAuthorization, "only the Garbler may reveal her labels")
	}
	if a.stage != StageLabels {
		return wrapf(ErrStage, "revealGarblerLabels only valid in %s, current stage is %s", StageLabels, a.stage)
	}
	if err := a.checkDeadline(StageLabels); err != nil {
		return err
	}
	if a.labelsRevealed {
		return wrapf(ErrStage, "labels already revealed")
	}

	a.garblerLabels = append([]gate.Label(nil), labels...)
	a.labelsRevealed = true
	a.advance(StageSettle)
	return nil
}

// AbortPhase5 lets the Evaluator claim both deposits if the Garbler
// fails to reveal her labels in time.
func (a *Adjudicator) AbortPhase5(caller Party) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.bob {
		return wrapf(ErrAuthorization, "only the Evaluator may abort at Labels")
	}
	if a.stage != StageLabels {
		return wrapf(ErrStage, "abortPhase5 only valid in %s, current stage is %s", StageLabels, a.stage)
	}
	if err := a.checkExpired(StageLabels); err != nil {
		return err
	}

	amt := a.vault.payAllTo(a.alice, a.bob)
	a.credit(a.bob, amt)
	a.advance(StageClosed)
	return nil
}

// Settle submits the final output label. Stage 6.
func (a *Adjudicator) Settle(caller Party, outputLabel gate.Label) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.bob {
		return wrapf(ErrAuthorization, "only the Evaluator may settle")
	}
	if a.stage != StageSettle {
		return wrapf(ErrStage, "settle only valid in %s, current stage is %s", StageSettle, a.stage)
	}
	if err := a.checkDeadline(StageSettle); err != nil {
		return err
	}

	h := gate.H(outputLabel[:])
	ic := a.commitments[a.m]

	var result bool
	switch h {
	case ic.H0:
		result = true
	case ic.H1:
		result = false
	default:
		return wrapf(ErrOutput, "output label matches neither anchor")
	}

	a.result = &result

	aliceRefund := a.vault.refundOwn(a.alice)
	bobRefund := a.vault.refundOwn(a.bob)
	a.credit(a.alice, aliceRefund)
	a.credit(a.bob, bobRefund)

	a.advance(StageClosed)
	return nil
}

// AbortPhase6 lets the Garbler claim both deposits if the Evaluator
// fails to settle in time.
func (a *Adjudicator) AbortPhase6(caller Party) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if caller != a.alice {
		return wrapf(ErrAuthorization, "only the Garbler may abort at Settle")
	}
	if a.stage != StageSettle {
		return wrapf(ErrStage, "abortPhase6 only valid in %s, current stage is %s", StageSettle, a.stage)
	}
	if err := a.checkExpired(StageSettle); err != nil {
		return err
	}

	amt := a.vault.payAllTo(a.alice, a.bob)
	a.credit(a.alice, amt)
	a.advance(StageClosed)
	return nil
}

// --- Read-only accessors ---

// CurrentStage returns the state machine's current stage.
func (a *Adjudicator) CurrentStage() Stage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stage
}

// Deadline returns the deadline installed for a stage.
func (a *Adjudicator) Deadline(s Stage) time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.deadlines[s]
}

// Balance returns a party's current escrow.
func (a *Adjudicator) Balance(p Party) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vault.Balance(p)
}

// VaultSum returns the total escrowed across both parties.
func (a *Adjudicator) VaultSum() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.vault.Sum()
}

// Commitments returns the published instance commitments.
func (a *Adjudicator) Commitments() ([N]commitment.InstanceCommitment, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.commitments, a.haveCommitments
}

// ChosenIndex returns m and whether it has been chosen.
func (a *Adjudicator) ChosenIndex() (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.m, a.chosen
}

// OpenedIndices returns sOpen.
func (a *Adjudicator) OpenedIndices() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int(nil), a.sOpen...)
}

// RevealedSeed returns the seed revealed for instance i, if any.
func (a *Adjudicator) RevealedSeed(i int) (gate.Seed, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.revealedSeeds[i]
	return s, ok
}

// GarblerLabels returns the Garbler's revealed input-wire labels.
func (a *Adjudicator) GarblerLabels() ([]gate.Label, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]gate.Label(nil), a.garblerLabels...), a.labelsRevealed
}

// Result returns the settled boolean outcome, if any.
func (a *Adjudicator) Result() (bool, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return false, false
	}
	return *a.result, true
}

// CircuitLayoutRoot returns the session's committed layout root.
func (a *Adjudicator) CircuitLayoutRoot() [32]byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.circuitLayoutRoot
}

// CircuitID returns the session's circuit id.
func (a *Adjudicator) CircuitID() gate.CircuitID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.circuitID
}
