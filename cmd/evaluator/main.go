//
// main.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package main

import (
	"fmt"
	"os"

	"github.com/fairmillion/protocol/adjudicator"
	"github.com/fairmillion/protocol/artifact"
	"github.com/fairmillion/protocol/circuitbuilder"
	"github.com/fairmillion/protocol/commitment"
	"github.com/fairmillion/protocol/evaluator"
	"github.com/fairmillion/protocol/gate"
	"github.com/fairmillion/protocol/internal/session"
	"github.com/spf13/cobra"
)

type rootCmd struct {
	cfg session.Config
	cmd *cobra.Command
}

func newRootCmd() *rootCmd {
	rc := &rootCmd{}
	rc.cmd = &cobra.Command{
		Use:   "evaluator",
		Short: "Evaluator-side CLI for the fair millionaires protocol",
	}
	flags := rc.cmd.PersistentFlags()
	flags.StringVar(&rc.cfg.WorkDir, "work-dir", "", "artifact work directory")
	flags.IntVar(&rc.cfg.BitWidth, "bit-width", 32, "comparator bit width")
	flags.BoolVar(&rc.cfg.Verbose, "verbose", false, "enable debug logging")

	rc.cmd.AddCommand(newChooseCommand(rc))
	rc.cmd.AddCommand(newPrepareDisputeCommand(rc))
	rc.cmd.AddCommand(newDisputeCommand(rc))
	rc.cmd.AddCommand(newEvaluateMCommand(rc))
	return rc.cmd
}

// chooseCommand records the Evaluator's chosen instance index with the
// adjudicator, opening the Open stage.
type chooseCommand struct {
	root *rootCmd
	m    int
	cmd  *cobra.Command
}

func newChooseCommand(root *rootCmd) *cobra.Command {
	cc := &chooseCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "choose",
		Short: "choose the instance to evaluate and open the rest for audit",
		RunE:  cc.Execute,
	}
	cc.cmd.Flags().IntVar(&cc.m, "m", -1, "the instance index to evaluate")
	return cc.cmd
}

func (c *chooseCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.Logger()

	a, err := session.OpenAdjudicator(cfg, logger)
	if err != nil {
		return err
	}
	if err := a.Choose(session.Bob, c.m); err != nil {
		return err
	}
	if err := session.SaveAdjudicator(cfg, a); err != nil {
		return err
	}

	fmt.Printf("chose m=%d, opened=%v, stage=%s\n", c.m, a.OpenedIndices(), a.CurrentStage())
	return nil
}

// prepareDisputeCommand re-garbles an opened instance from its
// revealed seed and compares each gate's recomputed leaf against the
// published one, printing the first mismatch (if any) for use in a
// subsequent `dispute` call.
type prepareDisputeCommand struct {
	root     *rootCmd
	instance int
	cmd      *cobra.Command
}

func newPrepareDisputeCommand(root *rootCmd) *cobra.Command {
	cc := &prepareDisputeCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "prepare-dispute",
		Short: "audit an opened instance's leaves against its revealed seed",
		RunE:  cc.Execute,
	}
	cc.cmd.Flags().IntVar(&cc.instance, "instance", -1, "the opened instance index to audit")
	return cc.cmd
}

func (c *prepareDisputeCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.instance < 0 {
		return fmt.Errorf("evaluator: --instance is required")
	}

	circ, err := circuitbuilder.NewComparator(cfg.BitWidth)
	if err != nil {
		return err
	}
	seed, err := artifact.ReadSeed(cfg.WorkDir, c.instance)
	if err != nil {
		return err
	}
	leaves, err := artifact.ReadLeaves(cfg.WorkDir, c.instance)
	if err != nil {
		return err
	}
	if len(leaves) != len(circ.Gates) {
		return fmt.Errorf("evaluator: got %d leaves, want %d", len(leaves), len(circ.Gates))
	}

	circuitID := session.FixedCircuitID()

	for i, g := range circ.Gates {
		expected, err := commitment.RecomputeLeaf(seed, gate.InstanceID(c.instance), circuitID, gate.GateIndex(i), g)
		if err != nil {
			return err
		}
		if string(expected) != string(leaves[i]) {
			fmt.Printf("MISMATCH gate=%d expected=%x got=%x\n", i, expected, leaves[i])
			fmt.Printf("run: evaluator dispute --instance %d --gate-index %d\n", c.instance, i)
			return nil
		}
	}

	fmt.Println("no mismatch: all gates in this instance are consistent with the revealed seed")
	return nil
}

// disputeCommand escalates a prepare-dispute finding (or a speculative
// challenge) to the adjudicator: it rebuilds the IH and layout
// inclusion proofs for the named gate from the locally held leaves and
// the agreed circuit, then submits ChallengeGateLeaf. The adjudicator
// slashes whichever side the evidence contradicts.
type disputeCommand struct {
	root      *rootCmd
	instance  int
	gateIndex int
	cmd       *cobra.Command
}

func newDisputeCommand(root *rootCmd) *cobra.Command {
	cc := &disputeCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "dispute",
		Short: "challenge a gate leaf of an opened instance before the adjudicator",
		RunE:  cc.Execute,
	}
	cc.cmd.Flags().IntVar(&cc.instance, "instance", -1, "the opened instance index being challenged")
	cc.cmd.Flags().IntVar(&cc.gateIndex, "gate-index", -1, "the gate index within the instance being challenged")
	return cc.cmd
}

func (c *disputeCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.instance < 0 {
		return fmt.Errorf("evaluator: --instance is required")
	}
	if c.gateIndex < 0 {
		return fmt.Errorf("evaluator: --gate-index is required")
	}
	logger := cfg.Logger()

	circ, err := circuitbuilder.NewComparator(cfg.BitWidth)
	if err != nil {
		return err
	}
	if c.gateIndex >= len(circ.Gates) {
		return fmt.Errorf("evaluator: --gate-index %d out of range [0,%d)", c.gateIndex, len(circ.Gates))
	}
	leaves, err := artifact.ReadLeaves(cfg.WorkDir, c.instance)
	if err != nil {
		return err
	}

	ihProof, err := commitment.BuildIHProof(leaves, c.gateIndex)
	if err != nil {
		return err
	}
	layoutProof, err := commitment.BuildLayoutProof(circ.Gates, c.gateIndex)
	if err != nil {
		return err
	}

	a, err := session.OpenAdjudicator(cfg, logger)
	if err != nil {
		return err
	}
	challenge := adjudicator.GateChallenge{
		Instance:    c.instance,
		GateIndex:   gate.GateIndex(c.gateIndex),
		Desc:        circ.Gates[c.gateIndex],
		LeafBytes:   leaves[c.gateIndex],
		IHProof:     ihProof,
		LayoutProof: layoutProof,
	}
	if err := a.ChallengeGateLeaf(session.Bob, challenge); err != nil {
		return err
	}
	if err := session.SaveAdjudicator(cfg, a); err != nil {
		return err
	}

	result, _ := a.Result()
	fmt.Printf("stage=%s alice=%d bob=%d result=%v\n", a.CurrentStage(), a.Balance(session.Alice), a.Balance(session.Bob), result)
	return nil
}

// evaluateMCommand evaluates the chosen instance given Bob's private
// input y and the Garbler's revealed X-wire labels, then submits the
// resulting output label to settle the session.
type evaluateMCommand struct {
	root        *rootCmd
	m           int
	y           uint64
	glabelsFile string
	cmd         *cobra.Command
}

func newEvaluateMCommand(root *rootCmd) *cobra.Command {
	cc := &evaluateMCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "evaluate-m",
		Short: "evaluate the chosen instance and settle the session",
		RunE:  cc.Execute,
	}
	cc.cmd.Flags().IntVar(&cc.m, "m", -1, "the chosen instance index")
	cc.cmd.Flags().Uint64Var(&cc.y, "y", 0, "Bob's private input value")
	cc.cmd.Flags().StringVar(&cc.glabelsFile, "garbler-labels", "", "path to the Garbler's revealed labels (defaults to the canonical work-dir file)")
	return cc.cmd
}

func (c *evaluateMCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.m < 0 || c.m >= commitment.N {
		return fmt.Errorf("evaluator: --m must be in [0,%d)", commitment.N)
	}
	logger := cfg.Logger()

	glabelsPath := c.glabelsFile
	if glabelsPath == "" {
		glabelsPath = artifact.GarblerLabelsPath(cfg.WorkDir)
	}

	circ, err := circuitbuilder.NewComparator(cfg.BitWidth)
	if err != nil {
		return err
	}
	leaves, err := artifact.ReadLeaves(cfg.WorkDir, c.m)
	if err != nil {
		return err
	}
	payload, err := evaluator.ParsePayload(circ.Gates, leaves)
	if err != nil {
		return err
	}

	glabels, err := artifact.ReadLabels(glabelsPath)
	if err != nil {
		return err
	}
	if len(glabels) != len(circ.XWires) {
		return fmt.Errorf("evaluator: got %d Garbler labels, want %d", len(glabels), len(circ.XWires))
	}

	// The Evaluator never holds instance m's seed: his own labels are
	// selected locally from the candidate pairs the Garbler exported
	// during prepare-eval, standing in for OT (spec.md §1 non-goal).
	pairs, err := artifact.ReadLabelPairs(artifact.YCandidatesPath(cfg.WorkDir, c.m))
	if err != nil {
		return err
	}
	if len(pairs) != len(circ.YWires) {
		return fmt.Errorf("evaluator: got %d Y-candidate pairs, want %d", len(pairs), len(circ.YWires))
	}

	circuitID := session.FixedCircuitID()

	inputLabels := make(map[gate.WireID]gate.Label, len(circ.XWires)+len(circ.YWires))
	for i, w := range circ.XWires {
		inputLabels[w] = glabels[i]
	}
	for i, w := range circ.YWires {
		bit := (c.y >> uint(i)) & 1
		inputLabels[w] = pairs[i][bit]
	}

	out, err := evaluator.Evaluate(payload, circuitID, gate.InstanceID(c.m), circ.OutputWire, inputLabels)
	if err != nil {
		return err
	}
	fmt.Printf("outputLabel=%x\n", out)

	a, err := session.OpenAdjudicator(cfg, logger)
	if err != nil {
		return err
	}
	if err := a.Settle(session.Bob, out); err != nil {
		return err
	}
	if err := session.SaveAdjudicator(cfg, a); err != nil {
		return err
	}

	result, _ := a.Result()
	fmt.Printf("stage=%s alice=%d bob=%d result(x>y)=%v\n", a.CurrentStage(), a.Balance(session.Alice), a.Balance(session.Bob), result)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
