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
	"time"

	"github.com/fairmillion/protocol/adjudicator"
	"github.com/fairmillion/protocol/circuitbuilder"
	"github.com/fairmillion/protocol/commitment"
	"github.com/fairmillion/protocol/evaluator"
	"github.com/fairmillion/protocol/gate"
	"github.com/fairmillion/protocol/internal/session"
	"github.com/markkurossi/tabulate"
	"github.com/spf13/cobra"
)

type rootCmd struct {
	cfg session.Config
	cmd *cobra.Command
}

func newRootCmd() *rootCmd {
	rc := &rootCmd{}
	rc.cmd = &cobra.Command{
		Use:   "adjudicator-cli",
		Short: "inspect an in-process adjudicator session",
	}
	flags := rc.cmd.PersistentFlags()
	flags.StringVar(&rc.cfg.WorkDir, "work-dir", "", "artifact work directory (status/balances/commitments)")
	flags.IntVar(&rc.cfg.BitWidth, "bit-width", 16, "comparator bit width")
	flags.BoolVar(&rc.cfg.Verbose, "verbose", false, "enable debug logging")

	rc.cmd.AddCommand(newDemoCommand(rc))
	rc.cmd.AddCommand(newStatusCommand(rc))
	rc.cmd.AddCommand(newBalancesCommand(rc))
	rc.cmd.AddCommand(newCommitmentsCommand(rc))
	return rc.cmd
}

// printBalances renders a two-row Party/Balance table, the shared
// helper behind both demo and balances.
func printBalances(a *adjudicator.Adjudicator) {
	tab := tabulate.New(tabulate.Github)
	tab.Header("Party")
	tab.Header("Balance").SetAlign(tabulate.MR)
	for _, p := range []adjudicator.Party{session.Alice, session.Bob} {
		row := tab.Row()
		row.Column(string(p))
		row.Column(fmt.Sprintf("%d", a.Balance(p)))
	}
	tab.Print(os.Stdout)
}

// statusCommand is a thin inspector printing the adjudicator's current
// stage, deadline, and chosen/result state for manual testing of both
// roles against one persisted session.
type statusCommand struct {
	root *rootCmd
	cmd  *cobra.Command
}

func newStatusCommand(root *rootCmd) *cobra.Command {
	cc := &statusCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "status",
		Short: "print the adjudicator's current stage and deadline",
		RunE:  cc.Execute,
	}
	return cc.cmd
}

func (c *statusCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	a, err := session.OpenAdjudicator(cfg, cfg.Logger())
	if err != nil {
		return err
	}

	stage := a.CurrentStage()
	fmt.Printf("session=%s stage=%s deadline=%s\n", a.SessionID, stage, a.Deadline(stage).Format(time.RFC3339))
	if m, chosen := a.ChosenIndex(); chosen {
		fmt.Printf("chosen m=%d opened=%v\n", m, a.OpenedIndices())
	}
	if result, settled := a.Result(); settled {
		fmt.Printf("result(x>y)=%v\n", result)
	}
	return nil
}

// balancesCommand prints each party's current escrow.
type balancesCommand struct {
	root *rootCmd
	cmd  *cobra.Command
}

func newBalancesCommand(root *rootCmd) *cobra.Command {
	cc := &balancesCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "balances",
		Short: "print each party's current vault balance",
		RunE:  cc.Execute,
	}
	return cc.cmd
}

func (c *balancesCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	a, err := session.OpenAdjudicator(cfg, cfg.Logger())
	if err != nil {
		return err
	}
	printBalances(a)
	return nil
}

// commitmentsCommand prints the published instance commitments, the
// way the teacher's apps/garbled/objdump.go prints circuit tables.
type commitmentsCommand struct {
	root *rootCmd
	cmd  *cobra.Command
}

func newCommitmentsCommand(root *rootCmd) *cobra.Command {
	cc := &commitmentsCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "commitments",
		Short: "print the published per-instance commitments",
		RunE:  cc.Execute,
	}
	return cc.cmd
}

func (c *commitmentsCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	a, err := session.OpenAdjudicator(cfg, cfg.Logger())
	if err != nil {
		return err
	}
	commitments, have := a.Commitments()
	if !have {
		return fmt.Errorf("adjudicator-cli: no commitments submitted yet")
	}

	tab := tabulate.New(tabulate.Github)
	tab.Header("Instance")
	tab.Header("ComSeed").SetAlign(tabulate.ML)
	tab.Header("RootGC").SetAlign(tabulate.ML)
	tab.Header("H0").SetAlign(tabulate.ML)
	tab.Header("H1").SetAlign(tabulate.ML)
	for i, ic := range commitments {
		row := tab.Row()
		row.Column(fmt.Sprintf("%d", i))
		row.Column(fmt.Sprintf("%x", ic.ComSeed))
		row.Column(fmt.Sprintf("%x", ic.RootGC))
		row.Column(fmt.Sprintf("%x", ic.H0))
		row.Column(fmt.Sprintf("%x", ic.H1))
	}
	tab.Print(os.Stdout)
	return nil
}

// demoCommand drives a complete honest-party run of the protocol
// entirely in-process, for manual testing of both roles against one
// Adjudicator without standing up separate garbler/evaluator
// processes, then prints the resulting stage trace and final balances.
type demoCommand struct {
	root *rootCmd
	x, y uint64
	cmd  *cobra.Command
}

func newDemoCommand(root *rootCmd) *cobra.Command {
	cc := &demoCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "demo",
		Short: "run a complete honest-party session and print the outcome",
		RunE:  cc.Execute,
	}
	cc.cmd.Flags().Uint64Var(&cc.x, "x", 5, "Alice's private input value")
	cc.cmd.Flags().Uint64Var(&cc.y, "y", 3, "Bob's private input value")
	return cc.cmd
}

func (c *demoCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	logger := cfg.Logger()

	circ, err := circuitbuilder.NewComparator(cfg.BitWidth)
	if err != nil {
		return err
	}

	circuitID := session.FixedCircuitID()
	layoutRoot := commitment.BuildLayoutRoot(circ.Gates)

	var seeds [commitment.N]gate.Seed
	var commitments [commitment.N]commitment.InstanceCommitment
	var leaves [commitment.N][][]byte
	for i := 0; i < commitment.N; i++ {
		var seed gate.Seed
		seed[0] = byte(i + 1)
		seeds[i] = seed
		ic, lv, err := commitment.BuildInstance(seed, gate.InstanceID(i), circuitID, circ.Gates, circ.OutputWire)
		if err != nil {
			return err
		}
		commitments[i] = ic
		leaves[i] = lv
	}

	alice, bob := session.Alice, session.Bob

	cfgA := adjudicator.Config{DepositGarbler: 10, DepositEvaluator: 10}
	a := adjudicator.New(cfgA, alice, bob, circuitID, layoutRoot, nil, logger)
	fmt.Printf("session=%s\n", a.SessionID)

	if err := a.Deposit(alice, 10); err != nil {
		return err
	}
	if err := a.Deposit(bob, 10); err != nil {
		return err
	}
	if err := a.SubmitCommitments(alice, commitments); err != nil {
		return err
	}

	m := 0
	if err := a.Choose(bob, m); err != nil {
		return err
	}

	var indices []int
	var openSeeds []gate.Seed
	for i := 0; i < commitment.N; i++ {
		if i != m {
			indices = append(indices, i)
			openSeeds = append(openSeeds, seeds[i])
		}
	}
	if err := a.RevealOpenings(alice, indices, openSeeds); err != nil {
		return err
	}
	if err := a.CloseDispute(bob); err != nil {
		return err
	}

	d := gate.NewDeriver(seeds[m], gate.InstanceID(m), circuitID, gate.BuildAliasMap(circ.Gates))
	glabels := make([]gate.Label, len(circ.XWires))
	for i, w := range circ.XWires {
		bit := byte((c.x >> uint(i)) & 1)
		glabels[i] = d.Label(w, bit)
	}
	if err := a.RevealGarblerLabels(alice, glabels); err != nil {
		return err
	}

	inputLabels := make(map[gate.WireID]gate.Label, len(circ.XWires)+len(circ.YWires))
	for i, w := range circ.XWires {
		inputLabels[w] = glabels[i]
	}
	for i, w := range circ.YWires {
		bit := byte((c.y >> uint(i)) & 1)
		inputLabels[w] = d.Label(w, bit)
	}
	payload, err := evaluator.ParsePayload(circ.Gates, leaves[m])
	if err != nil {
		return err
	}
	out, err := evaluator.Evaluate(payload, circuitID, gate.InstanceID(m), circ.OutputWire, inputLabels)
	if err != nil {
		return err
	}

	if err := a.Settle(bob, out); err != nil {
		return err
	}

	result, _ := a.Result()
	printBalances(a)

	fmt.Printf("stage=%s x=%d y=%d result(x>y)=%v\n", a.CurrentStage(), c.x, c.y, result)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
