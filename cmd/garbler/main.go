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
		Use:   "garbler",
		Short: "Garbler-side CLI for the fair millionaires protocol",
	}
	flags := rc.cmd.PersistentFlags()
	flags.StringVar(&rc.cfg.WorkDir, "work-dir", "", "artifact work directory")
	flags.IntVar(&rc.cfg.BitWidth, "bit-width", 32, "comparator bit width")
	flags.BoolVar(&rc.cfg.Verbose, "verbose", false, "enable debug logging")
	flags.Uint64Var(&rc.cfg.DepositGarbler, "deposit-garbler", 1, "Garbler's required collateral")
	flags.Uint64Var(&rc.cfg.DepositEvaluator, "deposit-evaluator", 1, "Evaluator's required collateral")

	rc.cmd.AddCommand(newDeriveAnchorsCommand(rc))
	rc.cmd.AddCommand(newDepositCommand(rc))
	rc.cmd.AddCommand(newSubmitCommitmentsCommand(rc))
	rc.cmd.AddCommand(newRevealOpeningsCommand(rc))
	rc.cmd.AddCommand(newPrepareEvalCommand(rc))
	rc.cmd.AddCommand(newRevealLabelsCommand(rc))
	rc.cmd.AddCommand(newExportArtifactsCommand(rc))
	return rc.cmd
}

// deriveAnchorsCommand garbles N fresh instances for the agreed
// bit-width, commits each, writes seeds/leaves/rootGC to the work
// directory, and bootstraps the persisted adjudicator session that
// every later subcommand (on either side) attaches to.
type deriveAnchorsCommand struct {
	root *rootCmd
	cmd  *cobra.Command
}

func newDeriveAnchorsCommand(root *rootCmd) *cobra.Command {
	cc := &deriveAnchorsCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "derive-anchors",
		Short: "garble N instances of the comparator, persist commitments, and open a session",
		RunE:  cc.Execute,
	}
	return cc.cmd
}

func (c *deriveAnchorsCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.Logger()
	if err := artifact.EnsureDir(cfg.WorkDir); err != nil {
		return err
	}

	circ, err := circuitbuilder.NewComparator(cfg.BitWidth)
	if err != nil {
		return err
	}
	circuitID := session.FixedCircuitID()

	tab := tabulate.New(tabulate.Github)
	tab.Header("Instance")
	tab.Header("ComSeed").SetAlign(tabulate.ML)
	tab.Header("RootGC").SetAlign(tabulate.ML)

	for i := 0; i < commitment.N; i++ {
		var seed gate.Seed
		if _, err := cryptoRandRead(seed[:]); err != nil {
			return fmt.Errorf("garbler: generating seed %d: %w", i, err)
		}

		ic, leaves, err := commitment.BuildInstance(seed, gate.InstanceID(i), circuitID, circ.Gates, circ.OutputWire)
		if err != nil {
			return fmt.Errorf("garbler: building instance %d: %w", i, err)
		}
		if err := artifact.WriteSeed(cfg.WorkDir, i, seed); err != nil {
			return err
		}
		if err := artifact.WriteLeaves(cfg.WorkDir, i, leaves); err != nil {
			return err
		}
		if err := artifact.WriteRootGC(cfg.WorkDir, i, ic.RootGC); err != nil {
			return err
		}

		row := tab.Row()
		row.Column(fmt.Sprintf("%d", i))
		row.Column(fmt.Sprintf("%x", ic.ComSeed))
		row.Column(fmt.Sprintf("%x", ic.RootGC))

		logger.Info().Int("instance", i).Msg("garbler: instance committed")
	}

	layoutRoot := commitment.BuildLayoutRoot(circ.Gates)
	if err := artifact.WriteManifest(cfg.WorkDir, cfg.BitWidth, circuitID, layoutRoot); err != nil {
		return err
	}

	acfg := adjudicator.Config{DepositGarbler: cfg.DepositGarbler, DepositEvaluator: cfg.DepositEvaluator}
	a := adjudicator.New(acfg, session.Alice, session.Bob, circuitID, layoutRoot, nil, logger)
	if err := session.SaveAdjudicator(cfg, a); err != nil {
		return err
	}

	tab.Print(os.Stdout)
	fmt.Printf("session=%s circuitLayoutRoot=%x\n", a.SessionID, layoutRoot)
	return nil
}

// depositCommand locks one party's collateral into the adjudicator's
// vault. Either party may run it (the same demo operator usually
// drives both sides against the shared work directory).
type depositCommand struct {
	root  *rootCmd
	party string
	cmd   *cobra.Command
}

func newDepositCommand(root *rootCmd) *cobra.Command {
	cc := &depositCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "deposit",
		Short: "lock a party's collateral",
		RunE:  cc.Execute,
	}
	cc.cmd.Flags().StringVar(&cc.party, "party", "alice", `which party deposits: "alice" or "bob"`)
	return cc.cmd
}

func (c *depositCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.Logger()

	party, amount, err := resolveParty(cfg, c.party)
	if err != nil {
		return err
	}

	a, err := session.OpenAdjudicator(cfg, logger)
	if err != nil {
		return err
	}
	if err := a.Deposit(party, amount); err != nil {
		return err
	}
	if err := session.SaveAdjudicator(cfg, a); err != nil {
		return err
	}

	fmt.Printf("%s deposited %d, stage=%s\n", party, amount, a.CurrentStage())
	return nil
}

func resolveParty(cfg session.Config, name string) (adjudicator.Party, uint64, error) {
	switch name {
	case "alice":
		return session.Alice, cfg.DepositGarbler, nil
	case "bob":
		return session.Bob, cfg.DepositEvaluator, nil
	default:
		return "", 0, fmt.Errorf(`garbler: --party must be "alice" or "bob", got %q`, name)
	}
}

// submitCommitmentsCommand rebuilds the N instance commitments from the
// persisted seeds (deterministic given the agreed circuit) and submits
// them to the adjudicator.
type submitCommitmentsCommand struct {
	root *rootCmd
	cmd  *cobra.Command
}

func newSubmitCommitmentsCommand(root *rootCmd) *cobra.Command {
	cc := &submitCommitmentsCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "submit-commitments",
		Short: "publish the N instance commitments to the adjudicator",
		RunE:  cc.Execute,
	}
	return cc.cmd
}

func (c *submitCommitmentsCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.Logger()

	circ, err := circuitbuilder.NewComparator(cfg.BitWidth)
	if err != nil {
		return err
	}
	circuitID := session.FixedCircuitID()

	var commitments [commitment.N]commitment.InstanceCommitment
	for i := 0; i < commitment.N; i++ {
		seed, err := artifact.ReadSeed(cfg.WorkDir, i)
		if err != nil {
			return err
		}
		ic, _, err := commitment.BuildInstance(seed, gate.InstanceID(i), circuitID, circ.Gates, circ.OutputWire)
		if err != nil {
			return fmt.Errorf("garbler: rebuilding instance %d: %w", i, err)
		}
		commitments[i] = ic
	}

	a, err := session.OpenAdjudicator(cfg, logger)
	if err != nil {
		return err
	}
	if err := a.SubmitCommitments(session.Alice, commitments); err != nil {
		return err
	}
	if err := session.SaveAdjudicator(cfg, a); err != nil {
		return err
	}

	fmt.Printf("submitted %d commitments, stage=%s\n", commitment.N, a.CurrentStage())
	return nil
}

// revealOpeningsCommand reveals the seeds of every instance except the
// Evaluator's chosen m, both to the adjudicator and to stdout.
type revealOpeningsCommand struct {
	root *rootCmd
	cmd  *cobra.Command
}

func newRevealOpeningsCommand(root *rootCmd) *cobra.Command {
	cc := &revealOpeningsCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "reveal-openings",
		Short: "reveal the seeds of every instance other than the chosen one",
		RunE:  cc.Execute,
	}
	return cc.cmd
}

func (c *revealOpeningsCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cfg.Logger()

	a, err := session.OpenAdjudicator(cfg, logger)
	if err != nil {
		return err
	}
	m, chosen := a.ChosenIndex()
	if !chosen {
		return fmt.Errorf("garbler: the Evaluator has not chosen an instance yet")
	}

	var indices []int
	var seeds []gate.Seed
	for i := 0; i < commitment.N; i++ {
		if i == m {
			continue
		}
		seed, err := artifact.ReadSeed(cfg.WorkDir, i)
		if err != nil {
			return err
		}
		indices = append(indices, i)
		seeds = append(seeds, seed)
		fmt.Printf("%d %x\n", i, seed)
	}

	if err := a.RevealOpenings(session.Alice, indices, seeds); err != nil {
		return err
	}
	if err := session.SaveAdjudicator(cfg, a); err != nil {
		return err
	}
	fmt.Printf("stage=%s\n", a.CurrentStage())
	return nil
}

// prepareEvalCommand exports the off-chain evaluation bundle the
// Evaluator needs once Dispute closes: both Y-wire label candidates
// per wire for the chosen instance, standing in for the out-of-scope
// OT step (spec.md §1) — the Evaluator selects the candidate matching
// his private bit without the Garbler ever learning which one. It also
// previews Alice's own X-wire labels for a sanity check against what
// reveal-labels will later publish on-chain.
type prepareEvalCommand struct {
	root   *rootCmd
	m      int
	x      uint64
	outDir string
	cmd    *cobra.Command
}

func newPrepareEvalCommand(root *rootCmd) *cobra.Command {
	cc := &prepareEvalCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "prepare-eval",
		Short: "export the chosen instance's Y-wire label candidates for the Evaluator",
		RunE:  cc.Execute,
	}
	cc.cmd.Flags().IntVar(&cc.m, "m", -1, "the chosen instance index")
	cc.cmd.Flags().Uint64Var(&cc.x, "x", 0, "Alice's private input value, for a preview-only sanity check")
	cc.cmd.Flags().StringVar(&cc.outDir, "out-dir", "", "destination directory (defaults to --work-dir)")
	return cc.cmd
}

func (c *prepareEvalCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.m < 0 || c.m >= commitment.N {
		return fmt.Errorf("garbler: --m must be in [0,%d)", commitment.N)
	}
	outDir := c.outDir
	if outDir == "" {
		outDir = cfg.WorkDir
	}
	if err := artifact.EnsureDir(outDir); err != nil {
		return err
	}

	circ, err := circuitbuilder.NewComparator(cfg.BitWidth)
	if err != nil {
		return err
	}
	seed, err := artifact.ReadSeed(cfg.WorkDir, c.m)
	if err != nil {
		return err
	}
	circuitID := session.FixedCircuitID()
	d := gate.NewDeriver(seed, gate.InstanceID(c.m), circuitID, gate.BuildAliasMap(circ.Gates))

	pairs := make([][2]gate.Label, len(circ.YWires))
	for i, w := range circ.YWires {
		pairs[i] = [2]gate.Label{d.Label(w, 0), d.Label(w, 1)}
	}
	if err := artifact.WriteLabelPairs(artifact.YCandidatesPath(outDir, c.m), pairs); err != nil {
		return err
	}

	fmt.Printf("wrote %d Y-candidate pairs to %s\n", len(pairs), artifact.YCandidatesPath(outDir, c.m))
	fmt.Println("preview of Alice's own labels for x (must match reveal-labels' later publication):")
	for i, w := range circ.XWires {
		bit := byte((c.x >> uint(i)) & 1)
		fmt.Printf("%d %x\n", i, d.Label(w, bit))
	}
	return nil
}

// revealLabelsCommand publishes Alice's input-wire labels for
// instance m's X wires to the adjudicator and persists them to the
// canonical garbler-labels file evaluate-m reads by default.
type revealLabelsCommand struct {
	root *rootCmd
	m    int
	x    uint64
	cmd  *cobra.Command
}

func newRevealLabelsCommand(root *rootCmd) *cobra.Command {
	cc := &revealLabelsCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "reveal-labels",
		Short: "publish the Garbler's input-wire labels for the chosen instance",
		RunE:  cc.Execute,
	}
	cc.cmd.Flags().IntVar(&cc.m, "m", -1, "the chosen instance index")
	cc.cmd.Flags().Uint64Var(&cc.x, "x", 0, "Alice's private input value")
	return cc.cmd
}

func (c *revealLabelsCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.m < 0 || c.m >= commitment.N {
		return fmt.Errorf("garbler: --m must be in [0,%d)", commitment.N)
	}
	logger := cfg.Logger()

	circ, err := circuitbuilder.NewComparator(cfg.BitWidth)
	if err != nil {
		return err
	}
	seed, err := artifact.ReadSeed(cfg.WorkDir, c.m)
	if err != nil {
		return err
	}
	circuitID := session.FixedCircuitID()

	d := gate.NewDeriver(seed, gate.InstanceID(c.m), circuitID, gate.BuildAliasMap(circ.Gates))
	labels := make([]gate.Label, len(circ.XWires))
	for i, w := range circ.XWires {
		bit := byte((c.x >> uint(i)) & 1)
		labels[i] = d.Label(w, bit)
		fmt.Printf("%d %x\n", i, labels[i])
	}

	a, err := session.OpenAdjudicator(cfg, logger)
	if err != nil {
		return err
	}
	if err := a.RevealGarblerLabels(session.Alice, labels); err != nil {
		return err
	}
	if err := session.SaveAdjudicator(cfg, a); err != nil {
		return err
	}
	if err := artifact.WriteLabels(artifact.GarblerLabelsPath(cfg.WorkDir), labels); err != nil {
		return err
	}

	fmt.Printf("stage=%s\n", a.CurrentStage())
	return nil
}

// exportArtifactsCommand bundles every instance's persisted seed,
// leaves, and rootGC, plus the session manifest, into a destination
// directory for archival or handoff to a separately located Evaluator.
type exportArtifactsCommand struct {
	root   *rootCmd
	outDir string
	cmd    *cobra.Command
}

func newExportArtifactsCommand(root *rootCmd) *cobra.Command {
	cc := &exportArtifactsCommand{root: root}
	cc.cmd = &cobra.Command{
		Use:   "export-artifacts",
		Short: "bundle every instance's persisted artifacts into a destination directory",
		RunE:  cc.Execute,
	}
	cc.cmd.Flags().StringVar(&cc.outDir, "out-dir", "", "destination directory")
	return cc.cmd
}

func (c *exportArtifactsCommand) Execute(_ *cobra.Command, _ []string) error {
	cfg := c.root.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.outDir == "" {
		return fmt.Errorf("garbler: --out-dir is required")
	}
	if err := artifact.EnsureDir(c.outDir); err != nil {
		return err
	}

	circ, err := circuitbuilder.NewComparator(cfg.BitWidth)
	if err != nil {
		return err
	}
	circuitID := session.FixedCircuitID()
	layoutRoot := commitment.BuildLayoutRoot(circ.Gates)

	for i := 0; i < commitment.N; i++ {
		seed, err := artifact.ReadSeed(cfg.WorkDir, i)
		if err != nil {
			return err
		}
		leaves, err := artifact.ReadLeaves(cfg.WorkDir, i)
		if err != nil {
			return err
		}
		root, err := artifact.ReadRootGC(cfg.WorkDir, i)
		if err != nil {
			return err
		}
		if err := artifact.WriteSeed(c.outDir, i, seed); err != nil {
			return err
		}
		if err := artifact.WriteLeaves(c.outDir, i, leaves); err != nil {
			return err
		}
		if err := artifact.WriteRootGC(c.outDir, i, root); err != nil {
			return err
		}
	}
	if err := artifact.WriteManifest(c.outDir, cfg.BitWidth, circuitID, layoutRoot); err != nil {
		return err
	}

	fmt.Printf("exported %d instances to %s\n", commitment.N, c.outDir)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
