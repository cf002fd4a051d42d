//
// artifact.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package artifact

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fairmillion/protocol/gate"
)

// SeedPath returns the on-disk path for instance i's seed file within
// dir.
func SeedPath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("instance-%d-seed.txt", i))
}

// LeavesPath returns the on-disk path for instance i's leaf listing.
func LeavesPath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("instance-%d-leaves.txt", i))
}

// RootGCPath returns the on-disk path for instance i's published
// rootGC value.
func RootGCPath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("instance-%d-root-gc.txt", i))
}

func stripHexPrefix(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return s
}

// WriteSeed persists instance i's seed to dir.
func WriteSeed(dir string, i int, seed gate.Seed) error {
	return writeHexLine(SeedPath(dir, i), seed[:])
}

// ReadSeed loads instance i's seed from dir.
func ReadSeed(dir string, i int) (gate.Seed, error) {
	var seed gate.Seed
	b, err := readHexLine(SeedPath(dir, i))
	if err != nil {
		return seed, err
	}
	if len(b) != len(seed) {
		return seed, fmt.Errorf("artifact: seed file has %d bytes, want %d", len(b), len(seed))
	}
	copy(seed[:], b)
	return seed, nil
}

// WriteRootGC persists instance i's rootGC to dir.
func WriteRootGC(dir string, i int, root [32]byte) error {
	return writeHexLine(RootGCPath(dir, i), root[:])
}

// ReadRootGC loads instance i's rootGC from dir.
func ReadRootGC(dir string, i int) ([32]byte, error) {
	var root [32]byte
	b, err := readHexLine(RootGCPath(dir, i))
	if err != nil {
		return root, err
	}
	if len(b) != len(root) {
		return root, fmt.Errorf("artifact: rootGC file has %d bytes, want %d", len(b), len(root))
	}
	copy(root[:], b)
	return root, nil
}

// WriteLeaves persists instance i's ordered gate leaves, one 71-byte
// hex-encoded leaf per line, preceded by a header comment.
func WriteLeaves(dir string, i int, leaves [][]byte) error {
	f, err := os.Create(LeavesPath(dir, i))
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# instance %d gate leaves, %d total\n", i, len(leaves))
	for _, leaf := range leaves {
		if len(leaf) != gate.LeafSize {
			return fmt.Errorf("artifact: leaf has %d bytes, want %d", len(leaf), gate.LeafSize)
		}
		fmt.Fprintln(w, hex.EncodeToString(leaf))
	}
	return w.Flush()
}

// ReadLeaves loads instance i's ordered gate leaves from dir, skipping
// blank lines and `#`-comments.
func ReadLeaves(dir string, i int) ([][]byte, error) {
	f, err := os.Open(LeavesPath(dir, i))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var leaves [][]byte
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b, err := hex.DecodeString(stripHexPrefix(line))
		if err != nil {
			return nil, fmt.Errorf("artifact: %s: %w", LeavesPath(dir, i), err)
		}
		if len(b) != gate.LeafSize {
			return nil, fmt.Errorf("artifact: %s: leaf has %d bytes, want %d", LeavesPath(dir, i), len(b), gate.LeafSize)
		}
		leaves = append(leaves, b)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return leaves, nil
}

func writeHexLine(path string, b []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, hex.EncodeToString(b))
	return err
}

func readHexLine(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return hex.DecodeString(stripHexPrefix(line))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.ErrUnexpectedEOF
}

// EnsureDir creates dir (and parents) if it does not already exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// GarblerLabelsPath returns the canonical path for the Garbler's
// revealed X-wire labels for the chosen instance.
func GarblerLabelsPath(dir string) string {
	return filepath.Join(dir, "garbler-labels.txt")
}

// YCandidatesPath returns the on-disk path for instance i's Y-wire
// label candidate pairs — the Garbler's stand-in for the out-of-scope
// OT step (spec.md §1): both candidate labels per wire are exported,
// and the Evaluator locally selects the one matching his private bit.
func YCandidatesPath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("instance-%d-y-candidates.txt", i))
}

// ManifestPath returns the on-disk path for the session manifest
// written by export-artifacts, recording the agreed circuit id,
// bit-width, and layout root for inspection.
func ManifestPath(dir string) string {
	return filepath.Join(dir, "manifest.txt")
}

// WriteLabels persists an ordered list of wire labels, one hex line
// per label, in XWires/YWires order.
func WriteLabels(path string, labels []gate.Label) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, l := range labels {
		fmt.Fprintln(w, hex.EncodeToString(l[:]))
	}
	return w.Flush()
}

// ReadLabels loads an ordered list of wire labels written by WriteLabels.
func ReadLabels(path string) ([]gate.Label, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []gate.Label
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b, err := hex.DecodeString(stripHexPrefix(line))
		if err != nil {
			return nil, fmt.Errorf("artifact: %s: %w", path, err)
		}
		if len(b) != 16 {
			return nil, fmt.Errorf("artifact: %s: label line has %d bytes, want 16", path, len(b))
		}
		var l gate.Label
		copy(l[:], b)
		labels = append(labels, l)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

// WriteLabelPairs persists the two label-bit candidates per wire, one
// "label0 label1" hex pair per line, in wire order.
func WriteLabelPairs(path string, pairs [][2]gate.Label) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, p := range pairs {
		fmt.Fprintf(w, "%s %s\n", hex.EncodeToString(p[0][:]), hex.EncodeToString(p[1][:]))
	}
	return w.Flush()
}

// ReadLabelPairs loads the label-bit candidate pairs written by
// WriteLabelPairs.
func ReadLabelPairs(path string) ([][2]gate.Label, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pairs [][2]gate.Label
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("artifact: %s: expected 2 hex fields, got %d", path, len(fields))
		}
		var pair [2]gate.Label
		for k, field := range fields {
			b, err := hex.DecodeString(stripHexPrefix(field))
			if err != nil {
				return nil, fmt.Errorf("artifact: %s: %w", path, err)
			}
			if len(b) != 16 {
				return nil, fmt.Errorf("artifact: %s: label has %d bytes, want 16", path, len(b))
			}
			copy(pair[k][:], b)
		}
		pairs = append(pairs, pair)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// WriteManifest records the session's agreed circuit parameters for
// human inspection; nothing in the protocol reads it back, since
// every party re-derives the circuit deterministically from
// --bit-width and the fixed circuit id.
func WriteManifest(dir string, bitWidth int, circuitID gate.CircuitID, layoutRoot [32]byte) error {
	f, err := os.Create(ManifestPath(dir))
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "bitWidth=%d\n", bitWidth)
	fmt.Fprintf(f, "circuitId=%x\n", circuitID)
	fmt.Fprintf(f, "circuitLayoutRoot=%x\n", layoutRoot)
	return nil
}
