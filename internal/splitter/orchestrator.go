// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package splitter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	stepErrors "github.com/kraklabs/stepsplitter/internal/errors"
	"github.com/kraklabs/stepsplitter/internal/stepfile"
)

// Mode is the strategy the Orchestrator selected for a given input file.
type Mode int

const (
	ModeNone Mode = iota
	ModeSingle
	ModeMultiVolume
	ModeAssembly
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeMultiVolume:
		return "multi-volume"
	case ModeAssembly:
		return "assembly"
	default:
		return "none"
	}
}

// ReportRow is one line of the multiplicity report: a unique body's
// display name and how many times it occurs in the source file.
type ReportRow struct {
	Name  string
	Count int
}

// Report is the Orchestrator's accumulated result for one run.
type Report struct {
	Mode         Mode
	Rows         []ReportRow
	FilesWritten []string
	ReportPath   string
}

// Options configures one Run.
type Options struct {
	OutputDir    string
	Config       Config
	Logger       *slog.Logger
	ShowProgress bool
	Now          func() time.Time // nil means time.Now
}

// Run parses inputPath, selects a splitting strategy, and writes one STEP
// file per unique body plus a multiplicity report into opts.OutputDir.
func Run(inputPath string, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	parser := stepfile.NewParser(logger)
	result, err := parser.Parse(inputPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, stepErrors.NewOutputError("cannot create output directory "+opts.OutputDir, err)
	}

	g := result.Graph
	resolver := stepfile.NewResolver(g, logger)
	collector := stepfile.NewCollector(g, resolver, logger)
	hasher := stepfile.NewHasher(g, opts.Config.GeometryWhitelist, opts.Config.SignificantDigits)
	emitter := stepfile.NewEmitter(g)

	bodies := g.ByType(stepfile.TypeBody)
	assembly := len(g.ByType(stepfile.TypeNAUO)) > 0

	var mode Mode
	switch {
	case assembly:
		mode = ModeAssembly
	case len(bodies) > 1:
		mode = ModeMultiVolume
	case len(bodies) == 1:
		mode = ModeSingle
	default:
		mode = ModeNone
	}

	logger.Info("splitter.mode", "mode", mode.String(), "bodies", len(bodies))

	report := &Report{Mode: mode}

	if mode == ModeNone {
		logger.Warn("splitter.no_bodies", "message", "No MANIFOLD_SOLID_BREP entities found")
		report.ReportPath = filepath.Join(opts.OutputDir, result.Stem+".txt")
		if err := os.WriteFile(report.ReportPath, nil, 0o644); err != nil {
			return nil, stepErrors.NewOutputError("cannot write report file "+report.ReportPath, err)
		}
		return report, nil
	}

	groups := groupByFingerprint(bodies, hasher)

	bar := newProgressBar(opts.ShowProgress, len(groups), mode)

	usedStems := make(map[string]int) // sanitized stem -> representative body id that claimed it
	anyChainName := false
	for i, grp := range groups {
		rep := grp.members[0]
		ordinal := i + 1

		var rawName string
		switch mode {
		case ModeAssembly:
			if _, ok := resolver.ChainName(rep); ok {
				anyChainName = true
			}
			rawName = resolveAssemblyName(resolver, rep, ordinal, result.Stem)
		default:
			rawName = resolveMultiVolumeName(resolver, rep, ordinal, result.Stem)
		}

		finalName := dedupeName(usedStems, rawName, rep)

		count := grp.size()
		if mode == ModeAssembly {
			count = 0
			for _, m := range grp.members {
				count += resolver.Multiplicity(m)
			}
		}

		deps := collector.Collect(rep)
		stem := stepfile.Sanitize(finalName)
		outPath := filepath.Join(opts.OutputDir, stem+".stp")

		if err := emitter.Write(outPath, deps, finalName, now()); err != nil {
			return nil, stepErrors.NewOutputError("cannot write "+outPath, err)
		}
		logger.Info("splitter.emitted", "name", finalName, "path", outPath, "entities", len(deps), "count", count)

		report.FilesWritten = append(report.FilesWritten, outPath)
		report.Rows = append(report.Rows, ReportRow{Name: finalName, Count: count})

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if mode == ModeAssembly && !anyChainName {
		logger.Warn("splitter.assembly_product_structure_broken",
			"message", "no body resolved a product-structure name; every part fell back to a synthesized name")
	}

	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].Name < report.Rows[j].Name })

	report.ReportPath = filepath.Join(opts.OutputDir, result.Stem+".txt")
	if err := writeReport(report.ReportPath, report.Rows); err != nil {
		return nil, err
	}

	return report, nil
}

// bodyGroup is a set of bodies whose geometric fingerprints are identical.
type bodyGroup struct {
	hash    string
	members []int
}

func (g *bodyGroup) size() int { return len(g.members) }

// groupByFingerprint hashes every body and groups them by fingerprint,
// preserving first-seen order so output is deterministic run to run.
func groupByFingerprint(bodies []int, hasher *stepfile.Hasher) []*bodyGroup {
	byHash := make(map[string]*bodyGroup)
	var order []*bodyGroup
	for _, id := range bodies {
		h := hasher.Fingerprint(id)
		grp, ok := byHash[h]
		if !ok {
			grp = &bodyGroup{hash: h}
			byHash[h] = grp
			order = append(order, grp)
		}
		grp.members = append(grp.members, id)
	}
	return order
}

// resolveAssemblyName prefers the product-structure chain name (the
// authoritative naming source for an assembly), falling back to the
// body's own embedded name, then a synthesized name.
func resolveAssemblyName(r *stepfile.Resolver, bodyID, ordinal int, stem string) string {
	if name, ok := r.ChainName(bodyID); ok {
		return name
	}
	if name, ok := r.EmbeddedName(bodyID); ok {
		return name
	}
	return fmt.Sprintf("%s_%d", stem, ordinal)
}

// resolveMultiVolumeName prefers the body's own embedded name (a
// monolithic multi-volume part often names volumes on the
// MANIFOLD_SOLID_BREP itself and lacks per-volume PRODUCTs), falling back
// to the product-structure chain name, then a synthesized name.
// Single-body mode uses this same priority order with ordinal 1.
func resolveMultiVolumeName(r *stepfile.Resolver, bodyID, ordinal int, stem string) string {
	if name, ok := r.EmbeddedName(bodyID); ok {
		return name
	}
	if name, ok := r.ChainName(bodyID); ok {
		return name
	}
	return fmt.Sprintf("%s_%d", stem, ordinal)
}

// dedupeName appends "-{bodyID}" to name when its sanitized form collides
// with a name already claimed by a different representative body. Applied
// uniformly in both modes: silently overwriting a sibling's file would be
// worse than an extra suffix.
func dedupeName(used map[string]int, name string, repID int) string {
	stem := stepfile.Sanitize(name)
	if owner, ok := used[stem]; ok && owner != repID {
		name = fmt.Sprintf("%s-%d", name, repID)
		stem = stepfile.Sanitize(name)
	}
	used[stem] = repID
	return name
}

// writeReport writes the multiplicity report: one "name;count" line per
// row, ASCII, newline-separated, rows already sorted lexicographically by
// name.
func writeReport(path string, rows []ReportRow) error {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(row.Name)
		b.WriteString(";")
		b.WriteString(strconv.Itoa(row.Count))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return stepErrors.NewOutputError("cannot write report file "+path, err)
	}
	return nil
}

func newProgressBar(show bool, total int, mode Mode) *progressbar.ProgressBar {
	if !show || total <= 1 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(fmt.Sprintf("splitting (%s)", mode)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
}
