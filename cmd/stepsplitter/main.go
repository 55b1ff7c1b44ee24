// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command stepsplitter decomposes an ISO 10303-21 (STEP) file describing
// a mechanical CAD assembly or a multi-volume part into one self-contained
// STEP file per unique rigid body, plus a multiplicity report.
//
// Usage:
//
//	stepsplitter <input.stp> [output_dir] [flags]
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	stepErrors "github.com/kraklabs/stepsplitter/internal/errors"
	"github.com/kraklabs/stepsplitter/internal/splitter"
	"github.com/kraklabs/stepsplitter/internal/ui"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	fs := flag.NewFlagSet("stepsplitter", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to an optional YAML run-config (geometry whitelist / precision overrides)")
	jsonOut := fs.Bool("json", false, "emit the final summary as JSON instead of colored text")
	noColor := fs.Bool("no-color", false, "disable ANSI color even on a tty")
	quiet := fs.Bool("quiet", false, "suppress progress bar and info logging")
	verbose := fs.CountP("verbose", "v", "increase verbosity (-v info, -vv debug)")
	fs.Usage = func() {
		printUsage()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	args := fs.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	ui.Enable(!*noColor && ui.AutoDetect())

	inputPath := args[0]
	outputDir := defaultOutputDir(inputPath)
	if len(args) >= 2 {
		outputDir = args[1]
	}

	logger := newLogger(*verbose, *quiet)

	cfg, err := splitter.LoadConfig(*configPath)
	if err != nil {
		stepErrors.FatalError(err, *jsonOut)
	}

	report, err := splitter.Run(inputPath, splitter.Options{
		OutputDir:    outputDir,
		Config:       cfg,
		Logger:       logger,
		ShowProgress: !*quiet && !*jsonOut,
	})
	if err != nil {
		stepErrors.FatalError(err, *jsonOut)
	}

	printSummary(report, *jsonOut)
}

// defaultOutputDir computes dirname(input) + "/SPLIT-" + stem(input), or
// "./SPLIT-<stem>" when input has no directory part.
func defaultOutputDir(inputPath string) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	dir := filepath.Dir(inputPath)
	if dir == "." || dir == "" {
		return "./SPLIT-" + stem
	}
	return filepath.Join(dir, "SPLIT-"+stem)
}

func newLogger(verbose int, quiet bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose >= 2:
		level = slog.LevelDebug
	case verbose >= 1:
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func printSummary(report *splitter.Report, jsonOut bool) {
	if jsonOut {
		fmt.Printf("{\"mode\":%q,\"files_written\":%d,\"report\":%q}\n",
			report.Mode.String(), len(report.FilesWritten), report.ReportPath)
		return
	}

	if len(report.FilesWritten) == 0 {
		ui.Warningf("No parts were written: no MANIFOLD_SOLID_BREP entities found")
		return
	}

	ui.Header("Splitting Complete")
	ui.SubHeader("Summary")
	fmt.Printf("%s %s\n", ui.Label("Mode:"), report.Mode.String())
	fmt.Printf("%s %s\n", ui.Label("Unique bodies:"), ui.CountText(len(report.Rows)))
	fmt.Printf("%s %s\n", ui.Label("Files written:"), ui.CountText(len(report.FilesWritten)))
	fmt.Printf("%s %s\n", ui.Label("Report:"), ui.DimText(report.ReportPath))
	ui.Successf("Wrote %d file(s) to %s", len(report.FilesWritten), filepath.Dir(report.ReportPath))
}

func printUsage() {
	ui.Header("STEP File Splitter")
	ui.Info("Splits STEP assembly files into individual part files,")
	ui.Info("or multi-volume parts into separate volume files.")
	fmt.Println()
	ui.Info("Usage: stepsplitter <input.stp> [output_dir] [flags]")
	fmt.Println()
	ui.SubHeader("Arguments:")
	fmt.Println("  input.stp        - Path to the STEP file to split")
	fmt.Println("  output_dir       - Optional: directory for output files")
	fmt.Println("                     (defaults to SPLIT-<stem> next to the input file)")
	fmt.Println()
	ui.SubHeader("Flags:")
	fmt.Println("  --config string     path to an optional YAML run-config")
	fmt.Println("  --json              emit the final summary as JSON")
	fmt.Println("  --no-color          disable ANSI color even on a tty")
	fmt.Println("  --quiet             suppress progress bar and info logging")
	fmt.Println("  -v, --verbose count -v for info, -vv for debug (stderr)")
	fmt.Println()
	ui.SubHeader("Examples:")
	fmt.Println("  stepsplitter assembly.stp")
	fmt.Println("  stepsplitter part.stp ./output")
}
