// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the CLI's colored terminal output. Reconstructed
// from the internal/ui contract the teacher's cmd/cie/*.go calls into
// (Header, SubHeader, Label, DimText, CountText, Green/Yellow/Dim,
// Info, Successf, Warningf) — not present in the retrieval pack as source,
// only as call sites — built on the same libraries those call sites
// imply: fatih/color for the SGR codes, mattn/go-isatty to decide whether
// to emit them at all.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed)
	Dim    = color.New(color.Faint)
	Bold   = color.New(color.Bold)
)

// Enable turns color on or off for every color.Color in this package,
// overriding the terminal auto-detection fatih/color does by default.
// Called once at CLI start-up from the --no-color flag and from an
// explicit isatty check (stdout not a terminal disables color too).
func Enable(enabled bool) {
	for _, c := range []*color.Color{Green, Yellow, Red, Dim, Bold} {
		c.EnableColor()
		if !enabled {
			c.DisableColor()
		}
	}
}

// AutoDetect reports whether stdout looks like a color-capable terminal.
func AutoDetect() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Header prints a bold section title.
func Header(title string) {
	Bold.Println(title)
}

// SubHeader prints a bold, slightly indented sub-section title.
func SubHeader(title string) {
	Bold.Printf("  %s\n", title)
}

// Label returns s styled as a field label (bold, no trailing newline) for
// inline use in a Printf-built line.
func Label(s string) string {
	return Bold.Sprint(s)
}

// DimText returns s styled as de-emphasised detail text.
func DimText(s string) string {
	return Dim.Sprint(s)
}

// CountText returns n styled as a highlighted count.
func CountText(n int) string {
	return Bold.Sprintf("%d", n)
}

// Info prints an informational line to stdout.
func Info(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// Successf prints a green success line to stdout.
func Successf(format string, args ...interface{}) {
	Green.Printf(format+"\n", args...)
}

// Warningf prints a yellow warning line to stderr.
func Warningf(format string, args ...interface{}) {
	Yellow.Fprintf(os.Stderr, format+"\n", args...)
}
