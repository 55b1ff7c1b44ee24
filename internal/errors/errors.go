// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errors defines the fatal-error taxonomy shared by the stepfile,
// splitter, and CLI layers, and the single place that turns a fatal error
// into process exit. Reconstructed from the internal/errors contract the
// teacher's cmd/cie/*.go calls into (NewConfigError, NewInternalError,
// NewPermissionError, NewInputError, NewDatabaseError, NewNetworkError,
// FatalError(err, jsonMode)), adapted to this tool's own error kinds.
//
// FatalError renders through internal/ui so a fatal error gets the same
// color treatment (red, dimmed cause line) as the rest of the CLI's
// output, auto-disabled wherever ui.Enable(false) has been called.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/kraklabs/stepsplitter/internal/ui"
)

// Kind classifies a fatal error for callers that want to branch on it
// (the CLI's exit-code and JSON-summary paths) without string-matching
// messages.
type Kind string

const (
	KindInput     Kind = "input"     // unreadable or missing input path
	KindMalformed Kind = "malformed" // no DATA section located
	KindOutput    Kind = "output"    // output directory/file write failure
	KindConfig    Kind = "config"    // malformed --config file
	KindInternal  Kind = "internal"  // defensive: should not happen
)

// StepError is a fatal, user-facing error carrying a Kind and an optional
// wrapped cause. Non-fatal conditions (per-entity parse drops, dangling
// references, name-resolution misses) never produce a StepError; they are
// logged and absorbed at the point of occurrence.
type StepError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *StepError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StepError) Unwrap() error { return e.Cause }

// NewInputError reports that the input path is missing or unreadable.
func NewInputError(message string, cause error) error {
	return &StepError{Kind: KindInput, Message: message, Cause: cause}
}

// NewMalformedError reports that the STEP file could not be parsed
// (typically: no DATA section present).
func NewMalformedError(message string) error {
	return &StepError{Kind: KindMalformed, Message: message}
}

// NewOutputError reports a failure to create the output directory or
// write an output file.
func NewOutputError(message string, cause error) error {
	return &StepError{Kind: KindOutput, Message: message, Cause: cause}
}

// NewConfigError reports a malformed or unreadable --config file.
func NewConfigError(message string, cause error) error {
	return &StepError{Kind: KindConfig, Message: message, Cause: cause}
}

// NewInternalError reports a condition the implementation believes
// cannot happen; present for defensive completeness, kept distinct from
// KindInput/KindOutput so a bug report can tell the difference.
func NewInternalError(message string, cause error) error {
	return &StepError{Kind: KindInternal, Message: message, Cause: cause}
}

// summary is the --json shape for FatalError.
type summary struct {
	Error string `json:"error"`
	Kind  Kind   `json:"kind,omitempty"`
}

// FatalError prints err to stderr and exits the process with status 1.
// With jsonMode it prints a one-line JSON object instead of the plain
// "Error: <message>" text; either way this is the only place in the
// module that calls os.Exit outside of cmd/stepsplitter's top-level
// dispatch.
func FatalError(err error, jsonMode bool) {
	if jsonMode {
		s := summary{Error: err.Error()}
		var se *StepError
		if errors.As(err, &se) {
			s.Kind = se.Kind
		}
		enc, _ := json.Marshal(s)
		fmt.Fprintln(os.Stderr, string(enc))
		os.Exit(1)
	}

	ui.Red.Fprintf(os.Stderr, "Error: %s\n", err.Error())
	if cause := errors.Unwrap(err); cause != nil {
		ui.Dim.Fprintf(os.Stderr, "  caused by: %v\n", cause)
	}
	os.Exit(1)
}
