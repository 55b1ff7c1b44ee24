// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package stepfile

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	headerSectionRe = regexp.MustCompile(`(?s)HEADER;(.*?)ENDSEC;`)
	dataSectionRe   = regexp.MustCompile(`(?s)DATA;(.*?)ENDSEC;`)

	simpleRecordRe  = regexp.MustCompile(`^#(\d+)\s*=\s*([A-Z_0-9]+)\s*\((.*)\)\s*;$`)
	complexRecordRe = regexp.MustCompile(`^#(\d+)\s*=\s*\((.*)\)\s*;$`)
	complexTypeRe   = regexp.MustCompile(`[A-Z_][A-Z_0-9]*`)
	refRe           = regexp.MustCompile(`#(\d+)`)
)

// Parser reads a STEP file and assembles its DATA section into a Graph.
// It mirrors the shape of the teacher's own source parsers: a small
// config-carrying struct with an injectable logger and a handful of
// single-purpose methods, no shared process-wide state.
type Parser struct {
	logger *slog.Logger
}

// NewParser returns a Parser that logs to logger, or to slog.Default()
// when logger is nil.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Result is the output of a successful Parse: the entity graph, the raw
// unparsed HEADER text, and the input's file-name stem (used by the
// Orchestrator for report naming and synthesized fallback names).
type Result struct {
	Graph  *Graph
	Header string
	Stem   string
}

// Parse reads path, locates its HEADER and DATA sections, and populates a
// Graph from the DATA section's entity records. Returns a KindInput error
// (see internal/errors) if path cannot be read and a KindMalformed error if
// no DATA section is found; those are the only fatal outcomes here;
// individual unparseable records are dropped and logged at Debug, never
// surfaced as an error.
func (p *Parser) Parse(path string) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}

	// Best-effort UTF-8: replace invalid byte sequences rather than fail,
	// matching Python's open(..., errors='replace').
	content := strings.ToValidUTF8(string(raw), "�")

	var header string
	if m := headerSectionRe.FindStringSubmatch(content); m != nil {
		header = m[1]
	}

	dataMatch := dataSectionRe.FindStringSubmatch(content)
	if dataMatch == nil {
		return nil, errDataSectionNotFound
	}

	g := NewGraph()
	p.parseEntities(g, dataMatch[1])

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p.logger.Info("stepfile.parsed", "entities", g.Len(), "stem", stem)

	return &Result{Graph: g, Header: header, Stem: stem}, nil
}

// parseEntities assembles joined entity records out of the DATA section's
// raw lines, honouring multi-line records and nested parentheses, then
// classifies and adds each one to g.
func (p *Parser) parseEntities(g *Graph, dataSection string) {
	var current []string
	parenDepth := 0
	inEntity := false

	for _, rawLine := range strings.Split(dataSection, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		switch {
		case !inEntity && strings.HasPrefix(line, "#"):
			inEntity = true
			current = []string{line}
			parenDepth = strings.Count(line, "(") - strings.Count(line, ")")
		case inEntity:
			current = append(current, line)
			parenDepth += strings.Count(line, "(") - strings.Count(line, ")")
		default:
			// A non-blank line outside an entity and not starting a new
			// one; nothing to do with it (e.g. stray text between records).
			continue
		}

		if inEntity && parenDepth <= 0 && strings.Contains(line, ";") {
			record := strings.Join(current, " ")
			p.parseRecord(g, record)
			inEntity = false
			current = nil
			parenDepth = 0
		}
	}
}

// parseRecord classifies a single joined record and, if recognised, adds
// it to g. Unrecognised records are silently dropped: they were never
// part of the graph, so they cannot appear as anyone's dependency.
func (p *Parser) parseRecord(g *Graph, record string) {
	if m := simpleRecordRe.FindStringSubmatch(record); m != nil {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			p.logger.Debug("stepfile.parse_drop", "reason", "bad id", "record", truncate(record))
			return
		}
		g.add(&Entity{
			ID:      id,
			Type:    m[2],
			Payload: m[3],
			Source:  record,
			OutRefs: outRefs(record, id),
		})
		return
	}

	if m := complexRecordRe.FindStringSubmatch(record); m != nil {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			p.logger.Debug("stepfile.parse_drop", "reason", "bad id", "record", truncate(record))
			return
		}
		payload := m[2]
		entityType := "COMPLEX"
		if tm := complexTypeRe.FindString(payload); tm != "" {
			entityType = tm
		}
		g.add(&Entity{
			ID:      id,
			Type:    entityType,
			Payload: payload,
			Source:  record,
			OutRefs: outRefs(record, id),
		})
		return
	}

	p.logger.Debug("stepfile.parse_drop", "reason", "unrecognised record", "record", truncate(record))
}

// outRefs extracts every #<digits> occurrence in record, excluding selfID.
func outRefs(record string, selfID int) map[int]struct{} {
	refs := make(map[int]struct{})
	for _, m := range refRe.FindAllStringSubmatch(record, -1) {
		id, err := strconv.Atoi(m[1])
		if err != nil || id == selfID {
			continue
		}
		refs[id] = struct{}{}
	}
	return refs
}

func truncate(s string) string {
	const max = 80
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
