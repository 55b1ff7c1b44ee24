// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package stepfile

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// fileSchema is the AP203 schema identifier every emitted file declares.
const fileSchema = "AP203_CONFIGURATION_CONTROLLED_3D_DESIGN_OF_MECHANICAL_PARTS_AND_ASSEMBLIES_MIM_LF { 1 0 10303 403 2 1 2 }"

// Emitter renumbers a selected entity set into a dense 1..N numbering and
// writes a syntactically complete STEP file with a freshly generated
// HEADER.
type Emitter struct {
	g *Graph
}

// NewEmitter returns an Emitter over g.
func NewEmitter(g *Graph) *Emitter {
	return &Emitter{g: g}
}

// Render produces the full text of a STEP file containing ids, named
// displayName, timestamped with now. Dangling references (ids not present
// in the graph, or present but outside the selected set) are left
// unchanged rather than renumbered.
func (e *Emitter) Render(ids map[int]struct{}, displayName string, now time.Time) string {
	sorted := make([]int, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Ints(sorted)

	remap := make(map[int]int, len(sorted))
	for newID, oldID := range sorted {
		remap[oldID] = newID + 1
	}

	var b strings.Builder
	b.WriteString("ISO-10303-21;\n")
	b.WriteString("HEADER;\n")
	b.WriteString("FILE_DESCRIPTION((''),'2;1');\n")
	fmt.Fprintf(&b, "FILE_NAME('%s','%s',(''),(''),'STEP SPLITTER','STEP SPLITTER','');\n",
		strings.ToUpper(displayName), now.Format("2006-01-02T15:04:05"))
	b.WriteString("FILE_SCHEMA((\n")
	b.WriteString("'" + fileSchema + "'));\n")
	b.WriteString("ENDSEC;\n")
	b.WriteString("DATA;\n")

	for _, oldID := range sorted {
		ent, ok := e.g.Lookup(oldID)
		if !ok {
			continue
		}
		b.WriteString(renumber(ent.Source, remap))
		b.WriteString("\n")
	}

	b.WriteString("ENDSEC;\n")
	b.WriteString("END-ISO-10303-21;")

	return b.String()
}

// Write renders ids/displayName/now and writes the result to path.
func (e *Emitter) Write(path string, ids map[int]struct{}, displayName string, now time.Time) error {
	content := e.Render(ids, displayName, now)
	return os.WriteFile(path, []byte(content), 0o644)
}

// renumber rewrites every #<digits> token in source according to remap;
// ids absent from remap (dangling references) are left exactly as written.
func renumber(source string, remap map[int]int) string {
	return refRe.ReplaceAllStringFunc(source, func(tok string) string {
		old, err := strconv.Atoi(tok[1:])
		if err != nil {
			return tok
		}
		if newID, ok := remap[old]; ok {
			return "#" + strconv.Itoa(newID)
		}
		return tok
	})
}
