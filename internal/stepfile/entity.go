// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stepfile implements the ISO 10303-21 (STEP) entity graph engine:
// parsing an instance stream into a typed reference graph, resolving the
// product-structure chain that names a body, fingerprinting a body's
// geometric sub-graph, and re-emitting a renumbered, self-contained file.
package stepfile

// Entity is the atomic record of a STEP DATA section: a single
// "#id = TYPE(...);" or "#id = (TYPE1(...) TYPE2(...));" instance.
type Entity struct {
	ID int // positive integer key, unique within a file

	// Type is upper-case; for complex records it is the first uppercase
	// identifier found in the argument list, or "COMPLEX" if none is found.
	Type string

	// Payload is the argument list as raw characters: parentheses balanced,
	// quoted strings preserved byte-for-byte.
	Payload string

	// Source is the full original record text, "#id=...;", after
	// multi-line joining but before any renumbering.
	Source string

	// OutRefs is the set of ids referenced by Payload, self-id excluded.
	// Callers must not mutate the returned map.
	OutRefs map[int]struct{}
}

// Graph is a mapping from entity id to Entity, with insertion order
// preserved so that By Type and traversal order are deterministic.
type Graph struct {
	entities map[int]*Entity
	order    []int
	byType   map[string][]int
}

// NewGraph returns an empty Graph ready to receive entities via add.
func NewGraph() *Graph {
	return &Graph{
		entities: make(map[int]*Entity),
		byType:   make(map[string][]int),
	}
}

// add inserts e into the graph, recording insertion order. Parser-internal:
// a Graph is immutable to every other caller once parsing completes.
func (g *Graph) add(e *Entity) {
	if _, exists := g.entities[e.ID]; exists {
		return
	}
	g.entities[e.ID] = e
	g.order = append(g.order, e.ID)
	g.byType[e.Type] = append(g.byType[e.Type], e.ID)
}

// Lookup returns the entity for id, or nil, false if absent.
func (g *Graph) Lookup(id int) (*Entity, bool) {
	e, ok := g.entities[id]
	return e, ok
}

// ByType returns the ids of every entity of the given type, in the order
// they were encountered while parsing.
func (g *Graph) ByType(t string) []int {
	return g.byType[t]
}

// Len returns the number of entities in the graph.
func (g *Graph) Len() int {
	return len(g.entities)
}

// Reachable computes the transitive closure of OutRefs starting at id,
// restricted to ids actually present in the graph. It is an iterative
// worklist traversal so that cyclic back-references (common in STEP,
// e.g. a styled item referencing geometry that references a context that
// is itself referenced by the shape representation) cannot blow the stack.
func (g *Graph) Reachable(id int) map[int]struct{} {
	seen := make(map[int]struct{})
	if _, ok := g.entities[id]; !ok {
		return seen
	}
	worklist := []int{id}
	seen[id] = struct{}{}
	for len(worklist) > 0 {
		n := len(worklist) - 1
		cur := worklist[n]
		worklist = worklist[:n]

		e := g.entities[cur]
		for ref := range e.OutRefs {
			if _, ok := g.entities[ref]; !ok {
				continue
			}
			if _, visited := seen[ref]; visited {
				continue
			}
			seen[ref] = struct{}{}
			worklist = append(worklist, ref)
		}
	}
	return seen
}

// Referents returns every entity id whose OutRefs include id.
func (g *Graph) Referents(id int) map[int]struct{} {
	out := make(map[int]struct{})
	for _, eid := range g.order {
		e := g.entities[eid]
		if _, ok := e.OutRefs[id]; ok {
			out[eid] = struct{}{}
		}
	}
	return out
}

// unionInto adds every id in ids, plus the Reachable closure of each, into
// dst. Shared by the Collector's repeated "add this ref and its reachable
// set" steps.
func (g *Graph) unionInto(dst map[int]struct{}, ids ...int) {
	for _, id := range ids {
		if _, ok := g.entities[id]; !ok {
			continue
		}
		dst[id] = struct{}{}
		for r := range g.Reachable(id) {
			dst[r] = struct{}{}
		}
	}
}
