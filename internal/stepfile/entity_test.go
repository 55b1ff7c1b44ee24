// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package stepfile

import "testing"

func buildGraph(entities ...*Entity) *Graph {
	g := NewGraph()
	for _, e := range entities {
		g.add(e)
	}
	return g
}

func TestGraphReachable_TransitiveClosure(t *testing.T) {
	// 1 -> 2 -> 3, 1 -> 4 (4 dangling to 99, which is absent)
	g := buildGraph(
		&Entity{ID: 1, Type: "A", OutRefs: map[int]struct{}{2: {}, 4: {}}},
		&Entity{ID: 2, Type: "B", OutRefs: map[int]struct{}{3: {}}},
		&Entity{ID: 3, Type: "C", OutRefs: map[int]struct{}{}},
		&Entity{ID: 4, Type: "D", OutRefs: map[int]struct{}{99: {}}},
	)

	got := g.Reachable(1)
	want := map[int]struct{}{1: {}, 2: {}, 3: {}, 4: {}}
	if len(got) != len(want) {
		t.Fatalf("Reachable(1) = %v, want %v", got, want)
	}
	for id := range want {
		if _, ok := got[id]; !ok {
			t.Errorf("Reachable(1) missing %d", id)
		}
	}
	if _, ok := got[99]; ok {
		t.Error("Reachable(1) should not include dangling id 99")
	}
}

func TestGraphReachable_Cycle(t *testing.T) {
	// 1 <-> 2 cycle must not infinite-loop.
	g := buildGraph(
		&Entity{ID: 1, Type: "A", OutRefs: map[int]struct{}{2: {}}},
		&Entity{ID: 2, Type: "B", OutRefs: map[int]struct{}{1: {}}},
	)

	got := g.Reachable(1)
	if len(got) != 2 {
		t.Fatalf("Reachable(1) on a cycle = %v, want {1,2}", got)
	}
}

func TestGraphReferents(t *testing.T) {
	g := buildGraph(
		&Entity{ID: 1, Type: "A", OutRefs: map[int]struct{}{3: {}}},
		&Entity{ID: 2, Type: "B", OutRefs: map[int]struct{}{3: {}}},
		&Entity{ID: 3, Type: "C", OutRefs: map[int]struct{}{}},
	)

	got := g.Referents(3)
	if len(got) != 2 {
		t.Fatalf("Referents(3) = %v, want {1,2}", got)
	}
}

func TestGraphByType_StableInsertionOrder(t *testing.T) {
	g := buildGraph(
		&Entity{ID: 5, Type: "PRODUCT"},
		&Entity{ID: 2, Type: "PRODUCT"},
		&Entity{ID: 9, Type: "PRODUCT"},
	)

	got := g.ByType("PRODUCT")
	want := []int{5, 2, 9}
	if len(got) != len(want) {
		t.Fatalf("ByType = %v, want %v", got, want)
	}
	for i, id := range want {
		if got[i] != id {
			t.Errorf("ByType[%d] = %d, want %d", i, got[i], id)
		}
	}
}

func TestGraphLookup_Missing(t *testing.T) {
	g := NewGraph()
	if _, ok := g.Lookup(1); ok {
		t.Error("Lookup on empty graph should miss")
	}
}
