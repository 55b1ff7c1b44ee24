// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package stepfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// twoCubes builds two bodies whose geometry is identical up to id
// numbering: both should fingerprint identically.
func twoCubes() *Graph {
	return buildGraph(
		&Entity{ID: 1, Type: TypeBody, Payload: "''", OutRefs: refs(10)},
		&Entity{ID: 10, Type: "CARTESIAN_POINT", Payload: "'',(0.,0.,0.)", OutRefs: refs()},

		&Entity{ID: 2, Type: TypeBody, Payload: "''", OutRefs: refs(20)},
		&Entity{ID: 20, Type: "CARTESIAN_POINT", Payload: "'',(0.,0.,0.)", OutRefs: refs()},
	)
}

func TestHasher_IdenticalGeometryHashesEqual(t *testing.T) {
	g := twoCubes()
	h := NewHasher(g, nil, 0)

	assert.Equal(t, h.Fingerprint(1), h.Fingerprint(2))
}

func TestHasher_RenumberingInvariant(t *testing.T) {
	// Same structure, but the point is numbered differently relative to
	// the body; the fingerprint must not change because refs become #REF.
	a := buildGraph(
		&Entity{ID: 1, Type: TypeBody, Payload: "'',#10", OutRefs: refs(10)},
		&Entity{ID: 10, Type: "CARTESIAN_POINT", Payload: "'',(1.,2.,3.)", OutRefs: refs()},
	)
	b := buildGraph(
		&Entity{ID: 7, Type: TypeBody, Payload: "'',#99", OutRefs: refs(99)},
		&Entity{ID: 99, Type: "CARTESIAN_POINT", Payload: "'',(1.,2.,3.)", OutRefs: refs()},
	)

	ha := NewHasher(a, nil, 0)
	hb := NewHasher(b, nil, 0)
	assert.Equal(t, ha.Fingerprint(1), hb.Fingerprint(7))
}

func TestHasher_FloatRepresentationNoise(t *testing.T) {
	a := buildGraph(
		&Entity{ID: 1, Type: TypeBody, OutRefs: refs(10)},
		&Entity{ID: 10, Type: "CARTESIAN_POINT", Payload: "'',(1.000000,2.,3.)", OutRefs: refs()},
	)
	b := buildGraph(
		&Entity{ID: 1, Type: TypeBody, OutRefs: refs(10)},
		&Entity{ID: 10, Type: "CARTESIAN_POINT", Payload: "'',(1.0000001,2.,3.)", OutRefs: refs()},
	)

	ha := NewHasher(a, nil, 0)
	hb := NewHasher(b, nil, 0)
	assert.Equal(t, ha.Fingerprint(1), hb.Fingerprint(1),
		"rounding to 6 significant digits absorbs representation noise")
}

func TestHasher_DistinctGeometryHashesDiffer(t *testing.T) {
	a := buildGraph(
		&Entity{ID: 1, Type: TypeBody, OutRefs: refs(10)},
		&Entity{ID: 10, Type: "CARTESIAN_POINT", Payload: "'',(1.,2.,3.)", OutRefs: refs()},
	)
	b := buildGraph(
		&Entity{ID: 1, Type: TypeBody, OutRefs: refs(10)},
		&Entity{ID: 10, Type: "CARTESIAN_POINT", Payload: "'',(4.,5.,6.)", OutRefs: refs()},
	)

	ha := NewHasher(a, nil, 0)
	hb := NewHasher(b, nil, 0)
	assert.NotEqual(t, ha.Fingerprint(1), hb.Fingerprint(1))
}

func TestHasher_NonWhitelistedTypeIgnored(t *testing.T) {
	a := buildGraph(
		&Entity{ID: 1, Type: TypeBody, OutRefs: refs(10)},
		&Entity{ID: 10, Type: "CARTESIAN_POINT", Payload: "'',(1.,2.,3.)", OutRefs: refs()},
	)
	b := buildGraph(
		&Entity{ID: 1, Type: TypeBody, OutRefs: refs(10, 11)},
		&Entity{ID: 10, Type: "CARTESIAN_POINT", Payload: "'',(1.,2.,3.)", OutRefs: refs()},
		&Entity{ID: 11, Type: "PRESENTATION_STYLE_ASSIGNMENT", Payload: "#99", OutRefs: refs()},
	)

	ha := NewHasher(a, nil, 0)
	hb := NewHasher(b, nil, 0)
	assert.Equal(t, ha.Fingerprint(1), hb.Fingerprint(1),
		"non-geometric entity types must not affect the fingerprint")
}
