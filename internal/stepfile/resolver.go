// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package stepfile

import (
	"log/slog"
	"regexp"
)

// Entity type names the resolver and collector chase through the
// product-structure chain. Named as constants rather than inlined string
// literals so the chain-following code reads like the data model in the
// specification it implements.
const (
	TypeBody    = "MANIFOLD_SOLID_BREP"
	TypeNAUO    = "NEXT_ASSEMBLY_USAGE_OCCURRENCE"
	TypeABSR    = "ADVANCED_BREP_SHAPE_REPRESENTATION"
	TypeSDR     = "SHAPE_DEFINITION_REPRESENTATION"
	TypeSRR     = "SHAPE_REPRESENTATION_RELATIONSHIP"
	TypeSR      = "SHAPE_REPRESENTATION"
	TypePDS     = "PRODUCT_DEFINITION_SHAPE"
	TypePD      = "PRODUCT_DEFINITION"
	TypePDF     = "PRODUCT_DEFINITION_FORMATION_WITH_SPECIFIED_SOURCE"
	TypeProduct = "PRODUCT"

	TypeStyledItem            = "STYLED_ITEM"
	TypePropertyDefinition    = "PROPERTY_DEFINITION"
	TypePropertyDefinitionRep = "PROPERTY_DEFINITION_REPRESENTATION"
)

var firstQuotedRe = regexp.MustCompile(`'([^']*)'`)

// firstQuoted returns the first single-quoted token in payload, and
// whether one was found and non-empty.
func firstQuoted(payload string) (string, bool) {
	m := firstQuotedRe.FindStringSubmatch(payload)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// Resolver interprets a Graph's product entities to map a body to a
// display name and an occurrence multiplier. Modelled on the teacher's
// CallResolver (pkg/ingestion/resolver.go): a lazily-built lookup index
// (PRODUCT_DEFINITION id -> NAUO count) over an otherwise read-only graph.
type Resolver struct {
	g      *Graph
	logger *slog.Logger

	nauoCounts  map[int]int // PRODUCT_DEFINITION id -> NAUO occurrence count
	countsBuilt bool
}

// NewResolver returns a Resolver over g.
func NewResolver(g *Graph, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{g: g, logger: logger}
}

// EmbeddedName returns the first single-quoted token in the body's own
// payload, if non-empty.
func (r *Resolver) EmbeddedName(bodyID int) (string, bool) {
	e, ok := r.g.Lookup(bodyID)
	if !ok {
		return "", false
	}
	return firstQuoted(e.Payload)
}

// ChainName follows the product-structure chain documented in the data
// model (ABSR -> SDR[via SRR] -> PDS -> PD -> PDF -> PRODUCT) and returns
// PRODUCT's first quoted token.
func (r *Resolver) ChainName(bodyID int) (string, bool) {
	pdID, ok := r.findPD(bodyID)
	if !ok {
		return "", false
	}
	return r.productNameForPD(pdID)
}

// Multiplicity returns the NAUO-derived occurrence count for bodyID: the
// number of NEXT_ASSEMBLY_USAGE_OCCURRENCE entities whose references
// include the body's PRODUCT_DEFINITION. Bodies with no resolvable PD, or
// whose PD has no NAUO references, default to 1 (the single-component or
// top-level case).
func (r *Resolver) Multiplicity(bodyID int) int {
	pdID, ok := r.findPD(bodyID)
	if !ok {
		return 1
	}
	counts := r.nauoCountsByPD()
	if n, ok := counts[pdID]; ok && n > 0 {
		return n
	}
	return 1
}

// findABSR returns the first ADVANCED_BREP_SHAPE_REPRESENTATION whose
// references include bodyID, in graph insertion order.
func (r *Resolver) findABSR(bodyID int) (int, bool) {
	for _, id := range r.g.ByType(TypeABSR) {
		e, _ := r.g.Lookup(id)
		if _, ok := e.OutRefs[bodyID]; ok {
			return id, true
		}
	}
	return 0, false
}

// findSDR locates the SHAPE_DEFINITION_REPRESENTATION that binds a body's
// ABSR to its product structure, either directly or through a
// SHAPE_REPRESENTATION_RELATIONSHIP indirection, as described in the data
// model's "Product name binding" section.
func (r *Resolver) findSDR(absrID int) (int, bool) {
	for _, id := range r.g.ByType(TypeSDR) {
		e, _ := r.g.Lookup(id)
		if _, ok := e.OutRefs[absrID]; ok {
			return id, true
		}
	}

	if srID, ok := r.findSRShapeRep(absrID); ok {
		for _, id := range r.g.ByType(TypeSDR) {
			e, _ := r.g.Lookup(id)
			if _, ok := e.OutRefs[srID]; ok {
				return id, true
			}
		}
	}
	return 0, false
}

// findSRShapeRep finds a SHAPE_REPRESENTATION_RELATIONSHIP linking absrID
// to some SHAPE_REPRESENTATION, and returns that SHAPE_REPRESENTATION's id.
func (r *Resolver) findSRShapeRep(absrID int) (int, bool) {
	for _, srrID := range r.g.ByType(TypeSRR) {
		srr, _ := r.g.Lookup(srrID)
		if _, ok := srr.OutRefs[absrID]; !ok {
			continue
		}
		for ref := range srr.OutRefs {
			if ref == absrID {
				continue
			}
			if e, ok := r.g.Lookup(ref); ok && e.Type == TypeSR {
				return ref, true
			}
		}
	}
	return 0, false
}

// findPD maps a body to its PRODUCT_DEFINITION by walking ABSR -> SDR ->
// PDS -> PD.
func (r *Resolver) findPD(bodyID int) (int, bool) {
	absrID, ok := r.findABSR(bodyID)
	if !ok {
		return 0, false
	}
	sdrID, ok := r.findSDR(absrID)
	if !ok {
		return 0, false
	}
	sdr, _ := r.g.Lookup(sdrID)
	pdsID, ok := firstRefOfType(r.g, sdr, TypePDS)
	if !ok {
		return 0, false
	}
	pds, _ := r.g.Lookup(pdsID)
	pdID, ok := firstRefOfType(r.g, pds, TypePD)
	return pdID, ok
}

// productNameForPD descends PD -> PDF -> PRODUCT and returns PRODUCT's
// first quoted token.
func (r *Resolver) productNameForPD(pdID int) (string, bool) {
	pd, ok := r.g.Lookup(pdID)
	if !ok {
		return "", false
	}
	pdfID, ok := firstRefOfType(r.g, pd, TypePDF)
	if !ok {
		return "", false
	}
	pdf, _ := r.g.Lookup(pdfID)
	productID, ok := firstRefOfType(r.g, pdf, TypeProduct)
	if !ok {
		return "", false
	}
	product, _ := r.g.Lookup(productID)
	return firstQuoted(product.Payload)
}

// nauoCountsByPD builds (once, lazily) a PRODUCT_DEFINITION id -> NAUO
// occurrence count table by scanning every NEXT_ASSEMBLY_USAGE_OCCURRENCE
// entity's references.
func (r *Resolver) nauoCountsByPD() map[int]int {
	if r.countsBuilt {
		return r.nauoCounts
	}
	counts := make(map[int]int)
	for _, nauoID := range r.g.ByType(TypeNAUO) {
		nauo, _ := r.g.Lookup(nauoID)
		for ref := range nauo.OutRefs {
			e, ok := r.g.Lookup(ref)
			if ok && e.Type == TypePD {
				counts[ref]++
			}
		}
	}
	r.nauoCounts = counts
	r.countsBuilt = true
	r.logger.Debug("resolver.nauo_counts", "products", len(counts))
	return counts
}

// firstRefOfType returns the first id in e.OutRefs whose entity type is t,
// in graph insertion order (stable because it scans the type's own
// by-type bucket rather than the unordered OutRefs set directly).
func firstRefOfType(g *Graph, e *Entity, t string) (int, bool) {
	if e == nil {
		return 0, false
	}
	for _, id := range g.ByType(t) {
		if _, ok := e.OutRefs[id]; ok {
			return id, true
		}
	}
	return 0, false
}
