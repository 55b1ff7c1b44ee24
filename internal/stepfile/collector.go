// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package stepfile

import "log/slog"

// Collector computes the minimal entity set that, when emitted, produces
// a loadable STEP file containing exactly one body: its geometry, its
// representation context, its product-structure wrapper, and its own
// styling (never another body's).
type Collector struct {
	g      *Graph
	r      *Resolver
	logger *slog.Logger
}

// NewCollector returns a Collector over g, using r to locate a body's
// ABSR/SDR/PD chain.
func NewCollector(g *Graph, r *Resolver, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{g: g, r: r, logger: logger}
}

// Collect returns the dependency set for bodyID.
func (c *Collector) Collect(bodyID int) map[int]struct{} {
	set := make(map[int]struct{})

	// 1. Geometry and its primitives.
	for id := range c.g.Reachable(bodyID) {
		set[id] = struct{}{}
	}

	// 2. The representation context: the body's ABSR and everything it
	// references besides the body itself.
	absrID, ok := c.r.findABSR(bodyID)
	if ok {
		set[absrID] = struct{}{}
		absr, _ := c.g.Lookup(absrID)
		for ref := range absr.OutRefs {
			if ref == bodyID {
				continue
			}
			c.g.unionInto(set, ref)
		}
	}

	// 3. Product-structure wrapper.
	if ok {
		c.collectWrapper(set, absrID)
	}

	// 4. Styling scoped to this body only.
	c.collectStyling(set, bodyID)

	c.logger.Debug("collector.collect", "body", bodyID, "entities", len(set))
	return set
}

// collectWrapper adds the SDR for absrID (direct, or via an SRR + its
// intermediate SHAPE_REPRESENTATION), then descends SDR -> PDS -> PD,
// adding each with its full reachable closure, plus any PROPERTY_DEFINITION
// / PROPERTY_DEFINITION_REPRESENTATION entities that reference the PD.
func (c *Collector) collectWrapper(set map[int]struct{}, absrID int) {
	sdrID, ok := c.r.findSDR(absrID)
	if !ok {
		return
	}

	// If the binding went through an SRR, include the SRR and the
	// intermediate SHAPE_REPRESENTATION along with their reachable sets.
	if srID, ok := c.r.findSRShapeRep(absrID); ok {
		for _, srrID := range c.g.ByType(TypeSRR) {
			srr, _ := c.g.Lookup(srrID)
			if _, hasAbsr := srr.OutRefs[absrID]; hasAbsr {
				if _, hasSR := srr.OutRefs[srID]; hasSR {
					c.g.unionInto(set, srrID)
				}
			}
		}
		c.g.unionInto(set, srID)
	}

	set[sdrID] = struct{}{}

	sdr, _ := c.g.Lookup(sdrID)
	pdsID, ok := firstRefOfType(c.g, sdr, TypePDS)
	if !ok {
		return
	}
	c.g.unionInto(set, pdsID)

	pds, _ := c.g.Lookup(pdsID)
	pdID, ok := firstRefOfType(c.g, pds, TypePD)
	if !ok {
		return
	}
	c.g.unionInto(set, pdID)

	for referentID := range c.g.Referents(pdID) {
		e, _ := c.g.Lookup(referentID)
		if e.Type == TypePropertyDefinition || e.Type == TypePropertyDefinitionRep {
			c.g.unionInto(set, referentID)
		}
	}
}

// collectStyling adds every STYLED_ITEM referencing bodyID, plus (for
// each such styled item) its other references and their reachable sets.
// Styles attached to other bodies never leak in because the outer loop
// only considers styled items that reference this exact body.
func (c *Collector) collectStyling(set map[int]struct{}, bodyID int) {
	for _, styledID := range c.g.ByType(TypeStyledItem) {
		styled, _ := c.g.Lookup(styledID)
		if _, ok := styled.OutRefs[bodyID]; !ok {
			continue
		}
		set[styledID] = struct{}{}
		for ref := range styled.OutRefs {
			if ref == bodyID {
				continue
			}
			c.g.unionInto(set, ref)
		}
	}
}
