package extractor

import (
	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type CompressionStats struct {
	NodesBefore       int
	NodesAfter        int
	EdgesBefore       int
	EdgesAfter        int
	RestrictionFixups int
}

type GraphCompressor struct {
	logger  *zap.Logger
	metrics *Metrics
}

func NewGraphCompressor(logger *zap.Logger, metrics *Metrics) *GraphCompressor {
	return &GraphCompressor{logger: logger, metrics: metrics}
}

// restrictionLeg points at one node restriction: a node restriction itself (leg 0), or the in (leg 0)
// or out (leg 1) restriction of a way restriction.
type restrictionLeg struct {
	restriction int
	leg         int
}

// restrictionIndex finds the restriction legs whose from or to is a given node.
type restrictionIndex struct {
	restrictions []da.TurnRestriction
	legsOf       map[da.Index][]restrictionLeg
}

func newRestrictionIndex(restrictions []da.TurnRestriction) *restrictionIndex {
	idx := &restrictionIndex{
		restrictions: restrictions,
		legsOf:       make(map[da.Index][]restrictionLeg),
	}
	for i, r := range restrictions {
		switch rr := r.Restriction.(type) {
		case da.NodeRestriction:
			idx.add(rr, restrictionLeg{i, 0})
		case da.WayRestriction:
			idx.add(rr.InRestriction, restrictionLeg{i, 0})
			idx.add(rr.OutRestriction, restrictionLeg{i, 1})
		}
	}
	return idx
}

func (idx *restrictionIndex) add(r da.NodeRestriction, leg restrictionLeg) {
	idx.legsOf[r.From] = append(idx.legsOf[r.From], leg)
	if r.To != r.From {
		idx.legsOf[r.To] = append(idx.legsOf[r.To], leg)
	}
}

func (idx *restrictionIndex) get(leg restrictionLeg) da.NodeRestriction {
	switch rr := idx.restrictions[leg.restriction].Restriction.(type) {
	case da.NodeRestriction:
		return rr
	case da.WayRestriction:
		if leg.leg == 0 {
			return rr.InRestriction
		}
		return rr.OutRestriction
	}
	return da.NodeRestriction{}
}

func (idx *restrictionIndex) set(leg restrictionLeg, nr da.NodeRestriction) {
	r := &idx.restrictions[leg.restriction]
	switch rr := r.Restriction.(type) {
	case da.NodeRestriction:
		r.Restriction = nr
	case da.WayRestriction:
		if leg.leg == 0 {
			rr.InRestriction = nr
		} else {
			rr.OutRestriction = nr
		}
		r.Restriction = rr
	}
}

// fixup rewrites every leg that used v as from or to, after v was contracted between u and w.
func (idx *restrictionIndex) fixup(v, u, w da.Index) int {
	legs, ok := idx.legsOf[v]
	if !ok {
		return 0
	}
	delete(idx.legsOf, v)

	fixups := 0
	for _, leg := range legs {
		old := idx.get(leg)
		nr := old
		changed := false
		if nr.From == v {
			if nr.Via == w {
				nr.From = u
				changed = true
			} else if nr.Via == u {
				nr.From = w
				changed = true
			}
		}
		if nr.To == v {
			if nr.Via == u {
				nr.To = w
				changed = true
			} else if nr.Via == w {
				nr.To = u
				changed = true
			}
		}
		if !changed {
			continue
		}
		idx.set(leg, nr)
		// old endpoints other than v are still indexed
		indexed := func(x da.Index) bool {
			return x != v && (x == old.From || x == old.To)
		}
		if !indexed(nr.From) {
			idx.legsOf[nr.From] = append(idx.legsOf[nr.From], leg)
		}
		if !indexed(nr.To) && nr.To != nr.From {
			idx.legsOf[nr.To] = append(idx.legsOf[nr.To], leg)
		}
		fixups++
	}
	return fixups
}

/*
Compress contracts every node v that only passes traffic through: v has exactly two neighbours
u and w, is no barrier or traffic light, is not the via of a restriction, and both directions
u-v-w and w-v-u carry the same attributes. The edges u->v and v->w are merged into u->w, v goes
into the merged edge's geometry together with the cost of the segment ending at it, and v is
removed. Restrictions in turnRestrictions are rewritten in place so they keep pointing at the
edges they restrict.

conditionalRestrictions are not rewritten, so every node they refer to is protected instead.

A single pass over the nodes is enough: contraction never raises the degree of any node.
*/
func (gc *GraphCompressor) Compress(graph *NodeBasedGraph, barrierNodes, trafficLights []da.Index,
	turnRestrictions []da.TurnRestriction, conditionalRestrictions []da.ConditionalTurnRestriction,
	wayRestrictionMap *WayRestrictionMap) (CompressionStats, error) {

	stats := CompressionStats{
		NodesBefore: graph.NumberOfNodes(),
		EdgesBefore: graph.NumberOfDrivableEdges(),
	}

	protected := make([]bool, graph.NumberOfNodes())
	protect := func(v da.Index) {
		if int(v) < len(protected) {
			protected[v] = true
		}
	}
	for _, v := range barrierNodes {
		protect(v)
	}
	for _, v := range trafficLights {
		protect(v)
	}
	for _, r := range turnRestrictions {
		for _, v := range r.ViaNodes() {
			protect(v)
		}
	}
	for _, r := range conditionalRestrictions {
		for _, v := range r.Nodes() {
			protect(v)
		}
	}

	restrictions := newRestrictionIndex(turnRestrictions)

	removed := 0
	for i := 0; i < graph.NumberOfNodes(); i++ {
		v := da.Index(i)
		if protected[v] || wayRestrictionMap.IsViaWayEndpoint(v) {
			continue
		}
		if graph.Degree(v) != 2 {
			continue
		}

		adj := graph.AdjacentEdges(v)
		vu, vw := adj[0], adj[1]
		u, w := vu.Target, vw.Target
		if u == w || graph.FindEdge(u, w) >= 0 {
			continue
		}

		posUV := graph.FindEdge(u, v)
		posWV := graph.FindEdge(w, v)
		if posUV < 0 || posWV < 0 {
			return stats, errors.WithStack(util.WrapErrorf(util.ErrInvariant, util.ErrInvariantViolation,
				"edge into node %d has no reverse counterpart (neighbours %d and %d)", v, u, w))
		}
		uv := graph.edge(u, posUV)
		wv := graph.edge(w, posWV)

		if !uv.Data.IsCompatibleTo(vw.Data) || !wv.Data.IsCompatibleTo(vu.Data) {
			continue
		}

		mergeEdges(uv, v, vw)
		mergeEdges(wv, v, vu)
		graph.removeNode(v)
		removed++

		stats.RestrictionFixups += restrictions.fixup(v, u, w)
	}
	graph.sortAdjacency()

	stats.NodesAfter = stats.NodesBefore - removed
	stats.EdgesAfter = graph.NumberOfDrivableEdges()

	gc.metrics.compressedNodes.Add(float64(removed))
	gc.metrics.restrictionFixups.Add(float64(stats.RestrictionFixups))
	gc.metrics.nodes.WithLabelValues(STAGE_PREPARED).Set(float64(stats.NodesBefore))
	gc.metrics.nodes.WithLabelValues(STAGE_COMPRESSED).Set(float64(stats.NodesAfter))
	gc.metrics.edges.WithLabelValues(STAGE_PREPARED).Set(float64(stats.EdgesBefore))
	gc.metrics.edges.WithLabelValues(STAGE_COMPRESSED).Set(float64(stats.EdgesAfter))

	gc.logger.Sugar().Infof("compressed %d of %d nodes, edges %d -> %d, %d restriction legs rewritten",
		removed, stats.NodesBefore, stats.EdgesBefore, stats.EdgesAfter, stats.RestrictionFixups)
	if stats.NodesBefore > 0 {
		gc.logger.Sugar().Infof("node compression ratio: %.4f", float64(stats.NodesAfter)/float64(stats.NodesBefore))
	}
	return stats, nil
}

// mergeEdges extends first (ending at v) with second (starting at v).
func mergeEdges(first *AdjacentEdge, v da.Index, second AdjacentEdge) {
	lastWeight, lastDuration := lastSegment(*first)

	geometry := make([]da.GeometryPoint, 0, len(first.Geometry)+1+len(second.Geometry))
	geometry = append(geometry, first.Geometry...)
	geometry = append(geometry, da.NewGeometryPoint(v, lastWeight, lastDuration))
	geometry = append(geometry, second.Geometry...)

	first.Geometry = geometry
	first.Target = second.Target
	first.Data.Weight += second.Data.Weight
	first.Data.Duration += second.Data.Duration
}

// lastSegment is the cost of the segment between the last geometry point and the target.
func lastSegment(e AdjacentEdge) (da.EdgeWeight, da.EdgeDuration) {
	weight, duration := e.Data.Weight, e.Data.Duration
	for _, p := range e.Geometry {
		weight -= p.Weight
		duration -= p.Duration
	}
	return weight, duration
}
