package datastructure

// NodeBasedEdge is one road segment between two internal nodes, as emitted by edge preparation.
// Forward allows Source->Target, Backward allows Target->Source.
type NodeBasedEdge struct {
	Source     Index
	Target     Index
	Weight     EdgeWeight
	Duration   EdgeDuration
	Forward    bool
	Backward   bool
	Roundabout bool
	NameID     NameID
	WayID      OSMWayID
}

func NewNodeBasedEdge(source, target Index, weight EdgeWeight, duration EdgeDuration,
	forward, backward, roundabout bool, nameID NameID, wayID OSMWayID) NodeBasedEdge {
	return NodeBasedEdge{
		Source:     source,
		Target:     target,
		Weight:     weight,
		Duration:   duration,
		Forward:    forward,
		Backward:   backward,
		Roundabout: roundabout,
		NameID:     nameID,
		WayID:      wayID,
	}
}

// GeometryPoint is an interior node of a compressed edge together with the cost of the
// segment that ends at it.
type GeometryPoint struct {
	Node     Index
	Weight   EdgeWeight
	Duration EdgeDuration
}

func NewGeometryPoint(node Index, weight EdgeWeight, duration EdgeDuration) GeometryPoint {
	return GeometryPoint{Node: node, Weight: weight, Duration: duration}
}

// WayStartEnd keeps the first and the last segment of an accepted way. Restriction
// resolution only needs to look at the ends of a way.
type WayStartEnd struct {
	WayID              OSMWayID
	FirstSegmentSource OSMNodeID
	FirstSegmentTarget OSMNodeID
	LastSegmentSource  OSMNodeID
	LastSegmentTarget  OSMNodeID
}

func NewWayStartEnd(wayID OSMWayID, nodes []OSMNodeID) WayStartEnd {
	n := len(nodes)
	return WayStartEnd{
		WayID:              wayID,
		FirstSegmentSource: nodes[0],
		FirstSegmentTarget: nodes[1],
		LastSegmentSource:  nodes[n-2],
		LastSegmentTarget:  nodes[n-1],
	}
}

// NeighbourOf returns the node next to endpoint on this way, if endpoint is one of the way's ends.
func (w WayStartEnd) NeighbourOf(endpoint OSMNodeID) (OSMNodeID, bool) {
	if w.FirstSegmentSource == endpoint {
		return w.FirstSegmentTarget, true
	}
	if w.LastSegmentTarget == endpoint {
		return w.LastSegmentSource, true
	}
	return 0, false
}

// OtherEnd returns the endpoint opposite to endpoint.
func (w WayStartEnd) OtherEnd(endpoint OSMNodeID) (OSMNodeID, bool) {
	if w.FirstSegmentSource == endpoint {
		return w.LastSegmentTarget, true
	}
	if w.LastSegmentTarget == endpoint {
		return w.FirstSegmentSource, true
	}
	return 0, false
}
