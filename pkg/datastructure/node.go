package datastructure

// ExternalNode is a node as collected by the scan phase, still keyed by its OSM id.
type ExternalNode struct {
	ID           OSMNodeID
	Coord        Coordinate
	Barrier      bool
	TrafficLight bool
}

func NewExternalNode(id OSMNodeID, lat, lon float64, barrier, trafficLight bool) ExternalNode {
	return ExternalNode{
		ID:           id,
		Coord:        NewCoordinate(lat, lon),
		Barrier:      barrier,
		TrafficLight: trafficLight,
	}
}

// UsedNode marks whether a raw node id is referenced by a way or a restriction.
type UsedNode struct {
	ID   OSMNodeID
	Used bool
}

// QueryNode is a node record after aggregation. Its position in the node slice is its Index.
type QueryNode struct {
	OSMID        OSMNodeID
	Coord        FixedCoordinate
	Barrier      bool
	TrafficLight bool
}
