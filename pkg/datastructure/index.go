package datastructure

import "math"

// Index is a dense internal node id. It is the position of the node inside every
// node-indexed slice of one preprocessing run and is never interchangeable with an OSMNodeID.
type Index uint32

// OSMNodeID is the node id as it appears in the source map.
type OSMNodeID int64

type OSMWayID int64

// NameID indexes the name table.
type NameID uint32

// EdgeWeight and EdgeDuration are in deci-seconds.
type EdgeWeight int32

type EdgeDuration int32

const (
	INVALID_INDEX  Index = math.MaxUint32
	INVALID_WEIGHT       = EdgeWeight(math.MaxInt32)

	COORDINATE_PRECISION = 1e6
)

// NodePair is an ordered (from, to) pair of internal node ids.
type NodePair struct {
	From Index
	To   Index
}

func NewNodePair(from, to Index) NodePair {
	return NodePair{From: from, To: to}
}
