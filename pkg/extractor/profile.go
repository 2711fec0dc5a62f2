package extractor

import (
	"math"

	"github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
)

// WayAttributes is what the profile decided for one way. A speed of 0 closes that direction.
type WayAttributes struct {
	ForwardSpeed  float64 // km/h
	BackwardSpeed float64 // km/h
	NameID        datastructure.NameID
	Roundabout    bool
}

func (a WayAttributes) IsAccessible() bool {
	return a.ForwardSpeed > 0 || a.BackwardSpeed > 0
}

// InternalWay is an accepted way as collected by the scan phase.
type InternalWay struct {
	ID         datastructure.OSMWayID
	Nodes      []datastructure.OSMNodeID
	Attributes WayAttributes
}

func NewInternalWay(id datastructure.OSMWayID, nodes []datastructure.OSMNodeID, attributes WayAttributes) InternalWay {
	return InternalWay{ID: id, Nodes: nodes, Attributes: attributes}
}

// Profile turns a segment's length and speed into routing costs.
type Profile interface {
	ProcessSegment(lengthMeters, speedKmh float64) (datastructure.EdgeWeight, datastructure.EdgeDuration)
}

// DurationProfile uses the travel time as weight.
type DurationProfile struct{}

func (DurationProfile) ProcessSegment(lengthMeters, speedKmh float64) (datastructure.EdgeWeight, datastructure.EdgeDuration) {
	duration := SegmentDuration(lengthMeters, speedKmh)
	return datastructure.EdgeWeight(duration), duration
}

// SegmentDuration is the travel time in deci-seconds, at least 1.
func SegmentDuration(lengthMeters, speedKmh float64) datastructure.EdgeDuration {
	if speedKmh <= 0 {
		return datastructure.EdgeDuration(datastructure.INVALID_WEIGHT)
	}
	deciSeconds := math.Round(lengthMeters * 10 / (speedKmh / 3.6))
	return datastructure.EdgeDuration(max(1, deciSeconds))
}
