package extractor

import (
	"sort"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/util"
)

// ViaWay is the representative of one duplicated node: the first restriction of its group and
// the two ends of the via way.
type ViaWay struct {
	ID   int
	From da.Index
	To   da.Index
}

/*
WayRestrictionMap gives fast access to restrictions whose via element is a way, to tell which turns
may be restricted because of a way in between.

Restrictions are kept sorted by (in.from, in.via, out.via). A run of restrictions with the same key
enters the same via way from the same way, so they cannot be told apart by the graph and share one
duplicated node. duplicatedNodeGroups holds the first restriction position of every group followed
by the total size; the duplicated node id of a restriction is the group it falls into.

The map is immutable after construction.
*/
type WayRestrictionMap struct {
	duplicatedNodeGroups []int

	restrictionStarts map[da.NodePair][]int
	restrictionEnds   map[da.NodePair][]int
	viaWays           map[da.NodePair][]int
	viaWayNodes       map[da.Index]struct{}

	restrictionData []da.TurnRestriction
}

type duplicatedNodeKey struct {
	inFrom, inVia, outVia da.Index
}

func keyOf(r da.TurnRestriction) duplicatedNodeKey {
	way := r.AsWayRestriction()
	return duplicatedNodeKey{way.InRestriction.From, way.InRestriction.Via, way.OutRestriction.Via}
}

func (a duplicatedNodeKey) less(b duplicatedNodeKey) bool {
	if a.inFrom != b.inFrom {
		return a.inFrom < b.inFrom
	}
	if a.inVia != b.inVia {
		return a.inVia < b.inVia
	}
	return a.outVia < b.outVia
}

// NewWayRestrictionMap copies the way restrictions out of turnRestrictions and indexes them.
func NewWayRestrictionMap(turnRestrictions []da.TurnRestriction) (*WayRestrictionMap, error) {
	wm := &WayRestrictionMap{
		restrictionStarts: make(map[da.NodePair][]int),
		restrictionEnds:   make(map[da.NodePair][]int),
		viaWays:           make(map[da.NodePair][]int),
		viaWayNodes:       make(map[da.Index]struct{}),
		restrictionData:   make([]da.TurnRestriction, 0),
	}

	for _, r := range turnRestrictions {
		if r.Type() == da.WAY_RESTRICTION {
			wm.restrictionData = append(wm.restrictionData, r)
		}
	}

	sort.SliceStable(wm.restrictionData, func(i, j int) bool {
		return keyOf(wm.restrictionData[i]).less(keyOf(wm.restrictionData[j]))
	})

	// group boundaries: a new duplicated node starts wherever the key changes
	wm.duplicatedNodeGroups = make([]int, 0)
	if len(wm.restrictionData) > 0 {
		wm.duplicatedNodeGroups = append(wm.duplicatedNodeGroups, 0)
	}
	for i := 1; i < len(wm.restrictionData); i++ {
		if keyOf(wm.restrictionData[i-1]) != keyOf(wm.restrictionData[i]) {
			wm.duplicatedNodeGroups = append(wm.duplicatedNodeGroups, i)
		}
	}
	wm.duplicatedNodeGroups = append(wm.duplicatedNodeGroups, len(wm.restrictionData))

	if err := wm.checkGroups(); err != nil {
		return nil, err
	}

	for i, r := range wm.restrictionData {
		way := r.AsWayRestriction()
		in, out := way.InRestriction, way.OutRestriction

		start := da.NewNodePair(in.Via, in.To)
		wm.restrictionStarts[start] = append(wm.restrictionStarts[start], i)

		end := da.NewNodePair(out.From, out.Via)
		wm.restrictionEnds[end] = append(wm.restrictionEnds[end], i)

		via := da.NewNodePair(in.Via, out.Via)
		wm.viaWays[via] = append(wm.viaWays[via], i)

		wm.viaWayNodes[in.Via] = struct{}{}
		wm.viaWayNodes[out.Via] = struct{}{}
	}

	return wm, nil
}

func (wm *WayRestrictionMap) checkGroups() error {
	groups := wm.duplicatedNodeGroups
	for g := 0; g+1 < len(groups); g++ {
		begin, end := groups[g], groups[g+1]
		if begin >= end {
			return util.WrapErrorf(util.ErrInvariant, util.ErrInvariantViolation,
				"duplicated node group %d is empty [%d,%d)", g, begin, end)
		}
		key := keyOf(wm.restrictionData[begin])
		for i := begin + 1; i < end; i++ {
			if keyOf(wm.restrictionData[i]) != key {
				return util.WrapErrorf(util.ErrInvariant, util.ErrInvariantViolation,
					"restriction %d does not share the key of duplicated node group %d", i, g)
			}
		}
		if end < len(wm.restrictionData) && keyOf(wm.restrictionData[end]) == key {
			return util.WrapErrorf(util.ErrInvariant, util.ErrInvariantViolation,
				"duplicated node groups %d and %d share a key", g, g+1)
		}
	}
	return nil
}

// IsViaWay reports whether (from, to) is the via way of any restriction.
func (wm *WayRestrictionMap) IsViaWay(from, to da.Index) bool {
	_, ok := wm.viaWays[da.NewNodePair(from, to)]
	return ok
}

// IsStart reports whether turning from -> to enters the via way of a restriction.
func (wm *WayRestrictionMap) IsStart(from, to da.Index) bool {
	_, ok := wm.restrictionStarts[da.NewNodePair(from, to)]
	return ok
}

// IsEnd reports whether from -> to leaves the via way of a restriction.
func (wm *WayRestrictionMap) IsEnd(from, to da.Index) bool {
	_, ok := wm.restrictionEnds[da.NewNodePair(from, to)]
	return ok
}

// IsViaWayEndpoint reports whether node is one end of some via way.
func (wm *WayRestrictionMap) IsViaWayEndpoint(node da.Index) bool {
	_, ok := wm.viaWayNodes[node]
	return ok
}

// Size is the number of way restrictions.
func (wm *WayRestrictionMap) Size() int {
	return len(wm.restrictionData)
}

func (wm *WayRestrictionMap) NumberOfDuplicatedNodes() int {
	return len(wm.duplicatedNodeGroups) - 1
}

// DuplicatedNodeID returns the zero based duplicated node of the restriction at position restrictionID.
func (wm *WayRestrictionMap) DuplicatedNodeID(restrictionID int) int {
	return util.UpperBound(wm.duplicatedNodeGroups, restrictionID) - 1
}

// DuplicatedNodeRepresentatives returns one ViaWay per duplicated node.
func (wm *WayRestrictionMap) DuplicatedNodeRepresentatives() []ViaWay {
	result := make([]ViaWay, 0, wm.NumberOfDuplicatedNodes())
	for g := 0; g+1 < len(wm.duplicatedNodeGroups); g++ {
		id := wm.duplicatedNodeGroups[g]
		way := wm.restrictionData[id].AsWayRestriction()
		result = append(result, ViaWay{
			ID:   id,
			From: way.InRestriction.Via,
			To:   way.OutRestriction.Via,
		})
	}
	return result
}

// GetIDs returns the ascending positions of all restrictions with via way (from, to).
func (wm *WayRestrictionMap) GetIDs(from, to da.Index) []int {
	ids := wm.viaWays[da.NewNodePair(from, to)]
	result := make([]int, len(ids))
	copy(result, ids)
	sort.Ints(result)
	return result
}

/*
FileOrder lists the way restrictions in map order followed by the other restrictions of
turnRestrictions in their original order. Written in this order, restriction positions of the
map (DuplicatedNodeRepresentatives, GetIDs) are positions in the restriction file.
*/
func (wm *WayRestrictionMap) FileOrder(turnRestrictions []da.TurnRestriction) []da.TurnRestriction {
	ordered := make([]da.TurnRestriction, 0, len(turnRestrictions))
	ordered = append(ordered, wm.restrictionData...)
	for _, r := range turnRestrictions {
		if r.Type() != da.WAY_RESTRICTION {
			ordered = append(ordered, r)
		}
	}
	return ordered
}

func (wm *WayRestrictionMap) GetRestriction(id int) da.TurnRestriction {
	return wm.restrictionData[id]
}
