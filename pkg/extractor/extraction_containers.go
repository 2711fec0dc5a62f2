package extractor

import (
	"sort"

	"github.com/lintang-b-s/navigatorx-extractor/pkg/concurrent"
	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/geo"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/storage"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

/*
ExtractionContainers holds everything the scan of the source map collected. The data is
filtered, moved into the dense internal id space and finally written to disk.

The raw fields are filled by the scan phase (or by hand in tests). The prepared fields are owned
by the containers once PrepareData has run, and are handed over to the next stages by value.
*/
type ExtractionContainers struct {
	// raw, keyed by osm ids
	UsedNodeIDs   []da.UsedNode
	AllNodes      []da.ExternalNode
	BarrierNodes  []da.OSMNodeID
	TrafficLights []da.OSMNodeID
	Ways          []InternalWay
	WayStartEnds  []da.WayStartEnd
	Restrictions  []da.InputRestriction
	Names         *da.NameTable

	// prepared, keyed by internal ids
	usedNodeIDList                []da.OSMNodeID // sorted; position == internal id
	Nodes                         []da.QueryNode
	Edges                         []da.NodeBasedEdge
	BarrierNodeIDs                []da.Index
	TrafficLightIDs               []da.Index
	ConditionalTurnRestrictions   []da.ConditionalTurnRestriction
	UnconditionalTurnRestrictions []da.TurnRestriction

	workers int
	logger  *zap.Logger
	metrics *Metrics
}

func NewExtractionContainers(logger *zap.Logger, metrics *Metrics, workers int) *ExtractionContainers {
	return &ExtractionContainers{
		UsedNodeIDs:   make([]da.UsedNode, 0),
		AllNodes:      make([]da.ExternalNode, 0),
		BarrierNodes:  make([]da.OSMNodeID, 0),
		TrafficLights: make([]da.OSMNodeID, 0),
		Ways:          make([]InternalWay, 0),
		WayStartEnds:  make([]da.WayStartEnd, 0),
		Restrictions:  make([]da.InputRestriction, 0),
		Names:         da.NewNameTable(),
		workers:       workers,
		logger:        logger,
		metrics:       metrics,
	}
}

func (ec *ExtractionContainers) AddNode(node da.ExternalNode) {
	ec.AllNodes = append(ec.AllNodes, node)
	if node.Barrier {
		ec.BarrierNodes = append(ec.BarrierNodes, node.ID)
	}
	if node.TrafficLight {
		ec.TrafficLights = append(ec.TrafficLights, node.ID)
	}
}

// AddWay records an accepted way, marks its nodes as used and remembers its first and last segment.
func (ec *ExtractionContainers) AddWay(way InternalWay) {
	if len(way.Nodes) < 2 {
		return
	}
	for _, n := range way.Nodes {
		ec.UsedNodeIDs = append(ec.UsedNodeIDs, da.UsedNode{ID: n, Used: true})
	}
	ec.Ways = append(ec.Ways, way)
	ec.WayStartEnds = append(ec.WayStartEnds, da.NewWayStartEnd(way.ID, way.Nodes))
}

func (ec *ExtractionContainers) AddRestriction(r da.InputRestriction) {
	ec.Restrictions = append(ec.Restrictions, r)
	if r.Type == da.NODE_RESTRICTION {
		ec.UsedNodeIDs = append(ec.UsedNodeIDs, da.UsedNode{ID: r.ViaNode, Used: true})
	}
}

// PrepareData runs the preparation steps in the only valid order and writes the node,
// conditional restriction and name files.
func (ec *ExtractionContainers) PrepareData(profile Profile, files storage.OutputFiles, compress bool) error {
	ec.PrepareNodes()
	ec.PrepareEdges(profile)
	if err := ec.PrepareRestrictions(); err != nil {
		return err
	}

	if err := WriteNodesFile(files.Nodes, compress, ec.Nodes, ec.BarrierNodeIDs, ec.TrafficLightIDs); err != nil {
		return err
	}
	if err := WriteConditionalRestrictionsFile(files.ConditionalRestrictions, compress, ec.ConditionalTurnRestrictions); err != nil {
		return err
	}
	return WriteNamesFile(files.Names, compress, ec.Names)
}

// PrepareNodes assigns every used node with a known location a dense internal id equal to its
// rank among the sorted used osm ids, and builds the lookup table for InternalID.
func (ec *ExtractionContainers) PrepareNodes() {
	ec.logger.Sugar().Infof("sorting used nodes...")
	used := make([]da.OSMNodeID, 0, len(ec.UsedNodeIDs))
	for _, n := range ec.UsedNodeIDs {
		if n.Used {
			used = append(used, n.ID)
		}
	}
	used = util.SortedUnique(used)

	ec.logger.Sugar().Infof("sorting all nodes...")
	sort.SliceStable(ec.AllNodes, func(i, j int) bool {
		return ec.AllNodes[i].ID < ec.AllNodes[j].ID
	})

	ec.logger.Sugar().Infof("building node id map...")
	ec.usedNodeIDList = make([]da.OSMNodeID, 0, len(used))
	ec.Nodes = make([]da.QueryNode, 0, len(used))
	nodesWithoutLocation := 0
	nodeIt := 0
	for _, id := range used {
		for nodeIt < len(ec.AllNodes) && ec.AllNodes[nodeIt].ID < id {
			nodeIt++
		}
		if nodeIt == len(ec.AllNodes) || ec.AllNodes[nodeIt].ID != id {
			nodesWithoutLocation++
			continue
		}
		node := ec.AllNodes[nodeIt]
		ec.usedNodeIDList = append(ec.usedNodeIDList, id)
		ec.Nodes = append(ec.Nodes, da.QueryNode{
			OSMID:        id,
			Coord:        node.Coord.ToFixed(),
			Barrier:      node.Barrier,
			TrafficLight: node.TrafficLight,
		})
	}

	ec.BarrierNodeIDs = ec.remapNodeFlags(ec.BarrierNodes, func(n *da.QueryNode) { n.Barrier = true })
	ec.TrafficLightIDs = ec.remapNodeFlags(ec.TrafficLights, func(n *da.QueryNode) { n.TrafficLight = true })

	// raw node data is no longer needed
	ec.AllNodes = nil
	ec.UsedNodeIDs = nil

	ec.metrics.nodesWithoutLocation.Add(float64(nodesWithoutLocation))
	if nodesWithoutLocation > 0 {
		ec.logger.Sugar().Infof("%d used nodes have no location and were dropped", nodesWithoutLocation)
	}
	ec.logger.Sugar().Infof("processed %d nodes", len(ec.Nodes))
}

func (ec *ExtractionContainers) remapNodeFlags(ids []da.OSMNodeID, set func(n *da.QueryNode)) []da.Index {
	remapped := make([]da.Index, 0, len(ids))
	for _, id := range ids {
		internal := ec.InternalID(id)
		if internal == da.INVALID_INDEX {
			continue
		}
		remapped = append(remapped, internal)
	}
	remapped = util.SortedUnique(remapped)
	for _, internal := range remapped {
		set(&ec.Nodes[internal])
	}
	return remapped
}

// InternalID resolves an osm node id, or returns INVALID_INDEX for nodes that were dropped.
func (ec *ExtractionContainers) InternalID(id da.OSMNodeID) da.Index {
	pos := util.BinarySearch(ec.usedNodeIDList, id)
	if pos < 0 {
		return da.INVALID_INDEX
	}
	return da.Index(pos)
}

func (ec *ExtractionContainers) NumberOfNodes() int {
	return len(ec.Nodes)
}

type wayEdges struct {
	edges   []da.NodeBasedEdge
	dropped int
}

// PrepareEdges turns every way segment into edge records. Ways are processed in parallel, each into
// its own slot, and merged in way order.
func (ec *ExtractionContainers) PrepareEdges(profile Profile) {
	ec.logger.Sugar().Infof("preparing edges of %d ways...", len(ec.Ways))

	results := concurrent.ParallelMap(ec.workers, ec.Ways, func(way InternalWay) wayEdges {
		return ec.processWay(way, profile)
	})

	total, dropped := 0, 0
	for _, r := range results {
		total += len(r.edges)
		dropped += r.dropped
	}
	ec.Edges = make([]da.NodeBasedEdge, 0, total)
	for _, r := range results {
		ec.Edges = append(ec.Edges, r.edges...)
	}

	ec.metrics.droppedEdges.Add(float64(dropped))
	if dropped > 0 {
		ec.logger.Sugar().Infof("%d segments reference unused nodes and were dropped", dropped)
	}
	ec.logger.Sugar().Infof("processed %d edges", len(ec.Edges))
}

func (ec *ExtractionContainers) processWay(way InternalWay, profile Profile) wayEdges {
	res := wayEdges{edges: make([]da.NodeBasedEdge, 0, len(way.Nodes))}
	attrs := way.Attributes
	if !attrs.IsAccessible() {
		return res
	}

	for i := 1; i < len(way.Nodes); i++ {
		source := ec.InternalID(way.Nodes[i-1])
		target := ec.InternalID(way.Nodes[i])
		if source == da.INVALID_INDEX || target == da.INVALID_INDEX {
			res.dropped++
			continue
		}
		if source == target {
			continue
		}

		length := geo.SegmentLength(ec.Nodes[source].Coord.ToCoordinate(), ec.Nodes[target].Coord.ToCoordinate())

		switch {
		case attrs.ForwardSpeed > 0 && attrs.ForwardSpeed == attrs.BackwardSpeed:
			weight, duration := profile.ProcessSegment(length, attrs.ForwardSpeed)
			res.edges = append(res.edges, da.NewNodeBasedEdge(source, target, weight, duration,
				true, true, attrs.Roundabout, attrs.NameID, way.ID))
		default:
			// one record per open direction, each with its own costs
			if attrs.ForwardSpeed > 0 {
				weight, duration := profile.ProcessSegment(length, attrs.ForwardSpeed)
				res.edges = append(res.edges, da.NewNodeBasedEdge(source, target, weight, duration,
					true, false, attrs.Roundabout, attrs.NameID, way.ID))
			}
			if attrs.BackwardSpeed > 0 {
				weight, duration := profile.ProcessSegment(length, attrs.BackwardSpeed)
				res.edges = append(res.edges, da.NewNodeBasedEdge(target, source, weight, duration,
					true, false, attrs.Roundabout, attrs.NameID, way.ID))
			}
		}
	}
	return res
}

type resolvedRestriction struct {
	restriction da.TurnRestriction
	ok          bool
	reason      string
	err         error
}

// PrepareRestrictions resolves the way based restriction descriptors into internal node ids and
// splits them into conditional and unconditional restrictions. Unresolvable restrictions are
// dropped; an unknown restriction type is fatal.
func (ec *ExtractionContainers) PrepareRestrictions() error {
	ec.logger.Sugar().Infof("preparing %d turn restrictions...", len(ec.Restrictions))

	wayStartEnds := make(map[da.OSMWayID]da.WayStartEnd, len(ec.WayStartEnds))
	for _, w := range ec.WayStartEnds {
		wayStartEnds[w.WayID] = w
	}

	results := concurrent.ParallelMap(ec.workers, ec.Restrictions, func(r da.InputRestriction) resolvedRestriction {
		return ec.resolveRestriction(r, wayStartEnds)
	})

	ec.ConditionalTurnRestrictions = make([]da.ConditionalTurnRestriction, 0)
	ec.UnconditionalTurnRestrictions = make([]da.TurnRestriction, 0, len(results))
	dropped := 0
	for i, r := range results {
		if r.err != nil {
			return r.err
		}
		if !r.ok {
			dropped++
			ec.metrics.droppedRestrictions.WithLabelValues(r.reason).Inc()
			continue
		}
		if ec.Restrictions[i].IsConditional() {
			ec.ConditionalTurnRestrictions = append(ec.ConditionalTurnRestrictions,
				da.NewConditionalTurnRestriction(r.restriction, ec.Restrictions[i].Condition))
		} else {
			ec.UnconditionalTurnRestrictions = append(ec.UnconditionalTurnRestrictions, r.restriction)
		}
	}

	ec.metrics.restrictions.WithLabelValues("unconditional").Set(float64(len(ec.UnconditionalTurnRestrictions)))
	ec.metrics.restrictions.WithLabelValues("conditional").Set(float64(len(ec.ConditionalTurnRestrictions)))
	if dropped > 0 {
		ec.logger.Sugar().Infof("%d turn restrictions could not be resolved and were dropped", dropped)
	}
	ec.logger.Sugar().Infof("usable turn restrictions: %d unconditional, %d conditional",
		len(ec.UnconditionalTurnRestrictions), len(ec.ConditionalTurnRestrictions))
	return nil
}

func (ec *ExtractionContainers) resolveRestriction(r da.InputRestriction,
	wayStartEnds map[da.OSMWayID]da.WayStartEnd) resolvedRestriction {
	fromWay, okFrom := wayStartEnds[r.FromWay]
	toWay, okTo := wayStartEnds[r.ToWay]

	switch r.Type {
	case da.NODE_RESTRICTION:
		if !okFrom || !okTo {
			return resolvedRestriction{reason: DROP_REASON_UNRESOLVED_WAY}
		}
		from, fromConnected := fromWay.NeighbourOf(r.ViaNode)
		to, toConnected := toWay.NeighbourOf(r.ViaNode)
		if !fromConnected || !toConnected {
			return resolvedRestriction{reason: DROP_REASON_NOT_CONNECTED}
		}
		nr := da.NewNodeRestriction(ec.InternalID(from), ec.InternalID(r.ViaNode), ec.InternalID(to))
		if !nr.Valid() {
			return resolvedRestriction{reason: DROP_REASON_UNRESOLVED_NODE}
		}
		return resolvedRestriction{restriction: da.NewNodeTurnRestriction(nr, r.IsOnly), ok: true}

	case da.WAY_RESTRICTION:
		viaWay, okVia := wayStartEnds[r.ViaWay]
		if !okFrom || !okTo || !okVia {
			return resolvedRestriction{reason: DROP_REASON_UNRESOLVED_WAY}
		}
		// the from way has to touch one end of the via way, the to way the other one
		inVia, outVia, ok := connectViaWay(fromWay, viaWay, toWay)
		if !ok {
			return resolvedRestriction{reason: DROP_REASON_NOT_CONNECTED}
		}
		inFrom, _ := fromWay.NeighbourOf(inVia)
		inTo, _ := viaWay.NeighbourOf(inVia)
		outFrom, _ := viaWay.NeighbourOf(outVia)
		outTo, _ := toWay.NeighbourOf(outVia)

		in := da.NewNodeRestriction(ec.InternalID(inFrom), ec.InternalID(inVia), ec.InternalID(inTo))
		out := da.NewNodeRestriction(ec.InternalID(outFrom), ec.InternalID(outVia), ec.InternalID(outTo))
		if !in.Valid() || !out.Valid() {
			return resolvedRestriction{reason: DROP_REASON_UNRESOLVED_NODE}
		}
		return resolvedRestriction{restriction: da.NewWayTurnRestriction(da.NewWayRestriction(in, out), r.IsOnly), ok: true}
	}

	return resolvedRestriction{err: errors.WithStack(util.WrapErrorf(util.ErrInvariant, util.ErrInvariantViolation,
		"restriction from way %d has unknown type %s", r.FromWay, r.Type))}
}

func connectViaWay(fromWay, viaWay, toWay da.WayStartEnd) (da.OSMNodeID, da.OSMNodeID, bool) {
	for _, inVia := range []da.OSMNodeID{viaWay.FirstSegmentSource, viaWay.LastSegmentTarget} {
		if _, ok := fromWay.NeighbourOf(inVia); !ok {
			continue
		}
		outVia, _ := viaWay.OtherEnd(inVia)
		if outVia == inVia {
			continue
		}
		if _, ok := toWay.NeighbourOf(outVia); ok {
			return inVia, outVia, true
		}
	}
	return 0, 0, false
}
