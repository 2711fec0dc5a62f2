package extractor

import (
	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/storage/fileio"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/util"
)

// encoded sizes, used to bound element counts read from disk
const (
	nodeRecordSize           = 4 + 4 + 8
	minRestrictionRecordSize = 1 + 3*4
	minConditionRecordSize   = 1 + 3*8
	minEdgeRecordSize        = 5*4 + 8
	geometryPointSize        = 3 * 4
	duplicatedNodeRecordSize = 8 + 4 + 4
	timeSpanSize             = 2 * 4
	weekdayRangeSize         = 4
	monthdayRangeSize        = 4
)

// bit offsets inside the packed edge flags
const (
	edgeFlagForward    int32 = 0
	edgeFlagRoundabout int32 = 1
)

// EdgeRecord is one compressed edge as stored in the edge file.
type EdgeRecord struct {
	Source     da.Index
	Target     da.Index
	Weight     da.EdgeWeight
	Duration   da.EdgeDuration
	Forward    bool
	Roundabout bool
	NameID     da.NameID
	Geometry   []da.GeometryPoint
}

type NodesData struct {
	Nodes           []da.QueryNode
	BarrierNodeIDs  []da.Index
	TrafficLightIDs []da.Index
}

// EdgesData is the edge file: edges of node u are Edges[Offsets[u]:Offsets[u+1]].
type EdgesData struct {
	Offsets []uint32
	Edges   []EdgeRecord
}

func writeFile(path string, compress bool, write func(w *fileio.Writer)) error {
	fw, err := fileio.NewFileWriter(path, compress)
	if err != nil {
		return err
	}
	write(fw.Writer)
	return fw.Close()
}

func readFile[T any](path string, compressed bool, read func(r *fileio.Reader) T) (T, error) {
	var zero T
	fr, err := fileio.NewFileReader(path, compressed)
	if err != nil {
		return zero, err
	}
	defer fr.Close()

	data := read(fr.Reader)
	if err := fr.Finish(); err != nil {
		return zero, util.WrapErrorf(err, util.Code(err), "reading %s", path)
	}
	return data, nil
}

func indicesToUint32s(ids []da.Index) []uint32 {
	vals := make([]uint32, len(ids))
	for i, id := range ids {
		vals[i] = uint32(id)
	}
	return vals
}

func uint32sToIndices(vals []uint32) []da.Index {
	ids := make([]da.Index, len(vals))
	for i, v := range vals {
		ids[i] = da.Index(v)
	}
	return ids
}

// nodes

func WriteNodes(w *fileio.Writer, nodes []da.QueryNode, barrierNodeIDs, trafficLightIDs []da.Index) {
	w.WriteElementCount64(len(nodes))
	for _, n := range nodes {
		w.WriteInt32(n.Coord.Lat)
		w.WriteInt32(n.Coord.Lon)
		w.WriteInt64(int64(n.OSMID))
	}
	w.WriteUint32s(indicesToUint32s(barrierNodeIDs))
	w.WriteUint32s(indicesToUint32s(trafficLightIDs))
}

func ReadNodes(r *fileio.Reader) NodesData {
	count := r.ReadElementCount64(nodeRecordSize)
	data := NodesData{Nodes: make([]da.QueryNode, 0, r.Reserve(count))}
	for i := uint64(0); i < count && r.Err() == nil; i++ {
		lat := r.ReadInt32()
		lon := r.ReadInt32()
		osmID := r.ReadInt64()
		data.Nodes = append(data.Nodes, da.QueryNode{
			OSMID: da.OSMNodeID(osmID),
			Coord: da.FixedCoordinate{Lat: lat, Lon: lon},
		})
	}
	data.BarrierNodeIDs = uint32sToIndices(r.ReadUint32s())
	data.TrafficLightIDs = uint32sToIndices(r.ReadUint32s())
	if r.Err() != nil {
		return data
	}

	for _, id := range data.BarrierNodeIDs {
		if int(id) >= len(data.Nodes) {
			r.SetErr(util.NewErrorf(util.ErrCorruptData, "barrier node %d out of range", id))
			return data
		}
		data.Nodes[id].Barrier = true
	}
	for _, id := range data.TrafficLightIDs {
		if int(id) >= len(data.Nodes) {
			r.SetErr(util.NewErrorf(util.ErrCorruptData, "traffic light node %d out of range", id))
			return data
		}
		data.Nodes[id].TrafficLight = true
	}
	return data
}

func WriteNodesFile(path string, compress bool, nodes []da.QueryNode, barrierNodeIDs, trafficLightIDs []da.Index) error {
	return writeFile(path, compress, func(w *fileio.Writer) {
		WriteNodes(w, nodes, barrierNodeIDs, trafficLightIDs)
	})
}

func ReadNodesFile(path string, compressed bool) (NodesData, error) {
	return readFile(path, compressed, ReadNodes)
}

// turn restrictions

func writeNodeRestriction(w *fileio.Writer, r da.NodeRestriction) {
	w.WriteUint32(uint32(r.From))
	w.WriteUint32(uint32(r.Via))
	w.WriteUint32(uint32(r.To))
}

func readNodeRestriction(r *fileio.Reader) da.NodeRestriction {
	from := r.ReadUint32()
	via := r.ReadUint32()
	to := r.ReadUint32()
	return da.NewNodeRestriction(da.Index(from), da.Index(via), da.Index(to))
}

func writeTurnRestriction(w *fileio.Writer, tr da.TurnRestriction) {
	w.WriteUint8(tr.Flags())
	switch rr := tr.Restriction.(type) {
	case da.NodeRestriction:
		writeNodeRestriction(w, rr)
	case da.WayRestriction:
		writeNodeRestriction(w, rr.InRestriction)
		writeNodeRestriction(w, rr.OutRestriction)
	}
}

func readTurnRestriction(r *fileio.Reader) da.TurnRestriction {
	restrictionType, isOnly, err := da.ParseRestrictionFlags(r.ReadUint8())
	if err != nil {
		r.SetErr(err)
		return da.TurnRestriction{}
	}
	if restrictionType == da.WAY_RESTRICTION {
		in := readNodeRestriction(r)
		out := readNodeRestriction(r)
		return da.NewWayTurnRestriction(da.NewWayRestriction(in, out), isOnly)
	}
	return da.NewNodeTurnRestriction(readNodeRestriction(r), isOnly)
}

func WriteRestrictions(w *fileio.Writer, restrictions []da.TurnRestriction) {
	w.WriteElementCount64(len(restrictions))
	for _, tr := range restrictions {
		writeTurnRestriction(w, tr)
	}
}

func ReadRestrictions(r *fileio.Reader) []da.TurnRestriction {
	count := r.ReadElementCount64(minRestrictionRecordSize)
	restrictions := make([]da.TurnRestriction, 0, r.Reserve(count))
	for i := uint64(0); i < count && r.Err() == nil; i++ {
		restrictions = append(restrictions, readTurnRestriction(r))
	}
	return restrictions
}

func WriteRestrictionsFile(path string, compress bool, restrictions []da.TurnRestriction) error {
	return writeFile(path, compress, func(w *fileio.Writer) {
		WriteRestrictions(w, restrictions)
	})
}

func ReadRestrictionsFile(path string, compressed bool) ([]da.TurnRestriction, error) {
	return readFile(path, compressed, ReadRestrictions)
}

// conditional turn restrictions

func writeCondition(w *fileio.Writer, c da.OpeningHours) {
	w.WriteUint8(uint8(c.Modifier))

	w.WriteElementCount64(len(c.Times))
	for _, t := range c.Times {
		w.WriteInt32(t.From)
		w.WriteInt32(t.To)
	}

	w.WriteElementCount64(len(c.Weekdays))
	for _, wd := range c.Weekdays {
		w.WriteInt32(wd.Weekdays)
	}

	w.WriteElementCount64(len(c.Monthdays))
	for _, md := range c.Monthdays {
		w.WriteUint8(md.From.Month)
		w.WriteUint8(md.From.Day)
		w.WriteUint8(md.To.Month)
		w.WriteUint8(md.To.Day)
	}
}

func readCondition(r *fileio.Reader) da.OpeningHours {
	c := da.OpeningHours{}
	modifier := r.ReadUint8()
	if modifier > uint8(da.MODIFIER_UNKNOWN) {
		r.SetErr(util.NewErrorf(util.ErrCorruptData, "unknown condition modifier %d", modifier))
		return c
	}
	c.Modifier = da.Modifier(modifier)

	count := r.ReadElementCount64(timeSpanSize)
	c.Times = make([]da.TimeSpan, 0, r.Reserve(count))
	for i := uint64(0); i < count && r.Err() == nil; i++ {
		from := r.ReadInt32()
		to := r.ReadInt32()
		c.Times = append(c.Times, da.TimeSpan{From: from, To: to})
	}

	count = r.ReadElementCount64(weekdayRangeSize)
	c.Weekdays = make([]da.WeekdayRange, 0, r.Reserve(count))
	for i := uint64(0); i < count && r.Err() == nil; i++ {
		c.Weekdays = append(c.Weekdays, da.WeekdayRange{Weekdays: r.ReadInt32()})
	}

	count = r.ReadElementCount64(monthdayRangeSize)
	c.Monthdays = make([]da.MonthdayRange, 0, r.Reserve(count))
	for i := uint64(0); i < count && r.Err() == nil; i++ {
		var md da.MonthdayRange
		md.From.Month = r.ReadUint8()
		md.From.Day = r.ReadUint8()
		md.To.Month = r.ReadUint8()
		md.To.Day = r.ReadUint8()
		c.Monthdays = append(c.Monthdays, md)
	}
	return c
}

func WriteConditionalRestrictions(w *fileio.Writer, restrictions []da.ConditionalTurnRestriction) {
	w.WriteElementCount64(len(restrictions))
	for _, cr := range restrictions {
		writeTurnRestriction(w, cr.TurnRestriction)
		w.WriteElementCount64(len(cr.Condition))
		for _, c := range cr.Condition {
			writeCondition(w, c)
		}
	}
}

func ReadConditionalRestrictions(r *fileio.Reader) []da.ConditionalTurnRestriction {
	count := r.ReadElementCount64(minRestrictionRecordSize + 8)
	restrictions := make([]da.ConditionalTurnRestriction, 0, r.Reserve(count))
	for i := uint64(0); i < count && r.Err() == nil; i++ {
		tr := readTurnRestriction(r)
		conditionCount := r.ReadElementCount64(minConditionRecordSize)
		conditions := make([]da.OpeningHours, 0, r.Reserve(conditionCount))
		for j := uint64(0); j < conditionCount && r.Err() == nil; j++ {
			conditions = append(conditions, readCondition(r))
		}
		restrictions = append(restrictions, da.NewConditionalTurnRestriction(tr, conditions))
	}
	return restrictions
}

func WriteConditionalRestrictionsFile(path string, compress bool, restrictions []da.ConditionalTurnRestriction) error {
	return writeFile(path, compress, func(w *fileio.Writer) {
		WriteConditionalRestrictions(w, restrictions)
	})
}

func ReadConditionalRestrictionsFile(path string, compressed bool) ([]da.ConditionalTurnRestriction, error) {
	return readFile(path, compressed, ReadConditionalRestrictions)
}

// edges

// WriteEdges writes the drivable edges of the compressed graph grouped by source.
func WriteEdges(w *fileio.Writer, graph *NodeBasedGraph) {
	w.WriteUint32s(graph.Offsets())
	w.WriteElementCount64(graph.NumberOfDrivableEdges())
	graph.ForEachDrivableEdge(func(_ da.Index, e AdjacentEdge) {
		flags := int32(0)
		flags = util.BitPackIntBool(flags, true, edgeFlagForward)
		flags = util.BitPackIntBool(flags, e.Data.Roundabout, edgeFlagRoundabout)

		w.WriteUint32(uint32(e.Target))
		w.WriteInt32(int32(e.Data.Weight))
		w.WriteInt32(int32(e.Data.Duration))
		w.WriteInt32(flags)
		w.WriteUint32(uint32(e.Data.NameID))
		w.WriteElementCount64(len(e.Geometry))
		for _, p := range e.Geometry {
			w.WriteUint32(uint32(p.Node))
			w.WriteInt32(int32(p.Weight))
			w.WriteInt32(int32(p.Duration))
		}
	})
}

func ReadEdges(r *fileio.Reader) EdgesData {
	data := EdgesData{Offsets: r.ReadUint32s()}
	count := r.ReadElementCount64(minEdgeRecordSize)
	if r.Err() != nil {
		return data
	}
	if len(data.Offsets) == 0 || uint64(data.Offsets[len(data.Offsets)-1]) != count {
		r.SetErr(util.NewErrorf(util.ErrCorruptData, "edge offsets do not match %d edges", count))
		return data
	}

	data.Edges = make([]EdgeRecord, 0, r.Reserve(count))
	source := 0
	for i := uint64(0); i < count && r.Err() == nil; i++ {
		for source+1 < len(data.Offsets) && uint64(data.Offsets[source+1]) <= i {
			source++
		}
		e := EdgeRecord{Source: da.Index(source)}
		e.Target = da.Index(r.ReadUint32())
		e.Weight = da.EdgeWeight(r.ReadInt32())
		e.Duration = da.EdgeDuration(r.ReadInt32())
		flags := r.ReadInt32()
		_, e.Forward = util.BitUnpackIntBool(flags, edgeFlagForward)
		_, e.Roundabout = util.BitUnpackIntBool(flags, edgeFlagRoundabout)
		e.NameID = da.NameID(r.ReadUint32())

		geometryCount := r.ReadElementCount64(geometryPointSize)
		e.Geometry = make([]da.GeometryPoint, 0, r.Reserve(geometryCount))
		for j := uint64(0); j < geometryCount && r.Err() == nil; j++ {
			node := da.Index(r.ReadUint32())
			weight := da.EdgeWeight(r.ReadInt32())
			duration := da.EdgeDuration(r.ReadInt32())
			e.Geometry = append(e.Geometry, da.NewGeometryPoint(node, weight, duration))
		}
		data.Edges = append(data.Edges, e)
	}
	return data
}

func WriteEdgesFile(path string, compress bool, graph *NodeBasedGraph) error {
	return writeFile(path, compress, func(w *fileio.Writer) {
		WriteEdges(w, graph)
	})
}

func ReadEdgesFile(path string, compressed bool) (EdgesData, error) {
	return readFile(path, compressed, ReadEdges)
}

// names

func WriteNames(w *fileio.Writer, names *da.NameTable) {
	w.WriteBytes(names.CharData)
	w.WriteUint32s(names.Offsets)
}

func ReadNames(r *fileio.Reader) *da.NameTable {
	charData := r.ReadBytes()
	offsets := r.ReadUint32s()
	if r.Err() != nil {
		return da.NewNameTable()
	}
	if len(offsets) == 0 || offsets[0] != 0 || int(offsets[len(offsets)-1]) != len(charData) {
		r.SetErr(util.NewErrorf(util.ErrCorruptData, "name offsets do not partition %d bytes", len(charData)))
		return da.NewNameTable()
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			r.SetErr(util.NewErrorf(util.ErrCorruptData, "name offsets are not ascending at %d", i))
			return da.NewNameTable()
		}
	}
	return da.NewNameTableFromData(charData, offsets)
}

func WriteNamesFile(path string, compress bool, names *da.NameTable) error {
	return writeFile(path, compress, func(w *fileio.Writer) {
		WriteNames(w, names)
	})
}

func ReadNamesFile(path string, compressed bool) (*da.NameTable, error) {
	return readFile(path, compressed, ReadNames)
}

// duplicated nodes

func WriteDuplicatedNodes(w *fileio.Writer, viaWays []ViaWay) {
	w.WriteElementCount64(len(viaWays))
	for _, v := range viaWays {
		w.WriteUint64(uint64(v.ID))
		w.WriteUint32(uint32(v.From))
		w.WriteUint32(uint32(v.To))
	}
}

func ReadDuplicatedNodes(r *fileio.Reader) []ViaWay {
	count := r.ReadElementCount64(duplicatedNodeRecordSize)
	viaWays := make([]ViaWay, 0, r.Reserve(count))
	for i := uint64(0); i < count && r.Err() == nil; i++ {
		id := r.ReadUint64()
		from := r.ReadUint32()
		to := r.ReadUint32()
		viaWays = append(viaWays, ViaWay{ID: int(id), From: da.Index(from), To: da.Index(to)})
	}
	return viaWays
}

func WriteDuplicatedNodesFile(path string, compress bool, viaWays []ViaWay) error {
	return writeFile(path, compress, func(w *fileio.Writer) {
		WriteDuplicatedNodes(w, viaWays)
	})
}

func ReadDuplicatedNodesFile(path string, compressed bool) ([]ViaWay, error) {
	return readFile(path, compressed, ReadDuplicatedNodes)
}
