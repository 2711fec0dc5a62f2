package extractor

import (
	"bytes"
	"path/filepath"
	"testing"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/storage/fileio"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeToBytes(t *testing.T, write func(w *fileio.Writer)) []byte {
	var buf bytes.Buffer
	w := fileio.NewWriter(&buf)
	write(w)
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func newBytesReader(b []byte) *fileio.Reader {
	return fileio.NewReader(bytes.NewReader(b), int64(len(b)))
}

func TestConditionalRestrictionsRoundTrip(t *testing.T) {
	rushHour := da.OpeningHours{
		Modifier: da.MODIFIER_OPEN,
		Times:    []da.TimeSpan{{From: 7 * 60, To: 9 * 60}, {From: 16 * 60, To: 18*60 + 30}},
		Weekdays: []da.WeekdayRange{{Weekdays: 0b0011111}},
	}
	winter := da.OpeningHours{
		Modifier: da.MODIFIER_CLOSED,
		Monthdays: []da.MonthdayRange{{
			From: da.Monthday{Month: 11, Day: 1},
			To:   da.Monthday{Month: 3, Day: 31},
		}},
	}
	night := da.OpeningHours{
		Modifier: da.MODIFIER_OFF,
		Times:    []da.TimeSpan{{From: 22 * 60, To: 6 * 60}},
	}

	cases := []struct {
		name         string
		restrictions []da.ConditionalTurnRestriction
	}{
		{
			name:         "no restrictions",
			restrictions: []da.ConditionalTurnRestriction{},
		},
		{
			name: "restriction without conditions",
			restrictions: []da.ConditionalTurnRestriction{
				da.NewConditionalTurnRestriction(nodeRestriction(1, 2, 3, false), []da.OpeningHours{}),
			},
		},
		{
			name: "single condition",
			restrictions: []da.ConditionalTurnRestriction{
				da.NewConditionalTurnRestriction(nodeRestriction(1, 2, 3, true), []da.OpeningHours{rushHour}),
			},
		},
		{
			name: "multiple conditions, both variants",
			restrictions: []da.ConditionalTurnRestriction{
				da.NewConditionalTurnRestriction(wayRestriction(1, 2, 3, 4, 5, 6, false),
					[]da.OpeningHours{rushHour, winter, night}),
				da.NewConditionalTurnRestriction(nodeRestriction(7, 8, 9, false), []da.OpeningHours{night}),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := encodeToBytes(t, func(w *fileio.Writer) {
				WriteConditionalRestrictions(w, tc.restrictions)
			})

			r := newBytesReader(encoded)
			decoded := ReadConditionalRestrictions(r)
			require.NoError(t, r.Finish())
			require.Len(t, decoded, len(tc.restrictions))

			for i := range decoded {
				assert.Equal(t, tc.restrictions[i].Restriction, decoded[i].Restriction)
				assert.Equal(t, tc.restrictions[i].IsOnly, decoded[i].IsOnly)
				assert.Len(t, decoded[i].Condition, len(tc.restrictions[i].Condition))
			}

			reencoded := encodeToBytes(t, func(w *fileio.Writer) {
				WriteConditionalRestrictions(w, decoded)
			})
			assert.Equal(t, encoded, reencoded)
		})
	}

	t.Run("condition contents", func(t *testing.T) {
		in := []da.ConditionalTurnRestriction{
			da.NewConditionalTurnRestriction(nodeRestriction(1, 2, 3, false), []da.OpeningHours{rushHour, winter}),
		}
		r := newBytesReader(encodeToBytes(t, func(w *fileio.Writer) {
			WriteConditionalRestrictions(w, in)
		}))
		out := ReadConditionalRestrictions(r)
		require.NoError(t, r.Finish())

		require.Len(t, out[0].Condition, 2)
		assert.Equal(t, rushHour.Times, out[0].Condition[0].Times)
		assert.Equal(t, rushHour.Weekdays, out[0].Condition[0].Weekdays)
		assert.Empty(t, out[0].Condition[0].Monthdays)
		assert.Equal(t, da.MODIFIER_CLOSED, out[0].Condition[1].Modifier)
		assert.Equal(t, winter.Monthdays, out[0].Condition[1].Monthdays)
	})
}

func TestReadRestrictionsCorrupt(t *testing.T) {
	t.Run("unknown flag bits", func(t *testing.T) {
		encoded := encodeToBytes(t, func(w *fileio.Writer) {
			w.WriteElementCount64(1)
			w.WriteUint8(0b1000_0000)
			w.WriteUint32(1)
			w.WriteUint32(2)
			w.WriteUint32(3)
		})
		r := newBytesReader(encoded)
		ReadRestrictions(r)
		err := r.Finish()
		require.Error(t, err)
		assert.Equal(t, util.ErrCorruptData, util.Code(err))
	})

	t.Run("count larger than stream", func(t *testing.T) {
		encoded := encodeToBytes(t, func(w *fileio.Writer) {
			w.WriteElementCount64(1000)
			w.WriteUint8(0)
		})
		r := newBytesReader(encoded)
		out := ReadRestrictions(r)
		assert.Empty(t, out)
		assert.Equal(t, util.ErrCorruptData, util.Code(r.Finish()))
	})

	t.Run("truncated record", func(t *testing.T) {
		encoded := encodeToBytes(t, func(w *fileio.Writer) {
			WriteRestrictions(w, []da.TurnRestriction{wayRestriction(1, 2, 3, 4, 5, 6, true)})
		})
		r := newBytesReader(encoded[:len(encoded)-2])
		ReadRestrictions(r)
		assert.Equal(t, util.ErrCorruptData, util.Code(r.Finish()))
	})

	t.Run("trailing bytes", func(t *testing.T) {
		encoded := encodeToBytes(t, func(w *fileio.Writer) {
			WriteRestrictions(w, []da.TurnRestriction{nodeRestriction(1, 2, 3, false)})
			w.WriteUint8(42)
		})
		r := newBytesReader(encoded)
		out := ReadRestrictions(r)
		require.Len(t, out, 1)
		assert.Equal(t, util.ErrCorruptData, util.Code(r.Finish()))
	})
}

func TestRestrictionsFileRoundTrip(t *testing.T) {
	restrictions := []da.TurnRestriction{
		nodeRestriction(1, 2, 3, false),
		wayRestriction(1, 2, 3, 4, 5, 6, true),
	}
	for _, compress := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "test.restrictions")
		require.NoError(t, WriteRestrictionsFile(path, compress, restrictions))

		got, err := ReadRestrictionsFile(path, compress)
		require.NoError(t, err)
		assert.Equal(t, restrictions, got)
	}
}

func TestNodesFileRoundTrip(t *testing.T) {
	nodes := []da.QueryNode{
		{OSMID: 100, Coord: da.NewCoordinate(-7.550248, 110.783467).ToFixed()},
		{OSMID: 300, Coord: da.NewCoordinate(-7.550353, 110.784579).ToFixed(), Barrier: true},
		{OSMID: 500, Coord: da.NewCoordinate(-7.551000, 110.785000).ToFixed(), TrafficLight: true},
	}
	path := filepath.Join(t.TempDir(), "test.nodes")
	require.NoError(t, WriteNodesFile(path, true, nodes, []da.Index{1}, []da.Index{2}))

	got, err := ReadNodesFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, nodes, got.Nodes)
	assert.Equal(t, []da.Index{1}, got.BarrierNodeIDs)
	assert.Equal(t, []da.Index{2}, got.TrafficLightIDs)

	t.Run("flag out of range", func(t *testing.T) {
		encoded := encodeToBytes(t, func(w *fileio.Writer) {
			WriteNodes(w, nodes, []da.Index{7}, nil)
		})
		r := newBytesReader(encoded)
		ReadNodes(r)
		assert.Equal(t, util.ErrCorruptData, util.Code(r.Finish()))
	})
}

func TestEdgesFileRoundTrip(t *testing.T) {
	g := NewNodeBasedGraph(4, []da.NodeBasedEdge{
		bidirectional(0, 1, 3),
		bidirectional(1, 2, 5),
		da.NewNodeBasedEdge(2, 3, 7, 7, true, false, true, 0, 2),
	})
	gc, _ := newTestCompressor()
	_, err := gc.Compress(g, nil, nil, nil, nil, emptyWayRestrictionMap(t))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "test.edges")
	require.NoError(t, WriteEdgesFile(path, false, g))

	got, err := ReadEdgesFile(path, false)
	require.NoError(t, err)
	require.Equal(t, g.Offsets(), got.Offsets)
	require.Len(t, got.Edges, g.NumberOfDrivableEdges())

	i := 0
	g.ForEachDrivableEdge(func(source da.Index, e AdjacentEdge) {
		rec := got.Edges[i]
		assert.Equal(t, source, rec.Source)
		assert.Equal(t, e.Target, rec.Target)
		assert.Equal(t, e.Data.Weight, rec.Weight)
		assert.Equal(t, e.Data.Duration, rec.Duration)
		assert.True(t, rec.Forward)
		assert.Equal(t, e.Data.Roundabout, rec.Roundabout)
		assert.Equal(t, e.Geometry, rec.Geometry)
		i++
	})

	for u := 0; u+1 < len(got.Offsets); u++ {
		for _, rec := range got.Edges[got.Offsets[u]:got.Offsets[u+1]] {
			assert.Equal(t, da.Index(u), rec.Source)
		}
	}
}

func TestNamesFileRoundTrip(t *testing.T) {
	names := da.NewNameTable()
	malioboro := names.GetID("Jalan Malioboro")
	names.GetID("Jalan Kaliurang")
	assert.Equal(t, malioboro, names.GetID("Jalan Malioboro"))

	path := filepath.Join(t.TempDir(), "test.names")
	require.NoError(t, WriteNamesFile(path, false, names))

	got, err := ReadNamesFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, names.Size(), got.Size())
	assert.Equal(t, "", got.GetName(0))
	assert.Equal(t, "Jalan Malioboro", got.GetName(malioboro))
	assert.Equal(t, malioboro, got.GetID("Jalan Malioboro"))

	t.Run("offsets past the char data", func(t *testing.T) {
		encoded := encodeToBytes(t, func(w *fileio.Writer) {
			w.WriteBytes([]byte("abc"))
			w.WriteUint32s([]uint32{0, 2, 5})
		})
		r := newBytesReader(encoded)
		ReadNames(r)
		assert.Equal(t, util.ErrCorruptData, util.Code(r.Finish()))
	})
}

func TestDuplicatedNodesFileRoundTrip(t *testing.T) {
	viaWays := []ViaWay{{ID: 0, From: 2, To: 4}, {ID: 3, From: 4, To: 2}}
	path := filepath.Join(t.TempDir(), "test.duplicated_nodes")
	require.NoError(t, WriteDuplicatedNodesFile(path, true, viaWays))

	got, err := ReadDuplicatedNodesFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, viaWays, got)
}
