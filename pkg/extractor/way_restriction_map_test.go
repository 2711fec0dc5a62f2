package extractor

import (
	"sort"
	"testing"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wayRestriction(inFrom, inVia, inTo, outFrom, outVia, outTo da.Index, isOnly bool) da.TurnRestriction {
	return da.NewWayTurnRestriction(da.NewWayRestriction(
		da.NewNodeRestriction(inFrom, inVia, inTo),
		da.NewNodeRestriction(outFrom, outVia, outTo),
	), isOnly)
}

func nodeRestriction(from, via, to da.Index, isOnly bool) da.TurnRestriction {
	return da.NewNodeTurnRestriction(da.NewNodeRestriction(from, via, to), isOnly)
}

/*
via way 2-3-4 is entered from 1 and from 9.

	1               5
	 \             /
	  2 --- 3 --- 4
	 /             \
	9               6
*/
func testWayRestrictions() []da.TurnRestriction {
	return []da.TurnRestriction{
		wayRestriction(9, 2, 3, 3, 4, 6, false),
		nodeRestriction(1, 2, 9, false),
		wayRestriction(1, 2, 3, 3, 4, 5, false),
		wayRestriction(1, 2, 3, 3, 4, 6, true),
		wayRestriction(6, 4, 3, 3, 2, 1, false),
	}
}

func TestWayRestrictionMapGroups(t *testing.T) {
	wm, err := NewWayRestrictionMap(testWayRestrictions())
	require.NoError(t, err)

	// the node restriction is not indexed
	assert.Equal(t, 4, wm.Size())
	// keys: (1,2,4) x2, (6,4,2), (9,2,4)
	assert.Equal(t, 3, wm.NumberOfDuplicatedNodes())

	keyOfID := func(id int) duplicatedNodeKey {
		return keyOf(wm.GetRestriction(id))
	}

	for i := 0; i < wm.Size(); i++ {
		for j := 0; j < wm.Size(); j++ {
			if keyOfID(i) == keyOfID(j) {
				assert.Equal(t, wm.DuplicatedNodeID(i), wm.DuplicatedNodeID(j), "restrictions %d and %d", i, j)
			} else {
				assert.NotEqual(t, wm.DuplicatedNodeID(i), wm.DuplicatedNodeID(j), "restrictions %d and %d", i, j)
			}
		}
	}

	t.Run("sorted by key, stable inside a group", func(t *testing.T) {
		for i := 1; i < wm.Size(); i++ {
			assert.False(t, keyOfID(i).less(keyOfID(i-1)))
		}
		first := wm.GetRestriction(0).AsWayRestriction()
		second := wm.GetRestriction(1).AsWayRestriction()
		assert.Equal(t, da.Index(5), first.OutRestriction.To)
		assert.Equal(t, da.Index(6), second.OutRestriction.To)
	})

	t.Run("representatives", func(t *testing.T) {
		reps := wm.DuplicatedNodeRepresentatives()
		require.Len(t, reps, wm.NumberOfDuplicatedNodes())
		for g, rep := range reps {
			assert.Equal(t, g, wm.DuplicatedNodeID(rep.ID))
			way := wm.GetRestriction(rep.ID).AsWayRestriction()
			assert.Equal(t, way.InRestriction.Via, rep.From)
			assert.Equal(t, way.OutRestriction.Via, rep.To)
		}
		assert.Equal(t, ViaWay{ID: 0, From: 2, To: 4}, reps[0])
		assert.Equal(t, ViaWay{ID: 2, From: 4, To: 2}, reps[1])
		assert.Equal(t, ViaWay{ID: 3, From: 2, To: 4}, reps[2])
	})
}

func TestWayRestrictionMapFileOrder(t *testing.T) {
	restrictions := testWayRestrictions()
	wm, err := NewWayRestrictionMap(restrictions)
	require.NoError(t, err)

	ordered := wm.FileOrder(restrictions)
	require.Len(t, ordered, len(restrictions))
	for i := 0; i < wm.Size(); i++ {
		assert.Equal(t, wm.GetRestriction(i), ordered[i])
	}
	assert.Equal(t, nodeRestriction(1, 2, 9, false), ordered[wm.Size()])

	for _, rep := range wm.DuplicatedNodeRepresentatives() {
		assert.Equal(t, rep.From, ordered[rep.ID].AsWayRestriction().InRestriction.Via)
	}
}

func TestWayRestrictionMapLookups(t *testing.T) {
	wm, err := NewWayRestrictionMap(testWayRestrictions())
	require.NoError(t, err)

	assert.True(t, wm.IsViaWay(2, 4))
	assert.True(t, wm.IsViaWay(4, 2))
	assert.False(t, wm.IsViaWay(2, 3))

	assert.True(t, wm.IsStart(2, 3))
	assert.True(t, wm.IsStart(4, 3))
	assert.False(t, wm.IsStart(3, 2))

	assert.True(t, wm.IsEnd(3, 4))
	assert.True(t, wm.IsEnd(3, 2))
	assert.False(t, wm.IsEnd(4, 3))

	assert.True(t, wm.IsViaWayEndpoint(2))
	assert.True(t, wm.IsViaWayEndpoint(4))
	assert.False(t, wm.IsViaWayEndpoint(3))

	t.Run("GetIDs", func(t *testing.T) {
		ids := wm.GetIDs(2, 4)
		assert.Equal(t, []int{0, 1, 3}, ids)
		assert.True(t, sort.IntsAreSorted(ids))
		for _, id := range ids {
			way := wm.GetRestriction(id).AsWayRestriction()
			assert.Equal(t, da.Index(2), way.InRestriction.Via)
			assert.Equal(t, da.Index(4), way.OutRestriction.Via)
		}

		assert.Equal(t, []int{2}, wm.GetIDs(4, 2))
		assert.Empty(t, wm.GetIDs(7, 8))
	})
}

func TestWayRestrictionMapEmpty(t *testing.T) {
	wm, err := NewWayRestrictionMap([]da.TurnRestriction{nodeRestriction(0, 1, 2, false)})
	require.NoError(t, err)

	assert.Equal(t, 0, wm.Size())
	assert.Equal(t, 0, wm.NumberOfDuplicatedNodes())
	assert.Empty(t, wm.DuplicatedNodeRepresentatives())
	assert.False(t, wm.IsViaWay(0, 1))
	assert.Empty(t, wm.GetIDs(0, 1))
}

func TestWayRestrictionMapDoesNotShareInput(t *testing.T) {
	input := []da.TurnRestriction{wayRestriction(1, 2, 3, 3, 4, 5, false)}
	wm, err := NewWayRestrictionMap(input)
	require.NoError(t, err)

	input[0] = wayRestriction(7, 7, 7, 7, 7, 7, false)
	assert.Equal(t, da.Index(1), wm.GetRestriction(0).AsWayRestriction().InRestriction.From)
}
