package extractor

import (
	"testing"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
0 --> 1 --> 2 <-> 3
^     |
|     v
+---- 4         5
*/
func TestStronglyConnectedComponents(t *testing.T) {
	g := NewNodeBasedGraph(6, []da.NodeBasedEdge{
		oneway(0, 1, 1),
		oneway(1, 2, 1),
		oneway(1, 4, 1),
		oneway(2, 3, 1),
		oneway(3, 2, 1),
		oneway(4, 0, 1),
	})

	components := StronglyConnectedComponents(g)
	require.Equal(t, 2, components.Count())
	assert.Equal(t, []int{3, 2}, components.Sizes)

	assert.Equal(t, components.ComponentOf[0], components.ComponentOf[1])
	assert.Equal(t, components.ComponentOf[0], components.ComponentOf[4])
	assert.Equal(t, components.ComponentOf[2], components.ComponentOf[3])
	assert.NotEqual(t, components.ComponentOf[0], components.ComponentOf[2])
	assert.Equal(t, uint32(INVALID_COMPONENT), components.ComponentOf[5])

	t.Run("small components", func(t *testing.T) {
		assert.Equal(t, 2, components.SmallComponentNodes(3))
		assert.Equal(t, 5, components.SmallComponentNodes(4))
		assert.True(t, components.IsSmall(2, 3))
		assert.False(t, components.IsSmall(0, 3))
		assert.False(t, components.IsSmall(5, 3))
	})
}

func TestStronglyConnectedComponentsAfterCompression(t *testing.T) {
	g := NewNodeBasedGraph(5, []da.NodeBasedEdge{
		bidirectional(0, 1, 1),
		bidirectional(1, 2, 1),
		bidirectional(2, 3, 1),
		oneway(3, 4, 1),
	})
	gc, _ := newTestCompressor()
	_, err := gc.Compress(g, nil, nil, nil, nil, emptyWayRestrictionMap(t))
	require.NoError(t, err)

	components := StronglyConnectedComponents(g)
	// the contracted chain nodes belong to no component, the dead end 4 is a component on its own
	assert.Equal(t, uint32(INVALID_COMPONENT), components.ComponentOf[1])
	assert.Equal(t, uint32(INVALID_COMPONENT), components.ComponentOf[2])
	assert.ElementsMatch(t, []int{2, 1}, components.Sizes)
	assert.Equal(t, components.ComponentOf[0], components.ComponentOf[3])
}
