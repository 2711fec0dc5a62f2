package kv

import (
	"context"
	"testing"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildH3IndexedEdges(t *testing.T) {
	db, err := OpenKVDB("", zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	edges := []IndexedEdge{
		{
			Source: 0, Target: 1, Weight: 120,
			Geometry: []da.Coordinate{
				da.NewCoordinate(-7.550248, 110.783467),
				da.NewCoordinate(-7.550300, 110.784000),
				da.NewCoordinate(-7.550353, 110.784579),
			},
		},
		{
			Source: 1, Target: 0, Weight: 120,
			Geometry: []da.Coordinate{
				da.NewCoordinate(-7.550353, 110.784579),
				da.NewCoordinate(-7.550248, 110.783467),
			},
		},
		{
			Source: 2, Target: 3, Weight: 50,
			Geometry: []da.Coordinate{
				da.NewCoordinate(-7.760000, 110.370000),
				da.NewCoordinate(-7.761000, 110.371000),
			},
		},
	}

	require.NoError(t, db.BuildH3IndexedEdges(context.Background(), edges))

	t.Run("edges are stored under the cell of their first point", func(t *testing.T) {
		got, err := db.GetEdgesInCell(-7.550248, 110.783467)
		require.NoError(t, err)
		require.NotEmpty(t, got)

		found := false
		for _, e := range got {
			if e.Source == 0 && e.Target == 1 {
				found = true
				assert.Equal(t, int32(120), e.Weight)
				coords, err := e.Coordinates()
				require.NoError(t, err)
				require.Len(t, coords, 3)
				assert.InDelta(t, -7.550248, coords[0].Lat, 1e-5)
				assert.InDelta(t, 110.784579, coords[2].Lon, 1e-5)
			}
		}
		assert.True(t, found)
	})

	t.Run("empty cell", func(t *testing.T) {
		got, err := db.GetEdgesInCell(52.52, 13.405)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("nearest edges", func(t *testing.T) {
		got, err := db.GetNearestEdges(-7.76, 110.37, 0.05, 3)
		require.NoError(t, err)
		assert.NotEmpty(t, got)

		_, err = db.GetNearestEdges(52.52, 13.405, 0.05, 1)
		assert.ErrorIs(t, err, ErrEdgesNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, db.BuildH3IndexedEdges(ctx, edges))
	})
}
