package osmparser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/extractor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

/*
	1 --- 2 --- 3 --- 4 --- 5
	            |
	            6 ... 7 (footway)

node 2 is a traffic light, node 4 a bollard. way 100 is only allowed into way 300 at node 3.
*/
const testOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="-7.5500" lon="110.7800" version="1"/>
  <node id="2" lat="-7.5500" lon="110.7810" version="1">
    <tag k="highway" v="traffic_signals"/>
  </node>
  <node id="3" lat="-7.5500" lon="110.7820" version="1"/>
  <node id="4" lat="-7.5500" lon="110.7830" version="1">
    <tag k="barrier" v="bollard"/>
  </node>
  <node id="5" lat="-7.5500" lon="110.7840" version="1"/>
  <node id="6" lat="-7.5510" lon="110.7820" version="1"/>
  <node id="7" lat="-7.5520" lon="110.7820" version="1"/>
  <node id="8" lat="-7.6000" lon="110.8000" version="1"/>
  <way id="100" version="1">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="secondary"/>
    <tag k="name" v="Jalan Slamet Riyadi"/>
  </way>
  <way id="200" version="1">
    <nd ref="3"/>
    <nd ref="4"/>
    <nd ref="5"/>
    <tag k="highway" v="residential"/>
    <tag k="oneway" v="yes"/>
  </way>
  <way id="300" version="1">
    <nd ref="3"/>
    <nd ref="6"/>
    <tag k="highway" v="service"/>
  </way>
  <way id="400" version="1">
    <nd ref="6"/>
    <nd ref="7"/>
    <tag k="highway" v="footway"/>
  </way>
  <relation id="900" version="1">
    <member type="way" ref="100" role="from"/>
    <member type="node" ref="3" role="via"/>
    <member type="way" ref="300" role="to"/>
    <tag k="type" v="restriction"/>
    <tag k="restriction" v="only_right_turn"/>
  </relation>
  <relation id="901" version="1">
    <member type="way" ref="100" role="from"/>
    <member type="node" ref="3" role="via"/>
    <member type="way" ref="200" role="to"/>
    <tag k="type" v="restriction"/>
    <tag k="restriction:conditional" v="no_straight_on @ (Mo-Fr 06:00-09:00)"/>
  </relation>
  <relation id="902" version="1">
    <member type="way" ref="100" role="outer"/>
    <tag k="type" v="multipolygon"/>
  </relation>
</osm>
`

func newTestContainers() *extractor.ExtractionContainers {
	return extractor.NewExtractionContainers(zap.NewNop(), extractor.NewMetrics(prometheus.NewRegistry()), 1)
}

func TestParseReader(t *testing.T) {
	ec := newTestContainers()
	stats, err := NewOSMParser(ec, zap.NewNop()).ParseReader(context.Background(), strings.NewReader(testOSM), XMLScanner)
	require.NoError(t, err)

	assert.Equal(t, ParseStats{
		Ways:                 4,
		AcceptedWays:         3,
		Nodes:                8,
		AcceptedNodes:        6,
		Restrictions:         2,
		AcceptedRestrictions: 2,
	}, stats)

	require.Len(t, ec.Ways, 3)
	assert.Equal(t, da.OSMWayID(100), ec.Ways[0].ID)
	assert.Equal(t, []da.OSMNodeID{1, 2, 3}, ec.Ways[0].Nodes)
	assert.Equal(t, "Jalan Slamet Riyadi", ec.Names.GetName(ec.Ways[0].Attributes.NameID))
	assert.Zero(t, ec.Ways[1].Attributes.BackwardSpeed)

	assert.Equal(t, []da.OSMNodeID{4}, ec.BarrierNodes)
	assert.Equal(t, []da.OSMNodeID{2}, ec.TrafficLights)

	require.Len(t, ec.Restrictions, 2)
	assert.Equal(t, da.NewInputNodeRestriction(100, 3, 300, true), ec.Restrictions[0])
	assert.True(t, ec.Restrictions[1].IsConditional())
	assert.False(t, ec.Restrictions[1].IsOnly)

	t.Run("prepared containers", func(t *testing.T) {
		dir := t.TempDir()
		config := extractor.NewConfig(filepath.Join(dir, "test"))
		require.NoError(t, ec.PrepareData(extractor.DurationProfile{}, config.OutputFiles(), false))

		// node 7 only belongs to the footway, node 8 to nothing
		assert.Equal(t, 6, ec.NumberOfNodes())
		assert.Len(t, ec.UnconditionalTurnRestrictions, 1)
		assert.Len(t, ec.ConditionalTurnRestrictions, 1)
	})
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.osm")
	require.NoError(t, os.WriteFile(path, []byte(testOSM), 0o644))

	ec := newTestContainers()
	stats, err := NewOSMParser(ec, zap.NewNop()).Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.AcceptedWays)

	_, err = NewOSMParser(newTestContainers(), zap.NewNop()).Parse(context.Background(), filepath.Join(t.TempDir(), "missing.osm.pbf"))
	require.Error(t, err)
}

func TestParseReaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOSMParser(newTestContainers(), zap.NewNop()).ParseReader(ctx, strings.NewReader(testOSM), XMLScanner)
	require.Error(t, err)
}

func TestScannerFor(t *testing.T) {
	assert.NotNil(t, ScannerFor("map.osm"))
	xml := ScannerFor("map.OSM")(context.Background(), strings.NewReader(testOSM))
	defer xml.Close()
	assert.True(t, xml.Scan())
}
