package extractor

import (
	"context"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/kv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ExtractionResult is what a run leaves in memory after writing its files.
type ExtractionResult struct {
	Graph             *NodeBasedGraph
	WayRestrictionMap *WayRestrictionMap
	Components        Components
	Stats             CompressionStats
}

type Extractor struct {
	config  Config
	logger  *zap.Logger
	metrics *Metrics
}

func NewExtractor(config Config, logger *zap.Logger, metrics *Metrics) *Extractor {
	return &Extractor{config: config, logger: logger, metrics: metrics}
}

/*
Run turns the scanned containers into the output files:

 1. prepare nodes, edges and restrictions, write nodes, conditional restrictions and names
 2. index the way restrictions so their via ways are kept out of compression
 3. build and compress the node based graph, rewriting restrictions around removed nodes,
    then count its strongly connected components
 4. index the rewritten way restrictions and write edges, restrictions and duplicated nodes
 5. optionally build the spatial edge index and write the metrics textfile

ctx is only checked while building the spatial index.
*/
func (e *Extractor) Run(ctx context.Context, containers *ExtractionContainers, profile Profile) (*ExtractionResult, error) {
	if err := e.config.Validate(); err != nil {
		return nil, err
	}
	files := e.config.OutputFiles()

	if err := containers.PrepareData(profile, files, e.config.Compress); err != nil {
		return nil, errors.Wrap(err, "preparing data")
	}

	protection, err := NewWayRestrictionMap(containers.UnconditionalTurnRestrictions)
	if err != nil {
		return nil, errors.Wrap(err, "indexing way restrictions")
	}

	e.logger.Sugar().Infof("building node based graph...")
	graph := NewNodeBasedGraph(containers.NumberOfNodes(), containers.Edges)
	containers.Edges = nil

	compressor := NewGraphCompressor(e.logger, e.metrics)
	stats, err := compressor.Compress(graph, containers.BarrierNodeIDs, containers.TrafficLightIDs,
		containers.UnconditionalTurnRestrictions, containers.ConditionalTurnRestrictions, protection)
	if err != nil {
		return nil, errors.Wrap(err, "compressing graph")
	}

	components := StronglyConnectedComponents(graph)
	smallNodes := components.SmallComponentNodes(e.config.SmallComponentSize)
	e.metrics.components.Set(float64(components.Count()))
	e.metrics.smallComponentNodes.Set(float64(smallNodes))
	e.logger.Sugar().Infof("%d strongly connected components, %d nodes in components smaller than %d",
		components.Count(), smallNodes, e.config.SmallComponentSize)

	wayRestrictionMap, err := NewWayRestrictionMap(containers.UnconditionalTurnRestrictions)
	if err != nil {
		return nil, errors.Wrap(err, "indexing compressed way restrictions")
	}
	e.metrics.duplicatedNodes.Set(float64(wayRestrictionMap.NumberOfDuplicatedNodes()))
	e.logger.Sugar().Infof("%d way restrictions need %d duplicated nodes",
		wayRestrictionMap.Size(), wayRestrictionMap.NumberOfDuplicatedNodes())

	containers.UnconditionalTurnRestrictions = wayRestrictionMap.FileOrder(containers.UnconditionalTurnRestrictions)

	e.logger.Sugar().Infof("writing output files...")
	if err := WriteEdgesFile(files.Edges, e.config.Compress, graph); err != nil {
		return nil, err
	}
	if err := WriteRestrictionsFile(files.Restrictions, e.config.Compress, containers.UnconditionalTurnRestrictions); err != nil {
		return nil, err
	}
	if err := WriteDuplicatedNodesFile(files.DuplicatedNodes, e.config.Compress,
		wayRestrictionMap.DuplicatedNodeRepresentatives()); err != nil {
		return nil, err
	}

	if e.config.SpatialIndexDir != "" {
		if err := e.buildSpatialIndex(ctx, graph, containers.Nodes); err != nil {
			return nil, err
		}
	}

	if e.config.MetricsFile != "" {
		if err := e.metrics.WriteToTextfile(e.config.MetricsFile); err != nil {
			return nil, err
		}
	}

	return &ExtractionResult{
		Graph:             graph,
		WayRestrictionMap: wayRestrictionMap,
		Components:        components,
		Stats:             stats,
	}, nil
}

func (e *Extractor) buildSpatialIndex(ctx context.Context, graph *NodeBasedGraph, nodes []da.QueryNode) error {
	db, err := kv.OpenKVDB(e.config.SpatialIndexDir, e.logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.BuildH3IndexedEdges(ctx, IndexedEdges(graph, nodes))
}

// IndexedEdges lists the drivable edges with their full geometry, endpoints included.
func IndexedEdges(graph *NodeBasedGraph, nodes []da.QueryNode) []kv.IndexedEdge {
	edges := make([]kv.IndexedEdge, 0, graph.NumberOfDrivableEdges())
	graph.ForEachDrivableEdge(func(source da.Index, edge AdjacentEdge) {
		geometry := make([]da.Coordinate, 0, len(edge.Geometry)+2)
		geometry = append(geometry, nodes[source].Coord.ToCoordinate())
		for _, p := range edge.Geometry {
			geometry = append(geometry, nodes[p.Node].Coord.ToCoordinate())
		}
		geometry = append(geometry, nodes[edge.Target].Coord.ToCoordinate())

		edges = append(edges, kv.IndexedEdge{
			Source:   source,
			Target:   edge.Target,
			Weight:   edge.Data.Weight,
			Geometry: geometry,
		})
	})
	return edges
}
