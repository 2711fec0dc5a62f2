package extractor

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	STAGE_PREPARED   = "prepared"
	STAGE_COMPRESSED = "compressed"

	DROP_REASON_UNRESOLVED_NODE = "unresolved_node"
	DROP_REASON_UNRESOLVED_WAY  = "unresolved_way"
	DROP_REASON_NOT_CONNECTED   = "not_connected"
)

type Metrics struct {
	registry             *prometheus.Registry
	nodesWithoutLocation prometheus.Counter
	droppedEdges         prometheus.Counter
	droppedRestrictions  *prometheus.CounterVec
	restrictions         *prometheus.GaugeVec
	nodes                *prometheus.GaugeVec
	edges                *prometheus.GaugeVec
	duplicatedNodes      prometheus.Gauge
	restrictionFixups    prometheus.Counter
	compressedNodes      prometheus.Counter
	components           prometheus.Gauge
	smallComponentNodes  prometheus.Gauge
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		nodesWithoutLocation: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "extractor",
			Name:      "nodes_without_location_total",
			Help:      "Used node ids without a node record in the source map.",
		}),
		droppedEdges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "extractor",
			Name:      "dropped_segments_total",
			Help:      "Way segments dropped because an endpoint was not a used node.",
		}),
		droppedRestrictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "extractor",
			Name:      "dropped_restrictions_total",
			Help:      "Turn restrictions dropped during resolution.",
		}, []string{"reason"}),
		restrictions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "extractor",
			Name:      "restrictions",
			Help:      "Resolved turn restrictions.",
		}, []string{"kind"}),
		nodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "extractor",
			Name:      "graph_nodes",
			Help:      "Nodes of the node based graph.",
		}, []string{"stage"}),
		edges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "extractor",
			Name:      "graph_edges",
			Help:      "Directed edges of the node based graph.",
		}, []string{"stage"}),
		duplicatedNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "extractor",
			Name:      "way_restriction_duplicated_nodes",
			Help:      "Duplicated via-way nodes needed by way restrictions.",
		}),
		restrictionFixups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "extractor",
			Name:      "restriction_fixups_total",
			Help:      "Restriction legs rewritten while compressing the graph.",
		}),
		compressedNodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "extractor",
			Name:      "compressed_nodes_total",
			Help:      "Nodes contracted by the graph compressor.",
		}),
		components: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "extractor",
			Name:      "strongly_connected_components",
			Help:      "Strongly connected components of the compressed graph.",
		}),
		smallComponentNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "extractor",
			Name:      "small_component_nodes",
			Help:      "Nodes of the compressed graph inside components below the small component size.",
		}),
	}

	reg.MustRegister(m.nodesWithoutLocation, m.droppedEdges, m.droppedRestrictions, m.restrictions,
		m.nodes, m.edges, m.duplicatedNodes, m.restrictionFixups, m.compressedNodes,
		m.components, m.smallComponentNodes)
	return m
}

func (m *Metrics) WriteToTextfile(path string) error {
	err := prometheus.WriteToTextfile(path, m.registry)
	return errors.Wrapf(err, "writing metrics to %s", path)
}
