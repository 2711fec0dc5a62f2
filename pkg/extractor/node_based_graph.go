package extractor

import (
	"sort"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
)

// NodeBasedEdgeData is what the compressor compares and merges.
// Reversed means the edge is stored for adjacency only and cannot be driven in its own direction.
type NodeBasedEdgeData struct {
	Weight     da.EdgeWeight
	Duration   da.EdgeDuration
	Reversed   bool
	Roundabout bool
	NameID     da.NameID
}

// IsCompatibleTo reports whether two consecutive edges can be merged into one.
func (d NodeBasedEdgeData) IsCompatibleTo(other NodeBasedEdgeData) bool {
	return d.Reversed == other.Reversed && d.Roundabout == other.Roundabout && d.NameID == other.NameID
}

type AdjacentEdge struct {
	Target   da.Index
	Data     NodeBasedEdgeData
	Geometry []da.GeometryPoint
}

/*
NodeBasedGraph is a symmetric adjacency list over internal node ids. Every edge record s->t is
stored twice: s->t, reversed if it cannot be driven forward, and t->s, reversed if it cannot be
driven backward. Parallel edges are merged and self loops dropped.
*/
type NodeBasedGraph struct {
	adjacency [][]AdjacentEdge
}

func NewNodeBasedGraph(numberOfNodes int, edges []da.NodeBasedEdge) *NodeBasedGraph {
	g := &NodeBasedGraph{adjacency: make([][]AdjacentEdge, numberOfNodes)}

	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		data := NodeBasedEdgeData{
			Weight:     e.Weight,
			Duration:   e.Duration,
			Roundabout: e.Roundabout,
			NameID:     e.NameID,
		}

		forward := data
		forward.Reversed = !e.Forward
		g.insertEdge(e.Source, e.Target, forward)

		backward := data
		backward.Reversed = !e.Backward
		g.insertEdge(e.Target, e.Source, backward)
	}

	g.sortAdjacency()
	return g
}

func (g *NodeBasedGraph) sortAdjacency() {
	for u := range g.adjacency {
		adj := g.adjacency[u]
		sort.SliceStable(adj, func(i, j int) bool {
			return adj[i].Target < adj[j].Target
		})
	}
}

// insertEdge keeps at most one edge per (source, target): a drivable edge wins over a reversed
// one, then the cheaper one wins.
func (g *NodeBasedGraph) insertEdge(source, target da.Index, data NodeBasedEdgeData) {
	for i := range g.adjacency[source] {
		existing := &g.adjacency[source][i]
		if existing.Target != target {
			continue
		}
		switch {
		case existing.Data.Reversed && !data.Reversed:
			existing.Data = data
		case existing.Data.Reversed == data.Reversed && data.Weight < existing.Data.Weight:
			existing.Data = data
		}
		return
	}
	g.adjacency[source] = append(g.adjacency[source], AdjacentEdge{
		Target:   target,
		Data:     data,
		Geometry: make([]da.GeometryPoint, 0),
	})
}

func (g *NodeBasedGraph) NumberOfNodes() int {
	return len(g.adjacency)
}

// NumberOfEdges counts the stored directed edges, reversed ones included.
func (g *NodeBasedGraph) NumberOfEdges() int {
	n := 0
	for _, adj := range g.adjacency {
		n += len(adj)
	}
	return n
}

// NumberOfDrivableEdges counts the directed edges that can be driven.
func (g *NodeBasedGraph) NumberOfDrivableEdges() int {
	n := 0
	for _, adj := range g.adjacency {
		for _, e := range adj {
			if !e.Data.Reversed {
				n++
			}
		}
	}
	return n
}

func (g *NodeBasedGraph) Degree(u da.Index) int {
	return len(g.adjacency[u])
}

func (g *NodeBasedGraph) AdjacentEdges(u da.Index) []AdjacentEdge {
	return g.adjacency[u]
}

// FindEdge returns the position of u->v inside u's adjacency, or -1.
func (g *NodeBasedGraph) FindEdge(u, v da.Index) int {
	for i, e := range g.adjacency[u] {
		if e.Target == v {
			return i
		}
	}
	return -1
}

func (g *NodeBasedGraph) edge(u da.Index, pos int) *AdjacentEdge {
	return &g.adjacency[u][pos]
}

func (g *NodeBasedGraph) removeNode(v da.Index) {
	g.adjacency[v] = nil
}

// Offsets returns the CSR offsets of the drivable edges: edges of u are [offsets[u], offsets[u+1]).
func (g *NodeBasedGraph) Offsets() []uint32 {
	offsets := make([]uint32, len(g.adjacency)+1)
	for u, adj := range g.adjacency {
		count := uint32(0)
		for _, e := range adj {
			if !e.Data.Reversed {
				count++
			}
		}
		offsets[u+1] = offsets[u] + count
	}
	return offsets
}

// ForEachDrivableEdge visits drivable edges grouped by source, targets ascending.
func (g *NodeBasedGraph) ForEachDrivableEdge(handle func(source da.Index, e AdjacentEdge)) {
	for u, adj := range g.adjacency {
		for _, e := range adj {
			if e.Data.Reversed {
				continue
			}
			handle(da.Index(u), e)
		}
	}
}
