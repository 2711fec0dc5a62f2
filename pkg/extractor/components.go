package extractor

import (
	"math"

	da "github.com/lintang-b-s/navigatorx-extractor/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-extractor/pkg/util"
)

const (
	INVALID_COMPONENT = math.MaxUint32

	DEFAULT_SMALL_COMPONENT_SIZE = 1000
)

// Components are the strongly connected components of the drivable edges. Nodes without any
// edge (contracted or isolated) belong to no component.
type Components struct {
	ComponentOf []uint32
	Sizes       []int
}

func (c Components) Count() int {
	return len(c.Sizes)
}

func (c Components) IsSmall(u da.Index, smallSize int) bool {
	id := c.ComponentOf[u]
	return id != INVALID_COMPONENT && c.Sizes[id] < smallSize
}

// SmallComponentNodes counts the nodes living in components with fewer than smallSize nodes.
func (c Components) SmallComponentNodes(smallSize int) int {
	n := 0
	for _, size := range c.Sizes {
		if size < smallSize {
			n += size
		}
	}
	return n
}

/*
StronglyConnectedComponents runs Kosaraju over the drivable edges of the graph: one dfs
collects the finish order, a second dfs over the reversed edges in reverse finish order
yields one component per tree. Both passes use an explicit stack.
*/
func StronglyConnectedComponents(graph *NodeBasedGraph) Components {
	n := graph.NumberOfNodes()
	forward := make([][]da.Index, n)
	backward := make([][]da.Index, n)
	graph.ForEachDrivableEdge(func(source da.Index, e AdjacentEdge) {
		forward[source] = append(forward[source], e.Target)
		backward[e.Target] = append(backward[e.Target], source)
	})

	order := make([]da.Index, 0, n)
	visited := make([]bool, n)
	for v := 0; v < n; v++ {
		if !visited[v] && graph.Degree(da.Index(v)) > 0 {
			dfs(da.Index(v), forward, visited, func(u da.Index) {
				order = append(order, u)
			})
		}
	}
	order = util.ReverseG(order)

	components := Components{
		ComponentOf: make([]uint32, n),
		Sizes:       make([]int, 0),
	}
	for i := range components.ComponentOf {
		components.ComponentOf[i] = INVALID_COMPONENT
	}

	visited = make([]bool, n)
	for _, v := range order {
		if visited[v] {
			continue
		}
		id := uint32(len(components.Sizes))
		size := 0
		dfs(v, backward, visited, func(u da.Index) {
			components.ComponentOf[u] = id
			size++
		})
		components.Sizes = append(components.Sizes, size)
	}
	return components
}

type dfsFrame struct {
	node da.Index
	next int
}

// dfs calls finish for every node reachable from start in post order.
func dfs(start da.Index, adj [][]da.Index, visited []bool, finish func(u da.Index)) {
	visited[start] = true
	stack := []dfsFrame{{node: start}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(adj[top.node]) {
			w := adj[top.node][top.next]
			top.next++
			if !visited[w] {
				visited[w] = true
				stack = append(stack, dfsFrame{node: w})
			}
			continue
		}
		finish(top.node)
		stack = stack[:len(stack)-1]
	}
}
