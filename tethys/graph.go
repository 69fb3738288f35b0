// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tethys

// listEdge is one inserted list's two candidate buckets, one in each
// vertex partition V0/V1 (§4.5). weight is the list's length; flow is how
// much of it has been routed from its V0 bucket to its V1 bucket.
type listEdge struct {
	v0, v1 int
	weight int
	flow   int
}

// allocationGraph is the bipartite flow network used to balance list
// loads across buckets (§4.5). Every list defaults to being entirely
// credited to its V0 bucket; V0 vertices whose default load exceeds page
// capacity connect to a virtual source, V1 vertices connect to a virtual
// sink with capacity equal to page capacity, and list edges are the only
// channel between the two, so max flow from source to sink is exactly the
// largest amount of excess load that can be rebalanced onto V1 buckets.
type allocationGraph struct {
	pageCapacity int
	numV0, numV1 int
	edges        []*listEdge
	load0        []int // v0 vertex -> total list weight credited to it
	// adjacency: indices into edges, in insertion order, per vertex.
	incident0 [][]int
	incident1 [][]int
}

func newAllocationGraph(numV0, numV1, pageCapacity int) *allocationGraph {
	return &allocationGraph{
		pageCapacity: pageCapacity,
		numV0:        numV0,
		numV1:        numV1,
		load0:        make([]int, numV0),
		incident0:    make([][]int, numV0),
		incident1:    make([][]int, numV1),
	}
}

// addEdge records a list of the given weight hashed to (v0, v1).
func (g *allocationGraph) addEdge(v0, v1, weight int) int {
	idx := len(g.edges)
	g.edges = append(g.edges, &listEdge{v0: v0, v1: v1, weight: weight})
	g.incident0[v0] = append(g.incident0[v0], idx)
	g.incident1[v1] = append(g.incident1[v1], idx)
	g.load0[v0] += weight
	return idx
}

// source and sink are represented as sentinel vertex ids distinct from
// every real V0/V1 vertex: source = -1, sink = -2.
const (
	sourceVertex = -1
	sinkVertex   = -2
)

// maxflow saturates as much of V0's excess load onto V1 slack as an
// integral flow allows, via repeated BFS augmenting paths (Edmonds-Karp).
// It mutates each edge's flow field in place.
func (g *allocationGraph) maxflow() {
	for {
		parentEdge, parentVertex, found := g.bfsAugmentingPath()
		if !found {
			return
		}
		// Determine bottleneck capacity along the path from sink back to
		// source.
		bottleneck := g.pageCapacity // upper bound; tightened below
		v := sinkVertex
		for v != sourceVertex {
			pe := parentEdge[v]
			residual := g.residualCapacity(parentVertex[v], v, pe)
			if residual < bottleneck {
				bottleneck = residual
			}
			v = parentVertex[v]
		}
		// Apply the flow along the path.
		v = sinkVertex
		for v != sourceVertex {
			pe := parentEdge[v]
			g.applyFlow(parentVertex[v], v, pe, bottleneck)
			v = parentVertex[v]
		}
	}
}

// v1Key maps V1 vertex i into the single int id space used for BFS
// bookkeeping: V0 vertices are 0..numV0-1, V1 vertices are
// numV0..numV0+numV1-1, source/sink are the two sentinels above.
func (g *allocationGraph) v1Key(i int) int { return g.numV0 + i }

func (g *allocationGraph) residualCapacity(from, to int, edgeIdx int) int {
	switch {
	case from == sourceVertex:
		return g.sourceCap(to) - g.sourceFlow(to)
	case to == sinkVertex:
		return g.pageCapacity - g.sinkFlow(from)
	default:
		e := g.edges[edgeIdx]
		if from < g.numV0 {
			return e.weight - e.flow // v0 -> v1 forward residual
		}
		return e.flow // v1 -> v0 backward residual (undo)
	}
}

func (g *allocationGraph) applyFlow(from, to int, edgeIdx int, amount int) {
	if from == sourceVertex || to == sinkVertex {
		return
	}
	e := g.edges[edgeIdx]
	if from < g.numV0 {
		e.flow += amount
	} else {
		e.flow -= amount
	}
}

func (g *allocationGraph) sourceCap(v0Vertex int) int {
	excess := g.load0[v0Vertex] - g.pageCapacity
	if excess < 0 {
		return 0
	}
	return excess
}

func (g *allocationGraph) sourceFlow(v0Vertex int) int {
	total := 0
	for _, idx := range g.incident0[v0Vertex] {
		total += g.edges[idx].flow
	}
	return total
}

func (g *allocationGraph) sinkFlow(v1Vertex int) int {
	total := 0
	for _, idx := range g.incident1[v1Vertex] {
		total += g.edges[idx].flow
	}
	return total
}

// bfsAugmentingPath searches the residual graph for a path from source to
// sink. Vertex ids follow the scheme: real V0 vertices 0..numV0-1, real V1
// vertices numV0..numV0+numV1-1, plus the sourceVertex/sinkVertex
// sentinels. Returns, for every visited vertex, which edge and which
// predecessor vertex reached it.
func (g *allocationGraph) bfsAugmentingPath() (parentEdge map[int]int, parentVertex map[int]int, found bool) {
	parentEdge = make(map[int]int)
	parentVertex = make(map[int]int)
	visited := map[int]bool{sourceVertex: true}
	queue := []int{sourceVertex}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur == sourceVertex {
			for v0 := 0; v0 < g.numV0; v0++ {
				if visited[v0] {
					continue
				}
				if g.residualCapacity(sourceVertex, v0, -1) > 0 {
					visited[v0] = true
					parentVertex[v0] = sourceVertex
					queue = append(queue, v0)
				}
			}
			continue
		}

		if cur >= 0 && cur < g.numV0 {
			for _, idx := range g.incident0[cur] {
				e := g.edges[idx]
				to := g.v1Key(e.v1)
				if visited[to] {
					continue
				}
				if g.residualCapacity(cur, to, idx) > 0 {
					visited[to] = true
					parentVertex[to] = cur
					parentEdge[to] = idx
					queue = append(queue, to)
				}
			}
			continue
		}

		if cur >= g.numV0 {
			v1 := cur - g.numV0
			if g.residualCapacity(cur, sinkVertex, -1) > 0 && !visited[sinkVertex] {
				visited[sinkVertex] = true
				parentVertex[sinkVertex] = cur
				queue = append(queue, sinkVertex)
			}
			for _, idx := range g.incident1[v1] {
				e := g.edges[idx]
				from := e.v0
				if visited[from] {
					continue
				}
				if g.residualCapacity(cur, from, idx) > 0 {
					visited[from] = true
					parentVertex[from] = cur
					parentEdge[from] = idx
					queue = append(queue, from)
				}
			}
		}
	}

	return parentEdge, parentVertex, visited[sinkVertex]
}
