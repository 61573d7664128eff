// This package holds the contact network a simulation runs on.  Graphs are
// generated with gonum (https://www.gonum.org/) and then frozen into a dense,
// id-indexed adjacency list so that neighbor lookups are cheap and always come
// back in the same order.
package network

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/graphs/gen"
	"gonum.org/v1/gonum/graph/simple"
)

var (
	ErrInvalidOrder       = errors.New("network: graph must have at least one vertex")
	ErrInvalidProbability = errors.New("network: edge probability must be in [0,1]")
	ErrInvalidEdge        = errors.New("network: invalid edge")
)

// an undirected edge; Source is always the smaller id
type Edge struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// Graph is an immutable undirected simple graph over vertices 0..n-1.
type Graph struct {
	adj   [][]int
	edges []Edge
}

// Generate samples a binomial (Erdős–Rényi) random graph G(n,p): every one of
// the n(n-1)/2 possible edges is present independently with probability p.
// The same source state always yields the same graph.
func Generate(n int, p float64, src rand.Source) (*Graph, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n=%d", ErrInvalidOrder, n)
	}
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: p=%v", ErrInvalidProbability, p)
	}

	g := simple.NewUndirectedGraph()
	if err := gen.Gnp(g, n, p, src); err != nil {
		return nil, fmt.Errorf("network: gnp: %w", err)
	}
	return fromGonum(g)
}

// FromEdges builds a graph of order n from an explicit edge list.  Self loops
// and out of range endpoints are rejected; duplicate edges are collapsed.
func FromEdges(n int, edges []Edge) (*Graph, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n=%d", ErrInvalidOrder, n)
	}
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, e := range edges {
		if e.Source == e.Target || e.Source < 0 || e.Target < 0 || e.Source >= n || e.Target >= n {
			return nil, fmt.Errorf("%w: (%d,%d) in graph of order %d", ErrInvalidEdge, e.Source, e.Target, n)
		}
		g.SetEdge(g.NewEdge(simple.Node(int64(e.Source)), simple.Node(int64(e.Target))))
	}
	return fromGonum(g)
}

// freeze a gonum graph.  gonum hands out nodes and neighbors in map order, so
// vertex ids are ranked and every neighbor list is sorted.
func fromGonum(g graph.Undirected) (*Graph, error) {
	nodes := graph.NodesOf(g.Nodes())
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID()
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	index := make(map[int64]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	out := &Graph{adj: make([][]int, len(ids))}
	for i, id := range ids {
		neighbors := graph.NodesOf(g.From(id))
		adj := make([]int, 0, len(neighbors))
		for _, n := range neighbors {
			adj = append(adj, index[n.ID()])
		}
		sort.Ints(adj)
		out.adj[i] = adj
		for _, j := range adj {
			if j > i {
				out.edges = append(out.edges, Edge{Source: i, Target: j})
			}
		}
	}
	return out, nil
}

// number of vertices
func (g *Graph) Order() int {
	return len(g.adj)
}

// Neighbors returns the neighbors of id in ascending order.  The slice is
// shared with the graph and must not be modified.
func (g *Graph) Neighbors(id int) []int {
	return g.adj[id]
}

func (g *Graph) Degree(id int) int {
	return len(g.adj[id])
}

func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Edges returns every edge once, ordered by (Source, Target).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// returns true iff u and v are adjacent
func (g *Graph) HasEdge(u, v int) bool {
	adj := g.adj[u]
	i := sort.SearchInts(adj, v)
	return i < len(adj) && adj[i] == v
}
