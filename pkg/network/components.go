package network

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// LargestComponent returns the size of the largest connected component.
// Isolated vertices count as components of size one.
func (g *Graph) LargestComponent() int {
	largest := 0
	for _, c := range topo.ConnectedComponents(g.gonum()) {
		if len(c) > largest {
			largest = len(c)
		}
	}
	return largest
}

// ComponentCount returns the number of connected components.
func (g *Graph) ComponentCount() int {
	return len(topo.ConnectedComponents(g.gonum()))
}

// rebuild a gonum view of the frozen graph for the topo algorithms
func (g *Graph) gonum() *simple.UndirectedGraph {
	u := simple.NewUndirectedGraph()
	for i := range g.adj {
		u.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.edges {
		u.SetEdge(u.NewEdge(simple.Node(int64(e.Source)), simple.Node(int64(e.Target))))
	}
	return u
}
