package epidemic

// NodeView is what a visualization needs to know about a node.
type NodeView struct {
	ID          int     `json:"id"`
	State       State   `json:"state"`
	Infectivity float64 `json:"infectivity"`
}

// EdgeView is one undirected edge.  Infecting is set when the source is
// INFECTED and the target is not.
type EdgeView struct {
	ID        int  `json:"id"`
	Source    int  `json:"source"`
	Target    int  `json:"target"`
	Infecting bool `json:"infecting"`
}

// Portrayal is a read-only view of the network for visualization clients.
type Portrayal struct {
	Step    int        `json:"step"`
	Running bool       `json:"running"`
	Nodes   []NodeView `json:"nodes"`
	Edges   []EdgeView `json:"edges"`
}

// Portrayal returns the current network view.  Edges are listed with
// source < target, in the graph's edge order.
func (m *Model) Portrayal() Portrayal {
	p := Portrayal{
		Step:    m.steps,
		Running: m.running,
		Nodes:   make([]NodeView, len(m.nodes)),
	}
	for i, n := range m.nodes {
		p.Nodes[i] = NodeView{ID: n.ID, State: n.State, Infectivity: n.Infectivity}
	}

	edges := m.graph.Edges()
	p.Edges = make([]EdgeView, len(edges))
	for i, e := range edges {
		p.Edges[i] = EdgeView{
			ID:        i,
			Source:    e.Source,
			Target:    e.Target,
			Infecting: m.nodes[e.Source].State == Infected && m.nodes[e.Target].State != Infected,
		}
	}
	return p
}

// InfectingEdges returns the highlighted edges only.
func (m *Model) InfectingEdges() []EdgeView {
	var out []EdgeView
	for _, e := range m.Portrayal().Edges {
		if e.Infecting {
			out = append(out, e)
		}
	}
	return out
}
