package epidemic

// A Node is one vertex of the contact network.  Nodes are plain records in the
// model's node slice; the node's id is its vertex id in the graph.
type Node struct {
	ID          int     `json:"id"`
	State       State   `json:"state"`
	NextState   State   `json:"-"`
	Infectivity float64 `json:"infectivity"`
}

// Decide stages the node's state for the upcoming commit.  It reads only the
// node's current state and the infectors slice and never touches State.
func (n *Node) Decide(infectors []float64, r Rates, u Uniform) {
	n.NextState = NextState(n.State, infectors, r, u)
}

// Advance commits the staged state.  It must only run after every node of the
// model has decided for the current step.
func (n *Node) Advance() {
	n.State = n.NextState
}
