// Package epidemic implements SIS/SIR epidemic spread over a contact network.
//
// A Model owns its graph, a flat slice of nodes indexed by vertex id and its
// own random generator.  Each Step is synchronous: every node first decides
// its next state from the states frozen at the start of the step, and only
// then does every node commit.  Aggregates are recomputed by scanning the
// nodes.
package epidemic

import (
	"fmt"
	"math/rand/v2"

	"github.com/mattijsgietman/Virus-on-a-network/pkg/network"
)

// Model is one simulation run.  It is not safe for concurrent use.
type Model struct {
	params    Params
	modelType ModelType
	rates     Rates

	graph *network.Graph
	nodes []Node
	rng   *rand.Rand

	running bool
	steps   int

	history   []Snapshot
	observers []Observer

	// reused by the decide phase
	infectors []float64
}

// Option configures a model at construction time.
type Option func(*modelOptions)

type modelOptions struct {
	graph     *network.Graph
	observers []Observer
}

// WithGraph runs the model on g instead of a freshly generated random graph.
// g must have exactly N vertices.
func WithGraph(g *network.Graph) Option {
	return func(o *modelOptions) {
		o.graph = g
	}
}

// WithObserver registers fn to receive every recorded snapshot, starting with
// the one taken at construction.
func WithObserver(fn Observer) Option {
	return func(o *modelOptions) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

// New builds a model: it validates p, picks the initially infected nodes
// uniformly without replacement, generates a G(N, K/N) graph and records the
// initial snapshot.  All randomness, including graph generation, is drawn
// from src.
func New(p Params, src rand.Source, opts ...Option) (*Model, error) {
	mt, err := p.Validate()
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidParams)
	}

	var o modelOptions
	for _, opt := range opts {
		opt(&o)
	}

	rng := rand.New(src)

	// determine the indices of the infected nodes
	infected := rng.Perm(p.N)[:p.NumInfected]

	g := o.graph
	if g == nil {
		if g, err = network.Generate(p.N, p.EdgeProbability(), src); err != nil {
			return nil, fmt.Errorf("epidemic: generating network: %w", err)
		}
	} else if g.Order() != p.N {
		return nil, fmt.Errorf("%w: graph has %d vertices, N=%d", ErrInvalidParams, g.Order(), p.N)
	}

	m := &Model{
		params:    p,
		modelType: mt,
		rates:     p.rates(mt),
		graph:     g,
		nodes:     make([]Node, p.N),
		rng:       rng,
		running:   true,
		observers: o.observers,
	}
	for i := range m.nodes {
		m.nodes[i] = Node{ID: i, State: Susceptible, NextState: Susceptible, Infectivity: p.Infectivity}
	}
	for _, i := range infected {
		m.nodes[i].State = Infected
	}

	m.collect()
	return m, nil
}

// Step advances the model by one synchronous step and applies the cutoff
// policy.
func (m *Model) Step() {
	// decide: read-only pass over the current states
	for i := range m.nodes {
		m.infectors = m.infectors[:0]
		for _, j := range m.graph.Neighbors(i) {
			if m.nodes[j].State == Infected {
				m.infectors = append(m.infectors, m.nodes[j].Infectivity)
			}
		}
		m.nodes[i].Decide(m.infectors, m.rates, m.rng)
	}

	// commit
	for i := range m.nodes {
		m.nodes[i].Advance()
	}
	m.steps++

	s := m.collect()
	if m.params.Cutoff && s.PercInfected >= m.params.CutoffThreshold {
		m.running = false
	}
}

// record a snapshot and hand it to the observers
func (m *Model) collect() Snapshot {
	s := m.Snapshot()
	m.history = append(m.history, s)
	for _, fn := range m.observers {
		fn(s)
	}
	return s
}

// Snapshot returns the current aggregates without recording them.
func (m *Model) Snapshot() Snapshot {
	var s Snapshot
	for i := range m.nodes {
		switch m.nodes[i].State {
		case Infected:
			s.TotalInfected++
		case Susceptible:
			s.TotalSusceptible++
		case Resistant:
			s.TotalResistant++
		}
	}
	n := float64(len(m.nodes))
	s.Step = m.steps
	s.PercInfected = float64(s.TotalInfected) / n
	s.PercSusceptible = float64(s.TotalSusceptible) / n
	s.PercResistant = float64(s.TotalResistant) / n
	return s
}

func (m *Model) count(st State) int {
	c := 0
	for i := range m.nodes {
		if m.nodes[i].State == st {
			c++
		}
	}
	return c
}

func (m *Model) NumInfected() int { return m.count(Infected) }
func (m *Model) NumSusceptible() int { return m.count(Susceptible) }
func (m *Model) NumResistant() int { return m.count(Resistant) }

func (m *Model) PercInfected() float64 {
	return float64(m.NumInfected()) / float64(len(m.nodes))
}

func (m *Model) PercSusceptible() float64 {
	return float64(m.NumSusceptible()) / float64(len(m.nodes))
}

func (m *Model) PercResistant() float64 {
	return float64(m.NumResistant()) / float64(len(m.nodes))
}

// AvgDegree is 2*edges/N.
func (m *Model) AvgDegree() float64 {
	return 2 * float64(m.graph.EdgeCount()) / float64(len(m.nodes))
}

// Running reports whether the cutoff policy still lets the run continue.
func (m *Model) Running() bool { return m.running }

// Steps is the number of completed steps.
func (m *Model) Steps() int { return m.steps }

func (m *Model) Params() Params { return m.params }
func (m *Model) ModelType() ModelType { return m.modelType }
func (m *Model) Graph() *network.Graph { return m.graph }

// History returns a copy of every recorded snapshot, oldest first.
func (m *Model) History() []Snapshot {
	out := make([]Snapshot, len(m.history))
	copy(out, m.history)
	return out
}

// Node returns a copy of node id.
func (m *Model) Node(id int) Node {
	return m.nodes[id]
}

// Nodes returns a copy of the node collection.
func (m *Model) Nodes() []Node {
	out := make([]Node, len(m.nodes))
	copy(out, m.nodes)
	return out
}
