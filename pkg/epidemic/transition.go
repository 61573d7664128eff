package epidemic

// Uniform is a source of uniform draws in [0,1).  *rand.Rand satisfies it.
type Uniform interface {
	Float64() float64
}

// Rates are the model-wide transition probabilities.
type Rates struct {
	Recovery   float64
	Resistance float64
	Vaccine    float64
	Type       ModelType
}

// NextState evaluates one node's transition for a single step.
//
// infectors holds the infectivity of every neighbor that was INFECTED at the
// start of the step, in neighbor order.  Draws are taken from u lazily: one
// per infector until the first one transmits, then possibly one vaccination
// draw (SIR only, and only if no neighbor transmitted).  An infected node
// takes one recovery draw and, under SIR after a successful recovery, one
// resistance draw.  RESISTANT is absorbing and consumes nothing.
func NextState(current State, infectors []float64, r Rates, u Uniform) State {
	switch current {
	case Susceptible:
		for _, infectivity := range infectors {
			if infectivity > u.Float64() {
				return Infected
			}
		}
		if r.Type == SIR && r.Vaccine > u.Float64() {
			return Resistant
		}
		return Susceptible

	case Infected:
		if r.Recovery > u.Float64() {
			if r.Type == SIR && r.Resistance > u.Float64() {
				return Resistant
			}
			return Susceptible
		}
		// no recovery this step
		return Infected
	}

	return current
}
