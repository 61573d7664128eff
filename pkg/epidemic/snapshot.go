package epidemic

// Snapshot holds the aggregate metrics of a model at one step.
type Snapshot struct {
	Step             int     `json:"Step"`
	PercInfected     float64 `json:"Percentage Infected"`
	PercSusceptible  float64 `json:"Percentage Susceptible"`
	PercResistant    float64 `json:"Percentage Resistant"`
	TotalInfected    int     `json:"Total Infected"`
	TotalSusceptible int     `json:"Total Susceptible"`
	TotalResistant   int     `json:"Total Resistant"`
}

// Observer is called with every recorded snapshot: once after construction
// and once after every Step.
type Observer func(Snapshot)

// Metrics returns the six named metrics, keyed the way the data collector
// names them.
func (s Snapshot) Metrics() map[string]float64 {
	return map[string]float64{
		"Percentage Infected":    s.PercInfected,
		"Percentage Susceptible": s.PercSusceptible,
		"Percentage Resistant":   s.PercResistant,
		"Total Infected":         float64(s.TotalInfected),
		"Total Susceptible":      float64(s.TotalSusceptible),
		"Total Resistant":        float64(s.TotalResistant),
	}
}
