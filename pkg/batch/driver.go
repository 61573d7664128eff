package batch

import (
	"context"

	"github.com/mattijsgietman/Virus-on-a-network/pkg/epidemic"
)

// Stepper is the part of a model the driver needs.
type Stepper interface {
	Step()
	Running() bool
	NumInfected() int
	Snapshot() epidemic.Snapshot
}

// Outcome says how a driven run ended.
type Outcome struct {
	Steps           int               `json:"steps"`
	StoppedByCutoff bool              `json:"stopped_by_cutoff"`
	Extinct         bool              `json:"extinct"`
	Cancelled       bool              `json:"cancelled"`
	Final           epidemic.Snapshot `json:"final"`
}

// Drive steps m until its cutoff policy stops it, maxSteps steps have been
// taken, the infection dies out (only when stopOnExtinction is set) or ctx is
// done.  maxSteps <= 0 means no budget.
func Drive(ctx context.Context, m Stepper, maxSteps int, stopOnExtinction bool) Outcome {
	var o Outcome
	for {
		if !m.Running() {
			o.StoppedByCutoff = true
			break
		}
		if stopOnExtinction && m.NumInfected() == 0 {
			o.Extinct = true
			break
		}
		if maxSteps > 0 && o.Steps >= maxSteps {
			break
		}
		if ctx.Err() != nil {
			o.Cancelled = true
			break
		}
		m.Step()
		o.Steps++
	}
	o.Final = m.Snapshot()
	return o
}
