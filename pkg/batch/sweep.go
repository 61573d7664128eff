// Package batch runs parameter sweeps: every point of a parameter grid is
// simulated for a number of iterations, each run with its own seeded source.
package batch

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/mattijsgietman/Virus-on-a-network/pkg/datamodel"
	"github.com/mattijsgietman/Virus-on-a-network/pkg/epidemic"
	logger "github.com/sirupsen/logrus"
)

// Run identifies one simulation of a sweep.
type Run struct {
	ID        int             `json:"run_id"`
	Iteration int             `json:"iteration"`
	Point     Point           `json:"point"`
	Params    epidemic.Params `json:"params"`
	Seed      uint64          `json:"seed"`
}

// Result is a finished run.
type Result struct {
	Run
	Outcome
	Series []epidemic.Snapshot `json:"series,omitempty"`
	Err    error               `json:"-"`
}

// Sweep is a batch run over a parameter grid.
type Sweep struct {
	Base       epidemic.Params
	Vary       map[string][]float64
	Iterations int
	MaxSteps   int
	// stop a run as soon as nothing is infected
	StopOnExtinction bool
	Workers          int
	// run i is seeded with Seed+i
	Seed uint64
	// keep the per-step snapshots of every run in its Result
	KeepSeries bool

	// NewSource builds the random source of a run; defaults to
	// datamodel.NewSource
	NewSource func(seed uint64) rand.Source
	// Sink, when set, receives every result as it completes, from a single
	// goroutine
	Sink func(Result)

	Log             logger.FieldLogger
	DisplayProgress bool
	ProgressEvery   time.Duration
}

// FromConfig builds the sweep described by a configuration.
func FromConfig(c *datamodel.Config, log logger.FieldLogger) *Sweep {
	return &Sweep{
		Base:             c.Simulation.Params,
		Vary:             c.Batch.Vary,
		Iterations:       c.Batch.Iterations,
		MaxSteps:         c.Simulation.MaxSteps,
		StopOnExtinction: c.Simulation.StopOnExtinction,
		Workers:          c.Batch.Workers,
		Seed:             c.TopLevel.Seed,
		KeepSeries:       c.Simulation.Record,
		Log:              log,
		DisplayProgress:  c.Batch.DisplayProgress,
	}
}

// Runs lists every run of the sweep in run id order: grid points in Expand
// order, iterations innermost.  Every run's parameters are validated.
func (s *Sweep) Runs() ([]Run, error) {
	points, err := Expand(s.Vary)
	if err != nil {
		return nil, err
	}
	iterations := s.Iterations
	if iterations < 1 {
		iterations = 1
	}

	runs := make([]Run, 0, len(points)*iterations)
	for _, pt := range points {
		p, err := Apply(s.Base, pt)
		if err != nil {
			return nil, err
		}
		if _, err := p.Validate(); err != nil {
			return nil, fmt.Errorf("grid point %v: %w", pt, err)
		}
		for it := 0; it < iterations; it++ {
			id := len(runs)
			runs = append(runs, Run{
				ID:        id,
				Iteration: it,
				Point:     pt,
				Params:    p,
				Seed:      s.Seed + uint64(id),
			})
		}
	}
	return runs, nil
}

// Execute runs a single simulation.
func (s *Sweep) Execute(ctx context.Context, r Run) Result {
	newSource := s.NewSource
	if newSource == nil {
		newSource = func(seed uint64) rand.Source { return datamodel.NewSource(seed) }
	}

	res := Result{Run: r}
	var opts []epidemic.Option
	if s.KeepSeries {
		opts = append(opts, epidemic.WithObserver(func(snap epidemic.Snapshot) {
			res.Series = append(res.Series, snap)
		}))
	}

	m, err := epidemic.New(r.Params, newSource(r.Seed), opts...)
	if err != nil {
		res.Err = err
		return res
	}
	res.Outcome = Drive(ctx, m, s.MaxSteps, s.StopOnExtinction)
	return res
}

// Run executes every run of the sweep on a pool of workers and returns the
// results sorted by run id.  Results do not depend on the number of workers.
// A cancelled context stops handing out runs; runs already started finish
// their current step and are reported as cancelled.
func (s *Sweep) Run(ctx context.Context) ([]Result, error) {
	runs, err := s.Runs()
	if err != nil {
		return nil, err
	}

	workers := s.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(runs) {
		workers = len(runs)
	}

	jobs := make(chan Run)
	resultChan := make(chan Result)
	var barrier sync.WaitGroup

	for i := 0; i < workers; i++ {
		barrier.Add(1)
		go func() {
			defer barrier.Done()
			for r := range jobs {
				resultChan <- s.Execute(ctx, r)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, r := range runs {
			select {
			case jobs <- r:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		barrier.Wait()
		close(resultChan)
	}()

	s.logf("starting batch of %v runs on %v workers", len(runs), workers)
	started := time.Now()
	progress := newProgressReporter(s, len(runs))

	results := make([]Result, 0, len(runs))
	var firstErr error
	for res := range resultChan {
		if res.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("run %d: %w", res.ID, res.Err)
		}
		if s.Sink != nil {
			s.Sink(res)
		}
		results = append(results, res)
		progress.done(len(results))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	s.logf("finished %v of %v runs in %v", len(results), len(runs), time.Since(started))

	if firstErr != nil {
		return results, firstErr
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *Sweep) logf(format string, args ...interface{}) {
	if s.Log != nil {
		s.Log.Infof(format, args...)
	}
}

// logs completion every so often, in the manner of display_progress
type progressReporter struct {
	sweep    *Sweep
	total    int
	every    time.Duration
	lastTime time.Time
	lastDone int
}

func newProgressReporter(s *Sweep, total int) *progressReporter {
	every := s.ProgressEvery
	if every <= 0 {
		every = 5 * time.Second
	}
	return &progressReporter{sweep: s, total: total, every: every, lastTime: time.Now()}
}

func (p *progressReporter) done(n int) {
	if !p.sweep.DisplayProgress || p.sweep.Log == nil {
		return
	}
	td := time.Since(p.lastTime)
	if td < p.every && n != p.total {
		return
	}
	perDone := 100.0 * float64(n) / float64(p.total)
	p.sweep.Log.Infof("completed %v of %v runs [%v runs in %v (wall clock); %.1f%% complete]",
		n, p.total, n-p.lastDone, td, perDone)
	p.lastTime = time.Now()
	p.lastDone = n
}
