package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/mattijsgietman/Virus-on-a-network/pkg/batch"
	model "github.com/mattijsgietman/Virus-on-a-network/pkg/datamodel"
	"github.com/mattijsgietman/Virus-on-a-network/pkg/metrics"
)

// runBatch performs the configured parameter sweep.  Run outcomes are counted
// in registry and, when recording, stored along with every step.
func runBatch(ctx context.Context, config *model.Config, investigator string, registry *metrics.Registry) ([]batch.Result, error) {
	expName := config.Simulation.ExperimentName
	record := config.Simulation.Record

	sweep := batch.FromConfig(config, log)
	runs, err := sweep.Runs()
	if err != nil {
		return nil, err
	}
	log.Infof("beginning batch %v: %v runs (%v grid points x %v iterations), at most %v steps each",
		expName, len(runs), len(runs)/max(config.Batch.Iterations, 1), max(config.Batch.Iterations, 1), config.Simulation.MaxSteps)

	var runChan chan *model.RunResult
	var stepChan chan *model.StepRecord
	var recorderSyncBarrier sync.WaitGroup
	if record {
		exp := &model.Experiment{
			ExperimentName: expName,
			Investigator:   investigator,
			Kind:           model.KindBatch,
		}
		if err := model.StartExperiment(exp, model.CopyConfig(config)); err != nil {
			return nil, err
		}
		log.Infof("recording results to %v", expName)

		runChan = make(chan *model.RunResult, 16)
		stepChan = make(chan *model.StepRecord, 1024)
		recorderSyncBarrier.Add(2)
		go model.RecordRuns(runChan, &recorderSyncBarrier)
		go model.RecordSteps(stepChan, &recorderSyncBarrier)
	}

	sweep.Sink = func(r batch.Result) {
		if registry != nil {
			registry.RecordRun(r)
		}
		if r.Err != nil {
			log.Warnf("run %v failed: %v", r.ID, r.Err)
			return
		}
		log.Debugf("run %v (%v, iteration %v) finished after %v steps", r.ID, r.Point, r.Iteration, r.Steps)
		if !record {
			return
		}
		runChan <- runResult(expName, r)
		for _, s := range r.Series {
			stepChan <- model.NewStepRecord(expName, r.ID, s)
		}
	}

	results, err := sweep.Run(ctx)

	if record {
		close(runChan)
		close(stepChan)
		recorderSyncBarrier.Wait()
		if ferr := model.FinishExperiment(expName, len(results)); ferr != nil {
			log.Warnf("cannot finish experiment %v: %v", expName, ferr)
		}
	}
	return results, err
}

// serveMetrics exposes registry on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, registry *metrics.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	go func() {
		log.Infof("serving metrics on http://%v/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warnf("metrics server: %v", err)
		}
	}()
}

func summarize(results []batch.Result) string {
	counts := map[string]int{}
	for _, r := range results {
		counts[metrics.Outcome(r)]++
	}
	return fmt.Sprintf("%v runs: %v stopped by cutoff, %v extinct, %v hit the step budget, %v cancelled, %v failed",
		len(results), counts["cutoff"], counts["extinct"], counts["budget"], counts["cancelled"], counts["error"])
}
