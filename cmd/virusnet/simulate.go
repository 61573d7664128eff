package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mattijsgietman/Virus-on-a-network/pkg/batch"
	model "github.com/mattijsgietman/Virus-on-a-network/pkg/datamodel"
	"github.com/mattijsgietman/Virus-on-a-network/pkg/epidemic"
	"github.com/mattijsgietman/Virus-on-a-network/pkg/network"
)

// simulate runs the configured model once and, when asked to, records every
// step and the outcome under the experiment name.
func simulate(ctx context.Context, config *model.Config, investigator string) (batch.Outcome, error) {
	expName := config.Simulation.ExperimentName
	record := config.Simulation.Record

	opts := []epidemic.Option{
		epidemic.WithObserver(func(s epidemic.Snapshot) {
			log.Infof("step %v: perc_infected=%v", s.Step, s.PercInfected)
		}),
	}

	var stepChan chan *model.StepRecord
	var recorderSyncBarrier sync.WaitGroup
	if record {
		exp := &model.Experiment{
			ExperimentName: expName,
			Investigator:   investigator,
			Kind:           model.KindSim,
		}
		if err := model.StartExperiment(exp, model.CopyConfig(config)); err != nil {
			return batch.Outcome{}, err
		}
		log.Infof("recording results to %v", expName)

		stepChan = make(chan *model.StepRecord, 64)
		recorderSyncBarrier.Add(1)
		go model.RecordSteps(stepChan, &recorderSyncBarrier)
		opts = append(opts, epidemic.WithObserver(func(s epidemic.Snapshot) {
			stepChan <- model.NewStepRecord(expName, 0, s)
		}))
	}

	if path := config.Simulation.NetworkFile; path != "" {
		g, err := loadNetwork(path, config.Simulation.N)
		if err != nil {
			if record {
				close(stepChan)
				recorderSyncBarrier.Wait()
			}
			return batch.Outcome{}, err
		}
		log.Infof("using the network in %v", path)
		opts = append(opts, epidemic.WithGraph(g))
	}

	m, err := epidemic.New(config.Simulation.Params, model.NewSource(config.TopLevel.Seed), opts...)
	if err != nil {
		if record {
			close(stepChan)
			recorderSyncBarrier.Wait()
		}
		return batch.Outcome{}, fmt.Errorf("building model: %w", err)
	}
	log.Infof("%v model on %v nodes and %v edges (average degree %.2f, largest component %v)",
		m.ModelType(), m.Graph().Order(), m.Graph().EdgeCount(), m.AvgDegree(), m.Graph().LargestComponent())

	started := time.Now()
	o := batch.Drive(ctx, m, config.Simulation.MaxSteps, config.Simulation.StopOnExtinction)
	log.Infof("finished after %v steps in %v (cutoff=%v extinct=%v cancelled=%v); perc_infected=%v",
		o.Steps, time.Since(started), o.StoppedByCutoff, o.Extinct, o.Cancelled, o.Final.PercInfected)

	if !record {
		return o, nil
	}

	close(stepChan)
	recorderSyncBarrier.Wait()

	runChan := make(chan *model.RunResult, 1)
	recorderSyncBarrier.Add(1)
	go model.RecordRuns(runChan, &recorderSyncBarrier)
	runChan <- runResult(expName, batch.Result{
		Run:     batch.Run{Params: config.Simulation.Params, Seed: config.TopLevel.Seed},
		Outcome: o,
	})
	close(runChan)
	recorderSyncBarrier.Wait()

	if err := model.FinishExperiment(expName, 1); err != nil {
		return o, err
	}
	return o, nil
}

func loadNetwork(path string, n int) (*network.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening network: %w", err)
	}
	defer f.Close()
	return network.ReadEdgeList(f, n)
}

// runResult converts a finished run into its table row.
func runResult(expName string, r batch.Result) *model.RunResult {
	varied := "{}"
	if len(r.Point) > 0 {
		if b, err := json.Marshal(r.Point); err == nil {
			varied = string(b)
		}
	}
	row := &model.RunResult{
		ExperimentName:  expName,
		RunId:           r.ID,
		Iteration:       r.Iteration,
		Varied:          varied,
		Seed:            r.Seed,
		Steps:           r.Steps,
		StoppedByCutoff: r.StoppedByCutoff,
		Extinct:         r.Extinct,
	}
	row.SetFinal(r.Final)
	return row
}
