// This package defines the data model for virusnet: the run configuration,
// the per-run random source and the result tables.
// It uses gorm (https://gorm.io/) an ORM model for Golang.
package datamodel

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattijsgietman/Virus-on-a-network/pkg/epidemic"
	logger "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite" // Sqlite driver based on GGO

	"gorm.io/gorm"
)

// a reference to the DB GORM object
var DB *gorm.DB

// our logger
var log *logger.Logger

var ErrUnsupportedDB = errors.New("invalid or unsupported database type")

const (
	KindSim   = "sim"
	KindBatch = "batch"
)

// An `Experiment` is one invocation of the simulator: a single run (`sim`) or
// a parameter sweep (`batch`).
type Experiment struct {
	ExperimentName string `gorm:"primaryKey"`
	Investigator   string
	Kind           string
	DateStarted    sql.NullTime
	DateFinished   sql.NullTime
	Runs           int
}

// the configuration an experiment was started with
type ExperimentConfig struct {
	ExperimentName   string `gorm:"primaryKey"`
	K                int
	N                int
	RecoveryChance   float64
	VaccineChance    float64
	ResistanceChance float64
	Infectivity      float64
	NumInfected      int
	ModelType        string
	Cutoff           bool
	CutoffThreshold  float64
	Seed             uint64
	MaxSteps         int
	StopOnExtinction bool
	Iterations       int
	Vary             string // the parameter grid, as json
}

// one row of the data collector: the six metrics of a run at one step
type StepRecord struct {
	ExperimentName   string `gorm:"primaryKey"`
	RunId            int    `gorm:"primaryKey;autoIncrement:false"`
	Step             int    `gorm:"primaryKey;autoIncrement:false"`
	PercInfected     float64
	PercSusceptible  float64
	PercResistant    float64
	TotalInfected    int
	TotalSusceptible int
	TotalResistant   int
}

// this DB table lists the outcome of every run of an experiment
type RunResult struct {
	ExperimentName   string `gorm:"primaryKey"`
	RunId            int    `gorm:"primaryKey;autoIncrement:false"`
	Iteration        int
	Varied           string // the grid point of this run, as json
	Seed             uint64
	Steps            int
	StoppedByCutoff  bool
	Extinct          bool
	PercInfected     float64
	PercSusceptible  float64
	PercResistant    float64
	TotalInfected    int
	TotalSusceptible int
	TotalResistant   int
}

// NewStepRecord converts a snapshot into a row.
func NewStepRecord(experimentName string, runID int, s epidemic.Snapshot) *StepRecord {
	return &StepRecord{
		ExperimentName:   experimentName,
		RunId:            runID,
		Step:             s.Step,
		PercInfected:     s.PercInfected,
		PercSusceptible:  s.PercSusceptible,
		PercResistant:    s.PercResistant,
		TotalInfected:    s.TotalInfected,
		TotalSusceptible: s.TotalSusceptible,
		TotalResistant:   s.TotalResistant,
	}
}

func (r *StepRecord) Snapshot() epidemic.Snapshot {
	return epidemic.Snapshot{
		Step:             r.Step,
		PercInfected:     r.PercInfected,
		PercSusceptible:  r.PercSusceptible,
		PercResistant:    r.PercResistant,
		TotalInfected:    r.TotalInfected,
		TotalSusceptible: r.TotalSusceptible,
		TotalResistant:   r.TotalResistant,
	}
}

// SetFinal copies the final metrics of a run into r.
func (r *RunResult) SetFinal(s epidemic.Snapshot) {
	r.PercInfected = s.PercInfected
	r.PercSusceptible = s.PercSusceptible
	r.PercResistant = s.PercResistant
	r.TotalInfected = s.TotalInfected
	r.TotalSusceptible = s.TotalSusceptible
	r.TotalResistant = s.TotalResistant
}

// Record step records.  This function should be started as a goroutine.  It
// waits for incoming records and stores them in the database, in batches for
// efficiency
func RecordSteps(stepChan chan *StepRecord, barrier *sync.WaitGroup) {
	const batchsize = 1024 // an arbitrary choice
	steps := make([]*StepRecord, 0, batchsize)

	for s := range stepChan {
		steps = append(steps, s)

		// if we've reached our batch size, send them to the DB
		if len(steps) >= batchsize {
			if r := DB.Create(&steps); r.Error != nil {
				log.Warnf("failed to record steps: %v", r.Error)
			}
			steps = steps[:0] // reset the buffer
		}
	}

	// if we get here, that means that the stepChan has been closed.

	// do we have any left over?
	if len(steps) > 0 {
		if r := DB.Create(&steps); r.Error != nil {
			log.Warnf("failed to record steps: %v", r.Error)
		}
	}
	barrier.Done()
}

// Record run results.  This function should be started as a goroutine.
func RecordRuns(runChan chan *RunResult, barrier *sync.WaitGroup) {
	const batchsize = 256
	runs := make([]*RunResult, 0, batchsize)

	for r := range runChan {
		runs = append(runs, r)
		if len(runs) >= batchsize {
			if res := DB.Create(&runs); res.Error != nil {
				log.Warnf("failed to record run results: %v", res.Error)
			}
			runs = runs[:0]
		}
	}

	if len(runs) > 0 {
		if res := DB.Create(&runs); res.Error != nil {
			log.Warnf("failed to record run results: %v", res.Error)
		}
	}
	barrier.Done()
}

// StartExperiment stores the experiment and its configuration.
func StartExperiment(exp *Experiment, config *ExperimentConfig) error {
	if !exp.DateStarted.Valid {
		exp.DateStarted = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}
	if r := DB.Create(exp); r.Error != nil {
		return fmt.Errorf("recording experiment %v: %w", exp.ExperimentName, r.Error)
	}
	if r := DB.Create(config); r.Error != nil {
		return fmt.Errorf("recording config of %v: %w", exp.ExperimentName, r.Error)
	}
	return nil
}

// FinishExperiment stamps the experiment with its end time and run count.
func FinishExperiment(experimentName string, runs int) error {
	r := DB.Model(&Experiment{}).
		Where("experiment_name = ?", experimentName).
		Updates(map[string]interface{}{
			"date_finished": sql.NullTime{Time: time.Now().UTC(), Valid: true},
			"runs":          runs,
		})
	if r.Error != nil {
		return r.Error
	}
	if r.RowsAffected != 1 {
		return fmt.Errorf("no experiment named %v", experimentName)
	}
	return nil
}

// retrieves all of the experiments from the database
func GetExperiments() ([]Experiment, error) {
	var experiments []Experiment
	r := DB.Order("date_started").Find(&experiments)
	if r.Error != nil {
		return nil, r.Error
	}
	return experiments, nil
}

func GetExperimentConfigs() ([]ExperimentConfig, error) {
	var experimentConfigs []ExperimentConfig
	r := DB.Find(&experimentConfigs)
	if r.Error != nil {
		return nil, r.Error
	}
	return experimentConfigs, nil
}

// retrieves the run results of one experiment, ordered by run id
func GetRunResults(experimentName string) ([]RunResult, error) {
	var runs []RunResult
	r := DB.Where("experiment_name = ?", experimentName).Order("run_id").Find(&runs)
	if r.Error != nil {
		return nil, r.Error
	}
	return runs, nil
}

// retrieves the step records of one experiment, ordered by run and step
func GetStepRecords(experimentName string) ([]StepRecord, error) {
	var steps []StepRecord
	r := DB.Where("experiment_name = ?", experimentName).Order("run_id").Order("step").Find(&steps)
	if r.Error != nil {
		return nil, r.Error
	}
	return steps, nil
}

// initializes the data model, creating (and updating!) tables if necessary
func Init(mainLogger *logger.Logger, config *Config) error {

	// extract the database type and file from the config
	dbType := config.TopLevel.DataBase
	dbFileOrDSN := config.TopLevel.DBFile

	var err error

	log = mainLogger

	gormConfig := &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
	switch dbType {
	case "sqlite":
		DB, err = gorm.Open(sqlite.Open(dbFileOrDSN), gormConfig)
	case "mysql":
		DB, err = gorm.Open(mysql.Open(dbFileOrDSN), gormConfig)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedDB, dbType)
	}

	if err != nil {
		return err
	}
	log.Infof("using database '%v'", dbFileOrDSN)

	// a list of blank structs
	tablesToMigrate := []interface{}{
		&Experiment{},
		&ExperimentConfig{},
		&StepRecord{},
		&RunResult{},
	}

	// use GORM to create a DB table for each of the above structs
	for _, table := range tablesToMigrate {
		if err = DB.AutoMigrate(table); err != nil {
			return err
		}
	}
	return nil
}

// copies a config into an experimentConfig struct and returns it
func CopyConfig(config *Config) *ExperimentConfig {
	p := config.Simulation.Params

	vary := ""
	if config.Batch.Vary != nil {
		if b, err := json.Marshal(config.Batch.Vary); err == nil {
			vary = string(b)
		}
	}

	return &ExperimentConfig{
		ExperimentName:   config.Simulation.ExperimentName,
		K:                p.K,
		N:                p.N,
		RecoveryChance:   p.RecoveryChance,
		VaccineChance:    p.VaccineChance,
		ResistanceChance: p.ResistanceChance,
		Infectivity:      p.Infectivity,
		NumInfected:      p.NumInfected,
		ModelType:        p.ModelType,
		Cutoff:           p.Cutoff,
		CutoffThreshold:  p.CutoffThreshold,
		Seed:             config.TopLevel.Seed,
		MaxSteps:         config.Simulation.MaxSteps,
		StopOnExtinction: config.Simulation.StopOnExtinction,
		Iterations:       config.Batch.Iterations,
		Vary:             vary,
	}
}
