/**
 * configuration for a run, includes default values for all args
 *
 */

package datamodel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/mattijsgietman/Virus-on-a-network/pkg/epidemic"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TopLevel   TopLevelConfig   `json:"top_level" yaml:"top_level"`
	WebServer  WebServerConfig  `json:"web_server" yaml:"web_server"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Batch      BatchConfig      `json:"batch" yaml:"batch"`
	CLI        CLIConfig        `json:"cli" yaml:"cli"`
}

type TopLevelConfig struct {
	Log        string `json:"log" yaml:"log"`
	DataBase   string `json:"db" yaml:"db"`
	DBFile     string `json:"dbfile" yaml:"dbfile"`
	TimeFormat string `json:"time_format" yaml:"time_format"`
	Seed       uint64 `json:"seed" yaml:"seed"`
}

type WebServerConfig struct {
	Port int    `json:"port" yaml:"port"`
	Host string `json:"host" yaml:"host"`
}

type SimulationConfig struct {
	// experiment name must be unique for each run
	ExperimentName string `json:"experiment_name" yaml:"experiment_name"`
	Investigator   string `json:"investigator" yaml:"investigator"`

	// step budget of a run, enforced by the driver
	MaxSteps         int  `json:"max_steps" yaml:"max_steps"`
	StopOnExtinction bool `json:"stop_on_extinction" yaml:"stop_on_extinction"`
	// store the run in the database
	Record bool `json:"record" yaml:"record"`
	// an edge list to run a single simulation on instead of a random graph
	NetworkFile string `json:"network_file" yaml:"network_file"`

	// the model parameters
	epidemic.Params `yaml:",inline"`
}

type BatchConfig struct {
	Iterations int `json:"iterations" yaml:"iterations"`
	Workers    int `json:"workers" yaml:"workers"`
	// parameter grid, keyed by the json name of the model parameter
	Vary            map[string][]float64 `json:"vary" yaml:"vary"`
	DisplayProgress bool                 `json:"display_progress" yaml:"display_progress"`
}

type CLIConfig struct {
	// CLI command line interface - for csv export
	Experiment string `json:"experiment" yaml:"experiment"`
	Table      string `json:"table" yaml:"table"`
	Output     string `json:"output" yaml:"output"`
}

// NewExperimentName returns a fresh TEST-<10 hex digits> name.
func NewExperimentName() string {
	return "TEST-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

/**
initializes the configuration to default values
*/
func MakeDefaultConfig() *Config {

	DefaultConfig := new(Config)

	DefaultConfig.TopLevel.Log = "INFO"
	DefaultConfig.TopLevel.DataBase = "sqlite"
	DefaultConfig.TopLevel.DBFile = "virusnet.db"
	DefaultConfig.TopLevel.TimeFormat = "2006-01-02 15:04:05.000"
	DefaultConfig.TopLevel.Seed = 12345
	DefaultConfig.WebServer.Port = 8080
	DefaultConfig.WebServer.Host = "localhost"
	DefaultConfig.Simulation.ExperimentName = NewExperimentName()
	DefaultConfig.Simulation.MaxSteps = 1000
	DefaultConfig.Simulation.StopOnExtinction = false
	DefaultConfig.Simulation.Record = false
	DefaultConfig.Simulation.Params = epidemic.DefaultParams()
	DefaultConfig.Batch.Iterations = 10
	DefaultConfig.Batch.Workers = runtime.NumCPU()
	DefaultConfig.Batch.Vary = DefaultVary()
	DefaultConfig.Batch.DisplayProgress = true
	DefaultConfig.CLI.Table = "runs"
	DefaultConfig.CLI.Output = "-"

	return DefaultConfig
}

// DefaultVary is the parameter grid of the reference batch run.
func DefaultVary() map[string][]float64 {
	return map[string][]float64{
		"K":           {4, 10},
		"infectivity": {0.01, 0.1},
	}
}

// LoadConfig overlays the file at path onto the defaults.  Files ending in
// .yaml or .yml are read as YAML, anything else as JSON.  A grid given in the
// file replaces the default grid instead of merging with it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := MakeDefaultConfig()
	config.Batch.Vary = nil

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %v: %w", path, err)
	}

	if config.Batch.Vary == nil {
		config.Batch.Vary = DefaultVary()
	}
	return config, nil
}

func (c *Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", *c)
	}
	return string(b)
}
