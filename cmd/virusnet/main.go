package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"syscall"

	"github.com/akamensky/argparse"
	model "github.com/mattijsgietman/Virus-on-a-network/pkg/datamodel"
	"github.com/mattijsgietman/Virus-on-a-network/pkg/metrics"
	logger "github.com/sirupsen/logrus"
)

// create global log variable
var log *logger.Logger

func main() {
	parser := argparse.NewParser("virusnet", "SIS/SIR epidemic spread on Erdos-Renyi networks")

	configFile := parser.String("c", "config", &argparse.Options{
		Help: "JSON or YAML configuration file",
	})
	seed := parser.Int("s", "seed", &argparse.Options{
		Help:    "random seed, overrides the configuration",
		Default: -1,
	})
	experiment := parser.String("e", "experiment", &argparse.Options{
		Help: "experiment name, overrides the configuration",
	})
	record := parser.Flag("r", "record", &argparse.Options{
		Help: "record the run(s) to the database",
	})

	simCmd := parser.NewCommand("sim", "run a single simulation")
	batchCmd := parser.NewCommand("batch", "run a parameter sweep")
	metricsAddr := batchCmd.String("m", "metrics", &argparse.Options{
		Help: "serve prometheus metrics on this address while the sweep runs",
	})
	webCmd := parser.NewCommand("web", "serve an interactive model over HTTP")
	port := webCmd.Int("p", "port", &argparse.Options{
		Help:    "port to listen on, overrides the configuration",
		Default: 0,
	})
	csvCmd := parser.NewCommand("csv", "export stored results as CSV")
	table := csvCmd.Selector("t", "table", []string{"experiments", "runs", "steps"}, &argparse.Options{
		Help: "table to export",
	})
	output := csvCmd.String("o", "output", &argparse.Options{
		Help: "file to (over)write, - for standard output",
	})
	listCmd := parser.NewCommand("list", "list stored experiments")
	helpCmd := parser.NewCommand("help", "describe the configuration file")

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	if helpCmd.Happened() {
		HelpFunc(os.Stdout)
		return
	}

	// generate a config, overlaid with the config file if one was given
	config := model.MakeDefaultConfig()
	if *configFile != "" {
		var err error
		if config, err = model.LoadConfig(*configFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *seed >= 0 {
		config.TopLevel.Seed = uint64(*seed)
	}
	if *experiment != "" {
		config.Simulation.ExperimentName = *experiment
		config.CLI.Experiment = *experiment
	}
	if *record {
		config.Simulation.Record = true
	}
	if *port > 0 {
		config.WebServer.Port = *port
	}
	if *table != "" {
		config.CLI.Table = *table
	}
	if *output != "" {
		config.CLI.Output = *output
	}

	// set up the logger
	var err error
	if log, err = newLogger(config.TopLevel.Log, config.TopLevel.TimeFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log.Info("running with config:\n", config)
	log.Infof("random seed is %v", config.TopLevel.Seed)
	log.Infof("logging at log level %v; all times in UTC", config.TopLevel.Log)

	investigator := "unknown"
	if u, err := user.Current(); err == nil {
		investigator = u.Username
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// initialize the database, if this command needs one
	needsDB := config.Simulation.Record || csvCmd.Happened() || listCmd.Happened()
	useDB := false
	if needsDB || webCmd.Happened() {
		if err := model.Init(log, config); err != nil {
			if needsDB {
				log.Fatalf("cannot open database: %v", err)
			}
			log.Warnf("continuing without a database: %v", err)
		} else {
			useDB = true
		}
	}

	switch {
	case simCmd.Happened():
		if _, err := simulate(ctx, config, investigator); err != nil {
			log.Fatalf("simulation failed: %v", err)
		}

	case batchCmd.Happened():
		registry := metrics.NewRegistry()
		if *metricsAddr != "" {
			serveMetrics(ctx, *metricsAddr, registry)
		}
		results, err := runBatch(ctx, config, investigator, registry)
		if err != nil {
			log.Fatalf("batch failed: %v", err)
		}
		log.Info(summarize(results))

	case webCmd.Happened():
		if err := webService(config, useDB); err != nil {
			log.Fatalf("web server: %v", err)
		}

	case csvCmd.Happened():
		if err := exportCSV(config.CLI.Table, config.CLI.Experiment, config.CLI.Output); err != nil {
			log.Fatal(err)
		}

	case listCmd.Happened():
		if err := listExperiments(os.Stdout); err != nil {
			log.Fatal(err)
		}
	}

	// ending the run
	log.Info(" ... ending ... ")
}
