package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	model "github.com/mattijsgietman/Virus-on-a-network/pkg/datamodel"
	"github.com/mattijsgietman/Virus-on-a-network/pkg/network"
	logger "github.com/sirupsen/logrus"
)

var log = logger.New()

// writes a G(n, k/n) contact network as a CSV edge list that virusnet can
// load through simulation.network_file
func main() {

	parser := argparse.NewParser("gen-network", "produces an Erdos-Renyi contact network")

	output_file := parser.String("f", "output", &argparse.Options{
		Help:     "file to (over)write",
		Required: true,
	})
	num_nodes := parser.Int("n", "nodes", &argparse.Options{
		Help:     "number of nodes",
		Required: true,
	})
	avg_degree := parser.Float("k", "degree", &argparse.Options{
		Help:    "expected average degree; the edge probability is k/n",
		Default: 10.0,
	})
	seed := parser.Int("s", "seed", &argparse.Options{
		Help:    "random seed",
		Default: 12345,
	})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	if *seed < 0 {
		log.Fatalf("need a non-negative seed")
	}
	if err := writeNetwork(*output_file, *num_nodes, *avg_degree, uint64(*seed)); err != nil {
		log.Fatal(err)
	}
	log.Infof("wrote %v", *output_file)
}

// writeNetwork samples G(n, k/n) from seed and writes it to path.
func writeNetwork(path string, n int, k float64, seed uint64) error {
	if n < 1 {
		return fmt.Errorf("need at least one node, got %v", n)
	}
	p := k / float64(n)
	g, err := network.Generate(n, p, model.NewSource(seed))
	if err != nil {
		return err
	}
	log.Infof("generated %v nodes and %v edges (p=%v, largest component %v)",
		g.Order(), g.EdgeCount(), p, g.LargestComponent())

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := network.WriteEdgeList(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
