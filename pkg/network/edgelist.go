package network

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var edgeListHeader = []string{"source", "target"}

// WriteEdgeList writes g as CSV: a source,target header, then one line per
// edge in Edges order.
func WriteEdgeList(w io.Writer, g *Graph) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(edgeListHeader); err != nil {
		return err
	}
	for _, e := range g.edges {
		if err := writer.Write([]string{strconv.Itoa(e.Source), strconv.Itoa(e.Target)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadEdgeList reads an edge list written by WriteEdgeList into a graph on n
// vertices.  The header line is optional.
func ReadEdgeList(r io.Reader, n int) (*Graph, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.Comment = '#'

	var edges []Edge
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("network: reading edge list: %w", err)
		}
		if line == 1 && rec[0] == edgeListHeader[0] && rec[1] == edgeListHeader[1] {
			continue
		}
		u, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidEdge, line, err)
		}
		v, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidEdge, line, err)
		}
		edges = append(edges, Edge{Source: u, Target: v})
	}
	return FromEdges(n, edges)
}
