package batch

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/mattijsgietman/Virus-on-a-network/pkg/epidemic"
)

var (
	ErrUnknownParam = errors.New("batch: unknown parameter")
	ErrBadValue     = errors.New("batch: bad parameter value")
	ErrEmptyGrid    = errors.New("batch: parameter without values")
)

// Point is one combination of the parameter grid, keyed by json param name.
type Point map[string]float64

// Expand returns the cartesian product of vary.  Keys are taken in sorted
// order and the last key varies fastest.  An empty grid yields one empty
// point.
func Expand(vary map[string][]float64) ([]Point, error) {
	keys := make([]string, 0, len(vary))
	for k, values := range vary {
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrEmptyGrid, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := []Point{{}}
	for _, k := range keys {
		next := make([]Point, 0, len(points)*len(vary[k]))
		for _, base := range points {
			for _, v := range vary[k] {
				pt := make(Point, len(base)+1)
				for bk, bv := range base {
					pt[bk] = bv
				}
				pt[k] = v
				next = append(next, pt)
			}
		}
		points = next
	}
	return points, nil
}

// Apply returns p with every value of pt set.
func Apply(p epidemic.Params, pt Point) (epidemic.Params, error) {
	for name, v := range pt {
		if err := set(&p, name, v); err != nil {
			return p, err
		}
	}
	return p, nil
}

func set(p *epidemic.Params, name string, v float64) error {
	switch name {
	case "K":
		return setInt(&p.K, name, v)
	case "N":
		return setInt(&p.N, name, v)
	case "num_infected":
		return setInt(&p.NumInfected, name, v)
	case "recovery_chance":
		p.RecoveryChance = v
	case "vaccine_chance":
		p.VaccineChance = v
	case "resistance_chance":
		p.ResistanceChance = v
	case "infectivity":
		p.Infectivity = v
	case "cutoff_threshold":
		p.CutoffThreshold = v
	case "cutoff":
		switch v {
		case 0:
			p.Cutoff = false
		case 1:
			p.Cutoff = true
		default:
			return fmt.Errorf("%w: cutoff=%v, want 0 or 1", ErrBadValue, v)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

func setInt(dst *int, name string, v float64) error {
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v=%v is not an integer", ErrBadValue, name, v)
	}
	*dst = int(v)
	return nil
}
