package epidemic

import (
	"errors"
	"fmt"
	"strings"
)

// the health state of a node
type State int

const (
	Susceptible State = iota
	Infected
	Resistant
)

func (s State) String() string {
	switch s {
	case Susceptible:
		return "SUSCEPTIBLE"
	case Infected:
		return "INFECTED"
	case Resistant:
		return "RESISTANT"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	switch s {
	case Susceptible, Infected, Resistant:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("epidemic: cannot marshal %v", s)
}

func (s *State) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "SUSCEPTIBLE":
		*s = Susceptible
	case "INFECTED":
		*s = Infected
	case "RESISTANT":
		*s = Resistant
	default:
		return fmt.Errorf("epidemic: unknown state %q", string(b))
	}
	return nil
}

// ModelType selects the reachable transition set.  RESISTANT is only
// reachable under SIR.
type ModelType int

const (
	SIS ModelType = iota
	SIR
)

var ErrUnknownModelType = errors.New("epidemic: unknown model type")

func (t ModelType) String() string {
	switch t {
	case SIS:
		return "SIS"
	case SIR:
		return "SIR"
	default:
		return fmt.Sprintf("ModelType(%d)", int(t))
	}
}

// ParseModelType accepts "SIS" or "SIR" (case insensitive).
func ParseModelType(name string) (ModelType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SIS":
		return SIS, nil
	case "SIR":
		return SIR, nil
	}
	return 0, fmt.Errorf("%w: %q (valid types are SIS, SIR)", ErrUnknownModelType, name)
}
