package epidemic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrTooManyInfected = errors.New("epidemic: more initial infections than nodes")
	ErrInvalidParams   = errors.New("epidemic: invalid parameters")
)

// DefaultCutoffThreshold is the infected fraction at which a run with the
// cutoff enabled stops.
const DefaultCutoffThreshold = 0.9

// Params is the construction parameter set of one simulation run.
type Params struct {
	// average degree; the edge probability is K/N
	K int `json:"K" yaml:"K" validate:"gte=0,ltefield=N"`
	// number of nodes
	N                int     `json:"N" yaml:"N" validate:"gte=1"`
	RecoveryChance   float64 `json:"recovery_chance" yaml:"recovery_chance" validate:"gte=0,lte=1"`
	VaccineChance    float64 `json:"vaccine_chance" yaml:"vaccine_chance" validate:"gte=0,lte=1"`
	ResistanceChance float64 `json:"resistance_chance" yaml:"resistance_chance" validate:"gte=0,lte=1"`
	Infectivity      float64 `json:"infectivity" yaml:"infectivity" validate:"gte=0,lte=1"`
	NumInfected      int     `json:"num_infected" yaml:"num_infected" validate:"gte=0"`
	// SIS or SIR
	ModelType string `json:"model_type" yaml:"model_type"`

	// early stop policy: the run stops on the first step where the infected
	// fraction reaches CutoffThreshold
	Cutoff          bool    `json:"cutoff" yaml:"cutoff"`
	CutoffThreshold float64 `json:"cutoff_threshold" yaml:"cutoff_threshold" validate:"gte=0,lte=1"`
}

// DefaultParams returns the parameters of the reference model.
func DefaultParams() Params {
	return Params{
		K:                10,
		N:                500,
		RecoveryChance:   0.01,
		VaccineChance:    0.01,
		ResistanceChance: 0.3,
		Infectivity:      0.2,
		NumInfected:      1,
		ModelType:        SIS.String(),
		Cutoff:           true,
		CutoffThreshold:  DefaultCutoffThreshold,
	}
}

var validate = validator.New()

// Validate checks p and returns the parsed model type.
func (p Params) Validate() (ModelType, error) {
	mt, err := ParseModelType(p.ModelType)
	if err != nil {
		return 0, err
	}
	if p.NumInfected > p.N {
		return 0, fmt.Errorf("%w: num_infected=%d, N=%d", ErrTooManyInfected, p.NumInfected, p.N)
	}
	if err := validate.Struct(p); err != nil {
		return 0, formatValidationError(err)
	}
	return mt, nil
}

// EdgeProbability is the independent edge probability K/N.
func (p Params) EdgeProbability() float64 {
	return float64(p.K) / float64(p.N)
}

func (p Params) rates(mt ModelType) Rates {
	return Rates{
		Recovery:   p.RecoveryChance,
		Resistance: p.ResistanceChance,
		Vaccine:    p.VaccineChance,
		Type:       mt,
	}
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidParams, strings.Join(msgs, "; "))
}
