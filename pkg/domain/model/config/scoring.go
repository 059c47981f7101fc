package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/types"
)

// LevelThresholds are the lowest scores of each level above low
type LevelThresholds struct {
	Medium   int
	High     int
	Critical int
}

// Scoring holds the product-tunable constants of risk scoring and residual estimation
type Scoring struct {
	Thresholds LevelThresholds
	// EffectivenessCap is the maximum fraction of inherent risk controls may remove
	EffectivenessCap float64
	// StepWeight is how many score points one ordinal step is assumed to be worth
	StepWeight int
	// StatusFactors is the base effectiveness factor per implementation status
	StatusFactors map[types.ImplementationStatus]float64
}

// DefaultScoring returns the canonical constants: 20/15/10 level cut points,
// an 85% effectiveness cap and 3 points per ordinal step.
func DefaultScoring() *Scoring {
	return &Scoring{
		Thresholds: LevelThresholds{
			Medium:   10,
			High:     15,
			Critical: 20,
		},
		EffectivenessCap: 0.85,
		StepWeight:       3,
		StatusFactors: map[types.ImplementationStatus]float64{
			types.ImplementationStatusImplemented: 1.0,
			types.ImplementationStatusInProgress:  0.5,
			types.ImplementationStatusPlanned:     0.2,
		},
	}
}

// Validate checks that thresholds ascend within 1..25 and that every fraction lies in 0..1
func (s *Scoring) Validate() error {
	th := s.Thresholds
	if th.Medium < 1 || th.Medium >= th.High || th.High >= th.Critical || th.Critical > 25 {
		return goerr.Wrap(types.ErrInvalidArgument, "level thresholds must satisfy 1 <= medium < high < critical <= 25",
			goerr.V("medium", th.Medium), goerr.V("high", th.High), goerr.V("critical", th.Critical))
	}
	if s.EffectivenessCap < 0 || s.EffectivenessCap > 1 {
		return goerr.Wrap(types.ErrInvalidArgument, "effectiveness cap must be within 0..1",
			goerr.V("effectiveness_cap", s.EffectivenessCap))
	}
	if s.StepWeight < 1 {
		return goerr.Wrap(types.ErrInvalidArgument, "step weight must be positive",
			goerr.V("step_weight", s.StepWeight))
	}
	for status, factor := range s.StatusFactors {
		if !status.IsValid() || status == types.ImplementationStatusNotApplicable {
			return goerr.Wrap(types.ErrInvalidArgument, "status factor defined for unsupported status",
				goerr.V("status", status))
		}
		if factor < 0 || factor > 1 {
			return goerr.Wrap(types.ErrInvalidArgument, "status factor must be within 0..1",
				goerr.V("status", status), goerr.V("factor", factor))
		}
	}
	return nil
}
