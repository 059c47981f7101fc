package scoring

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
)

// EstimateResidual derives the post-control risk from the inherent severity and
// likelihood. The average effectiveness of applicable controls is capped by the
// engine (85% by default) and the residual score never drops below 1.
func (e *Engine) EstimateResidual(severity types.Severity, likelihood types.Likelihood, controls []model.ControlImplementation) (*model.ResidualRisk, error) {
	inherentScore, err := CalculateScore(severity, likelihood)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to estimate residual risk")
	}

	for i := range controls {
		if err := controls[i].Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid control implementation", goerr.V("index", i))
		}
	}

	if len(controls) == 0 {
		return &model.ResidualRisk{
			Severity:      severity,
			Likelihood:    likelihood,
			Score:         inherentScore,
			Level:         e.ClassifyLevel(inherentScore),
			InherentScore: inherentScore,
		}, nil
	}

	effectiveness := math.Min(e.averageEffectiveness(controls), e.cfg.EffectivenessCap)

	residualScore := int(math.Round(float64(inherentScore) * (1 - effectiveness)))
	if residualScore < model.MinRiskScore {
		residualScore = model.MinRiskScore
	}

	sevOrdinal, likOrdinal := e.walkOrdinals(severity.Ordinal(), likelihood.Ordinal(), inherentScore-residualScore)

	// ordinals stay within 1..5, so the conversions cannot fail
	residualSeverity, _ := types.SeverityFromOrdinal(sevOrdinal)
	residualLikelihood, _ := types.LikelihoodFromOrdinal(likOrdinal)

	return &model.ResidualRisk{
		Severity:      residualSeverity,
		Likelihood:    residualLikelihood,
		Score:         residualScore,
		Level:         e.ClassifyLevel(residualScore),
		InherentScore: inherentScore,
		Effectiveness: effectiveness,
	}, nil
}

// EstimateResidual runs Default().EstimateResidual
func EstimateResidual(severity types.Severity, likelihood types.Likelihood, controls []model.ControlImplementation) (*model.ResidualRisk, error) {
	return defaultEngine.EstimateResidual(severity, likelihood, controls)
}

// averageEffectiveness is the mean factor of controls that are not not_applicable, or 0 if there are none
func (e *Engine) averageEffectiveness(controls []model.ControlImplementation) float64 {
	var sum float64
	var applicable int

	for _, c := range controls {
		if c.Status == types.ImplementationStatusNotApplicable {
			continue
		}

		factor := e.cfg.StatusFactors[c.Status]
		if c.EffectivenessEstimate != nil {
			factor *= float64(*c.EffectivenessEstimate) / 100
		}

		sum += factor
		applicable++
	}

	if applicable == 0 {
		return 0
	}
	return sum / float64(applicable)
}

// walkOrdinals restates a score reduction as ordinal steps, lowering likelihood
// first and then severity, one step at a time, never below 1.
func (e *Engine) walkOrdinals(severity, likelihood, reduction int) (int, int) {
	remaining := reduction
	for remaining > 0 && (likelihood > 1 || severity > 1) {
		if likelihood > 1 {
			likelihood--
			remaining -= e.cfg.StepWeight
		}
		if remaining > 0 && severity > 1 {
			severity--
			remaining -= e.cfg.StepWeight
		}
	}
	return severity, likelihood
}
