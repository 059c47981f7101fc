package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/interfaces"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/secmon-lab/cottus/pkg/service/scoring"
)

// ScoringUseCase exposes stateless scoring for ad-hoc evaluation
type ScoringUseCase struct {
	repo   interfaces.Repository
	engine *scoring.Engine
}

func NewScoringUseCase(repo interfaces.Repository, engine *scoring.Engine) *ScoringUseCase {
	return &ScoringUseCase{
		repo:   repo,
		engine: engine,
	}
}

// ScoreInput selects bands either by appetite ID or inline. AppetiteID wins when both are set.
type ScoreInput struct {
	Severity   types.Severity
	Likelihood types.Likelihood
	AppetiteID model.AppetiteID
	Bands      []model.Band
}

// ScoreResult is the inherent evaluation of a severity and likelihood pair
type ScoreResult struct {
	Score int
	Level types.RiskLevel
	// Band is nil when no band covers Score
	Band *model.Band
}

func (uc *ScoringUseCase) Score(ctx context.Context, input ScoreInput) (*ScoreResult, error) {
	score, err := uc.engine.CalculateScore(input.Severity, input.Likelihood)
	if err != nil {
		return nil, err
	}

	bands := input.Bands
	if input.AppetiteID != "" {
		appetite, err := uc.repo.Appetite().Get(ctx, input.AppetiteID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, goerr.Wrap(ErrAppetiteNotFound, "appetite not found", goerr.V(model.AppetiteIDKey, input.AppetiteID))
			}
			return nil, goerr.Wrap(err, "failed to get appetite", goerr.V(model.AppetiteIDKey, input.AppetiteID))
		}
		bands = appetite.Bands
	}

	result := &ScoreResult{
		Score: score,
		Level: uc.engine.ClassifyLevel(score),
	}
	if band, ok := scoring.ClassifyBand(score, bands); ok {
		result.Band = band
	}
	return result, nil
}

// Residual estimates residual risk for controls that are not stored anywhere
func (uc *ScoringUseCase) Residual(ctx context.Context, severity types.Severity, likelihood types.Likelihood, controls []model.ControlImplementation) (*model.ResidualRisk, error) {
	return uc.engine.EstimateResidual(severity, likelihood, controls)
}

// Engine returns the scoring engine in use
func (uc *ScoringUseCase) Engine() *scoring.Engine {
	return uc.engine
}
