// Package scoring implements the 5x5 risk matrix: score calculation, level and
// band classification, and control-based residual risk estimation. Every
// function is pure and safe for concurrent use.
package scoring

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/model/config"
	"github.com/secmon-lab/cottus/pkg/domain/types"
)

// Engine evaluates scores with a fixed set of scoring constants
type Engine struct {
	cfg *config.Scoring
}

// New creates an Engine. A nil cfg uses config.DefaultScoring().
func New(cfg *config.Scoring) *Engine {
	if cfg == nil {
		cfg = config.DefaultScoring()
	}
	return &Engine{cfg: cfg}
}

var defaultEngine = New(nil)

// Default returns the Engine built from config.DefaultScoring()
func Default() *Engine {
	return defaultEngine
}

// Config returns the scoring constants of the engine
func (e *Engine) Config() *config.Scoring {
	return e.cfg
}

// CalculateScore returns ordinal(severity) * ordinal(likelihood), always within 1..25.
// Unknown enum values fail with types.ErrInvalidArgument.
func CalculateScore(severity types.Severity, likelihood types.Likelihood) (int, error) {
	if err := severity.Validate(); err != nil {
		return 0, goerr.Wrap(err, "cannot calculate score")
	}
	if err := likelihood.Validate(); err != nil {
		return 0, goerr.Wrap(err, "cannot calculate score")
	}
	return severity.Ordinal() * likelihood.Ordinal(), nil
}

// CalculateScore is the same as the package level CalculateScore; the matrix does not depend on engine constants
func (e *Engine) CalculateScore(severity types.Severity, likelihood types.Likelihood) (int, error) {
	return CalculateScore(severity, likelihood)
}

// ClassifyLevel maps a score to a level with the engine thresholds
func (e *Engine) ClassifyLevel(score int) types.RiskLevel {
	th := e.cfg.Thresholds
	switch {
	case score >= th.Critical:
		return types.RiskLevelCritical
	case score >= th.High:
		return types.RiskLevelHigh
	case score >= th.Medium:
		return types.RiskLevelMedium
	default:
		return types.RiskLevelLow
	}
}

// ClassifyLevel maps a score to a level with the default thresholds
func ClassifyLevel(score int) types.RiskLevel {
	return defaultEngine.ClassifyLevel(score)
}

// ClassifyBand returns the first band whose [MinScore, MaxScore] contains score.
// Overlapping bands resolve to the earliest one in the given order. When no band
// covers score the second return value is false.
func ClassifyBand(score int, bands []model.Band) (*model.Band, bool) {
	for i := range bands {
		if bands[i].Contains(score) {
			band := bands[i]
			return &band, true
		}
	}
	return nil, false
}
