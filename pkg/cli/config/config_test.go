package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cottus/pkg/cli/config"
	"github.com/secmon-lab/cottus/pkg/domain/types"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadScoringConfig(t *testing.T) {
	t.Run("toml with appetite", func(t *testing.T) {
		path := writeConfig(t, "scoring.toml", `
effectiveness_cap = 0.9
step_weight = 4

[thresholds]
medium = 8
high = 12
critical = 18

[status_factors]
planned = 0.1

[appetite]
name = "Corporate"
tolerance = 9

  [[appetite.bands]]
  label = "Acceptable"
  color = "#38A169"
  min_score = 1
  max_score = 9

  [[appetite.bands]]
  label = "Unacceptable"
  min_score = 10
  max_score = 25
`)
		cfg, err := config.LoadScoringConfig(path)
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.Scoring.Thresholds.Medium).Equal(8)
		gt.Value(t, cfg.Scoring.Thresholds.Critical).Equal(18)
		gt.Value(t, cfg.Scoring.EffectivenessCap).Equal(0.9)
		gt.Value(t, cfg.Scoring.StepWeight).Equal(4)
		gt.Value(t, cfg.Scoring.StatusFactors[types.ImplementationStatusPlanned]).Equal(0.1)
		gt.Value(t, cfg.Scoring.StatusFactors[types.ImplementationStatusImplemented]).Equal(1.0)

		gt.Value(t, cfg.Appetite).NotNil()
		gt.Value(t, cfg.Appetite.ID).Equal(config.DefaultAppetiteID)
		gt.Value(t, cfg.Appetite.Tolerance).Equal(9)
		gt.Array(t, cfg.Appetite.Bands).Length(2)
		gt.Value(t, cfg.Appetite.Bands[0].Label).Equal("Acceptable")
	})

	t.Run("yaml keeps omitted defaults", func(t *testing.T) {
		path := writeConfig(t, "scoring.yaml", `
step_weight: 2
appetite:
  tolerance: 12
  bands:
    - label: Low
      min_score: 1
      max_score: 12
`)
		cfg, err := config.LoadScoringConfig(path)
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.Scoring.Thresholds.Critical).Equal(20)
		gt.Value(t, cfg.Scoring.EffectivenessCap).Equal(0.85)
		gt.Value(t, cfg.Scoring.StepWeight).Equal(2)
		gt.Value(t, cfg.Appetite.Name).Equal("default")
	})

	t.Run("no appetite", func(t *testing.T) {
		cfg, err := config.LoadScoringConfig(writeConfig(t, "scoring.yml", "step_weight: 3\n"))
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.Appetite).Nil()
	})

	errorCases := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{
			name:    "unsupported extension",
			file:    "scoring.json",
			content: "{}",
			wantErr: config.ErrUnsupportedConfigFormat,
		},
		{
			name:    "broken toml",
			file:    "scoring.toml",
			content: "[thresholds\n",
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "thresholds not ascending",
			file:    "scoring.toml",
			content: "[thresholds]\nmedium = 15\nhigh = 10\ncritical = 20\n",
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "cap above one",
			file:    "scoring.yaml",
			content: "effectiveness_cap: 1.5\n",
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "unknown status",
			file:    "scoring.yaml",
			content: "status_factors:\n  done: 0.5\n",
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "band out of range",
			file:    "scoring.yaml",
			content: "appetite:\n  bands:\n    - label: x\n      min_score: 0\n      max_score: 30\n",
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.LoadScoringConfig(writeConfig(t, tc.file, tc.content))
			gt.Error(t, err).Is(tc.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadScoringConfig(filepath.Join(t.TempDir(), "none.toml"))
		gt.Value(t, err).NotNil()
	})
}

func TestScoring_Configure(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		cfg, err := config.NewScoringForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.Scoring.Thresholds.High).Equal(15)
		gt.Value(t, cfg.Appetite).Nil()
	})

	t.Run("returns flags", func(t *testing.T) {
		gt.Array(t, (&config.Scoring{}).Flags()).Length(1)
	})
}
