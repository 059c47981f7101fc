package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	domainConfig "github.com/secmon-lab/cottus/pkg/domain/model/config"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// DefaultAppetiteID is the ID of the appetite declared in the configuration file
const DefaultAppetiteID model.AppetiteID = "default"

// ScoringFile is the on-disk scoring configuration. Omitted values keep their defaults.
type ScoringFile struct {
	Thresholds       ThresholdsFile     `toml:"thresholds" yaml:"thresholds"`
	EffectivenessCap *float64           `toml:"effectiveness_cap" yaml:"effectiveness_cap"`
	StepWeight       int                `toml:"step_weight" yaml:"step_weight"`
	StatusFactors    map[string]float64 `toml:"status_factors" yaml:"status_factors"`
	Appetite         *AppetiteFile      `toml:"appetite" yaml:"appetite"`
}

// ThresholdsFile holds the lowest score of each level above low
type ThresholdsFile struct {
	Medium   int `toml:"medium" yaml:"medium"`
	High     int `toml:"high" yaml:"high"`
	Critical int `toml:"critical" yaml:"critical"`
}

// AppetiteFile declares the default risk appetite
type AppetiteFile struct {
	Name        string     `toml:"name" yaml:"name"`
	Description string     `toml:"description" yaml:"description"`
	Tolerance   int        `toml:"tolerance" yaml:"tolerance"`
	Bands       []BandFile `toml:"bands" yaml:"bands"`
}

// BandFile is one appetite band
type BandFile struct {
	Label       string `toml:"label" yaml:"label"`
	Color       string `toml:"color" yaml:"color"`
	MinScore    int    `toml:"min_score" yaml:"min_score"`
	MaxScore    int    `toml:"max_score" yaml:"max_score"`
	Description string `toml:"description" yaml:"description"`
}

// ScoringConfig is the validated result of loading a scoring configuration
type ScoringConfig struct {
	Scoring *domainConfig.Scoring
	// Appetite is nil when the file declares none
	Appetite *model.RiskAppetite
}

// LoadScoringConfig reads a TOML or YAML scoring configuration, chosen by extension,
// merges it over the defaults and validates the result.
func LoadScoringConfig(path string) (*ScoringConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var file ScoringFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
				goerr.V(ConfigPathKey, path), goerr.V("error", err.Error()))
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse YAML config",
				goerr.V(ConfigPathKey, path), goerr.V("error", err.Error()))
		}
	default:
		return nil, goerr.Wrap(ErrUnsupportedConfigFormat, "config file must be .toml, .yaml or .yml",
			goerr.V(ConfigPathKey, path))
	}

	cfg, err := file.ToScoringConfig()
	if err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}
	return cfg, nil
}

// ToScoringConfig merges the file over the default scoring constants and validates it
func (f *ScoringFile) ToScoringConfig() (*ScoringConfig, error) {
	scoring := domainConfig.DefaultScoring()

	if f.Thresholds != (ThresholdsFile{}) {
		scoring.Thresholds = domainConfig.LevelThresholds{
			Medium:   f.Thresholds.Medium,
			High:     f.Thresholds.High,
			Critical: f.Thresholds.Critical,
		}
	}
	if f.EffectivenessCap != nil {
		scoring.EffectivenessCap = *f.EffectivenessCap
	}
	if f.StepWeight != 0 {
		scoring.StepWeight = f.StepWeight
	}
	for key, factor := range f.StatusFactors {
		status, err := types.ParseImplementationStatus(key)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "unknown status in status_factors", goerr.V(StatusKey, key))
		}
		scoring.StatusFactors[status] = factor
	}

	if err := scoring.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid scoring constants", goerr.V("error", err.Error()))
	}

	cfg := &ScoringConfig{Scoring: scoring}
	if f.Appetite != nil {
		appetite := f.Appetite.toModel()
		if err := appetite.Validate(); err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "invalid appetite", goerr.V("error", err.Error()))
		}
		cfg.Appetite = appetite
	}
	return cfg, nil
}

func (a *AppetiteFile) toModel() *model.RiskAppetite {
	bands := make([]model.Band, len(a.Bands))
	for i, b := range a.Bands {
		bands[i] = model.Band{
			Label:       b.Label,
			Color:       b.Color,
			MinScore:    b.MinScore,
			MaxScore:    b.MaxScore,
			Description: b.Description,
		}
	}

	name := a.Name
	if name == "" {
		name = string(DefaultAppetiteID)
	}
	return &model.RiskAppetite{
		ID:          DefaultAppetiteID,
		Name:        name,
		Description: a.Description,
		Tolerance:   a.Tolerance,
		Bands:       bands,
	}
}

// Scoring holds the CLI flag pointing at the scoring configuration file
type Scoring struct {
	path string
}

// Flags returns CLI flags for scoring configuration
func (s *Scoring) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Scoring configuration file (.toml, .yaml or .yml)",
			Sources:     cli.EnvVars("COTTUS_CONFIG"),
			Destination: &s.path,
		},
	}
}

// Path returns the configured file path
func (s *Scoring) Path() string {
	return s.path
}

// Configure loads the configuration file, or returns the defaults when no file is set
func (s *Scoring) Configure() (*ScoringConfig, error) {
	if s.path == "" {
		return &ScoringConfig{Scoring: domainConfig.DefaultScoring()}, nil
	}
	return LoadScoringConfig(s.path)
}
