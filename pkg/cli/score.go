package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/cli/config"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/secmon-lab/cottus/pkg/service/scoring"
	"github.com/urfave/cli/v3"
)

var levelColors = map[types.RiskLevel]*color.Color{
	types.RiskLevelCritical: color.New(color.FgRed, color.Bold),
	types.RiskLevelHigh:     color.New(color.FgMagenta, color.Bold),
	types.RiskLevelMedium:   color.New(color.FgYellow, color.Bold),
	types.RiskLevelLow:      color.New(color.FgGreen, color.Bold),
}

func colorLevel(level types.RiskLevel) string {
	if c, ok := levelColors[level]; ok {
		return c.Sprint(level)
	}
	return string(level)
}

func formatBand(band *model.Band) string {
	if band == nil {
		return color.New(color.Faint).Sprint("(no band)")
	}
	return fmt.Sprintf("%s [%d-%d]", color.New(color.Bold).Sprint(band.Label), band.MinScore, band.MaxScore)
}

// severityLikelihoodFlags declares the pair of flags shared by score and residual
func severityLikelihoodFlags(severity, likelihood *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "severity",
			Aliases:     []string{"s"},
			Usage:       "Severity [negligible|low|medium|high|critical]",
			Required:    true,
			Destination: severity,
		},
		&cli.StringFlag{
			Name:        "likelihood",
			Aliases:     []string{"l"},
			Usage:       "Likelihood [rare|unlikely|possible|likely|almost_certain]",
			Required:    true,
			Destination: likelihood,
		},
	}
}

func parseSeverityLikelihood(severity, likelihood string) (types.Severity, types.Likelihood, error) {
	s, err := types.ParseSeverity(severity)
	if err != nil {
		return "", "", goerr.Wrap(err, "invalid --severity")
	}
	l, err := types.ParseLikelihood(likelihood)
	if err != nil {
		return "", "", goerr.Wrap(err, "invalid --likelihood")
	}
	return s, l, nil
}

func cmdScore(w io.Writer) *cli.Command {
	var severity, likelihood string
	var scoringCfg config.Scoring

	flags := severityLikelihoodFlags(&severity, &likelihood)
	flags = append(flags, scoringCfg.Flags()...)

	return &cli.Command{
		Name:  "score",
		Usage: "Calculate the inherent risk score and classify it",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			s, l, err := parseSeverityLikelihood(severity, likelihood)
			if err != nil {
				return err
			}

			cfg, err := scoringCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load scoring configuration")
			}
			engine := scoring.New(cfg.Scoring)

			score, err := engine.CalculateScore(s, l)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "Score: %d\n", score)
			fmt.Fprintf(w, "Level: %s\n", colorLevel(engine.ClassifyLevel(score)))
			if cfg.Appetite != nil {
				band, _ := scoring.ClassifyBand(score, cfg.Appetite.Bands)
				fmt.Fprintf(w, "Band:  %s\n", formatBand(band))
			}
			return nil
		},
	}
}
