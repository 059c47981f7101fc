package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/cli/config"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/secmon-lab/cottus/pkg/service/scoring"
	"github.com/urfave/cli/v3"
)

// parseControlSpec reads "status" or "status:effectiveness", e.g. "implemented:80"
func parseControlSpec(arg string) (model.ControlImplementation, error) {
	statusPart, effPart, hasEff := strings.Cut(arg, ":")

	status, err := types.ParseImplementationStatus(statusPart)
	if err != nil {
		return model.ControlImplementation{}, goerr.Wrap(err, "invalid --control", goerr.V("control", arg))
	}

	impl := model.ControlImplementation{Status: status}
	if hasEff {
		v, err := strconv.Atoi(strings.TrimSpace(effPart))
		if err != nil {
			return model.ControlImplementation{}, goerr.Wrap(types.ErrInvalidArgument,
				"effectiveness must be an integer", goerr.V("control", arg))
		}
		impl.EffectivenessEstimate = model.Effectiveness(v)
	}
	return impl, nil
}

func cmdResidual(w io.Writer) *cli.Command {
	var severity, likelihood string
	var controlSpecs []string
	var scoringCfg config.Scoring

	flags := severityLikelihoodFlags(&severity, &likelihood)
	flags = append(flags, &cli.StringSliceFlag{
		Name:        "control",
		Usage:       "Control as status[:effectiveness], e.g. implemented:80 (can be specified multiple times)",
		Destination: &controlSpecs,
	})
	flags = append(flags, scoringCfg.Flags()...)

	return &cli.Command{
		Name:  "residual",
		Usage: "Estimate residual risk after controls",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			s, l, err := parseSeverityLikelihood(severity, likelihood)
			if err != nil {
				return err
			}

			controls := make([]model.ControlImplementation, 0, len(controlSpecs))
			for _, arg := range controlSpecs {
				impl, err := parseControlSpec(arg)
				if err != nil {
					return err
				}
				controls = append(controls, impl)
			}

			cfg, err := scoringCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load scoring configuration")
			}
			engine := scoring.New(cfg.Scoring)

			residual, err := engine.EstimateResidual(s, l, controls)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "Inherent score: %d (%s)\n", residual.InherentScore, colorLevel(engine.ClassifyLevel(residual.InherentScore)))
			fmt.Fprintf(w, "Effectiveness:  %.0f%%\n", residual.Effectiveness*100)
			fmt.Fprintf(w, "Residual score: %d (%s)\n", residual.Score, colorLevel(residual.Level))
			fmt.Fprintf(w, "Restated as:    %s / %s\n", residual.Severity, residual.Likelihood)
			if cfg.Appetite != nil {
				band, _ := scoring.ClassifyBand(residual.Score, cfg.Appetite.Bands)
				fmt.Fprintf(w, "Band:           %s\n", formatBand(band))
				if cfg.Appetite.Tolerance > 0 && residual.Score > cfg.Appetite.Tolerance {
					fmt.Fprintf(w, "Tolerance:      %s (%d)\n", levelColors[types.RiskLevelCritical].Sprint("exceeded"), cfg.Appetite.Tolerance)
				}
			}
			return nil
		},
	}
}
