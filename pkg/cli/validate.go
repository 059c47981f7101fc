package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/cli/config"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdValidate(w io.Writer) *cli.Command {
	var path string

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a scoring configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Scoring configuration file (.toml, .yaml or .yml)",
				Required:    true,
				Sources:     cli.EnvVars("COTTUS_CONFIG"),
				Destination: &path,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.LoadScoringConfig(path)
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			th := cfg.Scoring.Thresholds
			fmt.Fprintf(w, "%s %s\n", color.New(color.FgGreen, color.Bold).Sprint("valid:"), path)
			fmt.Fprintf(w, "  thresholds:        medium>=%d high>=%d critical>=%d\n", th.Medium, th.High, th.Critical)
			fmt.Fprintf(w, "  effectiveness cap: %.2f\n", cfg.Scoring.EffectivenessCap)
			fmt.Fprintf(w, "  step weight:       %d\n", cfg.Scoring.StepWeight)
			for _, status := range types.AllImplementationStatuses() {
				if factor, ok := cfg.Scoring.StatusFactors[status]; ok {
					fmt.Fprintf(w, "  factor %-12s %.2f\n", status+":", factor)
				}
			}

			if cfg.Appetite == nil {
				fmt.Fprintln(w, "  appetite:          (none)")
				return nil
			}
			fmt.Fprintf(w, "  appetite:          %s (tolerance %d)\n", cfg.Appetite.Name, cfg.Appetite.Tolerance)
			for _, b := range cfg.Appetite.Bands {
				fmt.Fprintf(w, "    %-16s %d-%d\n", b.Label, b.MinScore, b.MaxScore)
			}
			for _, pair := range cfg.Appetite.OverlappingBands() {
				fmt.Fprintf(w, "  %s bands %q and %q overlap, the earlier band wins\n",
					color.New(color.FgYellow).Sprint("warning:"),
					cfg.Appetite.Bands[pair[0]].Label, cfg.Appetite.Bands[pair[1]].Label)
			}
			return nil
		},
	}
}
