package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/cli/config"
	"github.com/secmon-lab/cottus/pkg/domain/model"
	"github.com/secmon-lab/cottus/pkg/domain/types"
	"github.com/secmon-lab/cottus/pkg/service/mapping"
	"github.com/secmon-lab/cottus/pkg/usecase"
	"github.com/secmon-lab/cottus/pkg/utils/logging"
	"github.com/secmon-lab/cottus/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// parseMapOverride reads "Column=field". An empty field or "none" unmaps the column.
func parseMapOverride(arg string) (string, types.TargetField, error) {
	column, field, ok := strings.Cut(arg, "=")
	column = strings.TrimSpace(column)
	if !ok || column == "" {
		return "", "", goerr.Wrap(types.ErrInvalidArgument, "--map must be column=field", goerr.V("map", arg))
	}

	field = strings.ToLower(strings.TrimSpace(field))
	if field == "" || field == "none" {
		return column, types.TargetFieldNone, nil
	}
	target := types.TargetField(field)
	if !target.IsValid() {
		return "", "", goerr.Wrap(types.ErrInvalidArgument, "unknown target field",
			goerr.V("map", arg), goerr.V("field", field))
	}
	return column, target, nil
}

func printMappings(w io.Writer, mappings []model.ColumnMapping) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tFIELD\tCONFIDENCE\tREASON")
	for _, m := range mappings {
		field := string(m.TargetField)
		if !m.TargetField.IsMapped() {
			field = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", m.SourceColumn, field, m.Confidence, m.Reasoning)
	}
	_ = tw.Flush()
}

func cmdImport(w io.Writer) *cli.Command {
	var frameworkID string
	var frameworkName string
	var frameworkVersion string
	var filePath string
	var objectKey string
	var overrides []string
	var replace bool
	var dryRun bool
	var repoCfg config.Repository
	var storageCfg config.Storage
	var geminiCfg config.Gemini

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "framework",
			Usage:       "ID of the framework receiving the controls",
			Destination: &frameworkID,
		},
		&cli.StringFlag{
			Name:        "framework-name",
			Usage:       "Create a new framework with this name instead of --framework",
			Destination: &frameworkName,
		},
		&cli.StringFlag{
			Name:        "framework-version",
			Usage:       "Version of the framework created by --framework-name",
			Destination: &frameworkVersion,
		},
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Local spreadsheet (.csv, .tsv or .xlsx) to upload and import",
			Destination: &filePath,
		},
		&cli.StringFlag{
			Name:        "object",
			Usage:       "Storage key of a spreadsheet uploaded earlier",
			Destination: &objectKey,
		},
		&cli.StringSliceFlag{
			Name:        "map",
			Aliases:     []string{"m"},
			Usage:       "Override a suggested mapping as column=field (field 'none' unmaps; can be specified multiple times)",
			Destination: &overrides,
		},
		&cli.BoolFlag{
			Name:        "replace",
			Usage:       "Delete existing controls of the framework first",
			Destination: &replace,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Show mappings and row counts without writing controls",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Import framework controls from a spreadsheet",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if (filePath == "") == (objectKey == "") {
				return goerr.Wrap(types.ErrInvalidArgument, "exactly one of --file or --object is required")
			}
			if (frameworkID == "") == (frameworkName == "") {
				return goerr.Wrap(types.ErrInvalidArgument, "exactly one of --framework or --framework-name is required")
			}

			type override struct {
				column string
				field  types.TargetField
			}
			parsed := make([]override, 0, len(overrides))
			for _, arg := range overrides {
				column, field, err := parseMapOverride(arg)
				if err != nil {
					return err
				}
				parsed = append(parsed, override{column: column, field: field})
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(ctx); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			blobStore, closeBlob, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize blob store")
			}
			defer closeBlob()

			ucOpts := []usecase.Option{usecase.WithBlobStore(blobStore)}
			assistant, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure gemini")
			}
			if assistant != nil {
				ucOpts = append(ucOpts, usecase.WithMappingAssistant(assistant))
			}
			uc := usecase.New(repo, ucOpts...)

			var fw *model.Framework
			if frameworkID != "" {
				fw, err = uc.Import.GetFramework(ctx, model.FrameworkID(frameworkID))
			} else {
				fw, err = uc.Import.CreateFramework(ctx, &model.Framework{Name: frameworkName, Version: frameworkVersion})
			}
			if err != nil {
				return err
			}

			key := objectKey
			if filePath != "" {
				// #nosec G304 - path is expected to be provided by CLI argument
				f, err := os.Open(filePath)
				if err != nil {
					return goerr.Wrap(err, "failed to open spreadsheet", goerr.V("path", filePath))
				}
				defer safe.Close(ctx, f)

				key, err = uc.Import.Upload(ctx, filepath.Base(filePath), f)
				if err != nil {
					return err
				}
			}

			preview, err := uc.Import.Preview(ctx, key)
			if err != nil {
				return err
			}

			mappings := preview.Mappings
			for _, o := range parsed {
				mappings = mapping.UpdateMapping(mappings, o.column, o.field)
			}
			printMappings(w, mappings)

			result, err := uc.Import.Import(ctx, usecase.ImportInput{
				FrameworkID: fw.ID,
				StorageKey:  key,
				Mappings:    mappings,
				Replace:     replace,
				DryRun:      dryRun,
			})
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			fmt.Fprintln(w)
			if dryRun {
				fmt.Fprintln(w, color.New(color.FgYellow).Sprint("Dry run: nothing was written"))
			}
			fmt.Fprintf(w, "Framework: %s (%s)\n", bold.Sprint(fw.Name), fw.ID)
			fmt.Fprintf(w, "Imported:  %d\n", result.Imported)
			fmt.Fprintf(w, "Skipped:   %d (rows without title)\n", result.Skipped)
			if replace {
				fmt.Fprintf(w, "Replaced:  %d\n", result.Replaced)
			}
			for _, target := range result.DuplicateTargets {
				fmt.Fprintf(w, "%s several columns map to %s, the rightmost wins\n",
					color.New(color.FgYellow).Sprint("warning:"), target)
			}
			return nil
		},
	}
}
