package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/cli/config"
	httpctrl "github.com/secmon-lab/cottus/pkg/controller/http"
	"github.com/secmon-lab/cottus/pkg/service/scoring"
	"github.com/secmon-lab/cottus/pkg/service/worker"
	"github.com/secmon-lab/cottus/pkg/usecase"
	"github.com/secmon-lab/cottus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var breachInterval time.Duration
	var assessConcurrency int
	var maxUploadSize int64
	var scoringCfg config.Scoring
	var repoCfg config.Repository
	var storageCfg config.Storage
	var slackCfg config.Slack
	var geminiCfg config.Gemini
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("COTTUS_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "breach-check-interval",
			Usage:       "Interval of appetite breach checks (0 disables, requires Slack)",
			Value:       10 * time.Minute,
			Sources:     cli.EnvVars("COTTUS_BREACH_CHECK_INTERVAL"),
			Destination: &breachInterval,
		},
		&cli.IntFlag{
			Name:        "assess-concurrency",
			Usage:       "Number of risks assessed in parallel",
			Value:       8,
			Sources:     cli.EnvVars("COTTUS_ASSESS_CONCURRENCY"),
			Destination: &assessConcurrency,
		},
		&cli.Int64Flag{
			Name:        "max-upload-size",
			Usage:       "Largest accepted framework spreadsheet in bytes",
			Value:       32 << 20,
			Sources:     cli.EnvVars("COTTUS_MAX_UPLOAD_SIZE"),
			Destination: &maxUploadSize,
		},
	}

	flags = append(flags, scoringCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			sentryCfg.SetRelease(version)
			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			scoringConfig, err := scoringCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load scoring configuration")
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

			ucOpts := []usecase.Option{
				usecase.WithScoringEngine(scoring.New(scoringConfig.Scoring)),
				usecase.WithBlobStore(blobStore),
				usecase.WithAssessConcurrency(assessConcurrency),
			}

			notifier, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack")
			}
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
				logging.Default().Info("Slack notifications enabled", "slack", slackCfg)
			} else {
				logging.Default().Info("Slack not configured, notifications disabled")
			}

			assistant, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure gemini")
			}
			if assistant != nil {
				ucOpts = append(ucOpts, usecase.WithMappingAssistant(assistant))
				logging.Default().LogAttrs(ctx, slog.LevelInfo, "AI column mapping enabled", geminiCfg.LogAttrs()...)
			}

			uc := usecase.New(repo, ucOpts...)

			if scoringConfig.Appetite != nil {
				if _, err := uc.Appetite.PutAppetite(ctx, scoringConfig.Appetite); err != nil {
					return goerr.Wrap(err, "failed to register configured appetite")
				}
				logging.Default().Info("Configured appetite registered",
					"appetite_id", scoringConfig.Appetite.ID, "name", scoringConfig.Appetite.Name)
			}

			var breachWorker *worker.AppetiteBreachWorker
			if notifier != nil && breachInterval > 0 {
				breachWorker = worker.NewAppetiteBreachWorker(uc.Risk, notifier, breachInterval)
				if err := breachWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start appetite breach worker")
				}
				defer breachWorker.Stop()
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithMaxUploadSize(maxUploadSize)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "repository", repoCfg)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
