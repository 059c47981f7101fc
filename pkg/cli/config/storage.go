package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cottus/pkg/domain/interfaces"
	"github.com/secmon-lab/cottus/pkg/service/blob"
	"github.com/secmon-lab/cottus/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage holds where uploaded framework spreadsheets are kept
type Storage struct {
	bucket string
	prefix string
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket for uploaded framework files (in-memory when empty)",
			Category:    "Storage",
			Destination: &x.bucket,
			Sources:     cli.EnvVars("COTTUS_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix in the bucket",
			Category:    "Storage",
			Destination: &x.prefix,
			Sources:     cli.EnvVars("COTTUS_GCS_PREFIX"),
		},
	}
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
	)
}

// Configure returns the blob store and a function releasing it
func (x *Storage) Configure(ctx context.Context) (interfaces.BlobStore, func(), error) {
	if x.bucket == "" {
		logging.Default().Info("Using in-memory blob store (development mode)")
		return blob.NewMemory(), func() {}, nil
	}

	store, err := blob.NewGCS(ctx, x.bucket, x.prefix)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize cloud storage", goerr.V("bucket", x.bucket))
	}
	logging.Default().Info("Using Cloud Storage blob store", "storage", x)

	return store, func() {
		if err := store.Close(); err != nil {
			logging.Default().Error("failed to close cloud storage client", "error", err.Error())
		}
	}, nil
}
