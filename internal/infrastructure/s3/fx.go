package s3

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"go.uber.org/fx"

	"github.com/Conte777/mediaflow/config"
	"github.com/Conte777/mediaflow/internal/domain"
)

// Module provides the optional S3/MinIO mirror for FX
var Module = fx.Module("s3",
	fx.Provide(NewMirrorFx),
)

// NewMirrorFx creates the mirror when S3 is enabled. It returns a nil
// domain.Mirror otherwise, which disables mirroring.
func NewMirrorFx(lc fx.Lifecycle, cfg *config.S3Config, fs afero.Fs, logger zerolog.Logger) (domain.Mirror, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client, err := NewClient(cfg, fs, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info().Msg("initializing S3/MinIO client...")
			if err := client.EnsureBucket(ctx); err != nil {
				return err
			}
			logger.Info().Msg("S3/MinIO client initialized successfully")
			return nil
		},
	})

	return client, nil
}
