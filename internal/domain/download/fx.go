package download

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"go.uber.org/fx"

	"github.com/Conte777/mediaflow/internal/domain"
	"github.com/Conte777/mediaflow/internal/domain/download/deps"
	"github.com/Conte777/mediaflow/internal/domain/download/usecase/business"
	"github.com/Conte777/mediaflow/internal/domain/placement"
)

// Module provides download components for fx DI
var Module = fx.Module("download",
	fx.Provide(NewResolverFx),
	fx.Provide(NewDownloadUseCaseFx),
)

// NewResolverFx creates a placement resolver for fx DI
func NewResolverFx(fs afero.Fs, logger zerolog.Logger) *placement.Resolver {
	return placement.NewResolver(fs, logger)
}

// NewDownloadUseCaseFx creates a download use case for fx DI. mirror is nil
// when object storage is disabled.
func NewDownloadUseCaseFx(
	resolver *placement.Resolver,
	recorder deps.Recorder,
	mirror domain.Mirror,
	logger zerolog.Logger,
) *business.DownloadUseCase {
	return business.NewDownloadUseCase(resolver, recorder, mirror, logger)
}
