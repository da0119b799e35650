package app

import (
	"go.uber.org/fx"

	"github.com/Conte777/mediaflow/config"
	httpdelivery "github.com/Conte777/mediaflow/internal/delivery/http"
	"github.com/Conte777/mediaflow/internal/domain/auth"
	"github.com/Conte777/mediaflow/internal/domain/chat"
	"github.com/Conte777/mediaflow/internal/domain/download"
	"github.com/Conte777/mediaflow/internal/infrastructure"
	"github.com/Conte777/mediaflow/internal/usecase"
)

// CreateApp creates the fx application options
func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(config.Out),
		modules(),
	)
}

// CreateAppWithConfig creates the fx application options around an already
// loaded configuration
func CreateAppWithConfig(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Provide(cfg.Out),
		modules(),
	)
}

func modules() fx.Option {
	return fx.Options(
		infrastructure.Module,
		// Domain modules
		auth.Module,
		chat.Module,
		download.Module, // Must be after infrastructure (depends on Recorder and Mirror)
		usecase.Module,
		httpdelivery.Module, // Must be after usecase (serves the current job)
	)
}
