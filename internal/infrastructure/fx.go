package infrastructure

import (
	"github.com/spf13/afero"
	"go.uber.org/fx"

	httpfx "github.com/Conte777/mediaflow/internal/infrastructure/http"
	"github.com/Conte777/mediaflow/internal/infrastructure/logger"
	"github.com/Conte777/mediaflow/internal/infrastructure/metrics"
	"github.com/Conte777/mediaflow/internal/infrastructure/s3"
	"github.com/Conte777/mediaflow/internal/infrastructure/telegram"
)

// Module aggregates all infrastructure modules
var Module = fx.Module("infrastructure",
	fx.Provide(afero.NewOsFs),
	logger.Module,
	metrics.Module,
	telegram.Module,
	s3.Module,
	httpfx.Module, // Must be after metrics (serves the metrics registry)
)
