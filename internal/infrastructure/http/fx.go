package http

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/mediaflow/config"
	"github.com/Conte777/mediaflow/internal/infrastructure/http/server"
	"github.com/Conte777/mediaflow/internal/infrastructure/metrics"
)

// Module provides HTTP server for fx DI
var Module = fx.Module("http",
	fx.Provide(NewServerFx),
)

// NewServerFx creates HTTP server with lifecycle hooks for fx DI. The server
// is only started when enabled in config.
func NewServerFx(
	lc fx.Lifecycle,
	httpCfg *config.HTTPConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *server.Server {
	srv := server.NewServer(httpCfg.Addr, logger)

	// Register Prometheus metrics endpoint
	srv.RegisterMetrics(m.Registry())

	if !httpCfg.Enabled {
		return srv
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
