package metrics

import (
	"go.uber.org/fx"

	"github.com/Conte777/mediaflow/internal/domain/download/deps"
)

// Module provides metrics for fx DI
var Module = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		func(m *Metrics) deps.Recorder { return m },
	),
)
