package usecase

import (
	"go.uber.org/fx"
)

// Module provides the application service for fx DI
var Module = fx.Module("usecase",
	fx.Provide(NewService),
)
