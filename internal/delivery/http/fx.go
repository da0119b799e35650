package http

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Conte777/mediaflow/internal/infrastructure/http/server"
	"github.com/Conte777/mediaflow/internal/usecase"
)

// Module provides status HTTP delivery for fx DI
var Module = fx.Module("delivery_http",
	fx.Provide(NewStatusHandlerFx),
	fx.Provide(NewRouter),
	fx.Invoke(RegisterRoutes),
)

// NewStatusHandlerFx creates a status handler for fx DI
func NewStatusHandlerFx(svc *usecase.Service, logger zerolog.Logger) *StatusHandler {
	return NewStatusHandler(svc, logger)
}

// RegisterRoutes registers status routes on the server
func RegisterRoutes(server *server.Server, router *Router) {
	router.RegisterRoutes(server.Router)
}
