package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
)

// Router registers status HTTP routes
type Router struct {
	handler *StatusHandler
	logger  zerolog.Logger
}

// NewRouter creates a new status router
func NewRouter(handler *StatusHandler, logger zerolog.Logger) *Router {
	return &Router{
		handler: handler,
		logger:  logger,
	}
}

// RegisterRoutes registers status routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	rt.GET("/health", r.handler.Health)
	rt.GET("/job", r.handler.Job)
	rt.DELETE("/job", r.handler.CancelJob)

	r.logger.Debug().Msg("Status routes registered")
}
