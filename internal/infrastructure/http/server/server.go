package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Server represents fasthttp server
type Server struct {
	server *fasthttp.Server
	Router *router.Router
	addr   string
	logger zerolog.Logger

	ln net.Listener
}

// NewServer creates a new fasthttp server
func NewServer(addr string, logger zerolog.Logger) *Server {
	r := router.New()

	srv := &fasthttp.Server{
		Handler:      r.Handler,
		Name:         "mediaflow",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server: srv,
		Router: r,
		addr:   addr,
		logger: logger.With().Str("component", "http_server").Logger(),
	}
}

// RegisterMetrics registers Prometheus metrics endpoint for the given gatherer
func (s *Server) RegisterMetrics(gatherer prometheus.Gatherer) {
	// Adapt promhttp.Handler to fasthttp
	prometheusHandler := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	)
	s.Router.GET("/metrics", prometheusHandler)
}

// Addr returns the bound address once started, otherwise the configured one
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Start binds the listener and serves in a separate goroutine
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.ln = ln

	s.logger.Info().
		Str("addr", s.Addr()).
		Msg("Starting HTTP server")

	go func() {
		if err := s.server.Serve(ln); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")

	if err := s.server.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped gracefully")
	return nil
}
