package http

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/mediaflow/internal/domain/download/entities"
)

// JobSource exposes the state of the application service
type JobSource interface {
	// CurrentJob returns the latest download job, false when none ran yet
	CurrentJob() (entities.Snapshot, bool)
	// CancelJob cancels the running download, false when none is running
	CancelJob() bool
	// Busy reports whether an operation holds the gate
	Busy() bool
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Busy      bool      `json:"busy"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the body of error responses
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusHandler serves read-only job status
type StatusHandler struct {
	jobs   JobSource
	logger zerolog.Logger
	now    func() time.Time
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(jobs JobSource, logger zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		jobs:   jobs,
		logger: logger.With().Str("handler", "status").Logger(),
		now:    time.Now,
	}
}

// Health handles GET /health
func (h *StatusHandler) Health(ctx *fasthttp.RequestCtx) {
	h.writeJSON(ctx, fasthttp.StatusOK, HealthResponse{
		Status:    "healthy",
		Busy:      h.jobs.Busy(),
		Timestamp: h.now().UTC(),
	})
}

// Job handles GET /job
func (h *StatusHandler) Job(ctx *fasthttp.RequestCtx) {
	snap, ok := h.jobs.CurrentJob()
	if !ok {
		h.writeError(ctx, fasthttp.StatusNotFound, "no download job has run yet")
		return
	}

	h.writeJSON(ctx, fasthttp.StatusOK, snap)
}

// CancelJob handles DELETE /job
func (h *StatusHandler) CancelJob(ctx *fasthttp.RequestCtx) {
	if !h.jobs.CancelJob() {
		h.writeError(ctx, fasthttp.StatusConflict, "no download job is running")
		return
	}

	h.logger.Info().Msg("Download cancelled over HTTP")
	ctx.SetStatusCode(fasthttp.StatusAccepted)
}

// writeJSON writes JSON response
func (h *StatusHandler) writeJSON(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	if err := json.NewEncoder(ctx).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError writes error response
func (h *StatusHandler) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	h.writeJSON(ctx, status, ErrorResponse{Error: message})
}
