package errors

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Exit codes returned by the CLI
const (
	ExitOK         = 0
	ExitInternal   = 1
	ExitValidation = 2
	ExitLogin      = 3
	ExitConnection = 4
	ExitResolution = 5
	ExitCancelled  = 130
)

// Mapper maps domain errors to CLI exit codes
type Mapper struct {
	logger zerolog.Logger
}

// NewMapper creates a new error mapper
func NewMapper(logger zerolog.Logger) *Mapper {
	return &Mapper{logger: logger}
}

// MapErrorToExitCode maps an error to a process exit code and message
func (m *Mapper) MapErrorToExitCode(err error) (int, string) {
	if err == nil {
		return ExitOK, ""
	}

	if errors.Is(err, context.Canceled) {
		return ExitCancelled, "cancelled"
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitValidation, validationErr.Error()
	}

	var loginErr *LoginError
	if errors.As(err, &loginErr) {
		if loginErr.Retryable {
			return ExitLogin, loginErr.Error() + " (try again)"
		}
		return ExitLogin, loginErr.Error()
	}

	var connectionErr *ConnectionError
	if errors.As(err, &connectionErr) {
		return ExitConnection, connectionErr.Error()
	}

	var resolutionErr *ResolutionError
	if errors.As(err, &resolutionErr) {
		return ExitResolution, resolutionErr.Error()
	}

	var transferErr *TransferError
	if errors.As(err, &transferErr) {
		m.logger.Error().Err(err).Int("message_id", transferErr.MessageID).Msg("transfer error escaped the job")
		return ExitInternal, transferErr.Error()
	}

	m.logger.Error().Err(err).Msg("unknown error")
	return ExitInternal, err.Error()
}
