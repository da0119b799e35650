package errors

import "fmt"

type baseError struct {
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// ConnectionError represents a failure to reach or stay connected to Telegram.
// Terminal for the running task.
type ConnectionError struct {
	baseError
}

func NewConnectionError(message string, cause error) *ConnectionError {
	return &ConnectionError{baseError{message: message, cause: cause}}
}

// LoginError represents a failed login attempt
type LoginError struct {
	baseError
	// Retryable is set when the user can start a new attempt with other input
	// (wrong code, expired code, wrong password)
	Retryable bool
}

func NewLoginError(message string, cause error, retryable bool) *LoginError {
	return &LoginError{baseError: baseError{message: message, cause: cause}, Retryable: retryable}
}

// ResolutionError represents a conversation target that could not be resolved
type ResolutionError struct {
	baseError
}

func NewResolutionError(message string, cause error) *ResolutionError {
	return &ResolutionError{baseError{message: message, cause: cause}}
}

func NewResolutionErrorf(cause error, format string, args ...interface{}) *ResolutionError {
	return &ResolutionError{baseError{message: fmt.Sprintf(format, args...), cause: cause}}
}

// TransferError represents a single media transfer failure. Logged and skipped.
type TransferError struct {
	baseError
	MessageID int
}

func NewTransferError(messageID int, cause error) *TransferError {
	return &TransferError{
		baseError: baseError{message: fmt.Sprintf("message %d", messageID), cause: cause},
		MessageID: messageID,
	}
}

// ValidationError represents an invalid job or login configuration
type ValidationError struct {
	baseError
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{baseError{message: message}}
}

func NewValidationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{baseError{message: fmt.Sprintf(format, args...)}}
}
