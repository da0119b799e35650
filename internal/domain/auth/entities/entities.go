package entities

import (
	"github.com/Conte777/mediaflow/internal/domain"
)

// State is a step of the login state machine
type State string

const (
	StateIdle             State = "idle"
	StateConnecting       State = "connecting"
	StateQRIssued         State = "qr_issued"
	StateCodeRequested    State = "code_requested"
	StateAwaitingCode     State = "awaiting_code"
	StateAwaitingPassword State = "awaiting_password"
	StateAuthenticated    State = "authenticated"
	StateFailed           State = "failed"
	StateCancelled        State = "cancelled"
)

// IsTerminal returns true if no transition leaves s
func (s State) IsTerminal() bool {
	return s == StateAuthenticated ||
		s == StateFailed ||
		s == StateCancelled
}

// App identifies the API application a login is made for
type App struct {
	APIID   int
	APIHash string
}

// Result is the outcome of a successful login
type Result struct {
	DisplayName string
	Credential  domain.Credential
}
