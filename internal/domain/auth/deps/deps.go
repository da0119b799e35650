package deps

import (
	"context"

	"github.com/Conte777/mediaflow/internal/task"
)

// Prompter is the caller-facing side of a login attempt
type Prompter interface {
	// Status reports a state change
	Status(message string)

	// QR publishes a login URL to be shown as a QR code
	QR(url string)

	// Await suspends until the caller supplies a value for slot
	Await(ctx context.Context, slot task.Slot, prompt string) (string, error)

	// Own hands a connection to the caller for cleanup
	Own(d task.Disconnector)
}
