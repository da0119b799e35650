package task

// EventType identifies the kind of event a task emits
type EventType string

const (
	EventStatus    EventType = "status"
	EventLog       EventType = "log"
	EventProgress  EventType = "progress"
	EventQR        EventType = "qr"
	EventSucceeded EventType = "succeeded"
	EventFailed    EventType = "failed"
	EventCancelled EventType = "cancelled"
)

// Slot names a value an operation can suspend on
type Slot string

const (
	SlotCode     Slot = "code"
	SlotPassword Slot = "password"
)

// Event is a single message from a running task to its caller
type Event struct {
	TaskID string
	Type   EventType

	// Message is the status text, log line or QR login URL
	Message string
	// Slot is set on the status event emitted when the operation starts
	// waiting for a supplied value
	Slot Slot

	// Done and Total carry transfer progress. Total is 0 when unknown.
	Done  int64
	Total int64

	// Result is set on succeeded and, when available, cancelled events
	Result any
	// Err is set on failed events
	Err error
}

// Terminal reports whether e is the last event of a run
func (e Event) Terminal() bool {
	switch e.Type {
	case EventSucceeded, EventFailed, EventCancelled:
		return true
	}
	return false
}
