package task

import "context"

// Handle is the operation's side of a Runner
type Handle struct {
	r *Runner
}

// TaskID returns the id of the running task
func (h *Handle) TaskID() string {
	return h.r.id
}

// Status emits a status update. Dropped when the caller is not keeping up.
func (h *Handle) Status(message string) {
	h.r.send(Event{Type: EventStatus, Message: message}, true)
}

// Log emits a log line. Never dropped.
func (h *Handle) Log(message string) {
	h.r.send(Event{Type: EventLog, Message: message}, false)
}

// Progress emits transfer progress. Dropped when the caller is not keeping up.
func (h *Handle) Progress(done, total int64, message string) {
	h.r.send(Event{Type: EventProgress, Done: done, Total: total, Message: message}, true)
}

// QR emits a QR login URL. Never dropped.
func (h *Handle) QR(url string) {
	h.r.send(Event{Type: EventQR, Message: url}, false)
}

// Own registers a connection to be disconnected before the terminal event
func (h *Handle) Own(d Disconnector) {
	h.r.mu.Lock()
	h.r.owned = append(h.r.owned, d)
	h.r.mu.Unlock()
}

// Await suspends until the caller supplies a value for slot or ctx is done.
// The slot is registered before prompt is emitted, so a caller reacting to
// the prompt event can always Supply.
func (h *Handle) Await(ctx context.Context, slot Slot, prompt string) (string, error) {
	ch := h.r.register(slot)
	defer h.r.unregister(slot, ch)

	h.r.send(Event{Type: EventStatus, Message: prompt, Slot: slot}, false)

	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
