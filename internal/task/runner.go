package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrAlreadyStarted is returned when Start is called more than once
	ErrAlreadyStarted = errors.New("task already started")

	// ErrPanic wraps a panic recovered from an operation
	ErrPanic = errors.New("task panicked")
)

const (
	defaultEventBuffer     = 256
	defaultDisconnectAfter = 10 * time.Second
)

// Operation is the suspending work executed by a Runner.
// ctx is cancelled when the caller invokes Cancel.
type Operation func(ctx context.Context, h *Handle) (any, error)

// Disconnector is a connection owned by a running operation
type Disconnector interface {
	Disconnect(ctx context.Context) error
}

// Runner executes one operation on its own goroutine and reports back
// through a per-task event channel
type Runner struct {
	id     string
	logger zerolog.Logger

	events    chan Event
	done      chan struct{}
	abandoned chan struct{}
	abandon   sync.Once

	ctx    context.Context
	cancel context.CancelFunc

	started  atomic.Bool
	finished atomic.Bool

	mu    sync.Mutex
	slots map[Slot]chan string
	owned []Disconnector

	disconnectTimeout time.Duration
}

// New creates a runner with a fresh task id
func New(logger zerolog.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()

	return &Runner{
		id:                id,
		logger:            logger.With().Str("component", "task").Str("task_id", id).Logger(),
		events:            make(chan Event, defaultEventBuffer),
		done:              make(chan struct{}),
		abandoned:         make(chan struct{}),
		ctx:               ctx,
		cancel:            cancel,
		slots:             make(map[Slot]chan string),
		disconnectTimeout: defaultDisconnectAfter,
	}
}

// ID returns the task id
func (r *Runner) ID() string {
	return r.id
}

// Events returns the event channel. It is closed after the terminal event.
// Callers must drain it until it is closed or call Abandon.
func (r *Runner) Events() <-chan Event {
	return r.events
}

// Done is closed once the terminal event has been sent
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Start runs op on a new goroutine and returns immediately
func (r *Runner) Start(op Operation) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	r.logger.Debug().Msg("Task started")
	go r.run(op)

	return nil
}

// Cancel requests cooperative cancellation. The operation observes it at its
// next suspension point.
func (r *Runner) Cancel() {
	r.logger.Debug().Msg("Task cancellation requested")
	r.cancel()
}

// Abandon tells the runner nobody reads Events anymore. The task is
// cancelled and pending and future events are discarded, so Done still
// closes.
func (r *Runner) Abandon() {
	r.abandon.Do(func() {
		r.logger.Debug().Msg("Task events abandoned")
		close(r.abandoned)
	})
	r.cancel()
}

// Supply delivers value to an operation waiting on slot. It returns false and
// does nothing when no operation is waiting on that slot.
func (r *Runner) Supply(slot Slot, value string) bool {
	r.mu.Lock()
	ch, ok := r.slots[slot]
	if ok {
		delete(r.slots, slot)
	}
	r.mu.Unlock()

	if !ok {
		r.logger.Debug().Str("slot", string(slot)).Msg("Ignoring value for slot nobody waits on")
		return false
	}

	// buffered with capacity 1 and removed from the registry above,
	// so this send never blocks
	ch <- value
	return true
}

// Wait blocks until the task has finished or ctx is done
func (r *Runner) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) run(op Operation) {
	defer close(r.done)
	defer r.cancel()

	result, err := r.invoke(op)

	r.disconnectOwned()

	var terminal Event
	switch {
	case err == nil:
		terminal = Event{Type: EventSucceeded, Result: result}
		r.logger.Debug().Msg("Task succeeded")
	case errors.Is(err, context.Canceled):
		terminal = Event{Type: EventCancelled, Result: result}
		r.logger.Info().Msg("Task cancelled")
	default:
		terminal = Event{Type: EventFailed, Err: err}
		r.logger.Error().Err(err).Msg("Task failed")
	}

	r.finished.Store(true)
	terminal.TaskID = r.id
	select {
	case r.events <- terminal:
	case <-r.abandoned:
	}
	close(r.events)
}

func (r *Runner) invoke(op Operation) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()

	return op(r.ctx, &Handle{r: r})
}

func (r *Runner) disconnectOwned() {
	r.mu.Lock()
	owned := r.owned
	r.owned = nil
	r.mu.Unlock()

	for i := len(owned) - 1; i >= 0; i-- {
		ctx, cancel := context.WithTimeout(context.Background(), r.disconnectTimeout)
		if err := owned[i].Disconnect(ctx); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to disconnect owned client")
		}
		cancel()
	}
}

// send delivers e. Lossy events are dropped when the buffer is full.
func (r *Runner) send(e Event, lossy bool) {
	if r.finished.Load() {
		return
	}
	e.TaskID = r.id

	if !lossy {
		select {
		case r.events <- e:
		case <-r.abandoned:
		}
		return
	}

	select {
	case r.events <- e:
	default:
	}
}

func (r *Runner) register(slot Slot) chan string {
	ch := make(chan string, 1)

	r.mu.Lock()
	r.slots[slot] = ch
	r.mu.Unlock()

	return ch
}

func (r *Runner) unregister(slot Slot, ch chan string) {
	r.mu.Lock()
	if cur, ok := r.slots[slot]; ok && cur == ch {
		delete(r.slots, slot)
	}
	r.mu.Unlock()
}
