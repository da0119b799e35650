package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	disconnected atomic.Int32
}

func (c *fakeConn) Disconnect(ctx context.Context) error {
	c.disconnected.Add(1)
	return nil
}

func drain(t *testing.T, r *Runner) []Event {
	t.Helper()

	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-r.Events():
			if !ok {
				return events
			}
			events = append(events, e)
		case <-timeout:
			t.Fatalf("timed out waiting for task events, got %d so far", len(events))
		}
	}
}

func TestRunner_Succeeded(t *testing.T) {
	r := New(zerolog.Nop())

	require.NoError(t, r.Start(func(ctx context.Context, h *Handle) (any, error) {
		h.Status("Connecting...")
		h.Log("[OK] Saved: a.jpg")
		return 42, nil
	}))

	events := drain(t, r)
	require.Len(t, events, 3)
	assert.Equal(t, EventStatus, events[0].Type)
	assert.Equal(t, EventLog, events[1].Type)

	last := events[len(events)-1]
	assert.Equal(t, EventSucceeded, last.Type)
	assert.Equal(t, 42, last.Result)
	assert.Equal(t, r.ID(), last.TaskID)
}

func TestRunner_StartTwice(t *testing.T) {
	r := New(zerolog.Nop())
	op := func(ctx context.Context, h *Handle) (any, error) { return nil, nil }

	require.NoError(t, r.Start(op))
	assert.ErrorIs(t, r.Start(op), ErrAlreadyStarted)

	drain(t, r)
}

func TestRunner_Failed(t *testing.T) {
	r := New(zerolog.Nop())
	boom := errors.New("boom")

	require.NoError(t, r.Start(func(ctx context.Context, h *Handle) (any, error) {
		return nil, boom
	}))

	events := drain(t, r)
	require.Len(t, events, 1)
	assert.Equal(t, EventFailed, events[0].Type)
	assert.ErrorIs(t, events[0].Err, boom)
}

func TestRunner_PanicIsFailure(t *testing.T) {
	r := New(zerolog.Nop())
	conn := &fakeConn{}

	require.NoError(t, r.Start(func(ctx context.Context, h *Handle) (any, error) {
		h.Own(conn)
		panic("unexpected")
	}))

	events := drain(t, r)
	require.Len(t, events, 1)
	assert.Equal(t, EventFailed, events[0].Type)
	assert.ErrorIs(t, events[0].Err, ErrPanic)
	assert.EqualValues(t, 1, conn.disconnected.Load())
}

func TestRunner_CancelDisconnectsBeforeTerminal(t *testing.T) {
	r := New(zerolog.Nop())
	conn := &fakeConn{}
	started := make(chan struct{})

	require.NoError(t, r.Start(func(ctx context.Context, h *Handle) (any, error) {
		h.Own(conn)
		close(started)
		<-ctx.Done()
		return "partial", ctx.Err()
	}))

	<-started
	r.Cancel()

	var terminal Event
	for e := range r.Events() {
		if e.Terminal() {
			// the owned connection must already be closed when the terminal
			// event becomes observable
			assert.EqualValues(t, 1, conn.disconnected.Load())
			terminal = e
		}
	}

	assert.Equal(t, EventCancelled, terminal.Type)
	assert.Equal(t, "partial", terminal.Result)
}

func TestRunner_SupplyDeliversToAwaitingSlot(t *testing.T) {
	r := New(zerolog.Nop())

	require.NoError(t, r.Start(func(ctx context.Context, h *Handle) (any, error) {
		return h.Await(ctx, SlotCode, "Enter the code")
	}))

	var result any
	for e := range r.Events() {
		if e.Type == EventStatus && e.Slot == SlotCode {
			assert.False(t, r.Supply(SlotPassword, "wrong slot"))
			assert.True(t, r.Supply(SlotCode, "12345"))
			assert.False(t, r.Supply(SlotCode, "again"))
		}
		if e.Terminal() {
			require.Equal(t, EventSucceeded, e.Type)
			result = e.Result
		}
	}

	assert.Equal(t, "12345", result)
}

func TestRunner_SupplyWithoutWaiterIsNoop(t *testing.T) {
	r := New(zerolog.Nop())
	assert.False(t, r.Supply(SlotCode, "12345"))
}

func TestRunner_CancelWhileAwaiting(t *testing.T) {
	r := New(zerolog.Nop())

	require.NoError(t, r.Start(func(ctx context.Context, h *Handle) (any, error) {
		return h.Await(ctx, SlotPassword, "Enter the password")
	}))

	var last Event
	for e := range r.Events() {
		if e.Slot == SlotPassword {
			r.Cancel()
		}
		last = e
	}

	assert.Equal(t, EventCancelled, last.Type)
}

func TestRunner_NoEventsAfterTerminal(t *testing.T) {
	r := New(zerolog.Nop())
	var leaked *Handle

	require.NoError(t, r.Start(func(ctx context.Context, h *Handle) (any, error) {
		leaked = h
		return nil, nil
	}))

	events := drain(t, r)
	require.True(t, events[len(events)-1].Terminal())

	// emitting through a handle after the run ended must not panic on the
	// closed channel
	assert.NotPanics(t, func() {
		leaked.Status("late")
		leaked.Progress(1, 2, "late")
	})

	require.NoError(t, r.Wait(context.Background()))
}

func TestRunner_AbandonReleasesBlockedSends(t *testing.T) {
	r := New(zerolog.Nop())

	require.NoError(t, r.Start(func(ctx context.Context, h *Handle) (any, error) {
		for i := 0; i < 2*defaultEventBuffer; i++ {
			h.Log("line")
		}
		return nil, nil
	}))

	r.Abandon()

	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Expected task to finish after its events were abandoned")
	}

	// buffered events stay readable and the channel is closed
	var n int
	for range r.Events() {
		n++
	}
	assert.LessOrEqual(t, n, defaultEventBuffer)
}
