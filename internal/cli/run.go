package cli

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/Conte777/mediaflow/internal/task"
)

// run renders r's events until the terminal one. Cancelling ctx cancels the
// task, which still reports its terminal event.
func (c *CLI) run(ctx context.Context, r *task.Runner) (task.Event, error) {
	var (
		g    errgroup.Group
		last task.Event
	)

	g.Go(func() error {
		select {
		case <-ctx.Done():
			r.Cancel()
		case <-r.Done():
		}
		return nil
	})

	g.Go(func() error {
		for e := range r.Events() {
			c.console.Handle(r, e)
			if e.Terminal() {
				last = e
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return task.Event{}, err
	}

	switch last.Type {
	case task.EventFailed:
		return last, last.Err
	case task.EventCancelled:
		return last, context.Canceled
	case task.EventSucceeded:
		return last, nil
	}
	return last, errors.New("task ended without a result")
}
