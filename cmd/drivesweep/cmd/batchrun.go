package cmd

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/drivesweep/drivesweep/internal/batch"
	"github.com/drivesweep/drivesweep/internal/remote"
)

// runBatch executes req while a second goroutine renders the progress feed
// to stderr. It returns once both the batch and the renderer are done.
func runBatch(ctx context.Context, client remote.Client, req batch.Request) (*batch.Outcome, error) {
	x := batch.NewExecutor(client, cfg.Concurrency)
	events := x.Progress().Subscribe()

	var out *batch.Outcome
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for ev := range events {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s: %s\n", ev.Done, ev.Total, ev.Status, ev.Name)
		}
		return nil
	})
	g.Go(func() error {
		defer x.Progress().Unsubscribe(events)
		var err error
		out, err = x.Execute(ctx, req)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
